package formschema_test

import (
	"testing"

	"github.com/reoring/formschema"
)

func TestValidate_IssuesAndPaths(t *testing.T) {
	root := mustNode(t, `{
		"type":"object",
		"required":["name","age"],
		"properties":{"name":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}}
	}`)
	err := root.Validate(map[string]any{"name": 1, "tags": []string{"ok", "x"}})
	iss, ok := formschema.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	age := iss.At("/age")
	if len(age) != 1 || age[0].Code != formschema.CodeRequired || age[0].Path != "" {
		t.Fatalf("required issue: %+v", age)
	}
	if age[0].Params["missingProperty"] != "age" {
		t.Fatalf("params: %+v", age[0].Params)
	}
	name := iss.At("/name")
	if len(name) != 1 || name[0].Code != formschema.CodeType {
		t.Fatalf("type issue: %+v", name)
	}
	if err := root.Validate(map[string]any{"name": "n", "age": 3}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_RequiredExpandsPerProperty(t *testing.T) {
	root := mustNode(t, `{"required":["a","b"]}`)
	iss, _ := formschema.AsIssues(root.Validate(map[string]any{}))
	if len(iss) != 2 || len(iss.At("/a")) != 1 || len(iss.At("/b")) != 1 {
		t.Fatalf("expected one issue per missing property: %+v", iss)
	}
}

func TestValidate_SubSchemaSeesDefinitions(t *testing.T) {
	root := mustNode(t, `{"properties":{"a":{"$ref":"#/definitions/s"}},"definitions":{"s":{"type":"string","minLength":2}}}`)
	a, _ := root.SubSchema("#/properties/a")
	iss, ok := formschema.AsIssues(a.Validate("x"))
	if !ok || len(iss) != 1 || iss[0].Code != formschema.CodeMinLength {
		t.Fatalf("expected minLength issue, got %+v", iss)
	}
	if err := a.Validate("xy"); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_RegisteredIdentifier(t *testing.T) {
	root := mustNode(t, `{"properties":{"money":{"$ref":"https://example.com/money.json"}}}`)
	root.MustRegisterDefinition(formschema.Object(mustMap(t, `{"$id":"https://example.com/money.json","type":"number"}`)), "")
	if err := root.Validate(map[string]any{"money": "ten"}); err == nil {
		t.Fatalf("expected a type violation through the registered reference")
	}
	if err := root.Validate(map[string]any{"money": 10}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidate_BooleanSchemas(t *testing.T) {
	if err := formschema.New(true).Validate("anything"); err != nil {
		t.Fatalf("true accepts everything: %v", err)
	}
	iss, ok := formschema.AsIssues(formschema.New(false).Validate(1))
	if !ok || iss[0].Code != formschema.CodeFalseSchema {
		t.Fatalf("false rejects everything: %+v", iss)
	}
	root := mustNode(t, `{"properties":{"x":false}}`)
	iss, _ = formschema.AsIssues(root.Validate(map[string]any{"x": 1}))
	if len(iss.At("/x")) != 1 || iss.At("/x")[0].Code != formschema.CodeFalseSchema {
		t.Fatalf("false property schema: %+v", iss)
	}
}

type rejectAll struct{}

func (rejectAll) Compile(formschema.Value, formschema.Definitions) (formschema.Checker, error) {
	return rejectAll{}, nil
}

func (rejectAll) Validate(any) error {
	return formschema.Issues{{Code: "custom"}}
}

func TestWithValidator(t *testing.T) {
	root := mustNode(t, `{"if":true,"then":{"title":"then"},"else":{"title":"else"}}`, formschema.WithValidator(rejectAll{}))
	if got := root.ApplyConditionFor(1).ToJSON().Map()["title"]; got != "else" {
		t.Fatalf("custom validator not used: %v", got)
	}
}

func TestIssues_Error(t *testing.T) {
	iss := formschema.Issues{
		{Path: "", Code: formschema.CodeRequired, Params: map[string]any{"missingProperty": "a"}},
		{Path: "/b", Code: formschema.CodeType},
		{Path: "/c", Code: formschema.CodeType},
		{Path: "/d", Code: formschema.CodeType},
	}
	if got, want := iss.Error(), "required at /a; type at /b; type at /c; ... (total 4)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
