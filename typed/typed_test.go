package typed_test

import (
	"testing"

	"github.com/reoring/formschema"
	"github.com/reoring/formschema/typed"
)

func TestFromNode_Inlined(t *testing.T) {
	root, err := formschema.ParseJSON([]byte(`{
		"type":"object",
		"required":["name"],
		"properties":{
			"name":{"$ref":"#/definitions/name"},
			"point":{"type":"array","items":[{"type":"number"},{"type":"number"}],"additionalItems":false}
		},
		"definitions":{"name":{"type":"string","minLength":1,"default":"x"}}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s, err := typed.FromNode(root)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if s.Type != "object" || len(s.Required) != 1 || s.Required[0] != "name" {
		t.Fatalf("unexpected root: %+v", s)
	}
	name := s.Properties["name"]
	if name == nil || name.Type != "string" || name.Ref != "" || name.MinLength == nil || *name.MinLength != 1 {
		t.Fatalf("name not inlined: %+v", name)
	}
	if string(name.Default) != `"x"` {
		t.Fatalf("default = %s", name.Default)
	}
	if s.Definitions != nil {
		t.Fatalf("definitions must be stripped")
	}
	point := s.Properties["point"]
	if len(point.PrefixItems) != 2 || point.Items == nil {
		t.Fatalf("tuple items not upgraded: %+v", point)
	}
}

func TestFromValue_Boolean(t *testing.T) {
	s, err := typed.FromValue(formschema.Bool(true))
	if err != nil || s == nil {
		t.Fatalf("true schema: %v", err)
	}
	s, err = typed.FromValue(formschema.Bool(false))
	if err != nil || s.Not == nil {
		t.Fatalf("false schema should be modeled as not{}: %+v %v", s, err)
	}
}

func TestCheckDefaults(t *testing.T) {
	good, _ := formschema.ParseJSON([]byte(`{"properties":{"n":{"type":"integer","default":3}}}`))
	if err := typed.CheckDefaults(good); err != nil {
		t.Fatalf("valid defaults rejected: %v", err)
	}
	bad, _ := formschema.ParseJSON([]byte(`{"properties":{"n":{"type":"integer","default":"three"}}}`))
	if err := typed.CheckDefaults(bad); err == nil {
		t.Fatalf("expected an invalid default to be reported")
	}
}
