package formschema_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/formschema"
)

func TestParseJSON_DuplicateKeysWarn(t *testing.T) {
	root, err := formschema.ParseJSON([]byte(`{"type":"string","type":"number","properties":{"a":{},"a":{"default":1}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.ToJSON().Type() != "number" {
		t.Fatalf("last occurrence should win")
	}
	ws := strings.Join(root.Diagnostics().Warnings(), "\n")
	if !strings.Contains(ws, `duplicate key "type" at /`) || !strings.Contains(ws, `duplicate key "a" at /properties`) {
		t.Fatalf("warnings: %q", ws)
	}
	if _, err := formschema.ParseJSON([]byte(`{"type":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestParseYAML(t *testing.T) {
	src := `
type: object
properties:
  count:
    type: integer
    default: 3
  ratio:
    type: number
    default: 0.5
  tags:
    type: array
    default: [a, b]
  base: &base
    type: string
    default: x
  alias: *base
`
	root, err := formschema.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, _ := root.DeriveDefault(formschema.ModeSchemaDefault)
	want := map[string]any{"count": 3.0, "ratio": 0.5, "tags": []any{"a", "b"}, "base": "x", "alias": "x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
}

func TestParseYAML_DuplicateKeysWarn(t *testing.T) {
	root, err := formschema.ParseYAML([]byte("type: string\ntype: number\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.ToJSON().Type() != "number" {
		t.Fatalf("last occurrence should win")
	}
	if !root.Diagnostics().HasWarnings() {
		t.Fatalf("expected a duplicate key warning")
	}
}

func TestLoadReferencesYAML(t *testing.T) {
	bundle := `
$id: https://example.com/address.json
type: object
properties:
  city: {type: string, default: Kyoto}
---
$id: https://example.com/person.json
type: object
properties:
  address: {$ref: "https://example.com/address.json"}
`
	defs, err := formschema.LoadReferencesYAML([]byte(bundle))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	root := mustNode(t, `{"$ref":"https://example.com/person.json"}`)
	if err := root.RegisterReferences(defs); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, _ := root.DeriveDefault(formschema.ModeSchemaDefault)
	want := map[string]any{"address": map[string]any{"city": "Kyoto"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	_, err = formschema.LoadReferencesYAML([]byte("type: string\n"))
	if !errors.Is(err, formschema.ErrUnnamedDefinition) {
		t.Fatalf("expected ErrUnnamedDefinition, got %v", err)
	}
	if _, err := formschema.LoadReferencesYAML([]byte("- a\n")); err == nil {
		t.Fatalf("expected non-object error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	js := filepath.Join(dir, "s.json")
	ym := filepath.Join(dir, "s.yml")
	if err := os.WriteFile(js, []byte(`{"type":"string","default":"j"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ym, []byte("type: string\ndefault: y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for path, want := range map[string]string{js: "j", ym: "y"} {
		root, err := formschema.LoadFile(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got, _ := root.DeriveDefault(formschema.ModeSchemaDefault); got != want {
			t.Fatalf("%s: got %v want %v", path, got, want)
		}
	}
	if _, err := formschema.LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
	v, err := formschema.DecodeFile(ym)
	if err != nil || v.(map[string]any)["default"] != "y" {
		t.Fatalf("decode: %v %v", v, err)
	}
}
