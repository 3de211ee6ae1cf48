package formschema_test

import (
	"testing"

	"github.com/reoring/formschema"
)

func TestSubSchema_PointerStability(t *testing.T) {
	root := mustNode(t, `{"type":"object","properties":{"foo":{"type":"string"}}}`)
	a, ok := root.SubSchema("#/properties/foo")
	if !ok {
		t.Fatalf("expected hit")
	}
	b, _ := root.SubSchema("#/properties/foo")
	if a != b {
		t.Fatalf("expected the identical node instance")
	}
	if a.Path() != "#/properties/foo" || a.LeafPath() != "foo" {
		t.Fatalf("path=%q leaf=%q", a.Path(), a.LeafPath())
	}
	if a.Parent() != root || a.Root() != root || root.Root() != root || root.Parent() != nil {
		t.Fatalf("unexpected tree links")
	}
	if root.Path() != "#" {
		t.Fatalf("root path = %q", root.Path())
	}
}

func TestSubSchema_Misses(t *testing.T) {
	root := mustNode(t, `{"properties":{"n":3,"b":false},"items":[{"type":"string"}]}`)
	for _, p := range []string{"#/properties/zzz", "#/properties/n", "#/items/1", "#/items/01", "#/nope", "properties/b", "#/a/b/c"} {
		if n, ok := root.SubSchema(p); ok || n != nil {
			t.Fatalf("%s: expected miss, got %v", p, n)
		}
	}
	b, ok := root.SubSchema("#/properties/b")
	if !ok || !b.IsBooleanSchema() || b.ToJSON().Bool() {
		t.Fatalf("boolean sub-schema: ok=%v", ok)
	}
	if _, ok := b.SubSchema("#/properties/x"); ok {
		t.Fatalf("boolean schemas have no sub-schemas")
	}
	item, ok := root.SubSchema("#/items/0")
	if !ok || item.ToJSON().Type() != "string" || item.Path() != "#/items/0" {
		t.Fatalf("tuple item lookup failed")
	}
}

func TestSubSchema_EscapedSegments(t *testing.T) {
	root := mustNode(t, `{"properties":{"a/b":{"type":"number"},"c~d":{"type":"boolean"}}}`)
	n, ok := root.SubSchema("#/properties/a~1b")
	if !ok || n.ToJSON().Type() != "number" {
		t.Fatalf("escaped slash lookup failed")
	}
	if n.LeafPath() != "a/b" {
		t.Fatalf("leaf = %q", n.LeafPath())
	}
	if n, ok := root.SubSchema("#/properties/c~0d"); !ok || n.ToJSON().Type() != "boolean" {
		t.Fatalf("escaped tilde lookup failed")
	}
}

func TestLookup_Deep(t *testing.T) {
	root := mustNode(t, `{
		"properties":{
			"address":{"type":"object","properties":{"street":{"type":"string"}}},
			"tags":{"type":"array","items":{"properties":{"label":{"type":"string"}}}},
			"pair":{"items":[{"type":"string"},{"type":"number"}]}
		},
		"allOf":[{"properties":{"x":{"type":"integer"}}}]
	}`)
	cases := map[string]string{
		"#/properties/address/properties/street":   "string",
		"#/properties/tags/items/properties/label": "string",
		"#/properties/pair/items/1":                "number",
		"#/allOf/0/properties/x":                   "integer",
	}
	for p, want := range cases {
		n, ok := root.Lookup(p)
		if !ok {
			t.Fatalf("%s: miss", p)
		}
		if got := n.ToJSON().Type(); got != want {
			t.Fatalf("%s: type=%q want %q", p, got, want)
		}
		if n.Path() != p {
			t.Fatalf("path=%q want %q", n.Path(), p)
		}
	}
	street, _ := root.Lookup("#/properties/address/properties/street")
	addr, _ := root.SubSchema("#/properties/address")
	if street.Parent() != addr {
		t.Fatalf("lookup must reuse memoized intermediate nodes")
	}
	if n, ok := root.Lookup("#"); !ok || n != root {
		t.Fatalf("# addresses the node itself")
	}
	if _, ok := root.Lookup("#/properties"); ok {
		t.Fatalf("incomplete pointer must miss")
	}
}

func TestNew_NonSchemaRoot(t *testing.T) {
	n := formschema.New([]any{1, 2})
	if !n.IsObjectSchema() || len(n.ToJSON().Map()) != 0 {
		t.Fatalf("expected empty schema fallback")
	}
	if !n.Diagnostics().HasWarnings() {
		t.Fatalf("expected a warning")
	}
}
