package merge

import (
	"reflect"
	"testing"
)

func TestMaps_RecursiveObjectsReplacedArrays(t *testing.T) {
	a := map[string]any{
		"type":       "object",
		"required":   []any{"a"},
		"properties": map[string]any{"a": map[string]any{"type": "string", "title": "A"}},
	}
	b := map[string]any{
		"required":   []any{"b"},
		"properties": map[string]any{"a": map[string]any{"title": "A2"}, "b": map[string]any{"type": "number"}},
	}
	got := Maps(a, b)
	want := map[string]any{
		"type":     "object",
		"required": []any{"b"},
		"properties": map[string]any{
			"a": map[string]any{"type": "string", "title": "A2"},
			"b": map[string]any{"type": "number"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged:\n got %#v\nwant %#v", got, want)
	}
	// inputs untouched
	if a["properties"].(map[string]any)["a"].(map[string]any)["title"] != "A" {
		t.Fatalf("source a was mutated")
	}
	if _, ok := a["properties"].(map[string]any)["b"]; ok {
		t.Fatalf("source a gained a key")
	}
}

func TestCopy_Independent(t *testing.T) {
	src := map[string]any{"list": []any{map[string]any{"x": 1}}}
	cp := CopyMap(src)
	cp["list"].([]any)[0].(map[string]any)["x"] = 2
	if src["list"].([]any)[0].(map[string]any)["x"] != 1 {
		t.Fatalf("copy shares nested storage")
	}
}

func TestWithout(t *testing.T) {
	src := map[string]any{"allOf": []any{}, "type": "object"}
	got := Without(src, "allOf")
	if _, ok := got["allOf"]; ok {
		t.Fatalf("allOf not removed")
	}
	if _, ok := src["allOf"]; !ok {
		t.Fatalf("source modified")
	}
}
