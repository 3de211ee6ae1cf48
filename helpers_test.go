package formschema_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reoring/formschema"
)

// mustMap decodes a JSON object literal.
func mustMap(t *testing.T, js string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(js), &m); err != nil {
		t.Fatalf("bad fixture %s: %v", js, err)
	}
	return m
}

func mustNode(t *testing.T, js string, opts ...formschema.Option) *formschema.Node {
	t.Helper()
	n, err := formschema.ParseJSON([]byte(js), opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return n
}
