// Package typed converts schema values into the struct model of
// github.com/google/jsonschema-go, for Go consumers that prefer field access
// over keyword maps.
package typed

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/reoring/formschema"
)

// FromValue converts a schema value. Tuple-form "items" lists are rewritten
// to "prefixItems" (with "additionalItems" becoming "items"), the form the
// typed model understands.
func FromValue(v formschema.Value) (*jsonschema.Schema, error) {
	b, err := json.Marshal(upgrade(v.Raw()))
	if err != nil {
		return nil, fmt.Errorf("typed: encode schema: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("typed: decode schema: %w", err)
	}
	return &s, nil
}

// FromNode converts the fully inlined form of n, so the result carries no
// local references.
func FromNode(n *formschema.Node) (*jsonschema.Schema, error) {
	return FromValue(n.ToDeepDereferencedJSON())
}

// CheckDefaults reports "default" values in n that do not satisfy their own
// schema.
func CheckDefaults(n *formschema.Node) error {
	s, err := FromNode(n)
	if err != nil {
		return err
	}
	// Default checking runs under draft 2020-12 rules whatever the declared dialect.
	s.Schema = ""
	if _, err := s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true}); err != nil {
		return fmt.Errorf("typed: %w", err)
	}
	return nil
}

// Keywords whose value is one schema, a map of schemas or a list of schemas.
var (
	single = []string{"additionalProperties", "propertyNames", "contains", "not", "if", "then", "else", "items", "additionalItems", "unevaluatedItems", "unevaluatedProperties"}
	named  = []string{"properties", "patternProperties", "dependentSchemas", "$defs", "definitions"}
	listed = []string{"allOf", "anyOf", "oneOf", "prefixItems"}
)

// upgrade returns a copy of a raw schema with tuple items rewritten. Only
// schema positions are visited, so data under "default", "enum" or "const"
// is left alone.
func upgrade(raw any) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	if tuple, ok := out["items"].([]any); ok {
		if _, has := out["prefixItems"]; !has {
			out["prefixItems"] = tuple
			delete(out, "items")
			if extra, ok := out["additionalItems"]; ok {
				out["items"] = extra
				delete(out, "additionalItems")
			}
		}
	}
	for _, kw := range single {
		if v, ok := out[kw]; ok {
			out[kw] = upgrade(v)
		}
	}
	for _, kw := range named {
		if sub, ok := out[kw].(map[string]any); ok {
			ns := make(map[string]any, len(sub))
			for name, v := range sub {
				ns[name] = upgrade(v)
			}
			out[kw] = ns
		}
	}
	for _, kw := range listed {
		if list, ok := out[kw].([]any); ok {
			nl := make([]any, len(list))
			for i, v := range list {
				nl[i] = upgrade(v)
			}
			out[kw] = nl
		}
	}
	return out
}
