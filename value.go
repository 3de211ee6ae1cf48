package formschema

import (
	json "github.com/goccy/go-json"

	"github.com/reoring/formschema/internal/merge"
)

// Kind tags the two variants of a schema value.
type Kind uint8

const (
	KindBool   Kind = iota // true matches anything, false matches nothing.
	KindObject             // A keyword map.
)

// SubType is the structural subtype declared by a schema's "type" keyword.
type SubType string

const (
	SubTypeUnknown SubType = ""
	SubTypeString  SubType = "string"
	SubTypeNumber  SubType = "number"
	SubTypeInteger SubType = "integer"
	SubTypeBoolean SubType = "boolean"
	SubTypeNull    SubType = "null"
	SubTypeArray   SubType = "array"
	SubTypeObject  SubType = "object"
)

// Keywords used across the resolver.
const (
	kwRef               = "$ref"
	kwID                = "$id"
	kwDefs              = "$defs"
	kwDefinitions       = "definitions"
	kwType              = "type"
	kwProperties        = "properties"
	kwItems             = "items"
	kwRequired          = "required"
	kwDependentRequired = "dependentRequired"
	kwAllOf             = "allOf"
	kwOneOf             = "oneOf"
	kwIf                = "if"
	kwThen              = "then"
	kwElse              = "else"
	kwEnum              = "enum"
	kwDefault           = "default"
	kwMinItems          = "minItems"
)

// Value is a schema node's raw value: either a boolean schema or a keyword
// object. The zero Value is the boolean schema false.
//
// A Value never owns its map exclusively; treat the map returned by Map as
// read-only. Derived views are always built as new values.
type Value struct {
	kind Kind
	b    bool
	obj  map[string]any
}

// Bool returns a boolean schema.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Object wraps a keyword map. A nil map is treated as the empty schema.
func Object(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{kind: KindObject, obj: m}
}

// Empty returns the empty (no-op) object schema {}.
func Empty() Value { return Object(nil) }

// ValueOf classifies a JSON-shaped value as a schema. Only bool and
// map[string]any are schemas; anything else reports false.
func ValueOf(raw any) (Value, bool) {
	switch t := raw.(type) {
	case Value:
		return t, true
	case bool:
		return Bool(t), true
	case map[string]any:
		return Object(t), true
	default:
		return Value{}, false
	}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsObject() bool { return v.kind == KindObject }

// Bool returns the boolean of a boolean schema; object schemas report false.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Map returns the keyword map of an object schema, or nil.
func (v Value) Map() map[string]any {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Raw returns the JSON-shaped representation: a bool or a map[string]any.
func (v Value) Raw() any {
	if v.kind == KindBool {
		return v.b
	}
	return v.obj
}

// Keyword returns the raw value of a keyword.
func (v Value) Keyword(name string) (any, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	kw, ok := v.obj[name]
	return kw, ok
}

// Has reports whether the keyword is present.
func (v Value) Has(name string) bool {
	_, ok := v.Keyword(name)
	return ok
}

// Type returns the "type" keyword when it is a single string.
func (v Value) Type() string {
	t, _ := v.obj[kwType].(string)
	return t
}

// Ref returns the "$ref" keyword, or "".
func (v Value) Ref() string {
	r, _ := v.obj[kwRef].(string)
	return r
}

// SubType reports the structural subtype.
func (v Value) SubType() SubType {
	switch t := SubType(v.Type()); t {
	case SubTypeString, SubTypeNumber, SubTypeInteger, SubTypeBoolean, SubTypeNull, SubTypeArray, SubTypeObject:
		return t
	}
	return SubTypeUnknown
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v.kind == KindBool {
		return v
	}
	return Value{kind: KindObject, obj: merge.CopyMap(v.obj)}
}

// MarshalJSON encodes the raw representation.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Raw()) }

// UnmarshalJSON decodes a boolean or object schema. Other JSON values decode
// to the empty schema.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if nv, ok := ValueOf(raw); ok {
		*v = nv
		return nil
	}
	*v = Empty()
	return nil
}

// without returns a new object value minus the given keywords.
func (v Value) without(keys ...string) Value {
	return Object(merge.Without(v.obj, keys...))
}

// subValue reads a keyword and classifies it as a schema.
func (v Value) subValue(name string) (Value, bool) {
	raw, ok := v.Keyword(name)
	if !ok {
		return Value{}, false
	}
	return ValueOf(raw)
}
