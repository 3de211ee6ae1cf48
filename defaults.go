package formschema

import (
	"fmt"

	"github.com/reoring/formschema/internal/merge"
)

// Mode selects the fallback used when a schema carries no explicit default.
type Mode int

const (
	// ModeSchemaDefault derives only explicit defaults; everything else is
	// absent.
	ModeSchemaDefault Mode = iota
	// ModeTypeDefault falls back to a zero value for the declared type.
	ModeTypeDefault
	// ModeNull falls back to null.
	ModeNull
)

func (m Mode) String() string {
	switch m {
	case ModeSchemaDefault:
		return "schema-default"
	case ModeTypeDefault:
		return "type-default"
	case ModeNull:
		return "null"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "schema-default", "":
		return ModeSchemaDefault, nil
	case "type-default":
		return ModeTypeDefault, nil
	case "null":
		return ModeNull, nil
	}
	return 0, fmt.Errorf("formschema: unknown default mode %q", s)
}

// DefaultOptions configures DeriveDefault.
type DefaultOptions struct {
	Mode Mode
	// Definitions are visible to every "$ref"; the schema's own
	// definitions take precedence.
	Definitions Definitions
	// MaxRefDepth bounds nested reference/combinator expansion. Zero means
	// DefaultMaxDepth.
	MaxRefDepth int

	diag *simpleDiag
}

// DeriveDefault computes the default instance for schema. The boolean result
// is false when the default is absent, which only happens under
// ModeSchemaDefault (or for unresolvable references outside ModeNull).
//
// Resolution order for an object schema:
//  1. an explicit "default" is returned as a deep copy;
//  2. type "object" derives each property and drops absent ones;
//  3. type "array" replicates the item default minItems times, cycling
//     through tuple items;
//  4. "$ref" resolves the target and derives it, guarded against cycles;
//  5. "allOf" merges its branches and derives the result;
//  6. "oneOf" merges every branch (union, not selection) and derives it;
//  7. otherwise the mode fallback applies.
//
// Boolean schemas derive to themselves.
func DeriveDefault(schema Value, opts DefaultOptions) (any, bool) {
	d := deriver{mode: opts.Mode, maxDepth: opts.MaxRefDepth, diag: opts.diag}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultMaxDepth
	}
	return d.derive(schema, opts.Definitions, nil, 0)
}

// DefaultValue is DeriveDefault with absent mapped to nil.
func DefaultValue(schema Value, opts DefaultOptions) any {
	v, ok := DeriveDefault(schema, opts)
	if !ok {
		return nil
	}
	return v
}

// DeriveDefault derives the node's default with every definition visible from
// the node. Warnings go to the tree's diagnostics.
func (n *Node) DeriveDefault(mode Mode) (any, bool) {
	return DeriveDefault(n.value, DefaultOptions{
		Mode:        mode,
		Definitions: n.AllDefinitions(),
		MaxRefDepth: n.tree.maxDepth,
		diag:        &n.tree.diag,
	})
}

type deriver struct {
	mode     Mode
	maxDepth int
	diag     *simpleDiag
}

func (d *deriver) derive(v Value, defs Definitions, visited RefSet, depth int) (any, bool) {
	if v.IsBool() {
		return v.Bool(), true
	}
	if v.Has(kwDefinitions) || v.Has(kwDefs) {
		defs = overlay(defs, collectDefinitions(v))
	}
	if dv, ok := v.Keyword(kwDefault); ok {
		return merge.Copy(dv), true
	}
	switch v.Type() {
	case string(SubTypeObject):
		return d.object(v, defs, visited, depth)
	case string(SubTypeArray):
		return d.array(v, defs, visited, depth)
	}
	if ref := v.Ref(); ref != "" {
		return d.ref(ref, defs, visited, depth)
	}
	if v.Has(kwAllOf) {
		if depth >= d.maxDepth {
			d.diag.warnf("depth limit %d reached deriving allOf", d.maxDepth)
			return d.fallback(v.without(kwAllOf))
		}
		merged, visited := d.mergeAllOf(v, defs, visited)
		return d.derive(merged, defs, visited, depth+1)
	}
	if v.Has(kwOneOf) {
		if depth >= d.maxDepth {
			d.diag.warnf("depth limit %d reached deriving oneOf", d.maxDepth)
			return d.fallback(v.without(kwOneOf))
		}
		split := SplitOneOf(v)
		branches := make([]any, len(split))
		for i, b := range split {
			branches[i] = b.Raw()
		}
		merged, visited := d.mergeAllOf(Object(map[string]any{kwAllOf: branches}), defs, visited)
		return d.derive(merged, defs, visited, depth+1)
	}
	return d.fallback(v)
}

func (d *deriver) object(v Value, defs Definitions, visited RefSet, depth int) (any, bool) {
	props, ok := v.obj[kwProperties].(map[string]any)
	if !ok {
		return d.fallback(v)
	}
	out := make(map[string]any, len(props))
	for key, raw := range props {
		pv, ok := ValueOf(raw)
		if !ok {
			continue
		}
		if val, ok := d.derive(pv, defs, visited, depth); ok {
			out[key] = val
		}
	}
	if len(out) == 0 {
		return d.fallback(v)
	}
	return out, true
}

// slot is the derived default of one item schema.
type slot struct {
	schema  Value
	val     any
	present bool
}

func (d *deriver) array(v Value, defs Definitions, visited RefSet, depth int) (any, bool) {
	items, ok := v.obj[kwItems]
	if !ok {
		return d.fallback(v)
	}
	var slots []slot
	switch t := items.(type) {
	case []any:
		for _, raw := range t {
			iv, ok := ValueOf(raw)
			if !ok {
				iv = Empty()
			}
			val, present := d.derive(iv, defs, visited, depth)
			slots = append(slots, slot{schema: iv, val: val, present: present})
		}
	default:
		iv, ok := ValueOf(items)
		if !ok {
			return d.fallback(v)
		}
		val, present := d.derive(iv, defs, visited, depth)
		slots = []slot{{schema: iv, val: val, present: present}}
	}
	if len(slots) == 0 {
		slots = []slot{{schema: Empty()}}
	}

	count := minItems(v)
	if count > maxDefaultItems {
		d.diag.warnf("minItems above %d capped while deriving default", maxDefaultItems)
		count = maxDefaultItems
	}
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		s := slots[i%len(slots)]
		if s.present {
			out = append(out, merge.Copy(s.val))
			continue
		}
		if fb, ok := d.fallback(s.schema); ok {
			out = append(out, fb)
		}
	}
	return out, true
}

// maxDefaultItems caps the number of replicated array items.
const maxDefaultItems = 1024

// minItems reads "minItems" as a non-negative integer count. Values beyond
// maxDefaultItems are reported as maxDefaultItems+1 so the cast cannot
// overflow.
func minItems(v Value) int {
	var n float64
	switch t := v.obj[kwMinItems].(type) {
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	default:
		return 0
	}
	switch {
	case !(n > 0):
		return 0
	case n > maxDefaultItems:
		return maxDefaultItems + 1
	}
	return int(n)
}

func (d *deriver) ref(ref string, defs Definitions, visited RefSet, depth int) (any, bool) {
	if visited.Has(ref) {
		d.diag.warnf("cyclic $ref %q while deriving default", ref)
		return d.refFallback()
	}
	if depth >= d.maxDepth {
		d.diag.warnf("depth limit %d reached at $ref %q", d.maxDepth, ref)
		return d.refFallback()
	}
	// One hop at a time: a chained target re-enters ref with visited grown,
	// so a loop anywhere in the chain ends in refFallback.
	target, found := resolveRef(ref, defs, false, nil)
	if !found {
		d.diag.warnf("unresolved $ref %q while deriving default", ref)
		return d.refFallback()
	}
	return d.derive(target, defs, visited.With(ref), depth+1)
}

// mergeAllOf is MergeAllOf with pure reference branches resolved first. The
// resolved references join visited.
func (d *deriver) mergeAllOf(v Value, defs Definitions, visited RefSet) (Value, RefSet) {
	branches, _ := v.obj[kwAllOf].([]any)
	srcs := make([]map[string]any, 0, len(branches)+1)
	srcs = append(srcs, merge.Without(v.obj, kwAllOf))
	for _, b := range branches {
		bv, ok := ValueOf(b)
		if !ok || bv.IsBool() {
			continue
		}
		bv, visited = d.inlineRef(bv, defs, visited)
		if bv.IsBool() {
			continue
		}
		srcs = append(srcs, bv.obj)
	}
	return Object(merge.Maps(srcs...)), visited
}

func (d *deriver) inlineRef(v Value, defs Definitions, visited RefSet) (Value, RefSet) {
	for {
		ref := v.Ref()
		if ref == "" {
			return v, visited
		}
		siblings := v.without(kwRef)
		if visited.Has(ref) {
			d.diag.warnf("cyclic $ref %q in allOf dropped", ref)
			return siblings, visited
		}
		target, found := resolveRef(ref, defs, false, nil)
		if !found {
			d.diag.warnf("unresolved $ref %q in allOf", ref)
			return siblings, visited
		}
		visited = visited.With(ref)
		if target.IsBool() {
			return siblings, visited
		}
		v = Object(merge.Maps(target.obj, siblings.obj))
	}
}

// fallback is the mode-specific default of a schema without one.
func (d *deriver) fallback(v Value) (any, bool) {
	switch d.mode {
	case ModeNull:
		return nil, true
	case ModeTypeDefault:
		return typeDefault(v), true
	}
	return nil, false
}

// refFallback applies to references that cannot be expanded.
func (d *deriver) refFallback() (any, bool) {
	if d.mode == ModeNull {
		return nil, true
	}
	return nil, false
}

// typeDefault is the zero value of the schema's declared type.
func typeDefault(v Value) any {
	switch v.SubType() {
	case SubTypeString:
		if enum, ok := v.obj[kwEnum].([]any); ok && len(enum) > 0 {
			if s, ok := enum[0].(string); ok {
				return s
			}
		}
		return ""
	case SubTypeNumber, SubTypeInteger:
		return float64(0)
	case SubTypeBoolean:
		return false
	case SubTypeArray:
		return []any{}
	case SubTypeObject:
		return map[string]any{}
	}
	return nil
}
