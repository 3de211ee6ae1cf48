package formschema

import (
	"github.com/reoring/formschema/internal/pointer"
)

// Definitions maps a reference key to a schema value. Keys are local
// pointers ("#/definitions/address", "#/$defs/address") or identifiers such
// as an "$id" URL.
type Definitions map[string]Value

// collectDefinitions gathers the definitions a value declares itself.
func collectDefinitions(v Value) Definitions {
	out := Definitions{}
	if !v.IsObject() {
		return out
	}
	for _, kw := range [...]string{kwDefinitions, kwDefs} {
		m, ok := v.obj[kw].(map[string]any)
		if !ok {
			continue
		}
		for name, raw := range m {
			if dv, ok := ValueOf(raw); ok {
				out["#/"+kw+"/"+pointer.Escape(name)] = dv
			}
		}
	}
	return out
}

// overlay returns base with top applied over it; neither input is modified.
func overlay(base, top Definitions) Definitions {
	if len(top) == 0 {
		return base
	}
	out := make(Definitions, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// RefSet is the set of reference identifiers already on the active
// resolution path. It is copy-on-branch: With never mutates the receiver, so
// sibling branches do not observe each other's visits.
type RefSet map[string]struct{}

// Has reports whether ref is on the path.
func (s RefSet) Has(ref string) bool {
	_, ok := s[ref]
	return ok
}

// With returns a new set holding s plus ref.
func (s RefSet) With(ref string) RefSet {
	out := make(RefSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[ref] = struct{}{}
	return out
}

// ResolveLocalRef resolves a local pointer against defs. It never fails: a
// missing target, a non-schema target or a revisit of a reference already in
// visited yields the empty schema {}. Namespaced pointers such as
// "#/definitions/ns/definitions/item" walk nested definition maps. When
// recursive is set and the target is itself a pure reference, resolution
// continues until a non-reference value is reached.
func ResolveLocalRef(ref string, defs Definitions, recursive bool, visited RefSet) Value {
	v, _ := resolveRef(ref, defs, recursive, visited)
	return v
}

// resolveRef is ResolveLocalRef reporting whether ref itself was located.
func resolveRef(ref string, defs Definitions, recursive bool, visited RefSet) (Value, bool) {
	if visited.Has(ref) {
		return Empty(), true
	}
	visited = visited.With(ref)
	target, ok := lookupDefinition(ref, defs)
	if !ok {
		return Empty(), false
	}
	if recursive {
		if next := target.Ref(); next != "" {
			v, _ := resolveRef(next, defs, true, visited)
			return v, true
		}
	}
	return target, true
}

// lookupDefinition finds ref in defs, walking nested definition maps for
// namespaced pointers. After the first name, segments alternate between a
// "definitions"/"$defs" separator and a member name, so a member may itself
// be called "definitions".
func lookupDefinition(ref string, defs Definitions) (Value, bool) {
	if v, ok := defs[ref]; ok {
		return v, true
	}
	segs, ok := pointer.SplitFragment(ref)
	if !ok || len(segs) < 2 || (segs[0] != kwDefinitions && segs[0] != kwDefs) {
		return Value{}, false
	}
	cur, ok := defs["#/"+kwDefinitions+"/"+segs[1]]
	if !ok {
		if cur, ok = defs["#/"+kwDefs+"/"+segs[1]]; !ok {
			return Value{}, false
		}
	}
	rest := segs[2:]
	if len(rest)%2 != 0 {
		return Value{}, false
	}
	for i := 0; i < len(rest); i += 2 {
		kw := rest[i]
		if kw != kwDefinitions && kw != kwDefs {
			return Value{}, false
		}
		if cur.IsBool() {
			return cur, true
		}
		m, ok := cur.obj[kw].(map[string]any)
		if !ok {
			return Value{}, false
		}
		next, found := ValueOf(m[pointer.Unescape(rest[i+1])])
		if !found {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Definition finds a definition visible from n: the node's own map first,
// then each ancestor, so the closest declaration wins. Namespaced pointers
// fall back to a walk of the merged view.
func (n *Node) Definition(name string) (Value, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.defs[name]
		cur.mu.Unlock()
		if ok {
			return v, true
		}
	}
	return lookupDefinition(name, n.AllDefinitions())
}

// AllDefinitions merges every definition visible from n, from the root down.
func (n *Node) AllDefinitions() Definitions {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := Definitions{}
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		c.mu.Lock()
		for k, v := range c.defs {
			out[k] = v
		}
		c.mu.Unlock()
	}
	return out
}

// RegisterDefinition adds an externally supplied definition to n. The key is
// name, or the value's "$id" when name is empty. Boolean definitions need an
// explicit name.
//
// Register before validating: compiled checkers are not rebuilt for nodes
// that already compiled.
func (n *Node) RegisterDefinition(v Value, name string) error {
	key := name
	if key == "" && v.IsObject() {
		key, _ = v.obj[kwID].(string)
	}
	if key == "" {
		return ErrUnnamedDefinition
	}
	n.mu.Lock()
	n.defs[key] = v
	n.extra[key] = v
	n.compiled = false
	n.mu.Unlock()
	return nil
}

// MustRegisterDefinition is like RegisterDefinition but panics on error.
func (n *Node) MustRegisterDefinition(v Value, name string) {
	if err := n.RegisterDefinition(v, name); err != nil {
		panic(err)
	}
}
