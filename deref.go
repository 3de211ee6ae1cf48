package formschema

import (
	"github.com/reoring/formschema/internal/merge"
)

// ToDereferencedJSON resolves the node's own "$ref" chain. The target is
// merged beneath the sibling keywords, so siblings win on conflict. Nested
// properties and items keep their references.
//
// Unresolvable references leave the value unchanged; a cycle ends the chain
// with the siblings collected so far.
func (n *Node) ToDereferencedJSON() Value {
	v, _ := n.dereference(n.value, nil)
	return v
}

// ToDereferenced wraps ToDereferencedJSON in a node at the same location.
func (n *Node) ToDereferenced() *Node {
	return n.cloneWith(n.ToDereferencedJSON())
}

// Dereference replaces the node's value with its dereferenced form. Cached
// sub-schemas and the compiled checker are dropped. It must not run
// concurrently with other calls on n.
func (n *Node) Dereference() {
	v := n.ToDereferencedJSON()
	n.mu.Lock()
	defer n.mu.Unlock()
	n.value = v
	n.children = nil
	n.compiled, n.checker, n.checkErr = false, nil, nil
	n.defs = overlay(collectDefinitions(v), n.extra)
}

// dereference expands v's reference chain and returns the references it
// followed on top of seen.
func (n *Node) dereference(v Value, seen RefSet) (Value, RefSet) {
	for {
		ref := v.Ref()
		if !v.IsObject() || ref == "" {
			return v, seen
		}
		siblings := v.without(kwRef)
		if seen.Has(ref) {
			n.tree.diag.warnf("cyclic $ref %q at %s dropped", ref, n.path)
			return siblings, seen
		}
		target, ok := n.Definition(ref)
		if !ok {
			n.tree.diag.warnf("unresolved $ref %q at %s", ref, n.path)
			return v, seen
		}
		seen = seen.With(ref)
		if target.IsBool() {
			if len(siblings.obj) == 0 {
				return target, seen
			}
			return siblings, seen
		}
		v = Object(merge.Maps(target.obj, siblings.obj))
	}
}

// ToDeepDereferencedJSON inlines references through the whole schema. At
// every level allOf is merged and the reference chain expanded, then
// properties and items are processed the same way. Definition maps are
// stripped from the output. A reference already on the current path is
// dropped, which keeps recursive schemas finite.
func (n *Node) ToDeepDereferencedJSON() Value {
	return n.deepDereference(nil, 0)
}

func (n *Node) deepDereference(seen RefSet, depth int) Value {
	if n.value.IsBool() {
		return n.value
	}
	if depth > n.tree.maxDepth {
		n.tree.diag.warnf("depth limit %d reached at %s", n.tree.maxDepth, n.path)
		return Object(merge.Without(n.value.obj, kwRef, kwDefinitions, kwDefs))
	}

	v := n.value
	for i := 0; i <= n.tree.maxDepth; i++ {
		v, seen = n.dereference(MergeAllOf(v), seen)
		if !v.Has(kwAllOf) {
			break
		}
	}
	if v.IsBool() {
		return v
	}

	cur := n
	if v.Has(kwProperties) || v.Has(kwItems) {
		cur = n.cloneWith(v)
	}
	out := merge.Without(v.obj, kwDefinitions, kwDefs)

	if props, ok := v.obj[kwProperties].(map[string]any); ok {
		np := make(map[string]any, len(props))
		for key, raw := range props {
			child, ok := cur.SubSchema(propertyPointer(key))
			if !ok {
				np[key] = merge.Copy(raw)
				continue
			}
			np[key] = child.deepDereference(seen, depth+1).Raw()
		}
		out[kwProperties] = np
	}

	switch items := v.obj[kwItems].(type) {
	case []any:
		ni := make([]any, len(items))
		for i, raw := range items {
			child, ok := cur.SubSchema(itemPointer(i))
			if !ok {
				ni[i] = merge.Copy(raw)
				continue
			}
			ni[i] = child.deepDereference(seen, depth+1).Raw()
		}
		out[kwItems] = ni
	case map[string]any, bool:
		if child, ok := cur.SubSchema("#/" + kwItems); ok {
			out[kwItems] = child.deepDereference(seen, depth+1).Raw()
		}
	}
	return Object(out)
}
