package formschema

import (
	"strconv"

	"github.com/reoring/formschema/internal/merge"
)

// MergeAllOf folds "allOf" into one schema: the sibling keywords first, then
// every branch in order. Objects merge recursively, lists are replaced and
// later scalars win. Boolean branches, false included, contribute nothing.
func MergeAllOf(v Value) Value {
	raw, ok := v.Keyword(kwAllOf)
	if !ok {
		return v
	}
	branches, _ := raw.([]any)
	srcs := make([]map[string]any, 0, len(branches)+1)
	srcs = append(srcs, merge.Without(v.obj, kwAllOf))
	for _, b := range branches {
		bv, ok := ValueOf(b)
		if !ok || bv.IsBool() {
			continue
		}
		srcs = append(srcs, bv.obj)
	}
	return Object(merge.Maps(srcs...))
}

// SplitOneOf returns one schema per "oneOf" branch with the sibling keywords
// merged beneath the branch. Boolean branches are returned unchanged. A value
// without oneOf yields itself.
func SplitOneOf(v Value) []Value {
	raw, ok := v.Keyword(kwOneOf)
	if !ok {
		return []Value{v}
	}
	rest := merge.Without(v.obj, kwOneOf)
	branches, ok := raw.([]any)
	if !ok {
		return []Value{Object(rest)}
	}
	out := make([]Value, 0, len(branches))
	for _, b := range branches {
		bv, ok := ValueOf(b)
		if !ok {
			continue
		}
		if bv.IsBool() {
			out = append(out, bv)
			continue
		}
		out = append(out, Object(merge.Maps(rest, bv.obj)))
	}
	return out
}

// ApplyConditionFor evaluates the node's if/then/else against value. Without
// both "if" and "then" it returns n itself. Otherwise the conditional
// keywords are removed and the selected branch ("then" when value validates
// against "if", else "else" when present) is merged over the rest. A failure
// to compile the "if" schema counts as a failed condition.
func (n *Node) ApplyConditionFor(value any) *Node {
	if !n.value.Has(kwIf) || !n.value.Has(kwThen) {
		return n
	}
	stripped := n.value.without(kwIf, kwThen, kwElse)
	ifNode, okIf := n.SubSchema("#/" + kwIf)
	thenNode, okThen := n.SubSchema("#/" + kwThen)
	if !okIf || !okThen {
		return n.cloneWith(stripped)
	}
	branch := thenNode
	if ifNode.Validate(value) != nil {
		elseNode, ok := n.SubSchema("#/" + kwElse)
		if !ok {
			return n.cloneWith(stripped)
		}
		branch = elseNode
	}
	if branch.value.IsBool() {
		return n.cloneWith(stripped)
	}
	return n.cloneWith(Object(merge.Maps(stripped.obj, branch.value.obj)))
}

// ToMergedJSON is MergeAllOf of the node's value.
func (n *Node) ToMergedJSON() Value { return MergeAllOf(n.value) }

// ToResolvedJSON folds allOf for a concrete value: each branch is
// conditioned on value and dereferenced before it is merged. Branches that
// introduce further allOf are folded again, up to the depth bound.
func (n *Node) ToResolvedJSON(value any) Value {
	return n.resolveAllOf(value, 0)
}

// ToResolved wraps ToResolvedJSON in a node at the same location.
func (n *Node) ToResolved(value any) *Node {
	return n.cloneWith(n.ToResolvedJSON(value))
}

func (n *Node) resolveAllOf(value any, depth int) Value {
	raw, ok := n.value.Keyword(kwAllOf)
	if !ok {
		return n.value
	}
	if depth >= n.tree.maxDepth {
		n.tree.diag.warnf("depth limit %d reached resolving allOf at %s", n.tree.maxDepth, n.path)
		return MergeAllOf(n.value)
	}
	branches, _ := raw.([]any)
	srcs := []map[string]any{merge.Without(n.value.obj, kwAllOf)}
	for i := range branches {
		sub, ok := n.SubSchema("#/" + kwAllOf + "/" + strconv.Itoa(i))
		if !ok {
			continue
		}
		d := sub.ApplyConditionFor(value).ToDereferencedJSON()
		if d.IsBool() {
			continue
		}
		srcs = append(srcs, d.obj)
	}
	merged := Object(merge.Maps(srcs...))
	if !merged.Has(kwAllOf) {
		return merged
	}
	return n.cloneWith(merged).resolveAllOf(value, depth+1)
}
