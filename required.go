package formschema

import "math"

// IsRequired reports whether the property this node describes must be
// present. The node's leaf segment is checked against the parent's
// "required" list. The parent's "dependentRequired" is read in both
// directions against value, the parent object's current data:
//   - the property is listed under a trigger that is set to a truthy value;
//   - the property is itself a key and every property in its list is set
//     to a truthy value.
func (n *Node) IsRequired(value any) bool {
	p := n.parent
	if p == nil || !p.value.IsObject() {
		return false
	}
	name := n.LeafPath()
	if req, ok := p.value.obj[kwRequired].([]any); ok && containsName(req, name) {
		return true
	}
	deps, ok := p.value.obj[kwDependentRequired].(map[string]any)
	if !ok {
		return false
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return false
	}
	for key, raw := range deps {
		list, ok := raw.([]any)
		if !ok {
			continue
		}
		if key == name && allTruthy(obj, list) {
			return true
		}
		if truthy(obj[key]) && containsName(list, name) {
			return true
		}
	}
	return false
}

func containsName(list []any, name string) bool {
	for _, r := range list {
		if s, ok := r.(string); ok && s == name {
			return true
		}
	}
	return false
}

// allTruthy reports whether every named property of obj is truthy. An empty
// list holds vacuously.
func allTruthy(obj map[string]any, names []any) bool {
	for _, r := range names {
		s, ok := r.(string)
		if !ok || !truthy(obj[s]) {
			return false
		}
	}
	return true
}

// truthy follows JSON data conventions: null, false, 0, NaN and "" are falsy;
// containers are truthy even when empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	}
	return true
}
