package merge

// Copy returns a deep copy of a JSON-shaped value. Maps and slices are
// duplicated; scalars are returned as is.
func Copy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Copy(t[i])
		}
		return out
	default:
		return v
	}
}

// CopyMap deep-copies a map. A nil map yields nil.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Copy(v)
	}
	return out
}

// Without returns a shallow copy of m with the given keys removed.
func Without(m map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Maps deep-merges srcs, left to right, into a fresh map. Nested maps merge
// recursively, lists are replaced wholesale and scalars from later sources
// overwrite earlier ones. None of the inputs are modified.
func Maps(srcs ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, src := range srcs {
		into(out, src)
	}
	return out
}

func into(dst, src map[string]any) {
	for k, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		if !srcIsMap {
			dst[k] = Copy(sv)
			continue
		}
		dm, dstIsMap := dst[k].(map[string]any)
		if !dstIsMap {
			dst[k] = CopyMap(sm)
			continue
		}
		into(dm, sm)
	}
}
