package form

import (
	"strings"

	"github.com/reoring/formschema/internal/pointer"
)

// splitPath splits a dot path ("address.lines.0", "address.lines[0]") into
// segments. A leading dot is ignored; "" addresses the whole value.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return nil
	}
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	return strings.Split(path, ".")
}

// valuePointer converts a dot path into the JSON Pointer used by issues.
func valuePointer(path string) string { return pointer.Join(splitPath(path)...) }

// getPath reads the value at segs; missing locations yield nil.
func getPath(cur any, segs []string) any {
	for _, seg := range segs {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[seg]
		case []any:
			i, ok := pointer.Index(seg)
			if !ok || i >= len(c) {
				return nil
			}
			cur = c[i]
		default:
			return nil
		}
	}
	return cur
}

// setPath returns a copy of cur with v stored at segs. Containers along the
// path are copied, never mutated; missing ones are created as lists for
// index segments and as objects otherwise.
func setPath(cur any, segs []string, v any) any {
	if len(segs) == 0 {
		return v
	}
	seg, rest := segs[0], segs[1:]
	switch c := cur.(type) {
	case map[string]any:
		out := make(map[string]any, len(c)+1)
		for k, e := range c {
			out[k] = e
		}
		out[seg] = setPath(c[seg], rest, v)
		return out
	case []any:
		i, ok := pointer.Index(seg)
		if !ok {
			return c
		}
		n := max(len(c), i+1)
		out := make([]any, n)
		copy(out, c)
		out[i] = setPath(out[i], rest, v)
		return out
	}
	if i, ok := pointer.Index(seg); ok {
		out := make([]any, i+1)
		out[i] = setPath(nil, rest, v)
		return out
	}
	return map[string]any{seg: setPath(nil, rest, v)}
}
