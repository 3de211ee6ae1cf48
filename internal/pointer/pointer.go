// Package pointer splits and joins the JSON-Pointer-like strings used to
// address schema locations ("#/properties/name") and value locations
// ("/items/2/price"). Segments are escaped per RFC 6901.
package pointer

import (
	"strconv"
	"strings"
)

// Escape escapes '~' -> '~0' and '/' -> '~1'.
func Escape(seg string) string {
	if !strings.ContainsAny(seg, "~/") {
		return seg
	}
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~", "~0"), "/", "~1")
}

// Unescape reverses Escape. Order matters: '~1' first, then '~0'.
func Unescape(seg string) string {
	if !strings.Contains(seg, "~") {
		return seg
	}
	return strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
}

// SplitFragment splits "#/a/b" into its raw (still escaped) segments.
// It reports false when the input is not a fragment pointer.
func SplitFragment(p string) ([]string, bool) {
	if p == "#" {
		return nil, true
	}
	if !strings.HasPrefix(p, "#/") {
		return nil, false
	}
	return strings.Split(p[2:], "/"), true
}

// Split splits an instance pointer ("/a/0") into unescaped segments. The
// empty pointer and "/" address the document root.
func Split(p string) []string {
	if p == "" || p == "/" {
		return nil
	}
	raw := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Unescape(s)
	}
	return out
}

// Join builds an instance pointer from unescaped segments.
func Join(segs ...string) string {
	if len(segs) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(Escape(s))
	}
	return b.String()
}

// Leaf returns the last unescaped segment of a pointer, or "" for the root.
func Leaf(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return Unescape(p[i+1:])
}

// Index parses a list index segment. Negative and non-numeric segments are
// rejected.
func Index(seg string) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
