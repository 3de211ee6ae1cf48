package dupkey

import (
	"bytes"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/formschema/internal/pointer"
)

// Finding reports one duplicated object key. Path is the JSON Pointer of the
// object that carries the duplicate.
type Finding struct {
	Path string
	Key  string
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	seg          string // segment of this container within its parent
	next         int    // next array index
	key          string // current object key
}

// Detect scans JSON bytes and returns the duplicated keys it finds. max < 0
// means unlimited; 0 disables detection. Syntax errors are returned as is so
// the caller can report them through its own decoder.
func Detect(data []byte, max int) ([]Finding, error) {
	if max == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		out   []Finding
		stack []frame
	)
	path := func() string {
		segs := make([]string, 0, len(stack))
		for _, f := range stack[1:] {
			segs = append(segs, f.seg)
		}
		return pointer.Join(segs...)
	}
	// childSeg computes the segment a new value takes inside the current top.
	childSeg := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			s := strconv.Itoa(top.next)
			top.next++
			return s
		}
		top.expectingKey = true
		return top.key
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				seg := childSeg()
				stack = append(stack, frame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true, seg: seg})
			case '[':
				seg := childSeg()
				stack = append(stack, frame{kind: kindArray, seg: seg})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		case string:
			if n := len(stack); n > 0 {
				top := &stack[n-1]
				if top.kind == kindObject && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						out = append(out, Finding{Path: path(), Key: v})
						if max > 0 && len(out) >= max {
							return out, nil
						}
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			childSeg()
		default:
			childSeg()
		}
	}
}
