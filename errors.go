package formschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/formschema/internal/pointer"
)

// Issue codes are JSON Schema keyword names; the most common are listed here
// for IDE completion.
const (
	CodeRequired      = "required"
	CodeType          = "type"
	CodeEnum          = "enum"
	CodeConst         = "const"
	CodeMinLength     = "minLength"
	CodeMaxLength     = "maxLength"
	CodePattern       = "pattern"
	CodeFormat        = "format"
	CodeMinimum       = "minimum"
	CodeMaximum       = "maximum"
	CodeMinItems      = "minItems"
	CodeMaxItems      = "maxItems"
	CodeFalseSchema   = "false"
	CodeSchemaInvalid = "schema_invalid"
)

// ErrUnnamedDefinition is returned when a definition is registered with
// neither an explicit name nor an "$id".
var ErrUnnamedDefinition = errors.New("formschema: cannot register an unnamed definition; provide a name or an $id")

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer of the instance location (for example: /items/2/price).
	Code    string // Failing keyword.
	Message string
	// KeywordPath is the schema location of the failing keyword, when known.
	KeywordPath string
	// Params carries structured parameters such as {"missingProperty": "name"}.
	Params map[string]any
}

// ValuePath returns the JSON Pointer of the value the issue is about. For
// "required" the instance location is the parent object, so the missing
// property is appended.
func (it Issue) ValuePath() string {
	if it.Code == CodeRequired {
		if p, ok := it.Params["missingProperty"].(string); ok {
			return it.Path + pointer.Join(p)
		}
	}
	return it.Path
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		path := it.ValuePath()
		if path == "" {
			path = "/"
		}
		// e.g. required at /name
		fmt.Fprintf(b, "%s at %s", it.Code, path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// At returns the issues whose ValuePath equals path.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.ValuePath() == path {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
