package formschema

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/formschema/internal/merge"
	"github.com/reoring/formschema/internal/pointer"
)

// Validator compiles schema values into checkers.
type Validator interface {
	// Compile prepares schema for validation. defs holds every definition
	// visible from the schema's location.
	Compile(schema Value, defs Definitions) (Checker, error)
}

// Checker validates instances against one compiled schema.
type Checker interface {
	// Validate returns nil on success and Issues on violations.
	Validate(instance any) error
}

// documentURL is the base URL of the compiled in-memory document.
const documentURL = "mem://formschema/schema.json"

type draftValidator struct {
	draft *jsonschema.Draft
}

// NewValidator returns the default JSON Schema (draft 2019-09) validator.
func NewValidator() Validator { return draftValidator{draft: jsonschema.Draft2019} }

func (v draftValidator) Compile(schema Value, defs Definitions) (Checker, error) {
	if schema.IsBool() {
		return boolChecker(schema.Bool()), nil
	}
	c := jsonschema.NewCompiler()
	c.Draft = v.draft

	doc := merge.Without(schema.obj)
	local := map[string]map[string]any{}
	for key, def := range defs {
		switch {
		case strings.HasPrefix(key, "#/"):
			segs, _ := pointer.SplitFragment(key)
			if len(segs) != 2 || (segs[0] != kwDefinitions && segs[0] != kwDefs) {
				continue
			}
			m, ok := local[segs[0]]
			if !ok {
				m = map[string]any{}
				if own, ok := doc[segs[0]].(map[string]any); ok {
					for k, d := range own {
						m[k] = d
					}
				}
				local[segs[0]] = m
			}
			name := pointer.Unescape(segs[1])
			if _, own := m[name]; !own {
				m[name] = def.Raw()
			}
		default:
			if err := addResource(c, resourceURL(key), def.Raw()); err != nil {
				return nil, err
			}
		}
	}
	for kw, m := range local {
		doc[kw] = m
	}
	if err := addResource(c, documentURL, doc); err != nil {
		return nil, err
	}
	s, err := c.Compile(documentURL)
	if err != nil {
		return nil, fmt.Errorf("formschema: compile schema: %w", err)
	}
	return compiledChecker{s: s}, nil
}

// resourceURL places identifiers that are not absolute URLs next to the
// document, so a "$ref" to the bare name resolves to them.
func resourceURL(key string) string {
	if i := strings.IndexByte(key, '#'); i >= 0 {
		key = key[:i]
	}
	if strings.Contains(key, "://") {
		return key
	}
	return "mem://formschema/" + strings.TrimPrefix(key, "/")
}

func addResource(c *jsonschema.Compiler, url string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("formschema: encode schema %s: %w", url, err)
	}
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("formschema: add resource %s: %w", url, err)
	}
	return nil
}

type boolChecker bool

func (b boolChecker) Validate(any) error {
	if b {
		return nil
	}
	return Issues{{Code: CodeFalseSchema, Message: "no value is allowed"}}
}

type compiledChecker struct {
	s *jsonschema.Schema
}

func (c compiledChecker) Validate(instance any) error {
	doc, err := normalize(instance)
	if err != nil {
		return err
	}
	err = c.s.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	return toIssues(ve)
}

// normalize converts an arbitrary Go value to the JSON data model.
func normalize(instance any) (any, error) {
	b, err := json.Marshal(instance)
	if err != nil {
		return nil, fmt.Errorf("formschema: encode instance: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("formschema: decode instance: %w", err)
	}
	return out, nil
}

// quotedName matches the quoted property names in a "missing properties"
// message.
var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)

// toIssues flattens the validation tree into its leaves.
func toIssues(ve *jsonschema.ValidationError) Issues {
	var out Issues
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, leafIssues(e)...)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

func leafIssues(e *jsonschema.ValidationError) []Issue {
	code := pointer.Leaf(e.KeywordLocation)
	if e.Message == "not allowed" {
		code = CodeFalseSchema
	}
	base := Issue{
		Path:        e.InstanceLocation,
		Code:        code,
		Message:     e.Message,
		KeywordPath: e.KeywordLocation,
	}
	if code != CodeRequired {
		return []Issue{base}
	}
	names := quotedName.FindAllStringSubmatch(e.Message, -1)
	if len(names) == 0 {
		return []Issue{base}
	}
	out := make([]Issue, 0, len(names))
	for _, m := range names {
		name := strings.ReplaceAll(m[1], `\'`, `'`)
		it := base
		it.Message = fmt.Sprintf("missing property %q", name)
		it.Params = map[string]any{"missingProperty": name}
		out = append(out, it)
	}
	return out
}
