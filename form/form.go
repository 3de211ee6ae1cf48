// Package form orchestrates a schema tree and a value store the way a form
// renderer drives them: derive defaults when the schema changes, read and
// write field values by dot path, resolve field schemas and validate.
package form

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/reoring/formschema"
	"github.com/reoring/formschema/i18n"
	"github.com/reoring/formschema/internal/merge"
	"github.com/reoring/formschema/internal/pointer"
)

// Options configures New.
type Options struct {
	// Schema is a bool, a map[string]any or a formschema.Value.
	Schema any
	// DefaultValue replaces the derived default at construction when non-nil.
	DefaultValue any
	// References are external schemas, registered under their "$id" or,
	// without one, under their key.
	References formschema.Definitions
	// Mode selects how defaults are derived.
	Mode formschema.Mode
	// NewStore builds the state store; nil selects NewMemoryStore.
	NewStore func(State) Store
	// Validator replaces the default JSON Schema validator.
	Validator formschema.Validator
	// MaxDepth bounds reference expansion; zero keeps the library default.
	MaxDepth int
}

// Form binds a schema tree to a value store.
type Form struct {
	opts  Options
	store Store
	mu    sync.Mutex // serializes read-modify-write updates

	viewMu sync.Mutex
	views  map[string]*formschema.Node // FieldSchema results by dot path
}

// New builds a form, derives its initial value and returns it.
func New(opts Options) (*Form, error) {
	newStore := opts.NewStore
	if newStore == nil {
		newStore = NewMemoryStore
	}
	f := &Form{opts: opts, store: newStore(State{})}
	if err := f.SetSchema(opts.Schema); err != nil {
		return nil, err
	}
	if opts.DefaultValue != nil {
		f.SetValue(merge.Copy(opts.DefaultValue))
	}
	return f, nil
}

// Store exposes the underlying store, for subscriptions.
func (f *Form) Store() Store { return f.store }

// State returns the current state.
func (f *Form) State() State { return f.store.State() }

func (f *Form) update(fn func(*State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.store.State()
	fn(&s)
	f.store.SetState(s)
}

func (f *Form) nodeOptions() []formschema.Option {
	var out []formschema.Option
	if f.opts.Validator != nil {
		out = append(out, formschema.WithValidator(f.opts.Validator))
	}
	if f.opts.MaxDepth > 0 {
		out = append(out, formschema.WithMaxDepth(f.opts.MaxDepth))
	}
	return out
}

// SetSchema replaces the schema, registers references and resets the value
// to the schema's derived default (nil when absent). Errors are cleared.
func (f *Form) SetSchema(raw any) error {
	root := formschema.New(raw, f.nodeOptions()...)
	for key, ref := range f.opts.References {
		name := key
		if id, _ := ref.Map()["$id"].(string); id != "" {
			name = id
		}
		if err := root.RegisterDefinition(ref, name); err != nil {
			return fmt.Errorf("form: register reference %q: %w", key, err)
		}
	}
	for _, def := range root.AllDefinitions() {
		if id, _ := def.Map()["$id"].(string); id != "" {
			if err := root.RegisterDefinition(def, id); err != nil {
				return fmt.Errorf("form: register definition %q: %w", id, err)
			}
		}
	}
	value, _ := root.DeriveDefault(f.opts.Mode)
	f.viewMu.Lock()
	f.views = nil
	f.viewMu.Unlock()
	f.update(func(s *State) {
		s.Schema = root
		s.Value = value
		s.Errors = nil
	})
	return nil
}

// Schema returns the current schema tree.
func (f *Form) Schema() *formschema.Node { return f.store.State().Schema }

// Value returns the whole form value.
func (f *Form) Value() any { return f.store.State().Value }

// SetValue replaces the whole form value.
func (f *Form) SetValue(v any) {
	f.update(func(s *State) { s.Value = v })
}

// FieldValue reads the value at a dot path; "" returns the whole value and
// missing fields return nil.
func (f *Form) FieldValue(path string) any {
	return getPath(f.store.State().Value, splitPath(path))
}

// SetFieldValue writes v at a dot path, copying containers along the way. A
// scalar form value cannot hold fields and is left unchanged.
func (f *Form) SetFieldValue(path string, v any) {
	segs := splitPath(path)
	f.update(func(s *State) {
		if len(segs) == 0 {
			s.Value = v
			return
		}
		switch s.Value.(type) {
		case nil, map[string]any, []any:
			s.Value = setPath(s.Value, segs, v)
		}
	})
}

// SubSchema resolves a schema pointer against the current schema.
func (f *Form) SubSchema(ref string) (*formschema.Node, bool) {
	root := f.Schema()
	if root == nil {
		return nil, false
	}
	return root.Lookup(ref)
}

// RefSchema returns the definition visible from the root under ref.
func (f *Form) RefSchema(ref string) (formschema.Value, bool) {
	root := f.Schema()
	if root == nil {
		return formschema.Value{}, false
	}
	return root.Definition(ref)
}

// FieldSchema resolves the schema node of a field by dot path. Every level is
// dereferenced, allOf-resolved and conditioned on the current value before
// the next segment is looked up.
//
// The same *Node is returned for a path as long as the schema is unchanged
// and the field's resolved view (its schema and its parent's) is equal to
// the previous call's, so renderers may key on it.
func (f *Form) FieldSchema(path string) (*formschema.Node, bool) {
	st := f.store.State()
	if st.Schema == nil {
		return nil, false
	}
	cur := st.Schema
	var value any = st.Value
	for _, seg := range splitPath(path) {
		cur = settle(cur, value)
		next, ok := childFor(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
		value = getPath(value, []string{seg})
	}
	return f.stableView(path, cur), true
}

// stableView returns the node cached for path when it describes the same
// view as n, and caches n otherwise.
func (f *Form) stableView(path string, n *formschema.Node) *formschema.Node {
	f.viewMu.Lock()
	defer f.viewMu.Unlock()
	if prev, ok := f.views[path]; ok && sameView(prev, n) {
		return prev
	}
	if f.views == nil {
		f.views = make(map[string]*formschema.Node)
	}
	f.views[path] = n
	return n
}

func sameView(a, b *formschema.Node) bool {
	if a == b {
		return true
	}
	if a.Path() != b.Path() || !reflect.DeepEqual(a.ToJSON().Raw(), b.ToJSON().Raw()) {
		return false
	}
	ap, bp := a.Parent(), b.Parent()
	if ap == nil || bp == nil {
		return ap == bp
	}
	return reflect.DeepEqual(ap.ToJSON().Raw(), bp.ToJSON().Raw())
}

// settle returns the concrete view of n for value. Levels without "$ref",
// "allOf" or a condition are returned as is, keeping memoized children.
func settle(n *formschema.Node, value any) *formschema.Node {
	if n.ToJSON().Ref() != "" {
		n = n.ToDereferenced()
	}
	if n.ToJSON().Has("allOf") {
		n = n.ToResolved(value)
	}
	return n.ApplyConditionFor(value)
}

// childFor maps one value segment onto a sub-schema pointer.
func childFor(n *formschema.Node, seg string) (*formschema.Node, bool) {
	if c, ok := n.SubSchema("#/properties/" + pointer.Escape(seg)); ok {
		return c, true
	}
	if _, isIndex := pointer.Index(seg); !isIndex {
		return nil, false
	}
	if c, ok := n.SubSchema("#/items/" + seg); ok {
		return c, true
	}
	return n.SubSchema("#/items")
}

// IsRequired reports whether the field at a dot path is required given the
// current value of its parent object.
func (f *Form) IsRequired(path string) bool {
	segs := splitPath(path)
	if len(segs) == 0 {
		return false
	}
	n, ok := f.FieldSchema(path)
	if !ok {
		return false
	}
	return n.IsRequired(getPath(f.Value(), segs[:len(segs)-1]))
}

// Validate checks the value against the schema, stores the resulting issues
// and returns them (nil when valid).
func (f *Form) Validate() formschema.Issues {
	st := f.store.State()
	var iss formschema.Issues
	if st.Schema != nil {
		if err := st.Schema.Validate(st.Value); err != nil {
			var ok bool
			if iss, ok = formschema.AsIssues(err); !ok {
				iss = formschema.Issues{{Code: formschema.CodeSchemaInvalid, Message: err.Error()}}
			}
		}
	}
	f.update(func(s *State) { s.Errors = iss })
	return iss
}

// FieldErrors returns the stored issues about the field at a dot path; ""
// returns every issue.
func (f *Form) FieldErrors(path string) formschema.Issues {
	errs := f.store.State().Errors
	if len(splitPath(path)) == 0 {
		return errs
	}
	return errs.At(valuePointer(path))
}

// ErrorMessages localizes FieldErrors with the current i18n translator.
func (f *Form) ErrorMessages(path string) []string {
	iss := f.FieldErrors(path)
	if len(iss) == 0 {
		return nil
	}
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, i18n.T(it.Code, stringParams(it.Params)))
	}
	return out
}

func stringParams(p map[string]any) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprint(v)
	}
	return out
}
