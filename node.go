package formschema

import (
	"strconv"
	"strings"
	"sync"

	"github.com/reoring/formschema/internal/pointer"
)

// DefaultMaxDepth bounds reference/combinator expansion when no cycle
// identifier can catch a loop (for example structurally equal but distinct
// reference strings).
const DefaultMaxDepth = 64

// Option configures a schema tree at construction.
type Option func(*options)

type options struct {
	validator Validator
	maxDepth  int
	defs      Definitions
}

// WithValidator replaces the structural validator used for "if" conditions
// and Node.Validate.
func WithValidator(v Validator) Option {
	return func(o *options) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithMaxDepth sets the expansion depth bound; values <= 0 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithDefinitions registers externally supplied definitions on the root,
// keyed by pointer or identifier.
func WithDefinitions(defs Definitions) Option {
	return func(o *options) {
		if o.defs == nil {
			o.defs = Definitions{}
		}
		for k, v := range defs {
			o.defs[k] = v
		}
	}
}

// tree is the state shared by every node of one document.
type tree struct {
	validator Validator
	maxDepth  int
	diag      simpleDiag

	internMu sync.RWMutex
	intern   map[string]string
}

// internPath returns the canonical instance of a node path so that every node
// at the same location shares one string.
func (t *tree) internPath(s string) string {
	t.internMu.RLock()
	if v, ok := t.intern[s]; ok {
		t.internMu.RUnlock()
		return v
	}
	t.internMu.RUnlock()

	t.internMu.Lock()
	defer t.internMu.Unlock()
	if v, ok := t.intern[s]; ok { // double-check
		return v
	}
	t.intern[s] = s
	return s
}

// Node is a schema value placed in a document: it knows its pointer path,
// its parent and the definitions it declares. Sub-schemas are created lazily
// and memoized, so repeated lookups of one pointer return the same *Node.
type Node struct {
	value  Value
	path   string
	parent *Node
	root   *Node
	tree   *tree

	mu       sync.Mutex
	children map[string]*Node
	defs     Definitions // own definitions plus registered ones
	extra    Definitions // registered definitions, carried over to clones
	checker  Checker
	checkErr error
	compiled bool
}

// New builds the root node of a schema document. raw is a bool, a
// map[string]any or a Value; anything else degrades to the empty schema.
func New(raw any, opts ...Option) *Node {
	o := options{maxDepth: DefaultMaxDepth}
	for _, fn := range opts {
		fn(&o)
	}
	if o.validator == nil {
		o.validator = NewValidator()
	}
	t := &tree{validator: o.validator, maxDepth: o.maxDepth, intern: map[string]string{}}
	v, ok := ValueOf(raw)
	if !ok {
		t.diag.warnf("root is not a schema (%T); treated as {}", raw)
		v = Empty()
	}
	n := newNode(t, v, nil, "#")
	for name, def := range o.defs {
		n.defs[name] = def
		n.extra[name] = def
	}
	return n
}

func newNode(t *tree, v Value, parent *Node, path string) *Node {
	n := &Node{value: v, parent: parent, tree: t, path: t.internPath(path)}
	if parent == nil {
		n.root = n
	} else {
		n.root = parent.root
	}
	n.defs = collectDefinitions(v)
	n.extra = Definitions{}
	return n
}

// cloneWith returns a detached node holding v at the same place in the tree.
// Registered definitions follow the clone.
func (n *Node) cloneWith(v Value) *Node {
	c := newNode(n.tree, v, n.parent, n.path)
	if n.parent == nil {
		c.root = c
	}
	n.mu.Lock()
	for k, d := range n.extra {
		c.defs[k] = d
		c.extra[k] = d
	}
	n.mu.Unlock()
	return c
}

// ToJSON exposes the wrapped schema value.
func (n *Node) ToJSON() Value { return n.value }

// Path returns the pointer of the node from the document root ("#" for the root).
func (n *Node) Path() string { return n.path }

// Parent returns the owning node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Root returns the document root.
func (n *Node) Root() *Node { return n.root }

// LeafPath returns the last path segment, e.g. "foo" for "#/properties/foo".
func (n *Node) LeafPath() string { return pointer.Leaf(n.path) }

func (n *Node) IsBooleanSchema() bool { return n.value.IsBool() }
func (n *Node) IsObjectSchema() bool  { return n.value.IsObject() }

// Diagnostics returns the warnings collected for the whole document.
func (n *Node) Diagnostics() Diag { return &n.tree.diag }

// SubSchema resolves a pointer of the form "#/keyword" or
// "#/keyword/member" relative to this node, e.g. "#/properties/name",
// "#/items/0" or "#/allOf/2". A miss reports false and is not cached; a hit
// is memoized under the exact pointer string.
func (n *Node) SubSchema(ref string) (*Node, bool) {
	n.mu.Lock()
	if c, ok := n.children[ref]; ok {
		n.mu.Unlock()
		return c, true
	}
	n.mu.Unlock()

	v, path, ok := n.resolvePointer(ref)
	if !ok {
		return nil, false
	}
	c := newNode(n.tree, v, n, path)

	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.children[ref]; ok {
		return existing, true
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	n.children[ref] = c
	return c, true
}

// resolvePointer reads one or two segments off the raw value.
func (n *Node) resolvePointer(ref string) (Value, string, bool) {
	if !n.value.IsObject() {
		return Value{}, "", false
	}
	segs, ok := pointer.SplitFragment(ref)
	if !ok || len(segs) == 0 || len(segs) > 2 || segs[0] == "" {
		return Value{}, "", false
	}
	kw := pointer.Unescape(segs[0])
	raw, ok := n.value.obj[kw]
	if !ok {
		return Value{}, "", false
	}
	path := n.path + "/" + pointer.Escape(kw)
	if len(segs) == 2 {
		member := pointer.Unescape(segs[1])
		switch c := raw.(type) {
		case map[string]any:
			if raw, ok = c[member]; !ok {
				return Value{}, "", false
			}
		case []any:
			i, ok := pointer.Index(segs[1])
			if !ok || i >= len(c) {
				return Value{}, "", false
			}
			raw = c[i]
		default:
			return Value{}, "", false
		}
		path += "/" + pointer.Escape(member)
	}
	v, ok := ValueOf(raw)
	if !ok {
		return Value{}, "", false
	}
	return v, path, true
}

// namedMembers lists keywords whose value is a map of schemas; listMembers
// lists keywords whose value is a list of schemas. Both take a second
// pointer segment.
var (
	namedMembers = map[string]bool{
		kwProperties: true, "patternProperties": true, "dependentSchemas": true,
		kwDefinitions: true, kwDefs: true,
	}
	listMembers = map[string]bool{
		kwAllOf: true, "anyOf": true, kwOneOf: true, "prefixItems": true,
	}
)

// Lookup resolves an arbitrarily deep pointer such as
// "#/properties/address/properties/street" by chaining SubSchema calls, so
// every intermediate node is memoized as well.
func (n *Node) Lookup(ref string) (*Node, bool) {
	segs, ok := pointer.SplitFragment(ref)
	if !ok {
		return nil, false
	}
	cur := n
	for i := 0; i < len(segs); {
		kw := pointer.Unescape(segs[i])
		step := 1
		if namedMembers[kw] || listMembers[kw] {
			step = 2
		} else if kw == kwItems {
			if _, isList := cur.value.obj[kwItems].([]any); isList {
				step = 2
			}
		}
		if i+step > len(segs) {
			return nil, false
		}
		next, ok := cur.SubSchema("#/" + strings.Join(segs[i:i+step], "/"))
		if !ok {
			return nil, false
		}
		cur = next
		i += step
	}
	return cur, true
}

// Validate checks instance against this node's schema with the tree's
// validator. The compiled form is cached on the node.
func (n *Node) Validate(instance any) error {
	c, err := n.checkerFor()
	if err != nil {
		return err
	}
	return c.Validate(instance)
}

func (n *Node) checkerFor() (Checker, error) {
	n.mu.Lock()
	if n.compiled {
		defer n.mu.Unlock()
		return n.checker, n.checkErr
	}
	n.mu.Unlock()

	defs := n.AllDefinitions()
	c, err := n.tree.validator.Compile(n.value, defs)

	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.compiled {
		n.checker, n.checkErr, n.compiled = c, err, true
	}
	return n.checker, n.checkErr
}

// itemPointer builds "#/items/<i>".
func itemPointer(i int) string { return "#/" + kwItems + "/" + strconv.Itoa(i) }

// propertyPointer builds "#/properties/<escaped key>".
func propertyPointer(key string) string {
	return "#/" + kwProperties + "/" + pointer.Escape(key)
}
