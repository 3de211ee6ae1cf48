package formschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formschema/internal/dupkey"
)

// maxDupFindings caps duplicate-key reporting per document.
const maxDupFindings = 32

// ParseJSON decodes a JSON schema document and builds its tree. Duplicate
// object keys are accepted (the last occurrence wins) and reported through
// the tree's diagnostics.
func ParseJSON(data []byte, opts ...Option) (*Node, error) {
	raw, warns, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return newLoaded(raw, warns, opts), nil
}

// ParseYAML decodes the first document of a YAML stream and builds its tree.
func ParseYAML(data []byte, opts ...Option) (*Node, error) {
	raw, warns, err := decodeYAML(data)
	if err != nil {
		return nil, err
	}
	return newLoaded(raw, warns, opts), nil
}

// LoadFile reads a schema document from disk. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func LoadFile(path string, opts ...Option) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formschema: read %s: %w", path, err)
	}
	if isYAML(path) {
		return ParseYAML(data, opts...)
	}
	return ParseJSON(data, opts...)
}

// DecodeFile reads an instance document (JSON or YAML by extension) into the
// JSON data model.
func DecodeFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formschema: read %s: %w", path, err)
	}
	var v any
	if isYAML(path) {
		v, _, err = decodeYAML(data)
	} else {
		v, _, err = decodeJSON(data)
	}
	return v, err
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadReferencesYAML reads a multi-document YAML bundle of reference schemas.
// Each document must be an object schema carrying an "$id", which becomes its
// key.
func LoadReferencesYAML(data []byte) (Definitions, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	out := Definitions{}
	for i := 0; ; i++ {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("formschema: reference document %d: %w", i, err)
		}
		raw, err := yamlToJSON(&root, "", nil)
		if err != nil {
			return nil, fmt.Errorf("formschema: reference document %d: %w", i, err)
		}
		if raw == nil {
			continue
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("formschema: reference document %d is not an object schema", i)
		}
		id, _ := m[kwID].(string)
		if id == "" {
			return nil, fmt.Errorf("formschema: reference document %d: %w", i, ErrUnnamedDefinition)
		}
		out[id] = Object(m)
	}
	return out, nil
}

// RegisterReferences registers every definition on n, keyed as given.
func (n *Node) RegisterReferences(defs Definitions) error {
	for key, v := range defs {
		if err := n.RegisterDefinition(v, key); err != nil {
			return err
		}
	}
	return nil
}

func newLoaded(raw any, warns []string, opts []Option) *Node {
	n := New(raw, opts...)
	for _, w := range warns {
		n.tree.diag.warnf("%s", w)
	}
	return n
}

func decodeJSON(data []byte) (any, []string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("formschema: decode json: %w", err)
	}
	findings, err := dupkey.Detect(data, maxDupFindings)
	if err != nil {
		return raw, nil, nil
	}
	warns := make([]string, 0, len(findings))
	for _, f := range findings {
		path := f.Path
		if path == "" {
			path = "/"
		}
		warns = append(warns, fmt.Sprintf("duplicate key %q at %s", f.Key, path))
	}
	return raw, warns, nil
}

func decodeYAML(data []byte) (any, []string, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("formschema: decode yaml: %w", err)
	}
	var warns []string
	raw, err := yamlToJSON(&root, "", &warns)
	if err != nil {
		return nil, nil, err
	}
	return raw, warns, nil
}

// yamlToJSON converts a YAML node into the JSON data model. Numbers become
// float64; duplicate mapping keys keep the last value and are reported into
// warns when it is non-nil.
func yamlToJSON(n *yaml.Node, path string, warns *[]string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlToJSON(n.Content[0], path, warns)
	case yaml.AliasNode:
		return yamlToJSON(n.Alias, path, warns)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if line, dup := first[k.Value]; dup && warns != nil {
				*warns = append(*warns, fmt.Sprintf("duplicate key %q at %d:%d (first at line %d)", k.Value, k.Line, k.Column, line))
			}
			first[k.Value] = k.Line
			val, err := yamlToJSON(v, path+"/"+k.Value, warns)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlToJSON(c, path+"/"+strconv.Itoa(i), warns)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n, path)
	}
	return nil, fmt.Errorf("formschema: unsupported yaml node at %q", path)
}

func yamlScalar(n *yaml.Node, path string) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("formschema: yaml bool at %q: %w", path, err)
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("formschema: yaml number at %q: %w", path, err)
		}
		return f, nil
	}
	return n.Value, nil
}
