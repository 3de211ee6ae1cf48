package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/reoring/formschema"
	"github.com/reoring/formschema/i18n"
	"github.com/reoring/formschema/typed"
)

// errInvalid marks a validate run that found issues; it maps to exit code 1
// without an extra error line.
var errInvalid = errors.New("instance is invalid")

// errUsage maps to exit code 2.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "default":
		err = defaultCmd(args[1:], stdout, stderr)
	case "deref":
		err = derefCmd(args[1:], stdout, stderr)
	case "condition":
		err = conditionCmd(args[1:], stdout, stderr)
	case "validate":
		err = validateCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, errInvalid):
		return 1
	}
	fmt.Fprintln(stderr, err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "formschema CLI\n\nUsage:\n  formschema default [-mode schema-default|type-default|null] [-refs bundle.yaml] [-check] schema\n  formschema deref [-deep] [-pointer p] schema\n  formschema condition -data file [-pointer p] schema\n  formschema validate -data file [-lang en|ja] schema\n\nCommon flags:\n  -refs bundle.yaml  multi-document YAML of reference schemas keyed by $id\n  -v                 print resolution warnings to stderr\n\nSchemas and data files ending in .yaml or .yml are read as YAML.")
}

// common holds the flags every subcommand accepts.
type common struct {
	refs    string
	verbose bool
	stderr  io.Writer
}

func newFlagSet(name string, c *common, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.refs, "refs", "", "multi-document YAML bundle of reference schemas")
	fs.BoolVar(&c.verbose, "v", false, "verbose output")
	c.stderr = stderr
	return fs
}

func (c *common) logf(format string, a ...any) {
	if c.verbose {
		fmt.Fprintf(c.stderr, format+"\n", a...)
	}
}

// schemaArg parses fs and returns its single positional schema path.
func schemaArg(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errUsage
	}
	return fs.Arg(0), nil
}

// load reads the schema and registers the reference bundle, if any.
func (c *common) load(path string) (*formschema.Node, error) {
	root, err := formschema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if c.refs == "" {
		return root, nil
	}
	data, err := os.ReadFile(c.refs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.refs, err)
	}
	defs, err := formschema.LoadReferencesYAML(data)
	if err != nil {
		return nil, err
	}
	if err := root.RegisterReferences(defs); err != nil {
		return nil, err
	}
	c.logf("registered %d reference(s) from %s", len(defs), c.refs)
	return root, nil
}

// at resolves an optional schema pointer below root.
func at(root *formschema.Node, ptr string) (*formschema.Node, error) {
	if ptr == "" || ptr == "#" {
		return root, nil
	}
	n, ok := root.Lookup(ptr)
	if !ok {
		return nil, fmt.Errorf("no schema at %s", ptr)
	}
	return n, nil
}

func (c *common) warnings(n *formschema.Node) {
	for _, w := range n.Diagnostics().Warnings() {
		c.logf("warning: %s", w)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func defaultCmd(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("default", &c, stderr)
	var modeName string
	var check bool
	fs.StringVar(&modeName, "mode", "schema-default", "schema-default, type-default or null")
	fs.BoolVar(&check, "check", false, "validate declared defaults against their schemas first")
	path, err := schemaArg(fs, args)
	if err != nil {
		return err
	}
	mode, err := formschema.ParseMode(modeName)
	if err != nil {
		return err
	}
	root, err := c.load(path)
	if err != nil {
		return err
	}
	if check {
		if err := typed.CheckDefaults(root); err != nil {
			return fmt.Errorf("check defaults: %w", err)
		}
		c.logf("declared defaults are valid")
	}
	v, ok := root.DeriveDefault(mode)
	c.warnings(root)
	if !ok {
		c.logf("no default for mode %s", mode)
	}
	return printJSON(stdout, v)
}

func derefCmd(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("deref", &c, stderr)
	var deep bool
	var ptr string
	fs.BoolVar(&deep, "deep", false, "expand references recursively and merge allOf")
	fs.StringVar(&ptr, "pointer", "", "schema pointer to start from (for example #/properties/a)")
	path, err := schemaArg(fs, args)
	if err != nil {
		return err
	}
	root, err := c.load(path)
	if err != nil {
		return err
	}
	n, err := at(root, ptr)
	if err != nil {
		return err
	}
	var out formschema.Value
	if deep {
		out = n.ToDeepDereferencedJSON()
	} else {
		out = n.ToDereferencedJSON()
	}
	c.warnings(root)
	return printJSON(stdout, out.Raw())
}

func conditionCmd(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("condition", &c, stderr)
	var dataPath, ptr string
	fs.StringVar(&dataPath, "data", "", "instance document (JSON or YAML)")
	fs.StringVar(&ptr, "pointer", "", "schema pointer to condition")
	path, err := schemaArg(fs, args)
	if err != nil {
		return err
	}
	if dataPath == "" {
		fs.Usage()
		return errUsage
	}
	root, err := c.load(path)
	if err != nil {
		return err
	}
	data, err := formschema.DecodeFile(dataPath)
	if err != nil {
		return err
	}
	n, err := at(root, ptr)
	if err != nil {
		return err
	}
	out := n.ApplyConditionFor(data).ToJSON()
	c.warnings(root)
	return printJSON(stdout, out.Raw())
}

func validateCmd(args []string, stdout, stderr io.Writer) error {
	var c common
	fs := newFlagSet("validate", &c, stderr)
	var dataPath, lang string
	fs.StringVar(&dataPath, "data", "", "instance document (JSON or YAML)")
	fs.StringVar(&lang, "lang", "en", "message language (en or ja)")
	path, err := schemaArg(fs, args)
	if err != nil {
		return err
	}
	if dataPath == "" {
		fs.Usage()
		return errUsage
	}
	i18n.SetLanguage(lang)
	root, err := c.load(path)
	if err != nil {
		return err
	}
	data, err := formschema.DecodeFile(dataPath)
	if err != nil {
		return err
	}
	err = root.Validate(data)
	c.warnings(root)
	if err == nil {
		fmt.Fprintln(stdout, "ok")
		return nil
	}
	iss, ok := formschema.AsIssues(err)
	if !ok {
		return err
	}
	for _, it := range iss {
		p := it.ValuePath()
		if p == "" {
			p = "/"
		}
		fmt.Fprintf(stdout, "%s: %s\n", p, i18n.T(it.Code, params(it)))
	}
	return errInvalid
}

func params(it formschema.Issue) map[string]string {
	out := make(map[string]string, len(it.Params))
	for k, v := range it.Params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
