// Package formschema resolves JSON Schema documents for form rendering:
//
// - A pointer-addressable, memoized tree of schema nodes (New, Node.SubSchema, Node.Lookup)
// - Local reference resolution with cycle guards (Node.ToDereferencedJSON, ResolveLocalRef)
// - Combinator folding: allOf merge, oneOf split and if/then/else conditioning
// - Default value derivation in three modes (DeriveDefault, Node.DeriveDefault)
// - Structural validation with a stable Issues error model (Node.Validate)
//
// Design policy:
// - Schema data never causes a hard failure. Unresolvable or cyclic references
//   degrade to {} or to the mode fallback, and are reported via Node.Diagnostics.
// - Values are never mutated; derived views are new values. Node.Dereference is
//   the one explicit in-place commit.
// - The form orchestration layer lives in form/, localized messages in i18n/
//   and the CLI under cmd/formschema.
//
// Typical usage:
//
//	root, err := formschema.ParseJSON(data)
//	def, _ := root.DeriveDefault(formschema.ModeTypeDefault)
//	name, ok := root.SubSchema("#/properties/name")
//	view := name.ApplyConditionFor(value).ToDereferencedJSON()
package formschema
