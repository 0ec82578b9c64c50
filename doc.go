// Package nepattern provides composable patterns that test, coerce and
// validate dynamic values.
//
// A [Pattern] describes a target type (its origin) and how an input is
// brought to it. Every pattern runs in one of four modes:
//   - Keep: the input is returned unchanged once it passes the accept gate.
//   - RegexMatch: the input must be text fully matching the pattern's regex.
//   - TypeConvert: the input is converted to the origin type.
//   - RegexConvert: the input is regex matched and the match converted.
//
// The accept gate restricts what inputs a pattern will look at. It is made of
// sub-patterns (any of which must succeed) and [TypeTag]s (any of which must
// describe the input's type). When an input fails a pattern, the pattern's
// previous pattern, if any, is tried first and its output is fed back in.
//
// Matching yields a [ValidateResult], a tri-state value: success with a value,
// failure with an error wrapping [ErrMatchFailed], or a default supplied to
// one of the *Default methods. Passing [Empty] as that default yields a
// default result that carries no value.
//
// The package ships builtin patterns ([Int], [Float], [Bool], [UUID],
// [Datetime], [JSON] and others) registered in a [PatternRegistry]. Registries
// resolve small expressions such as "!int" or "int|bool" and are used by the
// [Binder] to populate structs from positional and named tokens.
//
// Binding is driven by the `nep` struct tag:
//
//	type ServeArgs struct {
//		Host string `nep:"key:'host,omitempty' pos:'0' default:'localhost'"`
//		Port int    `nep:"pattern:'int' key:'port' default:'8080'"`
//	}
//
// Bind chains are built once per struct type and cached. A struct implementing
// [Validatable] is validated after every field has been bound.
package nepattern
