package nepattern

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

///////////////////////////////////////////////////////////////////////////////
// Type Tags
///////////////////////////////////////////////////////////////////////////////

// TypeTag is a named type predicate used by a Pattern's acceptance gate.
//
// Tags are resolved when they are created, not when they are matched, so a
// Pattern never compares type names while it is executing.
type TypeTag struct {
	Name  string
	match func(v any) bool
}

// Matches reports whether v satisfies the tag. Nil never matches.
func (t TypeTag) Matches(v any) bool {
	if v == nil || t.match == nil {
		return false
	}
	return t.match(v)
}

func (t TypeTag) String() string { return t.Name }

type typeTagRegistry struct {
	mu   sync.RWMutex
	tags map[string]func(v any) bool
}

var _typeTags = newTypeTagRegistry()

func foldTagName(name string) string {
	return cases.Fold().String(name)
}

// RegisterTypeTag registers (or replaces) a named predicate that Tag resolves.
// Names are case-insensitive.
func RegisterTypeTag(name string, pred func(v any) bool) error {
	if name == "" || pred == nil {
		return fmt.Errorf("%w: empty name or nil predicate", ErrUnknownTypeTag)
	}
	_typeTags.mu.Lock()
	defer _typeTags.mu.Unlock()
	_typeTags.tags[foldTagName(name)] = pred
	return nil
}

// TypeTagNames returns the registered tag names, sorted.
func TypeTagNames() []string {
	_typeTags.mu.RLock()
	defer _typeTags.mu.RUnlock()
	names := make([]string, 0, len(_typeTags.tags))
	for name := range _typeTags.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tag resolves a tag by name. Names that are not registered resolve to a
// case-insensitive comparison against the input's Go type name, so
// Tag("MyStruct") accepts values of any type named MyStruct.
func Tag(name string) TypeTag {
	folded := foldTagName(name)

	_typeTags.mu.RLock()
	pred, ok := _typeTags.tags[folded]
	_typeTags.mu.RUnlock()

	if ok {
		return TypeTag{Name: name, match: pred}
	}
	return TypeTag{Name: name, match: func(v any) bool {
		t := reflect.TypeOf(v)
		return foldTagName(t.Name()) == folded || foldTagName(t.String()) == folded
	}}
}

// LookupTag is Tag restricted to registered names.
func LookupTag(name string) (TypeTag, error) {
	_typeTags.mu.RLock()
	pred, ok := _typeTags.tags[foldTagName(name)]
	_typeTags.mu.RUnlock()
	if !ok {
		return TypeTag{}, fmt.Errorf("%w: %s", ErrUnknownTypeTag, name)
	}
	return TypeTag{Name: name, match: pred}, nil
}

// TagOf returns a tag matching exactly the type t.
func TagOf(t reflect.Type) TypeTag {
	return TypeTag{Name: typeName(t), match: func(v any) bool {
		return reflect.TypeOf(v) == t
	}}
}

func isBuiltinKind(v any, kinds ...reflect.Kind) bool {
	t := reflect.TypeOf(v)
	if t.PkgPath() != "" {
		return false
	}
	for _, k := range kinds {
		if t.Kind() == k {
			return true
		}
	}
	return false
}

var (
	integerKinds = []reflect.Kind{
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
	}
	floatKinds = []reflect.Kind{reflect.Float32, reflect.Float64}
)

func newTypeTagRegistry() *typeTagRegistry {
	isString := func(v any) bool { _, ok := v.(string); return ok }
	isFloat := func(v any) bool { return isBuiltinKind(v, floatKinds...) }
	isType := func(t reflect.Type) func(v any) bool {
		return func(v any) bool { return reflect.TypeOf(v) == t }
	}

	builtin := map[string]func(v any) bool{
		"string":  isString,
		"str":     isString,
		"int":     func(v any) bool { return isBuiltinKind(v, integerKinds...) },
		"int64":   isType(Int64Type),
		"float":   isFloat,
		"float64": isType(Float64Type),
		"number": func(v any) bool {
			return isBuiltinKind(v, integerKinds...) || isBuiltinKind(v, floatKinds...)
		},
		"bool":     isType(BoolType),
		"uuid":     isType(UUIDType),
		"time":     isType(TimeType),
		"duration": isType(DurationType),
		"bytes":    isType(BytesType),
		"list": func(v any) bool {
			t := reflect.TypeOf(v)
			return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t != BytesType
		},
		"dict": func(v any) bool { return reflect.TypeOf(v).Kind() == reflect.Map },
		"any":  func(v any) bool { return true },
	}

	r := &typeTagRegistry{tags: make(map[string]func(v any) bool, len(builtin))}
	for name, pred := range builtin {
		r.tags[foldTagName(name)] = pred
	}
	return r
}

///////////////////////////////////////////////////////////////////////////////
// Acceptance
///////////////////////////////////////////////////////////////////////////////

// accepts reports whether input validates against any of patterns or
// satisfies any of types. Sub-patterns are run through Exec, so their own
// negation applies.
func accepts(input any, patterns []*Pattern, types []TypeTag) bool {
	for _, p := range patterns {
		if p.Exec(input).IsSuccess() {
			return true
		}
	}
	for _, t := range types {
		if t.Matches(input) {
			return true
		}
	}
	return false
}
