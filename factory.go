package nepattern

import (
	"fmt"
	"reflect"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Factories
///////////////////////////////////////////////////////////////////////////////

// Of returns a Keep pattern accepting only values of exactly type t,
// displayed as the type's name.
func Of(t reflect.Type) *Pattern {
	return MustNew(t, "", Keep, PatternOpts{
		Alias:       typeName(t),
		TypeAccepts: []TypeTag{TagOf(t)},
	})
}

// OfType is the generic form of Of.
func OfType[T any]() *Pattern {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// On returns a pattern accepting only inputs deeply equal to value. It is
// displayed as the value itself.
func On(value any) *Pattern {
	origin := reflect.TypeOf(value)
	if origin == nil {
		origin = AnyType
	}
	return MustNew(origin, "", Keep, PatternOpts{
		Alias: fmt.Sprint(value),
		Validators: []ValidatorFunc{
			func(v any) bool { return reflect.DeepEqual(v, value) },
		},
	})
}

// Regex returns a pattern yielding the text matched by source, or its first
// capture group when it has one.
func Regex(source string) (*Pattern, error) {
	return New(StringType, source, RegexMatch, PatternOpts{})
}

// Convert returns a pattern converting the text matched by source into
// origin with ConvertTo.
func Convert(origin reflect.Type, source string) (*Pattern, error) {
	return New(origin, source, RegexConvert, PatternOpts{})
}

// Union returns a pattern accepting any input one of patterns accepts. The
// result is produced by the first pattern that validates the input, nil
// included.
func Union(patterns ...*Pattern) *Pattern {
	patterns = compactPatterns(patterns)

	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.String())
	}

	return MustNew(AnyType, "", TypeConvert, PatternOpts{
		Alias:          strings.Join(names, UnionExprDivider),
		PatternAccepts: patterns,
		Converter: func(_ *Pattern, input any) (any, error) {
			for _, p := range patterns {
				if v, ok := p.Exec(input).TryValue(); ok {
					if v == nil {
						return nullResult{}, nil
					}
					return v, nil
				}
			}
			return nil, incorrectValue(input)
		},
	})
}
