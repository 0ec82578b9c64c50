package patternset

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	nepattern "github.com/SimonDaKappa/go-nepattern"
)

// Definition is the declarative form of a nepattern.Pattern as it appears
// under [patterns.<name>] in a pattern-set file.
type Definition struct {
	// Mode is one of keep, regex_match, type_convert or regex_convert.
	// Defaults to regex_match when Source is set and keep otherwise.
	Mode   string `koanf:"mode"`
	Source string `koanf:"source"`
	// Origin names the target type, see Origins.
	Origin string `koanf:"origin"`
	Alias  string `koanf:"alias"`
	// Previous and Accepts hold pattern expressions. Names are looked up in
	// the set first and then in the registry.
	Previous    string   `koanf:"previous"`
	Accepts     []string `koanf:"accepts"`
	TypeAccepts []string `koanf:"type_accepts"`
	Anti        bool     `koanf:"anti"`

	Min     *float64 `koanf:"min"`
	Max     *float64 `koanf:"max"`
	MinLen  *int     `koanf:"min_len"`
	MaxLen  *int     `koanf:"max_len"`
	Choices []string `koanf:"choices"`
}

// Origins maps the origin names accepted in definitions to their types.
var Origins = map[string]reflect.Type{
	"any":      nepattern.AnyType,
	"string":   nepattern.StringType,
	"str":      nepattern.StringType,
	"int":      nepattern.IntType,
	"int64":    nepattern.Int64Type,
	"float":    nepattern.Float64Type,
	"float64":  nepattern.Float64Type,
	"bool":     nepattern.BoolType,
	"bytes":    nepattern.BytesType,
	"uuid":     nepattern.UUIDType,
	"time":     nepattern.TimeType,
	"datetime": nepattern.TimeType,
	"duration": nepattern.DurationType,
	"list":     nepattern.ListType,
	"dict":     nepattern.DictType,
}

// references returns the names used by the Previous and Accepts expressions.
func (def Definition) references() []string {
	var names []string
	if def.Previous != "" {
		names = append(names, nepattern.ExprNames(def.Previous)...)
	}
	for _, expr := range def.Accepts {
		names = append(names, nepattern.ExprNames(expr)...)
	}
	return names
}

func (def Definition) mode() (nepattern.MatchMode, error) {
	if def.Mode == "" {
		if def.Source != "" {
			return nepattern.RegexMatch, nil
		}
		return nepattern.Keep, nil
	}
	return nepattern.ParseMatchMode(def.Mode)
}

func (def Definition) origin(mode nepattern.MatchMode) (reflect.Type, error) {
	if def.Origin == "" {
		switch mode {
		case nepattern.RegexMatch:
			return nepattern.StringType, nil
		case nepattern.Keep:
			return nepattern.AnyType, nil
		default:
			return nil, fmt.Errorf("%w: mode %s requires an origin", ErrInvalidDefinition, mode)
		}
	}
	t, ok := Origins[strings.ToLower(strings.TrimSpace(def.Origin))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrigin, def.Origin)
	}
	return t, nil
}

func (def Definition) typeTags() ([]nepattern.TypeTag, error) {
	tags := make([]nepattern.TypeTag, 0, len(def.TypeAccepts))
	for _, name := range def.TypeAccepts {
		tag, err := nepattern.LookupTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (def Definition) validators() ([]nepattern.ValidatorFunc, error) {
	var validators []nepattern.ValidatorFunc

	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		return nil, fmt.Errorf("%w: min %v is greater than max %v", ErrInvalidDefinition, *def.Min, *def.Max)
	}
	if def.MinLen != nil && def.MaxLen != nil && *def.MinLen > *def.MaxLen {
		return nil, fmt.Errorf("%w: min_len %d is greater than max_len %d", ErrInvalidDefinition, *def.MinLen, *def.MaxLen)
	}

	if def.Min != nil || def.Max != nil {
		lo, hi := def.Min, def.Max
		validators = append(validators, func(v any) bool {
			n, ok := number(v)
			if !ok {
				return false
			}
			return (lo == nil || n >= *lo) && (hi == nil || n <= *hi)
		})
	}

	if def.MinLen != nil || def.MaxLen != nil {
		lo, hi := def.MinLen, def.MaxLen
		validators = append(validators, func(v any) bool {
			n, ok := length(v)
			if !ok {
				return false
			}
			return (lo == nil || n >= *lo) && (hi == nil || n <= *hi)
		})
	}

	if len(def.Choices) > 0 {
		choices := make(map[string]struct{}, len(def.Choices))
		for _, c := range def.Choices {
			choices[c] = struct{}{}
		}
		validators = append(validators, func(v any) bool {
			_, ok := choices[fmt.Sprint(v)]
			return ok
		})
	}

	return validators, nil
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// length counts runes for strings and elements for collections.
func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	default:
		return 0, false
	}
}
