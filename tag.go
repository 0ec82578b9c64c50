package nepattern

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Base Error types for tag parsing errors
var (
	ErrNoBindTagInField         = errors.New("no bind tag found in field")
	ErrUnallowedBindingName     = errors.New("binding name is not allowed")
	ErrEmptyBindingIdentifier   = errors.New("binding identifier cannot be empty")
	ErrInvalidBindingTagFormat  = errors.New("invalid binding tag format")
	ErrUnallowedBindingModifier = errors.New("binding modifier is not allowed")
	ErrInvalidPosition          = errors.New("positional binding identifier must be a non-negative integer")
	ErrDuplicateSubTag          = errors.New("subtag given more than once")
	ErrSubTagNotFound           = errors.New("subtag not found")
	ErrUnterminatedSubTag       = errors.New("unterminated subtag value")
)

// This file contains the parser for the `nep` struct tag used by Binder.
//
// Tag grammar:
//     <field> <type> `nep:"<subtag_list>"` | `nep:"-"`
//
// subtag_list:
//     [<subtag>]^* // Space Separated
// subtag:
//     <tag_pattern> | <tag_default> | <tag_binding>
//
// tag_pattern:
//     pattern:'<pattern_expr>' // resolved by PatternRegistry.Resolve
// tag_default:
//     default:'<default_text>' // validated through the field's pattern
// tag_binding:
//     <binding_name>:'<binding_identifier>[,<binding_modifier>]^*'
// binding_name:
//     key | pos
// binding_modifier:
//     omitempty
//
// Values are quoted with single quotes; a backslash escapes the next byte.
// Bindings are tried in the order they appear.

// BindTag is the decoded form of a `nep` tag.
type BindTag struct {
	Pattern    string
	Default    string
	HasDefault bool
	Bindings   []Binding
}

// Binding is a single place a field's token can come from.
type Binding struct {
	Name       string           // key or pos
	Identifier string           // token name, or the position as written
	Position   int              // parsed Identifier of a pos binding
	Modifiers  BindingModifiers // Additional modifiers for the binding
}

// BindingModifiers control what happens when a binding has no token.
type BindingModifiers struct {
	OmitEmpty bool // If true, skip this binding if its token is missing
	Required  bool // If true, a missing token fails the field
}

func (b Binding) String() string {
	return b.Name + DefaultKeyValueTagDelimiter + b.Identifier
}

// SubTag is one key:value pair of a tag, in source order.
type SubTag struct {
	Key   string
	Value string
}

// DecodeBindTag decodes the `nep` tag of field.
func DecodeBindTag(field reflect.StructField) (BindTag, error) {
	tag, ok := field.Tag.Lookup(BindTagName)
	if !ok || strings.TrimSpace(tag) == "-" {
		return BindTag{}, fmt.Errorf("%w: %s", ErrNoBindTagInField, field.Name)
	}

	bindTag, err := decodeBindTag(tag)
	if err != nil {
		return BindTag{}, fmt.Errorf("error parsing bind tag for field %s: %w", field.Name, err)
	}
	return bindTag, nil
}

func decodeBindTag(tag string) (BindTag, error) {
	subTags, err := SubTags(tag)
	if err != nil {
		return BindTag{}, err
	}

	var (
		bindTag     BindTag
		seenPattern bool
	)

	for _, sub := range subTags {
		switch sub.Key {
		case PatternSubTagPrefix:
			if seenPattern {
				return BindTag{}, fmt.Errorf("%w: %s", ErrDuplicateSubTag, sub.Key)
			}
			seenPattern = true
			bindTag.Pattern = strings.TrimSpace(sub.Value)
		case DefaultValueSubTagPrefix:
			if bindTag.HasDefault {
				return BindTag{}, fmt.Errorf("%w: %s", ErrDuplicateSubTag, sub.Key)
			}
			bindTag.Default = sub.Value
			bindTag.HasDefault = true
		case KeyTagBinding, PositionalTagBinding:
			binding, err := decodeBinding(sub)
			if err != nil {
				return BindTag{}, err
			}
			bindTag.Bindings = append(bindTag.Bindings, binding)
		default:
			return BindTag{}, fmt.Errorf("%w: %s", ErrUnallowedBindingName, sub.Key)
		}
	}

	return bindTag, nil
}

// decodeBinding splits "port,omitempty" into its identifier and modifiers.
func decodeBinding(sub SubTag) (Binding, error) {
	info := strings.Split(sub.Value, DefaultModifierDelimiter)

	binding := Binding{
		Name:       sub.Key,
		Identifier: strings.TrimSpace(info[0]),
		Position:   -1,
	}
	if binding.Identifier == "" {
		return Binding{}, fmt.Errorf("%w in tag: %s", ErrEmptyBindingIdentifier, sub.Key)
	}

	if binding.Name == PositionalTagBinding {
		pos, err := strconv.Atoi(binding.Identifier)
		if err != nil || pos < 0 {
			return Binding{}, fmt.Errorf("%w: %s", ErrInvalidPosition, binding.Identifier)
		}
		binding.Position = pos
	}

	for _, modifier := range info[1:] {
		switch strings.TrimSpace(modifier) {
		case OmitEmptyBindingModifier:
			binding.Modifiers.OmitEmpty = true
		case "":
			// trailing delimiter
		default:
			return Binding{}, fmt.Errorf("%w: %s", ErrUnallowedBindingModifier, modifier)
		}
	}
	binding.Modifiers.Required = !binding.Modifiers.OmitEmpty

	return binding, nil
}

// SubTags splits a tag into its key:value pairs, keeping their order.
func SubTags(tag string) ([]SubTag, error) {
	return SubTagsByDelimiter(tag, DefaultSubTagScopeDelimiter)
}

// SubTagsByDelimiter is SubTags with a custom quote byte.
//
// Example: SubTagsByDelimiter(`pattern:'int' key:'port,omitempty'`, '\'')
// returns [{pattern int} {key port,omitempty}].
func SubTagsByDelimiter(tag string, delim byte) ([]SubTag, error) {
	var (
		result []SubTag
		i      int
	)

	skipSpace := func() {
		for i < len(tag) && (tag[i] == ' ' || tag[i] == '\t') {
			i++
		}
	}

	for {
		skipSpace()
		if i >= len(tag) {
			break
		}

		colonIdx := strings.Index(tag[i:], DefaultKeyValueTagDelimiter)
		if colonIdx == -1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBindingTagFormat, tag[i:])
		}

		key := strings.TrimSpace(tag[i : i+colonIdx])
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBindingTagFormat, tag[i:i+colonIdx])
		}
		i += colonIdx + 1
		skipSpace()

		if i < len(tag) && tag[i] == delim {
			value, next, err := scanQuoted(tag, i+1, delim)
			if err != nil {
				return nil, fmt.Errorf("%w for %q", err, key)
			}
			result = append(result, SubTag{Key: key, Value: value})
			i = next
			continue
		}

		// Simple value, ends at the next space
		start := i
		for i < len(tag) && tag[i] != ' ' && tag[i] != '\t' {
			i++
		}
		result = append(result, SubTag{Key: key, Value: tag[start:i]})
	}

	return result, nil
}

// scanQuoted reads a delimited value starting after its opening delimiter
// and returns the unescaped value and the index after the closing one.
func scanQuoted(tag string, start int, delim byte) (string, int, error) {
	var builder strings.Builder

	for i := start; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c == '\\' && i+1 < len(tag):
			i++
			builder.WriteByte(tag[i])
		case c == delim:
			return builder.String(), i + 1, nil
		default:
			builder.WriteByte(c)
		}
	}

	return "", 0, ErrUnterminatedSubTag
}

// LookupSubTag returns the value of the first subtag named key.
func LookupSubTag(tag string, key string) (string, error) {
	subTags, err := SubTags(tag)
	if err != nil {
		return "", err
	}
	for _, sub := range subTags {
		if sub.Key == key {
			return sub.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSubTagNotFound, key)
}
