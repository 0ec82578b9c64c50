package nepattern

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for subtags in the bind tag
const (
	BindTagName                 = "nep"
	PatternSubTagPrefix         = "pattern"
	DefaultValueSubTagPrefix    = "default"
	DefaultSubTagScopeDelimiter = byte('\'')
	DefaultKeyValueTagDelimiter = ":"
	DefaultModifierDelimiter    = ","
)

// constants for builtin token bindings in the bind tag
const (
	KeyTagBinding        = "key"
	PositionalTagBinding = "pos"
)

// constants for builtin binding modifiers
const (
	OmitEmptyBindingModifier = "omitempty"
)

// Pattern expression syntax understood by PatternRegistry.Resolve
const (
	AntiExprPrefix   = "!"
	UnionExprDivider = "|"
)

// Names of the builtin patterns in the default registry.
const (
	AnyPatternName       = "any"
	StringPatternName    = "str"
	AnyStringPatternName = "any_str"
	IntPatternName       = "int"
	FloatPatternName     = "float"
	BoolPatternName      = "bool"
	HexPatternName       = "hex"
	UUIDPatternName      = "uuid"
	URLPatternName       = "url"
	EmailPatternName     = "email"
	IPPatternName        = "ip"
	DatetimePatternName  = "datetime"
	DurationPatternName  = "duration"
	JSONPatternName      = "json"
	ListPatternName      = "list"
	DictPatternName      = "dict"
)

// reflect.TypeOf constants for type checks
var (
	AnyType      = reflect.TypeOf((*any)(nil)).Elem()
	StringType   = reflect.TypeOf("")
	IntType      = reflect.TypeOf(int(0))
	Int64Type    = reflect.TypeOf(int64(0))
	Float64Type  = reflect.TypeOf(float64(0))
	BoolType     = reflect.TypeOf(false)
	BytesType    = reflect.TypeOf([]byte{})
	UUIDType     = reflect.TypeOf(uuid.UUID{})
	TimeType     = reflect.TypeOf(time.Time{})
	DurationType = reflect.TypeOf(time.Duration(0))
	ListType     = reflect.TypeOf([]any{})
	DictType     = reflect.TypeOf(map[string]any{})
)
