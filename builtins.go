package nepattern

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

///////////////////////////////////////////////////////////////////////////////
// Builtin Patterns
///////////////////////////////////////////////////////////////////////////////

var (
	intText   = regexp.MustCompile(`^[+-]?\d+$`)
	floatText = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
)

var (
	// Any keeps every input.
	Any = MustNew(AnyType, "", Keep, PatternOpts{Alias: AnyPatternName})

	// String keeps text inputs.
	String = MustNew(StringType, "", Keep, PatternOpts{
		Alias:       StringPatternName,
		TypeAccepts: []TypeTag{Tag("string")},
	})

	// AnyString renders any input as text.
	AnyString = MustNew(StringType, "", TypeConvert, PatternOpts{
		Alias:     AnyStringPatternName,
		Converter: convertAnyString,
	})

	Int = MustNew(IntType, "", TypeConvert, PatternOpts{
		Alias:       IntPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("number")},
		Converter:   numberConverter(intText),
	})

	Float = MustNew(Float64Type, "", TypeConvert, PatternOpts{
		Alias:       FloatPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("number")},
		Converter:   numberConverter(floatText),
	})

	Bool = MustNew(BoolType, "", TypeConvert, PatternOpts{
		Alias:       BoolPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("bool")},
	})

	// Hex parses hexadecimal text, with or without a 0x prefix.
	Hex = MustNew(IntType, `(?:0[xX])?([0-9a-fA-F]+)`, RegexConvert, PatternOpts{
		Alias:     HexPatternName,
		Converter: convertHex,
	})

	UUID = MustNew(UUIDType, "", TypeConvert, PatternOpts{
		Alias:       UUIDPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("bytes")},
		Converter:   convertUUID,
	})

	URL = MustNew(StringType, `[a-zA-Z][a-zA-Z0-9+.-]*://[^\s/?#]+[^\s]*`, RegexMatch, PatternOpts{
		Alias:      URLPatternName,
		Validators: []ValidatorFunc{validURL},
	})

	Email = MustNew(StringType, `[\w.+-]+@[\w-]+(?:\.[\w-]+)+`, RegexMatch, PatternOpts{
		Alias: EmailPatternName,
	})

	// IP matches dotted IPv4 addresses.
	IP = MustNew(StringType, `(?:\d{1,3}\.){3}\d{1,3}`, RegexMatch, PatternOpts{
		Alias:      IPPatternName,
		Validators: []ValidatorFunc{validOctets},
	})

	// Datetime parses text in one of TimeLayouts, or numbers as unix seconds.
	Datetime = MustNew(TimeType, "", TypeConvert, PatternOpts{
		Alias:       DatetimePatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("number")},
		Converter:   convertDatetime,
	})

	Duration = MustNew(DurationType, "", TypeConvert, PatternOpts{
		Alias:       DurationPatternName,
		TypeAccepts: []TypeTag{Tag("string")},
	})

	// JSON decodes any JSON document except null.
	JSON = MustNew(AnyType, "", TypeConvert, PatternOpts{
		Alias:       JSONPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("bytes")},
		Converter:   convertJSON,
	})

	// List decodes JSON arrays and copies slices into []any.
	List = MustNew(ListType, "", TypeConvert, PatternOpts{
		Alias:       ListPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("list")},
		Converter:   convertList,
	})

	// Dict decodes JSON objects and copies string-keyed maps into map[string]any.
	Dict = MustNew(DictType, "", TypeConvert, PatternOpts{
		Alias:       DictPatternName,
		TypeAccepts: []TypeTag{Tag("string"), Tag("dict")},
		Converter:   convertDict,
	})
)

// builtinOrder is the registration order of the builtins. The first
// pattern per origin type wins LookupType, so "int" precedes "hex" and
// "str" precedes the other text patterns.
var builtinOrder = []string{
	AnyPatternName,
	StringPatternName,
	IntPatternName,
	FloatPatternName,
	BoolPatternName,
	UUIDPatternName,
	DatetimePatternName,
	DurationPatternName,
	ListPatternName,
	DictPatternName,
	JSONPatternName,
	AnyStringPatternName,
	HexPatternName,
	URLPatternName,
	EmailPatternName,
	IPPatternName,
}

// Builtins returns the builtin patterns keyed by name.
func Builtins() map[string]*Pattern {
	return map[string]*Pattern{
		AnyPatternName:       Any,
		StringPatternName:    String,
		AnyStringPatternName: AnyString,
		IntPatternName:       Int,
		FloatPatternName:     Float,
		BoolPatternName:      Bool,
		HexPatternName:       Hex,
		UUIDPatternName:      UUID,
		URLPatternName:       URL,
		EmailPatternName:     Email,
		IPPatternName:        IP,
		DatetimePatternName:  Datetime,
		DurationPatternName:  Duration,
		JSONPatternName:      JSON,
		ListPatternName:      List,
		DictPatternName:      Dict,
	}
}

///////////////////////////////////////////////////////////////////////////////
// Builtin Converters
///////////////////////////////////////////////////////////////////////////////

func convertAnyString(_ *Pattern, input any) (any, error) {
	if out, err := ConvertTo(StringType, input); err == nil {
		return out, nil
	}
	return fmt.Sprint(input), nil
}

// numberConverter restricts text to the shape accepted by text before
// handing it to ConvertTo, so "inf" or "0x10" are not numbers.
func numberConverter(text *regexp.Regexp) Converter {
	return func(p *Pattern, input any) (any, error) {
		if s, ok := input.(string); ok {
			s = strings.TrimSpace(s)
			if !text.MatchString(s) {
				return nil, incorrectValue(input)
			}
			input = s
		}
		return ConvertTo(p.Origin(), input)
	}
}

func convertHex(_ *Pattern, input any) (any, error) {
	n, err := strconv.ParseInt(input.(string), 16, 64)
	if err != nil {
		return nil, err
	}
	return int(n), nil
}

func convertUUID(_ *Pattern, input any) (any, error) {
	switch v := input.(type) {
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	}
	return nil, unsupported(input, UUIDType)
}

func validURL(v any) bool {
	u, err := url.Parse(v.(string))
	return err == nil && u.Scheme != "" && u.Host != ""
}

func validOctets(v any) bool {
	for _, octet := range strings.Split(v.(string), ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// Unix timestamps are limited to years 1 through 9999.
var (
	minUnixSeconds = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxUnixSeconds = time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
)

func convertDatetime(_ *Pattern, input any) (any, error) {
	if _, ok := input.(string); ok {
		return ConvertTo(TimeType, input)
	}
	seconds, err := ConvertTo(Float64Type, input)
	if err != nil {
		return nil, err
	}
	f := seconds.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < float64(minUnixSeconds) || f >= float64(maxUnixSeconds) {
		return nil, incorrectValue(input)
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*float64(time.Second))).UTC(), nil
}

func jsonText(input any) (string, bool) {
	switch v := input.(type) {
	case string:
		return v, gjson.Valid(v)
	case []byte:
		return string(v), gjson.ValidBytes(v)
	}
	return "", false
}

func convertJSON(_ *Pattern, input any) (any, error) {
	text, ok := jsonText(input)
	if !ok {
		return nil, incorrectValue(input)
	}
	return gjson.Parse(text).Value(), nil
}

func convertList(_ *Pattern, input any) (any, error) {
	if text, ok := jsonText(input); ok {
		doc := gjson.Parse(text)
		if !doc.IsArray() {
			return nil, incorrectValue(input)
		}
		return doc.Value(), nil
	}

	v := reflect.ValueOf(input)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, unsupported(input, ListType)
	}
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out, nil
}

func convertDict(_ *Pattern, input any) (any, error) {
	if text, ok := jsonText(input); ok {
		doc := gjson.Parse(text)
		if !doc.IsObject() {
			return nil, incorrectValue(input)
		}
		return doc.Value(), nil
	}

	v := reflect.ValueOf(input)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, unsupported(input, DictType)
	}
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}
