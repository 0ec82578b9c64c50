package nepattern

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

///////////////////////////////////////////////////////////////////////////////
// Conversion
///////////////////////////////////////////////////////////////////////////////

// TimeLayouts are tried in order when text is converted to time.Time.
var TimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

// ConvertTo converts input to a value of type t, or fails with
// ErrUnsupportedConversion. It is the converter used by TypeConvert and
// RegexConvert patterns built without one.
//
// Currently supports:
//   - any value already of type t, or implementing t when t is an interface
//   - text ([]byte or string) to string kinds
//   - text to int and uint kinds (with overflow checking)
//   - text to float and complex kinds (with overflow checking)
//   - text to bool (true/1/yes/on, false/0/no/off)
//   - text to []byte
//   - text to uuid.UUID, time.Time and time.Duration
//   - text to any type implementing encoding.TextUnmarshaler
//   - numbers to other numeric kinds, when no precision is lost
//   - numbers, bools and fmt.Stringer values to string kinds
func ConvertTo(t reflect.Type, input any) (any, error) {
	if t == nil {
		return nil, ErrNilOrigin
	}
	if input == nil {
		return nil, fmt.Errorf("%w: <nil> to %s", ErrUnsupportedConversion, typeName(t))
	}

	in := reflect.ValueOf(input)
	if in.Type() == t {
		return input, nil
	}
	if t.Kind() == reflect.Interface && in.Type().Implements(t) {
		return input, nil
	}

	dest := reflect.New(t).Elem()

	var err error
	switch v := input.(type) {
	case string:
		err = assignText(dest, v)
	case []byte:
		err = assignText(dest, string(v))
	default:
		err = assignValue(dest, in)
	}
	if err != nil {
		return nil, err
	}

	return dest.Interface(), nil
}

// ConvertAs is the generic form of ConvertTo.
func ConvertAs[T any](input any) (T, error) {
	var zero T
	out, err := ConvertTo(reflect.TypeOf((*T)(nil)).Elem(), input)
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func unsupported(from any, to reflect.Type) error {
	return fmt.Errorf("%w: %T to %s", ErrUnsupportedConversion, from, typeName(to))
}

// assignText sets dest from its textual representation.
func assignText(dest reflect.Value, text string) error {
	switch dest.Type() {
	case UUIDType:
		return assignUUID(dest, text)
	case TimeType:
		return assignTime(dest, text)
	case DurationType:
		return assignDuration(dest, text)
	}

	if unmarshaler, ok := dest.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if err := unmarshaler.UnmarshalText([]byte(text)); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
		}
		return nil
	}

	if text == "" && dest.Kind() != reflect.String && dest.Kind() != reflect.Slice {
		return fmt.Errorf("%w: empty text to %s", ErrUnsupportedConversion, typeName(dest.Type()))
	}

	switch dest.Kind() {
	case reflect.String:
		dest.SetString(text)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(dest, text)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return assignUint(dest, text)
	case reflect.Float32, reflect.Float64:
		return assignFloat(dest, text)
	case reflect.Complex64, reflect.Complex128:
		return assignComplex(dest, text)
	case reflect.Bool:
		return assignBool(dest, text)
	case reflect.Slice:
		if dest.Type().Elem().Kind() == reflect.Uint8 {
			dest.SetBytes([]byte(text))
			return nil
		}
	}

	return unsupported(text, dest.Type())
}

func assignInt(dest reflect.Value, text string) error {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	if dest.OverflowInt(n) {
		return fmt.Errorf("%w: %d overflows %s", ErrUnsupportedConversion, n, dest.Type())
	}
	dest.SetInt(n)
	return nil
}

func assignUint(dest reflect.Value, text string) error {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	if dest.OverflowUint(n) {
		return fmt.Errorf("%w: %d overflows %s", ErrUnsupportedConversion, n, dest.Type())
	}
	dest.SetUint(n)
	return nil
}

func assignFloat(dest reflect.Value, text string) error {
	f, err := strconv.ParseFloat(text, dest.Type().Bits())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	if dest.OverflowFloat(f) {
		return fmt.Errorf("%w: %g overflows %s", ErrUnsupportedConversion, f, dest.Type())
	}
	dest.SetFloat(f)
	return nil
}

func assignComplex(dest reflect.Value, text string) error {
	c, err := strconv.ParseComplex(text, dest.Type().Bits())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	if dest.OverflowComplex(c) {
		return fmt.Errorf("%w: %v overflows %s", ErrUnsupportedConversion, c, dest.Type())
	}
	dest.SetComplex(c)
	return nil
}

// assignBool accepts the usual command line spellings of a boolean, case
// insensitive, before falling back to strconv.ParseBool.
func assignBool(dest reflect.Value, text string) error {
	switch strings.ToLower(text) {
	case "true", "1", "yes", "y", "on":
		dest.SetBool(true)
		return nil
	case "false", "0", "no", "n", "off":
		dest.SetBool(false)
		return nil
	}
	b, err := strconv.ParseBool(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	dest.SetBool(b)
	return nil
}

func assignUUID(dest reflect.Value, text string) error {
	id, err := uuid.Parse(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	dest.Set(reflect.ValueOf(id))
	return nil
}

func assignTime(dest reflect.Value, text string) error {
	for _, layout := range TimeLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			dest.Set(reflect.ValueOf(ts))
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a known time layout", ErrUnsupportedConversion, text)
}

func assignDuration(dest reflect.Value, text string) error {
	d, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	dest.SetInt(int64(d))
	return nil
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// assignValue converts a non-text value into dest.
func assignValue(dest reflect.Value, in reflect.Value) error {
	switch {
	case dest.Kind() == reflect.String:
		if s, ok := in.Interface().(fmt.Stringer); ok {
			dest.SetString(s.String())
			return nil
		}
		k := in.Kind()
		if isIntKind(k) || isUintKind(k) || isFloatKind(k) || k == reflect.Bool {
			dest.SetString(fmt.Sprint(in.Interface()))
			return nil
		}
	case in.Kind() == reflect.Bool && dest.Kind() == reflect.Bool:
		dest.SetBool(in.Bool())
		return nil
	case isIntKind(in.Kind()):
		return assignFromInt(dest, in)
	case isUintKind(in.Kind()):
		return assignFromUint(dest, in)
	case isFloatKind(in.Kind()):
		return assignFromFloat(dest, in)
	}
	return unsupported(in.Interface(), dest.Type())
}

func lossy(in reflect.Value, dest reflect.Value) error {
	return fmt.Errorf("%w: %v does not fit %s", ErrUnsupportedConversion, in.Interface(), dest.Type())
}

func assignFromInt(dest reflect.Value, in reflect.Value) error {
	n := in.Int()
	switch k := dest.Kind(); {
	case dest.Type() == DurationType && in.Type() != Int64Type:
		// plain ints are not durations; only an explicit int64 count of
		// nanoseconds is accepted
		return unsupported(in.Interface(), dest.Type())
	case isIntKind(k):
		if dest.OverflowInt(n) {
			return lossy(in, dest)
		}
		dest.SetInt(n)
	case isUintKind(k):
		if n < 0 || dest.OverflowUint(uint64(n)) {
			return lossy(in, dest)
		}
		dest.SetUint(uint64(n))
	case isFloatKind(k):
		f := float64(n)
		if int64(f) != n || dest.OverflowFloat(f) {
			return lossy(in, dest)
		}
		dest.SetFloat(f)
	default:
		return unsupported(in.Interface(), dest.Type())
	}
	return nil
}

func assignFromUint(dest reflect.Value, in reflect.Value) error {
	n := in.Uint()
	switch k := dest.Kind(); {
	case isIntKind(k):
		if n > math.MaxInt64 || dest.OverflowInt(int64(n)) {
			return lossy(in, dest)
		}
		dest.SetInt(int64(n))
	case isUintKind(k):
		if dest.OverflowUint(n) {
			return lossy(in, dest)
		}
		dest.SetUint(n)
	case isFloatKind(k):
		f := float64(n)
		if uint64(f) != n || dest.OverflowFloat(f) {
			return lossy(in, dest)
		}
		dest.SetFloat(f)
	default:
		return unsupported(in.Interface(), dest.Type())
	}
	return nil
}

func assignFromFloat(dest reflect.Value, in reflect.Value) error {
	f := in.Float()
	switch k := dest.Kind(); {
	case isFloatKind(k):
		if dest.OverflowFloat(f) {
			return lossy(in, dest)
		}
		dest.SetFloat(f)
	case isIntKind(k):
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || dest.OverflowInt(int64(f)) {
			return lossy(in, dest)
		}
		dest.SetInt(int64(f))
	case isUintKind(k):
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || dest.OverflowUint(uint64(f)) {
			return lossy(in, dest)
		}
		dest.SetUint(uint64(f))
	default:
		return unsupported(in.Interface(), dest.Type())
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Zeroing
///////////////////////////////////////////////////////////////////////////////

// zeroStructFields recursively sets all settable fields of a struct to
// their zero values.
func zeroStructFields(value reflect.Value) {
	if value.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && !isSpecialStructType(field.Type()) {
			zeroStructFields(field)
		} else {
			field.Set(reflect.Zero(field.Type()))
		}
	}
}

// isSpecialStructType reports whether a struct type is treated as a single
// value rather than recursed into.
func isSpecialStructType(t reflect.Type) bool {
	return t == TimeType || t == UUIDType
}
