package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrTOMLNull is returned for reports holding a null, which TOML has no
// way to write.
var ErrTOMLNull = errors.New("toml cannot represent null values")

// writeReport encodes report in a structured format, or calls text for
// OutputText.
func writeReport(w io.Writer, format string, report any, text func(io.Writer) error) error {
	switch format {
	case OutputText:
		return text(w)
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case OutputTOML:
		if path, ok := nullPath(reflect.ValueOf(report), ""); ok {
			return fmt.Errorf("%w: %s is null, use --output json or yaml", ErrTOMLNull, path)
		}
		return toml.NewEncoder(w).Encode(report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}
}

// nullPath returns the path of the first nil interface under v. Struct
// fields tagged omitempty may be nil.
func nullPath(v reflect.Value, path string) (string, bool) {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return path, v.Kind() == reflect.Interface
		}
		return nullPath(v.Elem(), path)

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, opts, _ := strings.Cut(field.Tag.Get("toml"), ",")
			if name == "" {
				name = field.Name
			}
			fv := v.Field(i)
			if fv.Kind() == reflect.Interface && fv.IsNil() && strings.Contains(opts, "omitempty") {
				continue
			}
			if p, ok := nullPath(fv, joinPath(path, name)); ok {
				return p, true
			}
		}

	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		for _, key := range keys {
			if p, ok := nullPath(v.MapIndex(key), joinPath(path, fmt.Sprint(key))); ok {
				return p, true
			}
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if p, ok := nullPath(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); ok {
				return p, true
			}
		}
	}
	return "", false
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
