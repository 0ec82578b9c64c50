package nepattern

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuiltins(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	tests := []struct {
		name    string
		pattern *Pattern
		input   any
		want    any
		wantErr bool
	}{
		{"any_keeps", Any, []int{1}, []int{1}, false},
		{"str_text", String, "x", "x", false},
		{"str_number", String, 1, nil, true},
		{"any_str_number", AnyString, 12, "12", false},
		{"any_str_slice", AnyString, []int{1, 2}, "[1 2]", false},

		{"int_text", Int, "42", 42, false},
		{"int_signed", Int, "-7", -7, false},
		{"int_spaces", Int, " 8 ", 8, false},
		{"int_typed", Int, 5, 5, false},
		{"int_from_uint", Int, uint8(5), 5, false},
		{"int_whole_float", Int, 5.0, 5, false},
		{"int_fraction", Int, 5.5, nil, true},
		{"int_hex_text", Int, "0x10", nil, true},
		{"int_word", Int, "five", nil, true},
		{"int_bool", Int, true, nil, true},

		{"float_text", Float, "1.5", 1.5, false},
		{"float_exp", Float, "1e3", 1000.0, false},
		{"float_int", Float, 2, 2.0, false},
		{"float_inf", Float, "inf", nil, true},

		{"bool_text", Bool, "yes", true, false},
		{"bool_typed", Bool, false, false, false},
		{"bool_number", Bool, 1, nil, true},

		{"hex_prefixed", Hex, "0xff", 255, false},
		{"hex_plain", Hex, "1F", 31, false},
		{"hex_invalid", Hex, "0xzz", nil, true},

		{"uuid_text", UUID, id.String(), id, false},
		{"uuid_bytes", UUID, id[:], id, false},
		{"uuid_invalid", UUID, "nope", nil, true},

		{"url_valid", URL, "https://example.com/a?b=c", "https://example.com/a?b=c", false},
		{"url_no_scheme", URL, "example.com", nil, true},

		{"email_valid", Email, "dev@example.org", "dev@example.org", false},
		{"email_invalid", Email, "dev@", nil, true},

		{"ip_valid", IP, "192.168.0.1", "192.168.0.1", false},
		{"ip_octet_range", IP, "256.1.1.1", nil, true},
		{"ip_short", IP, "1.1.1", nil, true},

		{"datetime_text", Datetime, "2024-02-03", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), false},
		{"datetime_unix", Datetime, 86400, time.Unix(86400, 0).UTC(), false},
		{"datetime_invalid", Datetime, "yesterday", nil, true},
		{"datetime_fraction", Datetime, 1.5, time.Unix(1, 5e8).UTC(), false},
		{"datetime_negative", Datetime, -86400, time.Unix(-86400, 0).UTC(), false},
		{"datetime_nan", Datetime, math.NaN(), nil, true},
		{"datetime_inf", Datetime, math.Inf(1), nil, true},
		{"datetime_neg_inf", Datetime, math.Inf(-1), nil, true},
		{"datetime_far_past", Datetime, -1e300, nil, true},
		{"datetime_overflow", Datetime, 1e19, nil, true},
		{"datetime_year_10000", Datetime, 253402300800, nil, true},

		{"duration_text", Duration, "1h", time.Hour, false},
		{"duration_typed", Duration, time.Minute, time.Minute, false},
		{"duration_invalid", Duration, "1 hour", nil, true},

		{"json_object", JSON, `{"a":1}`, map[string]any{"a": 1.0}, false},
		{"json_number", JSON, `3`, 3.0, false},
		{"json_null", JSON, `null`, nil, true},
		{"json_invalid", JSON, `{a}`, nil, true},

		{"list_json", List, `[1,"a"]`, []any{1.0, "a"}, false},
		{"list_slice", List, []string{"a", "b"}, []any{"a", "b"}, false},
		{"list_object", List, `{"a":1}`, nil, true},

		{"dict_json", Dict, `{"k":"v"}`, map[string]any{"k": "v"}, false},
		{"dict_map", Dict, map[string]int{"k": 1}, map[string]any{"k": 1}, false},
		{"dict_array", Dict, `[1]`, nil, true},
		{"dict_int_keys", Dict, map[int]int{1: 1}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.pattern.Exec(tt.input)

			if tt.wantErr {
				assert.True(t, res.IsFailed(), "got %s", res)
				assert.ErrorIs(t, res.Err(), ErrMatchFailed)
				return
			}

			assert.True(t, res.IsSuccess(), "got %s", res)
			assert.Equal(t, tt.want, res.Value())
		})
	}
}

func TestBuiltinNames(t *testing.T) {
	builtins := Builtins()
	assert.Len(t, builtins, len(builtinOrder))
	for name, p := range builtins {
		assert.Equal(t, name, p.String())
	}
}
