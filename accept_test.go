package nepattern

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Celsius float64

type Sensor struct{ ID string }

func TestTypeTags(t *testing.T) {
	tests := []struct {
		tag   string
		input any
		want  bool
	}{
		{"string", "x", true},
		{"Str", "x", true},
		{"string", 1, false},
		{"int", 1, true},
		{"int", uint8(1), true},
		{"int", time.Second, false},
		{"int", 1.5, false},
		{"int64", int64(1), true},
		{"int64", 1, false},
		{"float", 1.5, true},
		{"float", Celsius(1.5), false},
		{"number", 1, true},
		{"number", 1.5, true},
		{"number", "1", false},
		{"bool", true, true},
		{"uuid", uuid.New(), true},
		{"time", time.Now(), true},
		{"duration", time.Second, true},
		{"bytes", []byte("x"), true},
		{"list", []int{1}, true},
		{"list", []byte("x"), false},
		{"dict", map[string]int{}, true},
		{"any", struct{}{}, true},
		{"any", nil, false},
		{"sensor", Sensor{}, true},
		{"nepattern.Sensor", Sensor{}, true},
		{"Celsius", Celsius(1), true},
		{"sensor", "Sensor", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Tag(tt.tag).Matches(tt.input), "%s on %#v", tt.tag, tt.input)
		})
	}
}

func TestRegisterTypeTag(t *testing.T) {
	err := RegisterTypeTag("Positive", func(v any) bool {
		n, ok := v.(int)
		return ok && n > 0
	})
	require.NoError(t, err)

	tag, err := LookupTag("positive")
	require.NoError(t, err)
	assert.True(t, tag.Matches(3))
	assert.False(t, tag.Matches(-3))
	assert.Contains(t, TypeTagNames(), "positive")

	_, err = LookupTag("never-registered")
	assert.ErrorIs(t, err, ErrUnknownTypeTag)

	assert.ErrorIs(t, RegisterTypeTag("", func(any) bool { return true }), ErrUnknownTypeTag)
	assert.ErrorIs(t, RegisterTypeTag("x", nil), ErrUnknownTypeTag)
}

func TestTagOf(t *testing.T) {
	tag := TagOf(reflect.TypeOf(Celsius(0)))
	assert.Equal(t, "nepattern.Celsius", tag.String())
	assert.True(t, tag.Matches(Celsius(2)))
	assert.False(t, tag.Matches(2.0))
}

func TestAccepts(t *testing.T) {
	assert.True(t, accepts("x", nil, []TypeTag{Tag("int"), Tag("string")}))
	assert.True(t, accepts(5, []*Pattern{On(5)}, nil))
	assert.False(t, accepts(6, []*Pattern{On(5)}, []TypeTag{Tag("string")}))
}
