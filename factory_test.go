package nepattern

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	p := Of(IntType)
	assert.Equal(t, Keep, p.Mode())
	assert.Equal(t, "int", p.String())

	got, err := p.Match(3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = p.Match("3")
	assert.ErrorIs(t, err, ErrMatchFailed)
	_, err = p.Match(int64(3))
	assert.ErrorIs(t, err, ErrMatchFailed)

	assert.Panics(t, func() { Of(nil) })
}

func TestOfType(t *testing.T) {
	p := OfType[Version]()
	assert.Equal(t, "nepattern.Version", p.String())
	assert.True(t, p.Exec(Version{1, 0}).IsSuccess())
	assert.True(t, p.Exec("v1.0").IsFailed())
}

func TestOn(t *testing.T) {
	t.Run("Literal", func(t *testing.T) {
		p := On("--force")
		assert.Equal(t, "--force", p.String())
		assert.True(t, p.Exec("--force").IsSuccess())
		assert.True(t, p.Exec("--forc").IsFailed())
	})

	t.Run("Structural", func(t *testing.T) {
		p := On([]int{1, 2})
		assert.True(t, p.Exec([]int{1, 2}).IsSuccess())
		assert.True(t, p.Exec([]int{2, 1}).IsFailed())
		assert.Equal(t, reflect.TypeOf([]int{}), p.Origin())
	})

	t.Run("Nil", func(t *testing.T) {
		p := On(nil)
		assert.Equal(t, AnyType, p.Origin())
		assert.True(t, p.Exec(nil).IsSuccess())
		assert.True(t, p.Exec(0).IsFailed())
	})
}

func TestRegexAndConvert(t *testing.T) {
	re, err := Regex(`v(\d+\.\d+)`)
	require.NoError(t, err)
	assert.Equal(t, "1.2", re.Exec("v1.2").Value())

	_, err = Regex(`^v`)
	assert.ErrorIs(t, err, ErrAnchoredSource)

	conv, err := Convert(Float64Type, `[\d.]+`)
	require.NoError(t, err)
	assert.Equal(t, 2.5, conv.Exec("2.5").Value())
	assert.True(t, conv.Exec("2.5.1").IsFailed())
}

func TestUnion(t *testing.T) {
	u := Union(Int, Bool, nil)
	assert.Equal(t, "int|bool", u.String())

	tests := []struct {
		name  string
		input any
		want  any
		ok    bool
	}{
		{"first member wins", "1", 1, true},
		{"second member", "yes", true, true},
		{"typed input", false, false, true},
		{"no member", "maybe", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := u.Exec(tt.input)
			assert.Equal(t, tt.ok, res.IsSuccess())
			if tt.ok {
				assert.Equal(t, tt.want, res.Value())
			}
		})
	}

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, Union().Exec("x").IsFailed())
	})

	t.Run("NilValue", func(t *testing.T) {
		require.True(t, Any.Exec(nil).IsSuccess())

		for _, u := range []*Pattern{Union(Any), Union(Int, Any)} {
			res := u.Exec(nil)
			require.True(t, res.IsSuccess(), "%s: got %s", u, res)
			v, ok := res.TryValue()
			assert.True(t, ok)
			assert.Nil(t, v)
		}

		assert.True(t, Union(Int, Bool).Exec(nil).IsFailed())
		assert.True(t, Union(Any).Reverse().Exec(nil).IsFailed())
	})
}
