package patternset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nepattern "github.com/SimonDaKappa/go-nepattern"
)

const testSetTOML = `
[patterns.port]
mode = "type_convert"
origin = "int"
accepts = ["str"]
min = 1
max = 65535

[patterns.level]
source = "debug|info|warn"

[patterns.endpoint]
accepts = ["level|port"]

[patterns.not_level]
accepts = ["!level"]

[patterns.name]
type_accepts = ["string"]
min_len = 2
max_len = 5

[patterns.color]
type_accepts = ["string"]
choices = ["red", "green"]

[patterns.quiet]
source = "debug|info|warn"
anti = true
`

const testSetYAML = `
patterns:
  version:
    mode: regex_convert
    source: 'v(\d+)'
    origin: int
  retries:
    mode: type_convert
    origin: int
    previous: str
    max: 5
`

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	registry, err := nepattern.NewPatternRegistry(nepattern.PatternRegistryOpts{})
	require.NoError(t, err)
	return NewLoader(registry)
}

func TestLoadBytesTOML(t *testing.T) {
	set, err := newTestLoader(t).LoadBytes([]byte(testSetTOML), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"color", "endpoint", "level", "name", "not_level", "port", "quiet"},
		set.Names())
	assert.Equal(t, 7, set.Len())

	tests := []struct {
		pattern string
		input   any
		want    any
		ok      bool
	}{
		{"port", "8080", 8080, true},
		{"port", "0", nil, false},
		{"port", "70000", nil, false},
		{"port", "http", nil, false},
		{"level", "info", "info", true},
		{"level", "infos", nil, false},
		{"endpoint", "warn", "warn", true},
		{"endpoint", "443", "443", true},
		{"endpoint", "x", nil, false},
		{"not_level", "hello", "hello", true},
		{"not_level", "debug", nil, false},
		{"name", "ab", "ab", true},
		{"name", "héllo", "héllo", true},
		{"name", "a", nil, false},
		{"name", "abcdef", nil, false},
		{"name", 12, nil, false},
		{"color", "red", "red", true},
		{"color", "blue", nil, false},
		{"quiet", "trace", "trace", true},
		{"quiet", "debug", nil, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.pattern, tt.input), func(t *testing.T) {
			p, ok := set.Pattern(tt.pattern)
			require.True(t, ok)

			res := p.Exec(tt.input)
			if !tt.ok {
				assert.True(t, res.IsFailed(), "got %s", res)
				return
			}
			require.True(t, res.IsSuccess(), "got %s", res)
			assert.Equal(t, tt.want, res.Value())
		})
	}

	t.Run("Display", func(t *testing.T) {
		p, _ := set.Pattern("port")
		assert.Equal(t, "port", p.String())
		assert.Equal(t, nepattern.TypeConvert, p.Mode())
		assert.Equal(t, nepattern.IntType, p.Origin())

		p, _ = set.Pattern("quiet")
		assert.Equal(t, "!quiet", p.String())
	})
}

func TestLoadBytesYAML(t *testing.T) {
	set, err := newTestLoader(t).LoadBytes([]byte(testSetYAML), "yml")
	require.NoError(t, err)

	version, ok := set.Pattern("version")
	require.True(t, ok)
	assert.Equal(t, 12, version.Exec("v12").Value())
	assert.True(t, version.Exec("12").IsFailed())

	retries, ok := set.Pattern("retries")
	require.True(t, ok)
	assert.Equal(t, 3, retries.Exec(3).Value())
	assert.True(t, retries.Exec(9).IsFailed())
	assert.Same(t, nepattern.String, retries.Previous())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "patterns.toml")
	require.NoError(t, os.WriteFile(path, []byte(testSetTOML), 0o644))

	set, err := newTestLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, set.Len())

	t.Run("UnknownExtension", func(t *testing.T) {
		_, err := newTestLoader(t).Load(filepath.Join(dir, "patterns.json"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := newTestLoader(t).Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name: "cycle",
			doc: `
[patterns.a]
accepts = ["b"]
[patterns.b]
previous = "c|str"
[patterns.c]
accepts = ["!a"]
`,
			wantErr: ErrCyclicDefinition,
		},
		{
			name: "self reference",
			doc: `
[patterns.loop]
previous = "loop"
`,
			wantErr: ErrCyclicDefinition,
		},
		{
			name: "unknown origin",
			doc: `
[patterns.x]
mode = "type_convert"
origin = "complex128"
`,
			wantErr: ErrUnknownOrigin,
		},
		{
			name: "convert without origin",
			doc: `
[patterns.x]
mode = "type_convert"
`,
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "unknown mode",
			doc: `
[patterns.x]
mode = "transmute"
`,
			wantErr: nepattern.ErrInvalidMode,
		},
		{
			name: "unknown reference",
			doc: `
[patterns.x]
accepts = ["nope"]
`,
			wantErr: nepattern.ErrPatternNotFound,
		},
		{
			name: "unknown type tag",
			doc: `
[patterns.x]
type_accepts = ["widget"]
`,
			wantErr: nepattern.ErrUnknownTypeTag,
		},
		{
			name: "inverted bounds",
			doc: `
[patterns.x]
min = 10
max = 1
`,
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "anchored source",
			doc: `
[patterns.x]
source = "^abc"
`,
			wantErr: nepattern.ErrAnchoredSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader(t).LoadBytes([]byte(tt.doc), FormatTOML)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("UnknownField", func(t *testing.T) {
		_, err := newTestLoader(t).LoadBytes([]byte("[patterns.x]\nsauce = \"a\"\n"), FormatTOML)
		assert.Error(t, err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := LoadBytes([]byte("{}"), "json")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestSetRegister(t *testing.T) {
	loader := newTestLoader(t)
	set, err := loader.LoadBytes([]byte(testSetTOML), FormatTOML)
	require.NoError(t, err)

	require.NoError(t, set.Register(loader.Registry))

	p, err := loader.Registry.Resolve("port|level")
	require.NoError(t, err)
	assert.Equal(t, 22, p.Exec("22").Value())
	assert.Equal(t, "warn", p.Exec("warn").Value())

	err = set.Register(loader.Registry)
	assert.ErrorIs(t, err, nepattern.ErrPatternAlreadyRegistered)
}
