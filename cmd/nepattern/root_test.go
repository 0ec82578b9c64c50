package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	nepattern "github.com/SimonDaKappa/go-nepattern"
	"github.com/SimonDaKappa/go-nepattern/internal/logging"
	"github.com/SimonDaKappa/go-nepattern/patternset"
)

const portsTOML = `
[patterns.port]
mode = "type_convert"
origin = "int"
accepts = ["str"]
min = 1
max = 65535

[patterns.proto]
source = "tcp|udp"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLIWithConfig runs the command tree against a config file holding
// config and returns stdout.
func runCLIWithConfig(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	cfgPath := writeFile(t, "config.toml", config)

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithConfig(t, "", args...)
}

func TestExecText(t *testing.T) {
	t.Run("AllValid", func(t *testing.T) {
		out, err := runCLI(t, "exec", "int", "42", "7")
		require.NoError(t, err)
		assert.Equal(t, "int\nvalid 42 -> 42 (int)\nvalid 7 -> 7 (int)\n", out)
	})

	t.Run("Failure", func(t *testing.T) {
		out, err := runCLI(t, "exec", "int", "42", "x")
		assert.ErrorIs(t, err, ErrTokensFailed)
		assert.Contains(t, out, "valid 42 -> 42 (int)\n")
		assert.Contains(t, out, "error x: match failed")
	})

	t.Run("Default", func(t *testing.T) {
		out, err := runCLI(t, "exec", "--default", "8080", "int", "http")
		require.NoError(t, err)
		assert.Equal(t, "int\ndefault http -> 8080 (int)\n", out)
	})

	t.Run("InvalidDefault", func(t *testing.T) {
		_, err := runCLI(t, "exec", "--default", "eighty", "int", "http")
		assert.ErrorIs(t, err, ErrInvalidDefault)
	})

	t.Run("Reverse", func(t *testing.T) {
		out, err := runCLI(t, "exec", "--reverse", "int", "abc")
		require.NoError(t, err)
		assert.Equal(t, "!int\nvalid abc -> abc (string)\n", out)
	})

	t.Run("Union", func(t *testing.T) {
		out, err := runCLI(t, "exec", "int|bool", "off")
		require.NoError(t, err)
		assert.Equal(t, "int|bool\nvalid off -> false (bool)\n", out)
	})

	t.Run("UnknownPattern", func(t *testing.T) {
		_, err := runCLI(t, "exec", "nope", "1")
		assert.ErrorIs(t, err, nepattern.ErrPatternNotFound)
	})

	t.Run("MissingTokens", func(t *testing.T) {
		_, err := runCLI(t, "exec", "int")
		assert.Error(t, err)
	})
}

func TestExecStructuredOutput(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		out, err := runCLI(t, "exec", "int", "42", "-o", "json")
		require.NoError(t, err)

		var report execReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "int", report.Expr)
		require.Len(t, report.Results, 1)
		assert.Equal(t, "valid", report.Results[0].Flag)
		assert.Equal(t, 42.0, report.Results[0].Value)
		assert.Equal(t, "int", report.Results[0].Type)
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := runCLI(t, "exec", "bool", "yes", "maybe", "--output", "yaml")
		assert.ErrorIs(t, err, ErrTokensFailed)

		var report execReport
		require.NoError(t, yaml.Unmarshal([]byte(out), &report))
		require.Len(t, report.Results, 2)
		assert.Equal(t, true, report.Results[0].Value)
		assert.Equal(t, "error", report.Results[1].Flag)
		assert.NotEmpty(t, report.Results[1].Error)
	})

	t.Run("TOML", func(t *testing.T) {
		out, err := runCLI(t, "exec", "str", "hello", "--output", "toml")
		require.NoError(t, err)

		var report execReport
		require.NoError(t, toml.Unmarshal([]byte(out), &report))
		assert.Equal(t, "str", report.Pattern)
		require.Len(t, report.Results, 1)
		assert.Equal(t, "hello", report.Results[0].Value)
	})

	t.Run("TOMLTable", func(t *testing.T) {
		out, err := runCLI(t, "exec", "dict", `{"b":1}`, "--output", "toml")
		require.NoError(t, err)

		var report execReport
		require.NoError(t, toml.Unmarshal([]byte(out), &report))
		require.Len(t, report.Results, 1)
		assert.Equal(t, map[string]any{"b": 1.0}, report.Results[0].Value)
	})

	t.Run("TOMLNull", func(t *testing.T) {
		tests := []struct {
			name     string
			pattern  string
			token    string
			wantPath string
		}{
			{"map value", "dict", `{"a":null,"b":1}`, "results[0].value.a"},
			{"list element", "json", `[1,null]`, "results[0].value[1]"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out, err := runCLI(t, "exec", tt.pattern, tt.token, "-o", "toml")
				require.ErrorIs(t, err, ErrTOMLNull)
				assert.Contains(t, err.Error(), tt.wantPath)
				assert.Empty(t, out)
			})
		}

		t.Run("JSONKeepsNull", func(t *testing.T) {
			out, err := runCLI(t, "exec", "dict", `{"a":null}`, "-o", "json")
			require.NoError(t, err)
			assert.Contains(t, out, `"a": null`)
		})
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := runCLI(t, "exec", "int", "1", "-o", "xml")
		assert.ErrorIs(t, err, ErrUnknownOutput)
	})
}

func TestList(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		out, err := runCLI(t, "list")
		require.NoError(t, err)
		assert.Regexp(t, `^NAME\s+MODE\s+ORIGIN\s+DISPLAY\n`, out)
		assert.Regexp(t, `\nhex\s+regex_convert\s+int\s+hex\n`, out)
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := runCLI(t, "list", "-o", "json")
		require.NoError(t, err)

		var report patternReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Len(t, report.Patterns, len(nepattern.Builtins()))
	})

	t.Run("WithDefs", func(t *testing.T) {
		defs := writeFile(t, "ports.toml", portsTOML)
		out, err := runCLI(t, "--defs", defs, "list", "-o", "json")
		require.NoError(t, err)

		var report patternReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Contains(t, report.Patterns, patternInfo{
			Name:    "port",
			Mode:    "type_convert",
			Origin:  "int",
			Display: "port",
		})
	})
}

func TestCheck(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path := writeFile(t, "ports.toml", portsTOML)
		out, err := runCLI(t, "check", path)
		require.NoError(t, err)
		assert.Contains(t, out, "proto")
		assert.Contains(t, out, "ok 2 patterns in "+path+"\n")
	})

	t.Run("Cycle", func(t *testing.T) {
		path := writeFile(t, "cycle.yaml", "patterns:\n  a:\n    previous: a\n")
		_, err := runCLI(t, "check", path)
		assert.ErrorIs(t, err, patternset.ErrCyclicDefinition)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := runCLI(t, "check", filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})
}

func TestConfig(t *testing.T) {
	t.Run("FileSettings", func(t *testing.T) {
		defs := writeFile(t, "ports.toml", portsTOML)
		out, err := runCLIWithConfig(t, "output = \"json\"\ndefs = [\""+filepath.ToSlash(defs)+"\"]\n", "exec", "port", "443")
		require.NoError(t, err)

		var report execReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "port", report.Pattern)
		assert.Equal(t, 443.0, report.Results[0].Value)
	})

	t.Run("FlagOverridesConfig", func(t *testing.T) {
		out, err := runCLIWithConfig(t, "output = \"json\"\n", "exec", "int", "1", "-o", "text")
		require.NoError(t, err)
		assert.Equal(t, "int\nvalid 1 -> 1 (int)\n", out)
	})

	t.Run("Env", func(t *testing.T) {
		t.Setenv("NEPATTERN_OUTPUT", "yaml")
		t.Setenv("NEPATTERN_DEFS", "a.toml,b.toml")
		t.Setenv("NEPATTERN_COLOR", "false")

		cfg, err := LoadConfig(writeFile(t, "config.toml", ""))
		require.NoError(t, err)
		assert.Equal(t, OutputYAML, cfg.Output)
		assert.Equal(t, []string{"a.toml", "b.toml"}, cfg.Defs)
		assert.False(t, cfg.Color)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, "config.yaml", "color: true\n"))
		require.NoError(t, err)
		assert.Equal(t, OutputText, cfg.Output)
		assert.Empty(t, cfg.Defs)
		assert.True(t, cfg.Color)
	})

	t.Run("BadOutput", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "config.toml", "output = \"csv\"\n"))
		assert.ErrorIs(t, err, ErrUnknownOutput)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestVerboseLogging(t *testing.T) {
	t.Cleanup(logging.Disable)

	defs := writeFile(t, "ports.toml", portsTOML)
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-vv", "--config", writeFile(t, "config.toml", ""), "--defs", defs, "list"})

	require.NoError(t, cmd.Execute())

	logs := stderr.String()
	assert.Contains(t, logs, "Command started")
	assert.Contains(t, logs, "compiled pattern")
	assert.Contains(t, logs, "Registered pattern set")
	assert.NotContains(t, stdout.String(), "Command started")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nepattern "+Version+"\n")
	assert.Contains(t, out, "Git Commit: "+GitCommit)
}
