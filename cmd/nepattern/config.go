package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "NEPATTERN_"

var ErrUnknownOutput = errors.New("unknown output format")

// Output formats understood by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputTOML = "toml"
)

// Config holds the CLI settings. Sources are layered as defaults, then the
// config file, then NEPATTERN_* environment variables.
type Config struct {
	// Output is the default --output format.
	Output string `koanf:"output"`
	// Defs are pattern-set files registered before every command.
	Defs []string `koanf:"defs"`
	// Color enables styled output on terminals.
	Color bool `koanf:"color"`
}

func defaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"output": OutputText,
		"defs":   []string{},
		"color":  true,
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/nepattern/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "nepattern", "config.toml")
}

// LoadConfig builds the Config. An empty path selects DefaultConfigPath,
// which may be absent; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		parser := koanf.Parser(toml.Parser())
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	// 3. Env vars
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := checkOutput(cfg.Output); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkOutput(format string) error {
	switch format {
	case OutputText, OutputJSON, OutputYAML, OutputTOML:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}
}
