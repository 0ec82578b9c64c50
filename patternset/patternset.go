// Package patternset loads declarative pattern definitions from TOML or YAML
// and compiles them into nepattern Patterns.
//
//	[patterns.port]
//	mode = "type_convert"
//	origin = "int"
//	accepts = ["str"]
//	min = 1
//	max = 65535
package patternset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	nepattern "github.com/SimonDaKappa/go-nepattern"
	"github.com/SimonDaKappa/go-nepattern/internal/logging"
)

var (
	ErrUnknownFormat     = errors.New("unknown pattern set format")
	ErrUnknownOrigin     = errors.New("unknown origin type")
	ErrInvalidDefinition = errors.New("invalid pattern definition")
	ErrCyclicDefinition  = errors.New("pattern definitions reference each other in a cycle")
)

// Supported formats, also matched against file extensions.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

type document struct {
	Patterns map[string]Definition `koanf:"patterns"`
}

// Set is a compiled group of named patterns.
type Set struct {
	names    []string
	patterns map[string]*nepattern.Pattern
}

// Names returns the pattern names in sorted order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Pattern returns the compiled pattern called name.
func (s *Set) Pattern(name string) (*nepattern.Pattern, bool) {
	p, ok := s.patterns[name]
	return p, ok
}

// Len returns the number of patterns in the set.
func (s *Set) Len() int { return len(s.names) }

// Register adds every pattern to reg under its definition name. It stops at
// the first name already taken.
func (s *Set) Register(reg *nepattern.PatternRegistry) error {
	for _, name := range s.names {
		if err := reg.Register(name, s.patterns[name]); err != nil {
			return fmt.Errorf("failed to register pattern %q: %w", name, err)
		}
	}
	return nil
}

// Loader compiles definitions, resolving names that are not defined in the
// set against Registry.
type Loader struct {
	Registry *nepattern.PatternRegistry
}

// NewLoader returns a Loader for reg, or for the default registry when reg
// is nil.
func NewLoader(reg *nepattern.PatternRegistry) *Loader {
	if reg == nil {
		reg = nepattern.DefaultRegistry()
	}
	return &Loader{Registry: reg}
}

// Load reads and compiles the pattern-set file at path. The format is taken
// from the file extension.
func (l *Loader) Load(path string) (*Set, error) {
	parser, err := parserFor(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load pattern set from %s: %w", path, err)
	}
	return l.compile(k)
}

// LoadBytes compiles a pattern-set document in the given format.
func (l *Loader) LoadBytes(data []byte, format string) (*Set, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, parser); err != nil {
		return nil, fmt.Errorf("failed to parse pattern set: %w", err)
	}
	return l.compile(k)
}

func parserFor(format string) (koanf.Parser, error) {
	switch strings.ToLower(format) {
	case FormatTOML:
		return toml.Parser(), nil
	case FormatYAML, "yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (l *Loader) compile(k *koanf.Koanf) (*Set, error) {
	var doc document
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &doc,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &doc, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to decode pattern definitions: %w", err)
	}

	c := &compiler{
		registry: l.Registry,
		defs:     doc.Patterns,
		done:     make(map[string]*nepattern.Pattern, len(doc.Patterns)),
		visiting: make(map[string]bool),
	}

	names := make([]string, 0, len(doc.Patterns))
	for name := range doc.Patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := c.compile(name); err != nil {
			return nil, err
		}
	}

	return &Set{names: names, patterns: c.done}, nil
}

// compiler builds definitions depth first so that a definition is compiled
// after every definition it refers to.
type compiler struct {
	registry *nepattern.PatternRegistry
	defs     map[string]Definition
	done     map[string]*nepattern.Pattern
	visiting map[string]bool
	path     []string
}

func (c *compiler) lookup(name string) (*nepattern.Pattern, error) {
	if _, ok := c.defs[name]; ok {
		return c.compile(name)
	}
	return c.registry.Lookup(name)
}

func (c *compiler) compile(name string) (*nepattern.Pattern, error) {
	if p, ok := c.done[name]; ok {
		return p, nil
	}
	if c.visiting[name] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCyclicDefinition, strings.Join(c.path, " -> "), name)
	}

	c.visiting[name] = true
	c.path = append(c.path, name)
	defer func() {
		delete(c.visiting, name)
		c.path = c.path[:len(c.path)-1]
	}()

	def := c.defs[name]
	for _, ref := range def.references() {
		if _, ok := c.defs[ref]; ok {
			if _, err := c.compile(ref); err != nil {
				return nil, err
			}
		}
	}

	p, err := c.build(name, def)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", name, err)
	}

	log := logging.GetLogger("patternset")
	log.Debug().
		Str("name", name).
		Str("pattern", p.String()).
		Msg("compiled pattern")

	c.done[name] = p
	return p, nil
}

func (c *compiler) build(name string, def Definition) (*nepattern.Pattern, error) {
	mode, err := def.mode()
	if err != nil {
		return nil, err
	}
	origin, err := def.origin(mode)
	if err != nil {
		return nil, err
	}

	opts := nepattern.PatternOpts{
		Alias: def.Alias,
		Anti:  def.Anti,
	}
	if opts.Alias == "" {
		opts.Alias = name
	}

	if def.Previous != "" {
		if opts.Previous, err = nepattern.ResolveExpr(def.Previous, c.lookup); err != nil {
			return nil, fmt.Errorf("failed to resolve previous: %w", err)
		}
	}
	for _, expr := range def.Accepts {
		p, err := nepattern.ResolveExpr(expr, c.lookup)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve accepts: %w", err)
		}
		opts.PatternAccepts = append(opts.PatternAccepts, p)
	}
	if opts.TypeAccepts, err = def.typeTags(); err != nil {
		return nil, err
	}
	if opts.Validators, err = def.validators(); err != nil {
		return nil, err
	}

	return nepattern.New(origin, def.Source, mode, opts)
}

///////////////////////////////////////////////////////////////////////////////
// Package Functions
///////////////////////////////////////////////////////////////////////////////

// Load compiles the file at path against the default registry.
func Load(path string) (*Set, error) {
	return NewLoader(nil).Load(path)
}

// LoadBytes compiles data against the default registry.
func LoadBytes(data []byte, format string) (*Set, error) {
	return NewLoader(nil).LoadBytes(data, format)
}
