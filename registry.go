package nepattern

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	ErrPatternAlreadyRegistered = errors.New("a pattern with this name is already registered")
	ErrPatternNotFound          = errors.New("no pattern registered with this name")
	ErrNoPatternForType         = errors.New("no pattern registered for this type")
	ErrEmptyPatternName         = errors.New("pattern name cannot be empty")
	ErrNilPattern               = errors.New("pattern cannot be nil")
	ErrEmptyPatternExpr         = errors.New("pattern expression cannot be empty")
)

// PatternRegistry maps names to Patterns and resolves pattern expressions.
//
// Besides plain names, Resolve understands two operators:
//   - "!expr" is the negation of expr
//   - "a|b" is the union of a and b
//
// Negation binds tighter than union, so "!int|float" is "(!int)|float".
//
// The first pattern registered for an origin type also becomes the pattern
// returned by LookupType for that type.
type PatternRegistry struct {
	mu      sync.RWMutex
	byName  map[string]*Pattern
	byType  map[reflect.Type]*Pattern
	ordered []string
}

type PatternRegistryOpts struct {
	Patterns        map[string]*Pattern
	ExcludeDefaults bool
}

func NewPatternRegistry(opts PatternRegistryOpts) (*PatternRegistry, error) {
	reg := &PatternRegistry{
		byName: make(map[string]*Pattern),
		byType: make(map[reflect.Type]*Pattern),
	}

	if !opts.ExcludeDefaults {
		builtins := Builtins()
		for _, name := range builtinOrder {
			if err := reg.Register(name, builtins[name]); err != nil {
				return nil, err
			}
		}
	}

	if err := reg.registerSorted(opts.Patterns); err != nil {
		return nil, err
	}

	return reg, nil
}

// registerSorted registers patterns in name order so type lookups do not
// depend on map iteration order.
func (reg *PatternRegistry) registerSorted(patterns map[string]*Pattern) error {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := reg.Register(name, patterns[name]); err != nil {
			return err
		}
	}
	return nil
}

// Register adds p under name. Registering a taken name fails with
// ErrPatternAlreadyRegistered; use Set to replace.
func (reg *PatternRegistry) Register(name string, p *Pattern) error {
	if err := checkEntry(name, p); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrPatternAlreadyRegistered, name)
	}
	reg.store(name, p)
	return nil
}

// Set adds or replaces the pattern under name. Replacing the LookupType
// pattern of a type hands that type to the next pattern of the same origin,
// in registration order.
func (reg *PatternRegistry) Set(name string, p *Pattern) error {
	if err := checkEntry(name, p); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	old, exists := reg.byName[name]
	reg.store(name, p)
	if exists && reg.byType[old.Origin()] == old {
		reg.elect(old.Origin())
	}
	return nil
}

// elect must be called with mu held.
func (reg *PatternRegistry) elect(t reflect.Type) {
	delete(reg.byType, t)
	for _, name := range reg.ordered {
		if p := reg.byName[name]; p.Origin() == t {
			reg.byType[t] = p
			return
		}
	}
}

func checkEntry(name string, p *Pattern) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyPatternName
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrNilPattern, name)
	}
	return nil
}

// store must be called with mu held.
func (reg *PatternRegistry) store(name string, p *Pattern) {
	if _, exists := reg.byName[name]; !exists {
		reg.ordered = append(reg.ordered, name)
	}
	reg.byName[name] = p
	if _, exists := reg.byType[p.Origin()]; !exists {
		reg.byType[p.Origin()] = p
	}
}

// Lookup returns the pattern registered under name.
func (reg *PatternRegistry) Lookup(name string) (*Pattern, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, name)
	}
	return p, nil
}

// LookupType returns the pattern producing values of type t.
func (reg *PatternRegistry) LookupType(t reflect.Type) (*Pattern, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPatternForType, typeName(t))
	}
	return p, nil
}

// Names returns the registered names, sorted.
func (reg *PatternRegistry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := append([]string(nil), reg.ordered...)
	sort.Strings(names)
	return names
}

// Resolve turns a pattern expression into a Pattern.
func (reg *PatternRegistry) Resolve(expr string) (*Pattern, error) {
	return ResolveExpr(expr, reg.Lookup)
}

// ResolveExpr resolves a pattern expression, looking up plain names with
// lookup. Registered patterns are never modified; negation and union build
// new patterns.
func ResolveExpr(expr string, lookup func(name string) (*Pattern, error)) (*Pattern, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyPatternExpr
	}

	if strings.Contains(expr, UnionExprDivider) {
		parts := strings.Split(expr, UnionExprDivider)
		patterns := make([]*Pattern, 0, len(parts))
		for _, part := range parts {
			p, err := ResolveExpr(part, lookup)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve union member %q: %w", part, err)
			}
			patterns = append(patterns, p)
		}
		return Union(patterns...), nil
	}

	if rest, ok := strings.CutPrefix(expr, AntiExprPrefix); ok {
		p, err := ResolveExpr(rest, lookup)
		if err != nil {
			return nil, err
		}
		return p.Reverse(), nil
	}

	return lookup(expr)
}

// ExprNames returns the plain pattern names an expression refers to.
func ExprNames(expr string) []string {
	var names []string
	for _, part := range strings.Split(expr, UnionExprDivider) {
		name := strings.TrimLeft(strings.TrimSpace(part), AntiExprPrefix)
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gPatternRegistry = mustDefaultRegistry()

func mustDefaultRegistry() *PatternRegistry {
	reg, err := NewPatternRegistry(PatternRegistryOpts{})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize global PatternRegistry: %v", err))
	}
	return reg
}

// DefaultRegistry returns the registry used by the package-level functions.
func DefaultRegistry() *PatternRegistry {
	return _gPatternRegistry
}

// Package-level functions that delegate to the global PatternRegistry instance

func RegisterPattern(name string, p *Pattern) error {
	return _gPatternRegistry.Register(name, p)
}

func LookupPattern(name string) (*Pattern, error) {
	return _gPatternRegistry.Lookup(name)
}

func LookupPatternType(t reflect.Type) (*Pattern, error) {
	return _gPatternRegistry.LookupType(t)
}

func ResolvePattern(expr string) (*Pattern, error) {
	return _gPatternRegistry.Resolve(expr)
}

func PatternNames() []string {
	return _gPatternRegistry.Names()
}
