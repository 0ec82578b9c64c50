package nepattern

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrNoStepBindings is returned when a field has neither bindings nor
	// a default. Such fields are skipped in the bind chain.
	ErrNoStepBindings         = errors.New("no bindings found for field")
	ErrFailedToParseTag       = errors.New("failed to parse tag for field")
	ErrInvalidDefault         = errors.New("default value does not satisfy the field pattern")
	ErrFieldBinding           = errors.New("failed to bind field")
	ErrRequiredBindingMissing = errors.New("required binding has no token")
	ErrNilBindChain           = errors.New("bind chain is empty for type")
	ErrUnassignableValue      = errors.New("pattern result cannot be assigned to field")
)

// Tokens is the input of a Binder: positional tokens and named tokens.
type Tokens struct {
	Positional []any
	Named      map[string]any
}

// lookup returns the token for a binding and whether it is present.
func (t Tokens) lookup(b Binding) (any, bool) {
	switch b.Name {
	case KeyTagBinding:
		v, ok := t.Named[b.Identifier]
		return v, ok
	case PositionalTagBinding:
		if b.Position < len(t.Positional) {
			return t.Positional[b.Position], true
		}
	}
	return nil, false
}

// BindChain is a linked list of bind steps for a struct type, one step per
// tagged field.
type BindChain struct {
	StructType reflect.Type // StructType is the type of the struct being bound
	Head       *BindStep    // Head is the first step in the chain
}

// BindStep binds a single field.
type BindStep struct {
	Next       *BindStep // Next is the next step in the current chain
	Pattern    *Pattern  // Pattern every token of this field goes through
	Bindings   []Binding // Ordered list of bindings to try
	FieldName  string    // Name of the field for error reporting
	FieldIndex int       // Index of the field in the struct
	Default    any       // Default converted through Pattern, when HasDefault
	HasDefault bool
}

// Execute runs every step of the chain against dest, a pointer to a struct
// of the chain's type.
func (chain *BindChain) Execute(tokens Tokens, dest any, log zerolog.Logger) error {
	if chain.Head == nil {
		return fmt.Errorf("%w: %s", ErrNilBindChain, chain.StructType.Name())
	}

	destValue := reflect.ValueOf(dest).Elem()

	for current := chain.Head; current != nil; current = current.Next {
		if err := current.execute(tokens, destValue.Field(current.FieldIndex), log); err != nil {
			return fmt.Errorf("%w %s: %w", ErrFieldBinding, current.FieldName, err)
		}
	}
	return nil
}

func (step *BindStep) execute(tokens Tokens, field reflect.Value, log zerolog.Logger) error {
	for _, binding := range step.Bindings {
		token, found := tokens.lookup(binding)
		if !found {
			if binding.Modifiers.OmitEmpty {
				continue
			}
			if step.HasDefault {
				return assignField(field, step.Default)
			}
			return fmt.Errorf("%w: %s", ErrRequiredBindingMissing, binding)
		}

		var result ValidateResult
		if step.HasDefault {
			result = step.Pattern.ExecDefault(token, step.Default)
		} else {
			result = step.Pattern.Exec(token)
		}

		if result.IsFailed() {
			return result.Err()
		}

		log.Trace().
			Str("field", step.FieldName).
			Str("binding", binding.String()).
			Str("flag", string(result.Flag())).
			Msg("bound field")

		value, ok := result.TryValue()
		if !ok {
			return nil
		}
		return assignField(field, value)
	}

	if step.HasDefault {
		return assignField(field, step.Default)
	}
	return nil
}

// assignField stores a pattern result in field, converting it to the
// field's type when it is not directly assignable.
func assignField(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	target := field.Type()
	isPtr := target.Kind() == reflect.Ptr
	if isPtr {
		target = target.Elem()
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(target) {
		converted, err := ConvertTo(target, value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnassignableValue, err)
		}
		v = reflect.ValueOf(converted)
	}

	if isPtr {
		ptr := reflect.New(target)
		ptr.Elem().Set(v)
		field.Set(ptr)
		return nil
	}
	field.Set(v)
	return nil
}

// BindChainManager builds and caches bind chains per struct type.
//
// Patterns named in tags are resolved against Registry when a chain is
// built, so registering a pattern after a type was first bound does not
// change that type's chain.
//
// The BindChainManager is thread-safe and can be used concurrently
// across multiple goroutines.
type BindChainManager struct {
	Chains   map[reflect.Type]*BindChain // Cache for chains. Keyed by destination struct type.
	CMutex   sync.RWMutex                // Mutex for thread-safe access to chains
	Registry *PatternRegistry            // Registry resolving pattern expressions
}

func NewBindChainManager(registry *PatternRegistry) *BindChainManager {
	return &BindChainManager{
		Chains:   make(map[reflect.Type]*BindChain),
		Registry: registry,
	}
}

// GetBindChain retrieves the chain for a struct type, building and caching
// it if necessary.
func (cman *BindChainManager) GetBindChain(typ reflect.Type) (*BindChain, error) {
	cman.CMutex.RLock()
	chain, exists := cman.Chains[typ]
	cman.CMutex.RUnlock()

	if exists {
		return chain, nil
	}

	return cman.NewBindChain(typ)
}

func (cman *BindChainManager) NewBindChain(typ reflect.Type) (*BindChain, error) {
	var head, current *BindStep

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if !field.IsExported() {
			continue
		}

		step, err := cman.NewBindStep(field, i)
		if err != nil {
			if errors.Is(err, ErrNoStepBindings) {
				continue
			}
			return nil, err
		}

		if head == nil {
			head = step
		} else {
			current.Next = step
		}
		current = step
	}

	chain := &BindChain{
		StructType: typ,
		Head:       head,
	}

	cman.CMutex.Lock()
	cman.Chains[typ] = chain
	cman.CMutex.Unlock()

	return chain, nil
}

func (cman *BindChainManager) NewBindStep(field reflect.StructField, index int) (*BindStep, error) {
	bindTag, err := DecodeBindTag(field)
	if err != nil {
		if errors.Is(err, ErrNoBindTagInField) {
			return nil, ErrNoStepBindings
		}
		return nil, fmt.Errorf("%w %s: %w", ErrFailedToParseTag, field.Name, err)
	}

	if len(bindTag.Bindings) == 0 && !bindTag.HasDefault {
		return nil, ErrNoStepBindings
	}

	pattern, err := cman.fieldPattern(field, bindTag)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFailedToParseTag, field.Name, err)
	}

	step := &BindStep{
		Pattern:    pattern,
		Bindings:   bindTag.Bindings,
		FieldName:  field.Name,
		FieldIndex: index,
		HasDefault: bindTag.HasDefault,
	}

	if bindTag.HasDefault {
		result := pattern.Exec(bindTag.Default)
		if result.IsFailed() {
			return nil, fmt.Errorf("%w %s: %q: %w", ErrInvalidDefault, field.Name, bindTag.Default, result.Err())
		}
		step.Default = result.Value()
	}

	return step, nil
}

// fieldPattern resolves the tag's pattern expression, or the registry's
// pattern for the field type, or a plain conversion to the field type.
func (cman *BindChainManager) fieldPattern(field reflect.StructField, bindTag BindTag) (*Pattern, error) {
	if bindTag.Pattern != "" {
		return cman.Registry.Resolve(bindTag.Pattern)
	}

	typ := field.Type
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if p, err := cman.Registry.LookupType(typ); err == nil {
		return p, nil
	}

	return New(typ, "", TypeConvert, PatternOpts{Alias: typeName(typ)})
}
