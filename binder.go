package nepattern

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/SimonDaKappa/go-nepattern/internal/logging"
)

var (
	ErrInvalidDestination = errors.New("dest must be a non-nil pointer to a struct type")
	ErrValidationFailed   = errors.New("validation failed after binding")
)

// Validatable is an interface that marks a struct as having its own
// consistency checks, run by Binder once all fields are bound.
type Validatable interface {
	// Validate checks the fields of the struct and returns an error
	// if any of the fields are invalid.
	//
	// # It is expected to be called after the struct has been populated
	Validate() error
}

// Binder fills tagged structs from Tokens through Patterns.
//
// Each exported field with a `nep` tag is bound from the first of its
// bindings that has a token (see tag.go for the grammar). If binding or
// validation fails, every field of dest is zeroed.
type Binder struct {
	chains *BindChainManager
}

type BinderOpts struct {
	// Registry resolves pattern expressions. Nil selects DefaultRegistry().
	Registry *PatternRegistry
}

func NewBinder(opts BinderOpts) *Binder {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Binder{chains: NewBindChainManager(registry)}
}

// Bind populates dest, a pointer to a struct, from tokens.
func (b *Binder) Bind(tokens Tokens, dest any) error {
	if dest == nil {
		return ErrInvalidDestination
	}
	value := reflect.ValueOf(dest)
	if value.Kind() != reflect.Ptr || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrInvalidDestination, dest)
	}

	log := logging.GetLogger("binder")

	chain, err := b.chains.GetBindChain(value.Elem().Type())
	if err != nil {
		return err
	}

	if chain.Head != nil {
		if err := chain.Execute(tokens, dest, log); err != nil {
			zeroStructFields(value.Elem())
			log.Debug().Err(err).Str("type", chain.StructType.String()).Msg("binding failed")
			return err
		}
	}

	if v, ok := dest.(Validatable); ok {
		if err := v.Validate(); err != nil {
			zeroStructFields(value.Elem())
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}

	return nil
}

// Invalidate clears a partially or fully bound dest by setting each field
// to its zero value.
func (b *Binder) Invalidate(dest any) error {
	value := reflect.ValueOf(dest)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return fmt.Errorf("cannot invalidate a non ptr or nil value")
	}
	zeroStructFields(value.Elem())
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gBinder = NewBinder(BinderOpts{})

// Bind populates dest from tokens using the default registry.
func Bind(tokens Tokens, dest any) error {
	return _gBinder.Bind(tokens, dest)
}

func Invalidate(dest any) error {
	return _gBinder.Invalidate(dest)
}
