package nepattern

import "fmt"

// emptyDefault is the type of the Empty sentinel.
type emptyDefault struct{}

func (emptyDefault) String() string { return "Empty" }

// Empty passed as a default yields a FlagDefault result that carries no value.
var Empty = emptyDefault{}

// ValidateResult is the tri-state outcome of applying a Pattern to one input.
//
// Exactly one of value or error is populated. Results are values and are
// never modified after construction.
type ValidateResult struct {
	value    any
	err      error
	flag     ResultFlag
	hasValue bool
}

func validResult(value any) ValidateResult {
	return ValidateResult{value: value, flag: FlagValid, hasValue: true}
}

func errorResult(err error) ValidateResult {
	return ValidateResult{err: err, flag: FlagError}
}

func defaultResult(def any) ValidateResult {
	if def == Empty {
		return ValidateResult{flag: FlagDefault}
	}
	return ValidateResult{value: def, flag: FlagDefault, hasValue: true}
}

// Flag returns the state of the result.
func (r ValidateResult) Flag() ResultFlag { return r.flag }

// Value returns the success or default value.
//
// It panics when the result is an error or carries no value (a default of
// Empty). Use TryValue when that is an expected case.
func (r ValidateResult) Value() any {
	if r.flag == FlagError || !r.hasValue {
		panic(fmt.Sprintf("%s: %s", ErrValueAccess, r))
	}
	return r.value
}

// TryValue returns the value and whether one is present.
func (r ValidateResult) TryValue() (any, bool) {
	if r.flag == FlagError || !r.hasValue {
		return nil, false
	}
	return r.value, true
}

// Err returns the failure, or nil unless the flag is FlagError.
func (r ValidateResult) Err() error {
	if r.flag != FlagError {
		return nil
	}
	return r.err
}

func (r ValidateResult) IsSuccess() bool { return r.flag == FlagValid }
func (r ValidateResult) IsFailed() bool  { return r.flag == FlagError }
func (r ValidateResult) OrDefault() bool { return r.flag == FlagDefault }

func (r ValidateResult) String() string {
	if r.flag == FlagError {
		return fmt.Sprintf("ValidateResult(%v, %s)", r.err, r.flag)
	}
	if !r.hasValue {
		return fmt.Sprintf("ValidateResult(%s, %s)", Empty, r.flag)
	}
	return fmt.Sprintf("ValidateResult(%v, %s)", r.value, r.flag)
}

///////////////////////////////////////////////////////////////////////////////
// Combinators
///////////////////////////////////////////////////////////////////////////////

// Map applies fn to a successful value. Any other result is returned as is.
func (r ValidateResult) Map(fn func(any) any) ValidateResult {
	if !r.IsSuccess() {
		return r
	}
	return validResult(fn(r.value))
}

// AndThen re-validates a successful value through p.
func (r ValidateResult) AndThen(p *Pattern) ValidateResult {
	if !r.IsSuccess() {
		return r
	}
	return p.Exec(r.value)
}

// BuildWith constructs a new value from a successful one. A build error
// turns the result into a FlagError result.
func (r ValidateResult) BuildWith(build func(any) (any, error)) ValidateResult {
	if !r.IsSuccess() {
		return r
	}
	built, err := build(r.value)
	if err != nil {
		return errorResult(err)
	}
	return validResult(built)
}

// ResultAs extracts a typed value from a result holding a value.
func ResultAs[T any](r ValidateResult) (T, bool) {
	var zero T
	value, ok := r.TryValue()
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
