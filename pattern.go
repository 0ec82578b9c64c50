package nepattern

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SimonDaKappa/go-nepattern/internal/logging"
)

// Converter turns an input into a Pattern's origin type. An error or a nil
// result means the input could not be converted.
type Converter func(p *Pattern, input any) (any, error)

// ValidatorFunc is a post-conversion check. All of a Pattern's validators
// must pass for the input to be valid.
type ValidatorFunc func(v any) bool

// Pattern is a reusable coercion and validation rule.
//
// A Pattern first runs its acceptance gate (PatternAccepts / TypeAccepts),
// then converts the input according to its MatchMode, and finally runs its
// validators. When the gate or the conversion fails, a Pattern with a
// Previous asks it to normalize the input and tries once more.
//
// Patterns are immutable once built. Reverse and With return modified
// copies, so a Pattern can be shared freely between goroutines.
type Pattern struct {
	origin         reflect.Type
	source         string
	regex          *regexp.Regexp
	mode           MatchMode
	converter      Converter
	validators     []ValidatorFunc
	anti           bool
	patternAccepts []*Pattern
	typeAccepts    []TypeTag
	alias          string
	previous       *Pattern
}

// PatternOpts holds the optional parts of a Pattern.
type PatternOpts struct {
	// Converter is used by TypeConvert and RegexConvert. Nil selects the safe
	// default conversion to the origin type (see ConvertTo).
	Converter Converter
	// Alias is the display name used by String.
	Alias string
	// Previous is the fallback predecessor.
	Previous *Pattern
	// PatternAccepts and TypeAccepts form the acceptance gate.
	PatternAccepts []*Pattern
	TypeAccepts    []TypeTag
	// Validators run on the converted value.
	Validators []ValidatorFunc
	// Anti negates the pattern.
	Anti bool
}

// New builds a Pattern producing values of type origin.
//
// source is an unanchored regular expression; the Pattern anchors it itself
// and rejects sources starting with '^' or ending with '$'. Keep and
// TypeConvert patterns usually pass "".
func New(origin reflect.Type, source string, mode MatchMode, opts PatternOpts) (*Pattern, error) {
	if origin == nil {
		return nil, ErrNilOrigin
	}
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if strings.HasPrefix(source, "^") || strings.HasSuffix(source, "$") {
		return nil, fmt.Errorf("%w: %q", ErrAnchoredSource, source)
	}

	regex, err := regexp.Compile("^(?:" + source + ")$")
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern source %q: %w", source, err)
	}

	if err := checkChain(opts.Previous); err != nil {
		return nil, err
	}

	p := &Pattern{
		origin:         origin,
		source:         source,
		regex:          regex,
		mode:           mode,
		converter:      opts.Converter,
		validators:     append([]ValidatorFunc(nil), opts.Validators...),
		anti:           opts.Anti,
		patternAccepts: compactPatterns(opts.PatternAccepts),
		typeAccepts:    append([]TypeTag(nil), opts.TypeAccepts...),
		alias:          opts.Alias,
		previous:       opts.Previous,
	}
	if p.converter == nil {
		p.converter = defaultConverter
	}

	return p, nil
}

// MustNew is New that panics on error. It is meant for package-level
// pattern definitions.
func MustNew(origin reflect.Type, source string, mode MatchMode, opts PatternOpts) *Pattern {
	p, err := New(origin, source, mode, opts)
	if err != nil {
		panic(fmt.Sprintf("nepattern: %v", err))
	}
	return p
}

func defaultConverter(p *Pattern, input any) (any, error) {
	return ConvertTo(p.origin, input)
}

// checkChain walks a fallback chain and fails if it revisits a node.
func checkChain(head *Pattern) error {
	seen := make(map[*Pattern]struct{})
	for cur := head; cur != nil; cur = cur.previous {
		if _, ok := seen[cur]; ok {
			return ErrCyclicChain
		}
		seen[cur] = struct{}{}
	}
	return nil
}

func compactPatterns(patterns []*Pattern) []*Pattern {
	out := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

///////////////////////////////////////////////////////////////////////////////
// Accessors
///////////////////////////////////////////////////////////////////////////////

func (p *Pattern) Origin() reflect.Type { return p.origin }
func (p *Pattern) Source() string       { return p.source }
func (p *Pattern) Mode() MatchMode      { return p.mode }
func (p *Pattern) Alias() string        { return p.alias }
func (p *Pattern) Anti() bool           { return p.anti }
func (p *Pattern) Previous() *Pattern   { return p.previous }

// Regex returns the anchored expression the Pattern matches against.
func (p *Pattern) Regex() *regexp.Regexp { return p.regex }

// Validators returns a copy of the validator chain.
func (p *Pattern) Validators() []ValidatorFunc {
	return append([]ValidatorFunc(nil), p.validators...)
}

// PatternAccepts returns a copy of the accepted sub-patterns.
func (p *Pattern) PatternAccepts() []*Pattern {
	return append([]*Pattern(nil), p.patternAccepts...)
}

// TypeAccepts returns a copy of the accepted type tags.
func (p *Pattern) TypeAccepts() []TypeTag {
	return append([]TypeTag(nil), p.typeAccepts...)
}

///////////////////////////////////////////////////////////////////////////////
// Derivation
///////////////////////////////////////////////////////////////////////////////

func (p *Pattern) clone() *Pattern {
	cp := *p
	cp.validators = append([]ValidatorFunc(nil), p.validators...)
	cp.patternAccepts = append([]*Pattern(nil), p.patternAccepts...)
	cp.typeAccepts = append([]TypeTag(nil), p.typeAccepts...)
	return &cp
}

// Reverse returns a copy of p with its negation toggled.
func (p *Pattern) Reverse() *Pattern {
	cp := p.clone()
	cp.anti = !p.anti
	return cp
}

// With returns a copy of p displayed as name.
func (p *Pattern) With(name string) *Pattern {
	cp := p.clone()
	cp.alias = name
	return cp
}

///////////////////////////////////////////////////////////////////////////////
// Matching
///////////////////////////////////////////////////////////////////////////////

func (p *Pattern) hasAccepts() bool {
	return len(p.patternAccepts) > 0 || len(p.typeAccepts) > 0
}

func (p *Pattern) isOrigin(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	if t == p.origin {
		return true
	}
	return p.origin.Kind() == reflect.Interface && t.Implements(p.origin)
}

// fallback normalizes input through the previous pattern.
func (p *Pattern) fallback(input any, stage string) (any, error) {
	if logging.Enabled(zerolog.TraceLevel) {
		log := logging.GetLogger("pattern")
		log.Trace().
			Stringer("pattern", p).
			Stringer("previous", p.previous).
			Str("stage", stage).
			Interface("input", input).
			Msg("falling back to previous pattern")
	}

	return p.previous.Match(input)
}

// Match converts input into the Pattern's origin type, or returns a
// *MatchFailed. Match ignores negation and validators; use Exec for the
// full pipeline.
func (p *Pattern) Match(input any) (any, error) {
	if p.mode != Keep && p.origin != StringType && input != nil && reflect.TypeOf(input) == p.origin {
		return input, nil
	}

	if p.hasAccepts() && !accepts(input, p.patternAccepts, p.typeAccepts) {
		if p.previous == nil {
			return nil, incorrectType(input)
		}
		normalized, err := p.fallback(input, "accept")
		if err != nil {
			return nil, err
		}
		input = normalized
		if !accepts(input, p.patternAccepts, p.typeAccepts) {
			return nil, incorrectType(input)
		}
	}

	switch p.mode {
	case Keep:
		return input, nil
	case TypeConvert:
		return p.matchConvert(input)
	default:
		return p.matchRegex(input)
	}
}

// nullResult is returned by a Converter that succeeded with a nil value.
type nullResult struct{}

func (p *Pattern) convert(input any) (any, bool) {
	res, err := p.converter(p, input)
	if _, ok := res.(nullResult); ok && err == nil {
		return nil, true
	}
	if err != nil || !p.isOrigin(res) {
		return nil, false
	}
	return res, true
}

func (p *Pattern) matchConvert(input any) (any, error) {
	if res, ok := p.convert(input); ok {
		return res, nil
	}
	if p.previous == nil {
		return nil, incorrectValue(input)
	}
	normalized, err := p.fallback(input, "convert")
	if err != nil {
		return nil, err
	}
	if res, ok := p.convert(normalized); ok {
		return res, nil
	}
	return nil, incorrectValue(input)
}

func (p *Pattern) matchRegex(input any) (any, error) {
	text, ok := input.(string)
	if !ok {
		if p.previous == nil {
			return nil, incorrectType(input)
		}
		normalized, err := p.fallback(input, "text")
		if err != nil {
			return nil, err
		}
		if text, ok = normalized.(string); !ok {
			return nil, incorrectType(input)
		}
	}

	groups := p.regex.FindStringSubmatch(text)
	if groups == nil {
		return nil, incorrectValue(text)
	}
	matched := groups[0]
	if len(groups) > 1 {
		matched = groups[1]
	}

	if p.mode == RegexMatch {
		return matched, nil
	}
	res, err := p.converter(p, matched)
	if err != nil || res == nil {
		return nil, incorrectValue(text)
	}
	return res, nil
}

///////////////////////////////////////////////////////////////////////////////
// Validation
///////////////////////////////////////////////////////////////////////////////

func (p *Pattern) passes(v any) bool {
	for _, validate := range p.validators {
		if !validate(v) {
			return false
		}
	}
	return true
}

func (p *Pattern) validate(input any, def any, hasDefault bool) ValidateResult {
	res, err := p.Match(input)
	if err == nil && !p.passes(res) {
		err = incorrectValue(input)
	}
	if err == nil {
		return validResult(res)
	}
	if hasDefault {
		return defaultResult(def)
	}
	return errorResult(err)
}

func (p *Pattern) invalidate(input any, def any, hasDefault bool) ValidateResult {
	res, err := p.Match(input)
	if err != nil || !p.passes(res) {
		return validResult(input)
	}
	if hasDefault {
		return defaultResult(def)
	}
	return errorResult(incorrectValue(input))
}

// Validate matches input and runs the validators.
func (p *Pattern) Validate(input any) ValidateResult {
	return p.validate(input, nil, false)
}

// ValidateDefault is Validate that yields a FlagDefault result holding def
// instead of an error. Pass Empty for a default without a value.
func (p *Pattern) ValidateDefault(input any, def any) ValidateResult {
	return p.validate(input, def, true)
}

// Invalidate succeeds, with the original input, exactly when Validate
// would fail.
func (p *Pattern) Invalidate(input any) ValidateResult {
	return p.invalidate(input, nil, false)
}

// InvalidateDefault is Invalidate with a default, see ValidateDefault.
func (p *Pattern) InvalidateDefault(input any, def any) ValidateResult {
	return p.invalidate(input, def, true)
}

// Exec runs Invalidate for negated patterns and Validate otherwise.
func (p *Pattern) Exec(input any) ValidateResult {
	if p.anti {
		return p.Invalidate(input)
	}
	return p.Validate(input)
}

// ExecDefault is Exec with a default.
func (p *Pattern) ExecDefault(input any, def any) ValidateResult {
	if p.anti {
		return p.InvalidateDefault(input, def)
	}
	return p.ValidateDefault(input, def)
}

///////////////////////////////////////////////////////////////////////////////
// Display
///////////////////////////////////////////////////////////////////////////////

func typeName(t reflect.Type) string {
	if t == nil || t == AnyType {
		return "Any"
	}
	return t.String()
}

// AcceptsRepr joins the accepted type tags and sub-patterns with '|'.
func (p *Pattern) AcceptsRepr() string {
	parts := make([]string, 0, len(p.typeAccepts)+len(p.patternAccepts))
	for _, t := range p.typeAccepts {
		parts = append(parts, t.Name)
	}
	for _, sub := range p.patternAccepts {
		parts = append(parts, sub.String())
	}
	return strings.Join(parts, UnionExprDivider)
}

// String renders the pattern for help text, e.g. "str -> int" for a
// pattern with a predecessor or "!int" for a negated one.
func (p *Pattern) String() string {
	if p.mode == Keep {
		switch {
		case p.alias != "":
			return p.alias
		case !p.hasAccepts():
			return "Any"
		default:
			return p.AcceptsRepr()
		}
	}

	var text string
	switch {
	case p.alias != "":
		text = p.alias
	case p.mode == RegexMatch:
		text = p.source
	case p.mode == RegexConvert || !p.hasAccepts():
		text = typeName(p.origin)
	default:
		text = p.AcceptsRepr() + " -> " + typeName(p.origin)
	}

	var b strings.Builder
	if p.previous != nil {
		b.WriteString(p.previous.String())
		b.WriteString(" -> ")
	}
	if p.anti {
		b.WriteString(AntiExprPrefix)
	}
	b.WriteString(text)
	return b.String()
}
