package grammar

import (
	"math"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/semiring"
	"github.com/pkg/errors"
)

// Configuration errors, reported by Builder.Grammar.
var (
	ErrEmptyGrammar   = errors.New("grammar has no rules")
	ErrInvalidRule    = errors.New("invalid grammar rule")
	ErrDuplicateRule  = errors.New("duplicate grammar rule")
	ErrSingularMatrix = errors.New("grammar relation matrix is singular")
)

// Builder collects weighted rules and creates an immutable Grammar from them.
//
// Rules may be added with method Rule
//
//	b := grammar.NewBuilder("G")
//	b.Rule(0.7, grammar.NT("S"), grammar.NT("A"), grammar.Lexeme("x"))
//
// or with a fluent interface:
//
//	b.LHS("S").N("A").L("x").Weight(0.7).End()
//
// Terminals created through the fluent interface are interned by name,
// i.e. b.LHS("A").L("x") and b.LHS("B").L("x") refer to the same terminal.
// Errors are collected and reported by method Grammar.
type Builder struct {
	name      string
	sr        semiring.Semiring
	strictPre bool
	rules     []*Rule
	terminals map[string]*Terminal
	errs      []error
}

// BuilderOption configures a grammar builder.
type BuilderOption func(b *Builder)

// WithSemiring sets the semiring for rule weights. Default is the
// probability semiring.
func WithSemiring(sr semiring.Semiring) BuilderOption {
	return func(b *Builder) {
		if sr != nil {
			b.sr = sr
		}
	}
}

// WithSemiringNamed sets the semiring for rule weights by name
// (see semiring.ByName).
func WithSemiringNamed(name string) BuilderOption {
	return func(b *Builder) {
		sr, err := semiring.ByName(name)
		if err != nil {
			b.errs = append(b.errs, errors.Wrap(err, "grammar builder"))
			return
		}
		b.sr = sr
	}
}

// StrictPreterminals requires a terminal on the right side of a rule to appear
// alone, i.e. preterminal rules must be of the form X → t. Default is false.
func StrictPreterminals(strict bool) BuilderOption {
	return func(b *Builder) {
		b.strictPre = strict
	}
}

// NewBuilder creates a builder for a grammar.
func NewBuilder(name string, opts ...BuilderOption) *Builder {
	b := &Builder{
		name:      name,
		sr:        semiring.Probability,
		terminals: make(map[string]*Terminal),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rule adds a rule left → right with weight prob. prob is a probability
// (or, more generally, a non-negative weight) which will be converted into
// the semiring of the grammar.
func (b *Builder) Rule(prob float64, left NonTerminal, right ...Category) *Builder {
	r := &Rule{
		Left:  left,
		Right: append([]Category(nil), right...),
		Prob:  prob,
	}
	b.rules = append(b.rules, r)
	return b
}

// LHS starts a new rule with left side name.
func (b *Builder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{
		b:    b,
		left: NT(name),
		prob: 1.0,
	}
}

func (b *Builder) intern(key string, create func() *Terminal) *Terminal {
	if t, ok := b.terminals[key]; ok {
		return t
	}
	t := create()
	b.terminals[key] = t
	return t
}

// RuleBuilder is part of the fluent interface of a grammar builder.
type RuleBuilder struct {
	b     *Builder
	left  NonTerminal
	right []Category
	prob  float64
}

// N appends a non-terminal.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.right = append(rb.right, NT(name))
	return rb
}

// T appends a terminal matching tokens of token type tt.
func (rb *RuleBuilder) T(name string, tt pearley.TokType) *RuleBuilder {
	t := rb.b.intern("T:"+name, func() *Terminal { return TokenType(name, tt) })
	rb.right = append(rb.right, t)
	return rb
}

// L appends a terminal matching tokens by lexeme.
func (rb *RuleBuilder) L(lexeme string) *RuleBuilder {
	t := rb.b.intern("L:"+lexeme, func() *Terminal { return Lexeme(lexeme) })
	rb.right = append(rb.right, t)
	return rb
}

// Term appends a terminal created by the client.
func (rb *RuleBuilder) Term(t *Terminal) *RuleBuilder {
	rb.right = append(rb.right, t)
	return rb
}

// Weight sets the weight (probability) of the rule. Default is 1.
func (rb *RuleBuilder) Weight(prob float64) *RuleBuilder {
	rb.prob = prob
	return rb
}

// End finishes the rule and adds it to the grammar builder.
func (rb *RuleBuilder) End() *Builder {
	return rb.b.Rule(rb.prob, rb.left, rb.right...)
}

// Grammar validates the rules and creates an immutable grammar.
// All errors are configuration errors: they will not go away by retrying.
func (b *Builder) Grammar() (*Grammar, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if len(b.rules) == 0 {
		return nil, errors.Wrapf(ErrEmptyGrammar, "grammar %q", b.name)
	}
	seen := make(map[ruleKey]int, len(b.rules))
	rules := make([]*Rule, len(b.rules))
	for i, proto := range b.rules {
		if err := b.validate(i, proto); err != nil {
			return nil, err
		}
		r := &Rule{
			Left:   proto.Left,
			Right:  proto.Right,
			Prob:   proto.Prob,
			Weight: b.sr.FromProbability(proto.Prob),
			Serial: i,
		}
		if k, dup := seen[r.key()]; dup {
			return nil, errors.Wrapf(ErrDuplicateRule, "rule #%d %v duplicates rule #%d", i, r, k)
		}
		seen[r.key()] = i
		rules[i] = r
	}
	g := newGrammar(b.name, b.sr, rules)
	if err := g.analyze(); err != nil {
		return nil, err
	}
	tracer().Infof("grammar %q has %d rules, %d non-terminals, %d terminals",
		g.name, len(g.rules), len(g.nonterms), len(g.terminals))
	return g, nil
}

func (b *Builder) validate(i int, r *Rule) error {
	switch {
	case r.Left.IsNull():
		return errors.Wrapf(ErrInvalidRule, "rule #%d: non-terminal on the left missing", i)
	case r.Left.IsStart():
		return errors.Wrapf(ErrInvalidRule, "rule #%d: start symbol may not appear in rules", i)
	case len(r.Right) == 0:
		return errors.Wrapf(ErrInvalidRule, "rule #%d: empty right side for %v", i, r.Left)
	case math.IsNaN(r.Prob) || math.IsInf(r.Prob, 0) || r.Prob < 0:
		return errors.Wrapf(ErrInvalidRule, "rule #%d: invalid weight %g", i, r.Prob)
	}
	for k, c := range r.Right {
		switch x := c.(type) {
		case nil:
			return errors.Wrapf(ErrInvalidRule, "rule #%d: right side symbol #%d missing", i, k)
		case *Terminal:
			if x == nil {
				return errors.Wrapf(ErrInvalidRule, "rule #%d: right side symbol #%d missing", i, k)
			}
		case NonTerminal:
			if x.IsNull() {
				return errors.Wrapf(ErrInvalidRule, "rule #%d: right side symbol #%d missing", i, k)
			}
			if x.IsStart() {
				return errors.Wrapf(ErrInvalidRule, "rule #%d: start symbol may not appear in rules", i)
			}
		default:
			return errors.Wrapf(ErrInvalidRule, "rule #%d: unknown category type %T", i, c)
		}
	}
	if b.strictPre && r.IsPreterminal() && len(r.Right) > 1 {
		return errors.Wrapf(ErrInvalidRule, "rule #%d: terminal has to appear alone on right side of %v", i, r.Left)
	}
	if !b.sr.Member(b.sr.FromProbability(r.Prob)) {
		return errors.Wrapf(ErrInvalidRule, "rule #%d: weight %g not representable in %s semiring", i, r.Prob, b.sr.Name())
	}
	return nil
}
