/*
Package earley implements a probabilistic Earley parser.

The parser follows A. Stolcke: "An Efficient Probabilistic Context-Free
Parsing Algorithm that Computes Prefix Probabilities" (Computational
Linguistics 21(2), 1995). For every chart state it computes

	forward score α: total weight of all derivations from the start symbol
	                 which reach the state
	inner score γ:   total weight of all derivations of the part of the
	                 state's rule left of the dot

under a semiring (see package semiring). Prediction uses the left-corner
closure of the grammar, completion uses the unit closure. This way left
recursion and cycles of unit rules contribute their full (infinite) sums
and the parser still terminates. The grammar must not contain ε-rules.

Usage:

	g, _ := b.Grammar()
	chart, status, err := earley.Parse(g, tokens, grammar.NT("S"))
	if status == earley.Accept {
		tree, score, _ := earley.BestParseTree(chart, grammar.NT("S"))
		…
	}

Tokens which no terminal of the grammar matches are handled by a scan mode:
they are reported as errors (Strict), ignored (Drop), matched by every
terminal (Wildcard), or bridged by rules awaiting grammar.NonLexical (Panic).

A parser is configured once and may parse any number of inputs, but not
concurrently. Grammars may be shared between parsers on different goroutines.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package earley

import (
	"context"
	"fmt"
	"strings"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/scanner"
	"github.com/npillmayer/pearley/semiring"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pearley.earley'.
func tracer() tracing.Trace {
	return tracing.Select("pearley.earley")
}

// Status is the outcome of a parse.
type Status int

// A parse either accepts or rejects its input, or stops with an error.
const (
	Accept Status = iota
	Reject
	Error
)

func (st Status) String() string {
	switch st {
	case Accept:
		return "ACCEPT"
	case Reject:
		return "REJECT"
	case Error:
		return "ERROR"
	}
	return "?"
}

// Phase denotes one of the inference steps of the parser.
type Phase int

// The three Earley operations.
const (
	Predict Phase = iota
	Scan
	Complete
)

func (ph Phase) String() string {
	switch ph {
	case Predict:
		return "predict"
	case Scan:
		return "scan"
	case Complete:
		return "complete"
	}
	return "?"
}

// Hook is a callback, called by the parser before or after every phase at a
// chart position. Hooks may read the chart but must not change it.
type Hook func(phase Phase, position int, chart *Chart)

// ScanProbability re-weights the scan of input token number index with
// terminal t. It returns a probability, which will be converted into the
// semiring of the grammar.
type ScanProbability func(index int, token pearley.Token, t *grammar.Terminal) float64

// Parser is a probabilistic Earley parser for a grammar.
type Parser struct {
	g        *grammar.Grammar
	sr       semiring.Semiring
	goal     grammar.NonTerminal
	mode     ScanMode
	scanProb ScanProbability
	pre      Hook
	post     Hook
}

// Option configures a parser.
type Option func(p *Parser)

// WithGoal sets the goal category. Default is the left side of the first rule
// of the grammar.
func WithGoal(goal grammar.NonTerminal) Option {
	return func(p *Parser) {
		p.goal = goal
	}
}

// WithScanMode sets the policy for tokens which no terminal matches.
// Default is Strict.
func WithScanMode(mode ScanMode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// WithScanProbability sets a function to re-weight scans.
func WithScanProbability(f ScanProbability) Option {
	return func(p *Parser) {
		p.scanProb = f
	}
}

// WithPreHook sets a hook called before every phase.
func WithPreHook(h Hook) Option {
	return func(p *Parser) {
		p.pre = h
	}
}

// WithPostHook sets a hook called after every phase.
func WithPostHook(h Hook) Option {
	return func(p *Parser) {
		p.post = h
	}
}

// NewParser creates a parser for grammar g.
func NewParser(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{
		g:    g,
		sr:   g.Semiring(),
		goal: g.Rule(0).Left,
		mode: Strict,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the grammar of the parser.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.g
}

// Parse is a convenience function for parsing tokens with a new parser.
func Parse(g *grammar.Grammar, tokens []pearley.Token, goal grammar.NonTerminal, opts ...Option) (*Chart, Status, error) {
	opts = append(opts, WithGoal(goal))
	return NewParser(g, opts...).Parse(tokens)
}

// Parse parses a sequence of tokens. It returns the chart, which may be used
// to extract parse trees, and the status of the parse. An error is returned
// if and only if the status is Error. A chart returned with status Error is
// in an undefined state and should be discarded.
func (p *Parser) Parse(tokens []pearley.Token) (*Chart, Status, error) {
	return p.ParseContext(context.Background(), tokens)
}

// ParseTokenizer parses the tokens a scanner produces, up to EOF.
func (p *Parser) ParseTokenizer(tz scanner.Tokenizer) (*Chart, Status, error) {
	var tokens []pearley.Token
	for {
		tok := tz.NextToken()
		if tok == nil || tok.TokType() == scanner.EOF {
			break
		}
		tokens = append(tokens, tok)
	}
	return p.Parse(tokens)
}

// ParseContext parses a sequence of tokens. ctx is checked between chart
// positions; if it is cancelled, parsing stops with status Error.
func (p *Parser) ParseContext(ctx context.Context, tokens []pearley.Token) (*Chart, Status, error) {
	c := NewChart(p.sr)
	c.g = p.g
	c.seed = &grammar.Rule{
		Left:   grammar.Start,
		Right:  []grammar.Category{p.goal},
		Weight: p.sr.One(),
		Prob:   1,
		Serial: -1,
	}
	if !p.g.HasNonTerminal(p.goal) {
		return c, Error, fmt.Errorf("%w: %v", ErrUnknownGoal, p.goal)
	}
	tracer().Debugf("=== parse %d tokens with goal %v ===", len(tokens), p.goal)
	run := &parseRun{Parser: p, chart: c, arena: c.arena, tokens: tokens}
	one := run.arena.Atom(p.sr.One())
	if _, err := c.put(State{Rule: c.seed}, one, one, true, false); err != nil {
		return c, Error, err
	}
	pos, t := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			tracer().Infof("parse cancelled at chart position %d", pos)
			return c, Error, err
		}
		if pos > 0 {
			if err := run.phase(Complete, pos, run.complete); err != nil {
				return c, Error, err
			}
		}
		if err := run.phase(Predict, pos, run.predict); err != nil {
			return c, Error, err
		}
		if tracer().GetTraceLevel() == tracing.LevelDebug {
			dumpPosition(c, pos)
		}
		if t >= len(tokens) {
			break
		}
		var advanced bool
		err := run.phase(Scan, pos, func(pos int) error {
			var err error
			t, advanced, err = run.scan(pos, t)
			return err
		})
		if err != nil {
			return c, Error, err
		}
		if !advanced {
			if t < len(tokens) {
				tok := tokens[t]
				tracer().Infof("no state expects token #%d %q at chart position %d", t, tok.Lexeme(), pos)
				return c, Reject, nil
			}
			break // trailing tokens have been dropped
		}
		pos++
	}
	if s, ok := c.Accepting(); ok {
		in, _ := c.InnerScore(s)
		tracer().Infof("ACCEPT, score %g (p = %g)", in, p.sr.ToProbability(in))
		return c, Accept, nil
	}
	tracer().Infof("REJECT at chart position %d", pos)
	return c, Reject, nil
}

// parseRun holds the state of a single parse.
type parseRun struct {
	*Parser
	chart   *Chart
	arena   *semiring.Arena
	tokens  []pearley.Token
	matches map[int][]*grammar.Terminal // terminals matching a token, by token index
}

// phase runs an operation at a chart position, framed by hooks, and resolves
// all scores at the position afterwards.
func (run *parseRun) phase(ph Phase, pos int, op func(pos int) error) error {
	if run.pre != nil {
		run.pre(ph, pos, run.chart)
	}
	if err := op(pos); err != nil {
		return err
	}
	resolvePos := pos
	if ph == Scan {
		resolvePos = pos + 1
	}
	if err := run.chart.resolve(resolvePos); err != nil {
		return err
	}
	if run.post != nil {
		run.post(ph, pos, run.chart)
	}
	return nil
}

// complete advances states waiting for a category which has been completed at
// pos. Completion uses the unit closure R_U: a passive state Y → ν completes
// every state waiting for Z with R_U(Z,Y) ≠ 0. Passive states of unit rules
// are therefore not completed themselves; their contributions are part of R_U.
//
// Completion chains have strictly decreasing origins (there are no ε-rules),
// thus scores at pos form an acyclic system, which the arena resolves.
func (run *parseRun) complete(pos int) error {
	c, g := run.chart, run.g
	for k := 0; k < c.stateCount(pos); k++ {
		s := c.stateAt(pos, k)
		if !s.IsPassive() || s.Rule.IsUnit() {
			continue
		}
		Y := s.Rule.Left
		inner := c.scores[s].inner
		for _, Z := range g.UnitReachable(Y) {
			waiting := c.waiting[s.Origin][Z]
			if len(waiting) == 0 {
				continue
			}
			factor := run.arena.Times(run.arena.Atom(g.UnitStar(Z, Y)), inner)
			for _, parent := range waiting {
				psc := c.scores[parent]
				if psc == nil {
					return stuck(fmt.Sprintf("no scores for state %v", parent))
				}
				next := parent.advance(pos)
				fw := run.arena.Times(psc.forward, factor)
				in := run.arena.Times(psc.inner, factor)
				if _, err := c.put(next, fw, in, true, false); err != nil {
					return err
				}
				tracer().Debugf("complete %v with %v", next, s)
			}
		}
	}
	return nil
}

// predict adds states for all rules which are left-reachable from a category
// awaited at pos. Prediction uses the left-corner closure R_L: a state
// waiting for Z predicts Y → ν with forward score α · R_L(Z,Y) · w(Y → ν).
// Predicted states do not predict again; their contributions are part of R_L.
func (run *parseRun) predict(pos int) error {
	c, g := run.chart, run.g
	for k := 0; k < c.stateCount(pos); k++ {
		s := c.stateAt(pos, k)
		if s.Dot == 0 && s.Rule != c.seed {
			continue
		}
		Z, ok := s.activeNonTerminal()
		if !ok {
			continue
		}
		fw := c.scores[s].forward
		for _, Y := range g.LeftReachable(Z) {
			rl := g.LeftCornerStar(Z, Y)
			for _, r := range g.RulesFor(Y) {
				next := State{Rule: r, Origin: pos, Dot: 0, Position: pos}
				f := run.arena.Times(fw, run.arena.Atom(run.sr.Times(rl, r.Weight)))
				isNew, err := c.put(next, f, run.arena.Atom(r.Weight), true, true)
				if err != nil {
					return err
				}
				if isNew {
					tracer().Debugf("predict %v", next)
				}
			}
		}
	}
	return nil
}

// ParseScanMode returns a scan mode by its name.
func ParseScanMode(name string) (ScanMode, error) {
	for m := Strict; m <= Panic; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	if strings.EqualFold(name, "synchronize") {
		return Panic, nil
	}
	return Strict, fmt.Errorf("unknown scan mode %q", name)
}
