package earley

import (
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/semiring"
)

// ScanMode is a policy for input tokens which no terminal of the grammar
// matches.
type ScanMode int

// Scan modes:
//
//	Strict:   stop the parse with a LexiconError
//	Drop:     ignore the token; the chart does not advance
//	Wildcard: let the token match every terminal of the grammar
//	Panic:    bridge a run of unrecognized tokens with grammar.NonLexical
//
// In Panic mode, a run of k consecutive unrecognized tokens after chart
// position i is bridged in a single chart step i → i+1: every state at i
// awaiting grammar.NonLexical is advanced, with its scores multiplied by
// w(rule)^(k−1) and by the scan weights of the skipped tokens. If no state at
// i awaits grammar.NonLexical, the parse stops with a LexiconError for the
// first token of the run.
const (
	Strict ScanMode = iota
	Drop
	Wildcard
	Panic
)

func (m ScanMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Drop:
		return "drop"
	case Wildcard:
		return "wildcard"
	case Panic:
		return "panic"
	}
	return "?"
}

// matching returns the terminals matching input token number t. Results are
// cached per token.
func (run *parseRun) matching(t int) []*grammar.Terminal {
	if run.matches == nil {
		run.matches = make(map[int][]*grammar.Terminal)
	}
	if terms, ok := run.matches[t]; ok {
		return terms
	}
	tok := run.tokens[t]
	var terms []*grammar.Terminal
	for _, T := range run.g.Terminals() {
		if T != grammar.NonLexical && T.Match(tok) {
			terms = append(terms, T)
		}
	}
	run.matches[t] = terms
	return terms
}

// wildcard returns all terminals of the grammar, except NonLexical.
func (run *parseRun) wildcard() []*grammar.Terminal {
	terms := make([]*grammar.Terminal, 0, len(run.g.Terminals()))
	for _, T := range run.g.Terminals() {
		if T != grammar.NonLexical {
			terms = append(terms, T)
		}
	}
	return terms
}

// scan consumes input tokens starting at index t and advances states at
// chart position pos to pos+1. It returns the index of the next unconsumed
// token and whether any state has been advanced.
func (run *parseRun) scan(pos, t int) (int, bool, error) {
	for t < len(run.tokens) {
		tok := run.tokens[t]
		terms := run.matching(t)
		if len(terms) == 0 {
			switch run.mode {
			case Strict:
				return t, false, run.lexiconError(pos, t)
			case Drop:
				tracer().Infof("dropping token #%d %q", t, tok.Lexeme())
				t++
				continue
			case Wildcard:
				tracer().Infof("token #%d %q matches any terminal", t, tok.Lexeme())
				terms = run.wildcard()
			case Panic:
				k := 1
				for t+k < len(run.tokens) && len(run.matching(t+k)) == 0 {
					k++
				}
				n, err := run.synchronize(pos, t, k)
				if err != nil {
					return t, false, err
				}
				if n == 0 {
					return t, false, run.lexiconError(pos, t)
				}
				return t + k, true, nil
			}
		}
		n, err := run.scanToken(pos, t, terms)
		if err != nil {
			return t, false, err
		}
		if n == 0 {
			return t, false, nil
		}
		return t + 1, true, nil
	}
	return t, false, nil
}

func (run *parseRun) lexiconError(pos, t int) error {
	err := &LexiconError{Index: t, Position: pos, Token: run.tokens[t]}
	tracer().Errorf(err.Error())
	return err
}

// scanWeight is the semiring weight of scanning token number t with terminal T.
func (run *parseRun) scanWeight(t int, T *grammar.Terminal) float64 {
	if run.scanProb == nil {
		return run.sr.One()
	}
	return run.sr.FromProbability(run.scanProb(t, run.tokens[t], T))
}

// scanToken advances all states at pos which await one of the terminals
// matching token number t. It returns the number of states advanced.
func (run *parseRun) scanToken(pos, t int, terms []*grammar.Terminal) (int, error) {
	c := run.chart
	n := 0
	for _, s := range c.States(pos) {
		T, ok := s.activeTerminal()
		if !ok || !contains(terms, T) {
			continue
		}
		if err := run.advance(s, pos, run.scanWeight(t, T)); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		c.steps = append(c.steps, step{index: t, count: 1, token: run.tokens[t]})
	}
	return n, nil
}

// synchronize bridges a run of k unrecognized tokens, starting at token
// number t, for all states at pos awaiting NonLexical.
func (run *parseRun) synchronize(pos, t, k int) (int, error) {
	c := run.chart
	n := 0
	for _, s := range c.States(pos) {
		T, ok := s.activeTerminal()
		if !ok || T != grammar.NonLexical {
			continue
		}
		w := semiring.Pow(run.sr, s.Rule.Weight, k-1)
		for m := 0; m < k; m++ {
			w = run.sr.Times(w, run.scanWeight(t+m, grammar.NonLexical))
		}
		if err := run.advance(s, pos, w); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		tracer().Infof("synchronized over %d token(s) at chart position %d", k, pos)
		c.steps = append(c.steps, step{index: t, count: k, token: run.tokens[t]})
	}
	return n, nil
}

func (run *parseRun) advance(s State, pos int, w float64) error {
	c := run.chart
	sc := c.scores[s]
	if sc == nil {
		return stuck("no scores for state " + s.String())
	}
	next := s.advance(pos + 1)
	atom := run.arena.Atom(w)
	fw := run.arena.Times(sc.forward, atom)
	in := run.arena.Times(sc.inner, atom)
	if _, err := c.put(next, fw, in, true, false); err != nil {
		return err
	}
	c.scans[next] = w
	tracer().Debugf("scan %v", next)
	return nil
}

func contains(terms []*grammar.Terminal, T *grammar.Terminal) bool {
	for _, t := range terms {
		if t == T {
			return true
		}
	}
	return false
}
