/*
Package semiring implements the scoring algebra of the probabilistic Earley parser.

Scores of partial derivations are combined with an abstract semiring: ⊕ sums
alternative derivations, ⊗ chains sub-derivations. Two semirings are provided:

	Probability: ordinary + and × over [0,∞), zero = 0, one = 1
	Log:         negative log-probabilities, ⊕ = −log(e^−a + e^−b), ⊗ = +,
	             zero = +∞, one = 0

Elements of both are carried as float64. Semirings convert from and to plain
probabilities, which is how grammar weights enter and how results are reported.

# Deferred expressions

During completion, the scores of chart states are not yet final while they are
already being used by other states. Package semiring therefore offers an Arena
of deferred expressions: nodes are built instead of numbers and collapsed to a
scalar exactly once, when the chart position is finished. See type Arena.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package semiring

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pearley.semiring'.
func tracer() tracing.Trace {
	return tracing.Select("pearley.semiring")
}

// Semiring is the algebra used to combine scores.
//
// Compare is consistent with the natural order of probabilities: it returns a
// positive value if a denotes the more probable element, a negative value if b
// does, and 0 for equal elements.
type Semiring interface {
	Name() string
	Plus(a, b float64) float64
	Times(a, b float64) float64
	Zero() float64
	One() float64
	Member(x float64) bool
	FromProbability(p float64) float64
	ToProbability(x float64) float64
	Compare(a, b float64) int
	Idempotent() bool // is a ⊕ a = a ?
}

// Names of the pre-defined semirings.
const (
	ProbabilityName = "probability"
	LogName         = "log"
)

// Probability is the semiring of ordinary probabilities.
var Probability Semiring = probSemiring{}

// Log is the semiring of negative log-probabilities.
var Log Semiring = logSemiring{}

// ByName returns one of the pre-defined semirings. Names are case-insensitive;
// "prob" and "logprob" are accepted as abbreviations.
func ByName(name string) (Semiring, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProbabilityName, "prob", "":
		return Probability, nil
	case LogName, "logprob":
		return Log, nil
	}
	return nil, fmt.Errorf("unknown semiring %q", name)
}

// Pow computes x ⊗ x ⊗ … ⊗ x (k times). Pow(sr, x, 0) is sr.One().
func Pow(sr Semiring, x float64, k int) float64 {
	r := sr.One()
	for ; k > 0; k-- {
		r = sr.Times(r, x)
	}
	return r
}

// Better returns the more probable of a and b; on a tie, a is returned.
func Better(sr Semiring, a, b float64) float64 {
	if sr.Compare(b, a) > 0 {
		return b
	}
	return a
}

// --- Probability semiring --------------------------------------------------

type probSemiring struct{}

func (probSemiring) Name() string                      { return ProbabilityName }
func (probSemiring) Plus(a, b float64) float64         { return a + b }
func (probSemiring) Times(a, b float64) float64        { return a * b }
func (probSemiring) Zero() float64                     { return 0 }
func (probSemiring) One() float64                      { return 1 }
func (probSemiring) Idempotent() bool                  { return false }
func (probSemiring) FromProbability(p float64) float64 { return p }
func (probSemiring) ToProbability(x float64) float64   { return x }

func (probSemiring) Member(x float64) bool {
	return !math.IsNaN(x) && x >= 0
}

func (probSemiring) Compare(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func (probSemiring) String() string { return ProbabilityName }

// --- Log semiring ----------------------------------------------------------

type logSemiring struct{}

func (logSemiring) Name() string               { return LogName }
func (logSemiring) Times(a, b float64) float64 { return a + b }
func (logSemiring) Zero() float64              { return math.Inf(1) }
func (logSemiring) One() float64               { return 0 }
func (logSemiring) Idempotent() bool           { return false }

// Plus computes −log(e^−a + e^−b) without leaving log space.
func (logSemiring) Plus(a, b float64) float64 {
	if math.IsInf(a, 1) {
		return b
	}
	if math.IsInf(b, 1) {
		return a
	}
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo - math.Log1p(math.Exp(lo-hi))
}

// Member rejects NaN. Negative values are allowed: grammar weights need not be
// probabilities.
func (logSemiring) Member(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, -1)
}

func (logSemiring) FromProbability(p float64) float64 {
	if p == 0 {
		return math.Inf(1)
	}
	return -math.Log(p)
}

func (logSemiring) ToProbability(x float64) float64 {
	return math.Exp(-x)
}

// Compare is reversed: smaller values denote larger probabilities.
func (logSemiring) Compare(a, b float64) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	}
	return 0
}

func (logSemiring) String() string { return LogName }
