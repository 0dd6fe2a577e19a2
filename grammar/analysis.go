package grammar

import (
	"math"

	"github.com/npillmayer/pearley/sparse"
	"github.com/pkg/errors"
	"golang.org/x/tools/container/intsets"
	"gonum.org/v1/gonum/mat"
)

// Entries of an inverse with an absolute value below epsilon are rounding
// noise and are treated as 0.
const epsilon = 1e-12

// analyze computes the left-corner and unit relations, their closures and the
// best unit chains.
func (g *Grammar) analyze() error {
	n := len(g.nonterms)
	pl := sparse.NewMatrix(n, n)
	pu := sparse.NewMatrix(n, n)
	for _, r := range g.rules {
		first, ok := r.Right[0].(NonTerminal)
		if !ok {
			continue
		}
		i, j := g.ntIndex[r.Left], g.ntIndex[first]
		pl.Add(i, j, r.Prob)
		if r.IsUnit() {
			pu.Add(i, j, r.Prob)
		}
	}
	tracer().Debugf("left-corner relation: %v", pl)
	var err error
	g.lc = toRows(pl.Dense())
	if g.lcStar, err = closure(pl); err != nil {
		return errors.Wrapf(err, "left-corner closure of grammar %q", g.name)
	}
	if g.unitStar, err = closure(pu); err != nil {
		return errors.Wrapf(err, "unit closure of grammar %q", g.name)
	}
	g.leftReach = make([]*intsets.Sparse, n)
	g.unitReach = make([]*intsets.Sparse, n)
	for i := 0; i < n; i++ {
		g.leftReach[i] = &intsets.Sparse{}
		g.unitReach[i] = &intsets.Sparse{}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.lcStar[i][j] != 0 {
				g.leftReach[i].Insert(j)
			}
			if g.unitStar[i][j] != 0 {
				g.unitReach[j].Insert(i)
			}
		}
	}
	g.bestUnitChains()
	return nil
}

// closure computes (I − P)⁻¹ and checks that every entry is a valid weight.
func closure(p *sparse.Matrix) ([][]float64, error) {
	var inv mat.Dense
	if err := inv.Inverse(p.IdentityMinus()); err != nil {
		return nil, errors.Wrap(ErrSingularMatrix, err.Error())
	}
	rows := toRows(&inv)
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrSingularMatrix, "entry (%d,%d) is not finite", i, j)
			}
			if math.Abs(v) < epsilon {
				row[j] = 0
			} else if v < 0 {
				return nil, errors.Wrapf(ErrSingularMatrix, "entry (%d,%d) = %g is negative", i, j, v)
			}
		}
	}
	return rows, nil
}

func toRows(d *mat.Dense) [][]float64 {
	r, c := d.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		mat.Row(rows[i], i, d)
	}
	return rows
}

// bestUnitChains finds the most probable chain of unit rules between every
// pair of non-terminals (max-product Floyd-Warshall). Unit cycles have weight
// below 1 for any grammar passing the closure check, thus best chains are
// simple paths.
func (g *Grammar) bestUnitChains() {
	n := len(g.nonterms)
	g.bestUnit = make([][]float64, n)
	g.firstUnit = make([][]*Rule, n)
	for i := 0; i < n; i++ {
		g.bestUnit[i] = make([]float64, n)
		g.firstUnit[i] = make([]*Rule, n)
		g.bestUnit[i][i] = 1
	}
	for _, r := range g.rules {
		if !r.IsUnit() {
			continue
		}
		i, j := g.ntIndex[r.Left], g.ntIndex[r.Right[0].(NonTerminal)]
		if i != j && r.Prob > g.bestUnit[i][j] {
			g.bestUnit[i][j] = r.Prob
			g.firstUnit[i][j] = r
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if i == k || g.firstUnit[i][k] == nil {
				continue
			}
			for j := 0; j < n; j++ {
				if j == i || j == k || g.firstUnit[k][j] == nil {
					continue
				}
				if w := g.bestUnit[i][k] * g.bestUnit[k][j]; g.firstUnit[i][j] == nil || w > g.bestUnit[i][j] {
					g.bestUnit[i][j] = w
					g.firstUnit[i][j] = g.firstUnit[i][k]
				}
			}
		}
	}
}
