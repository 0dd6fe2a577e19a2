/*
Package sparse implements a simple type for sparse float matrices.
It is used for the rule-weight matrices of a grammar (left-corner relation and
unit-production relation), which are usually very sparse: a non-terminal has
left corners in a handful of other non-terminals only.

This implementation uses the COO algorithm (a.k.a. triplet-encoding).

	https://medium.com/@jmaxg3/101-ways-to-store-a-sparse-matrix-c7f2bf15a229
	https://www.coin-or.org/Ipopt/documentation/node38.html

Matrices may be converted to gonum dense matrices for linear algebra.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package sparse

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a type for a sparse matrix of float values. Construct with
//
//	M := NewMatrix(10, 10)
//
// Now
//
//	M.Set(2, 3, 0.5)        // set a value
//	v := M.Value(2, 3)      // returns 0.5
//	M.Add(2, 3, 0.25)       // add to a value
//	v = M.Value(2, 3)       // returns 0.75
//	cnt := M.ValueCount()   // still returns 1 (one position set)
//	v = M.Value(9, 9)       // returns 0
//
// Values cannot be deleted, but may be overwritten with 0. Space for
// zero-values is not re-claimed.
type Matrix struct {
	values []triplet
	rowcnt int
	colcnt int
}

// Triplet values to store
type triplet struct {
	row, col int
	value    float64
}

// NewMatrix creates a new matrix of size m x n.
func NewMatrix(m, n int) *Matrix {
	return &Matrix{
		values: []triplet{},
		rowcnt: m,
		colcnt: n,
	}
}

// M returns the row count.
func (m *Matrix) M() int {
	return m.rowcnt
}

// N returns the column count.
func (m *Matrix) N() int {
	return m.colcnt
}

// ValueCount returns the number of values in the matrix.
func (m *Matrix) ValueCount() int {
	return len(m.values)
}

// Value returns the value at position (i,j), or 0.
func (m *Matrix) Value(i, j int) float64 {
	for _, t := range m.values {
		if !t.storedLeftOf(i, j) { // have skipped all lesser indices
			if t.storedAt(i, j) {
				return t.value
			}
			break
		}
	}
	return 0
}

// Set a value in the matrix at position (i,j).
func (m *Matrix) Set(i, j int, value float64) *Matrix {
	return m.setOrAdd(i, j, value, false)
}

// Add a value to the value at position (i,j).
func (m *Matrix) Add(i, j int, value float64) *Matrix {
	return m.setOrAdd(i, j, value, true)
}

func (m *Matrix) setOrAdd(i, j int, value float64, doAdd bool) *Matrix {
	if i < 0 || i >= m.rowcnt || j < 0 || j >= m.colcnt {
		panic(fmt.Sprintf("sparse matrix index (%d,%d) out of range %dx%d", i, j, m.rowcnt, m.colcnt))
	}
	at := 0 // will be position of new value
	for k, t := range m.values {
		if !t.storedLeftOf(i, j) { // have skipped all lesser indices
			if t.storedAt(i, j) { // value already present
				if doAdd {
					m.values[k].value += value
				} else {
					m.values[k].value = value
				}
				return m // and done
			}
			break // no old value present
		}
		at++
	}
	tnew := triplet{row: i, col: j, value: value}
	// the following 3 lines have to work for k being the right edge of v or not
	m.values = append(m.values, tnew)    // make room
	copy(m.values[at+1:], m.values[at:]) // copy remainder values one index to right
	m.values[at] = tnew                  // if not append-case: insert new triplet
	return m
}

// Each calls f for every stored non-zero value, in row-major order.
func (m *Matrix) Each(f func(i, j int, value float64)) {
	for _, t := range m.values {
		if t.value != 0 {
			f(t.row, t.col, t.value)
		}
	}
}

// Dense converts m to a gonum dense matrix.
func (m *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(m.rowcnt, m.colcnt, nil)
	for _, t := range m.values {
		d.Set(t.row, t.col, t.value)
	}
	return d
}

// IdentityMinus returns the dense matrix I − m. m has to be square.
func (m *Matrix) IdentityMinus() *mat.Dense {
	if m.rowcnt != m.colcnt {
		panic(fmt.Sprintf("matrix %dx%d is not square", m.rowcnt, m.colcnt))
	}
	d := mat.NewDense(m.rowcnt, m.colcnt, nil)
	for i := 0; i < m.rowcnt; i++ {
		d.Set(i, i, 1)
	}
	for _, t := range m.values {
		d.Set(t.row, t.col, d.At(t.row, t.col)-t.value)
	}
	return d
}

func (m *Matrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sparse %dx%d {", m.rowcnt, m.colcnt)
	for k, t := range m.values {
		if k > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d,%d)=%g", t.row, t.col, t.value)
	}
	b.WriteString("}")
	return b.String()
}

func (t *triplet) storedLeftOf(i, j int) bool {
	return t.row < i || t.row == i && t.col < j
}

func (t *triplet) storedAt(i, j int) bool {
	return (t.row == i && t.col == j)
}
