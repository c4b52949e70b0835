// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "github.com/cpmech/gosl/chk"

// Equation indices into the fixed four-equation layout order.
const (
	Ti = iota
	Te
	Ne
	Psi
	NumEquations
)

// Range is a contiguous half-open index range [Start, End) into a
// flattened state vector.
type Range struct {
	Start, End int
}

// Len returns End-Start.
func (r Range) Len() int { return r.End - r.Start }

// Layout describes the four contiguous equation ranges of a flattened
// state vector of length 4*NCells, in the fixed order Ti, Te, Ne, Psi.
type Layout struct {
	NCells int
	Ranges [NumEquations]Range
}

// NewLayout builds a Layout for nCells cells, enforcing nCells > 0.
func NewLayout(nCells int) (*Layout, error) {
	if nCells <= 0 {
		return nil, chk.Err("state: nCells must be positive; got %d\n", nCells)
	}
	l := &Layout{NCells: nCells}
	for i := 0; i < NumEquations; i++ {
		l.Ranges[i] = Range{Start: i * nCells, End: (i + 1) * nCells}
	}
	if l.Ranges[Psi].End != 4*nCells {
		return nil, chk.Err("state: internal layout error: psi range does not end at 4*nCells\n")
	}
	return l, nil
}

// Total returns the total flattened length, 4*NCells.
func (l *Layout) Total() int { return 4 * l.NCells }

// Slice returns the sub-slice of x corresponding to equation eq.
func (l *Layout) Slice(x []float32, eq int) []float32 {
	r := l.Ranges[eq]
	return x[r.Start:r.End]
}
