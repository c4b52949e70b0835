// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jacobian builds the dense Jacobian of a residual functor by
// central finite differences: each column is swept with
// num.DerivCentral-style paired evaluations, the same construction
// num.Jacobian uses to build a dense Jacobian from F(x+h*e_j) pairs.
package jacobian

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// ResidualFn evaluates R(x) for a flattened state x, returning a new
// slice of the same length.
type ResidualFn func(x []float32) ([]float32, error)

// defaultStep is the relative perturbation used for the central
// difference; absolute step is max(defaultStep*|x_i|, floorStep).
const (
	defaultStep = 1e-3
	floorStep   = 1e-6
)

// Dense is a row-major dense Jacobian: Dense[i*n+j] = dR_i/dx_j.
type Dense struct {
	N    int
	Data []float64
}

// At returns J[i][j].
func (d *Dense) At(i, j int) float64 { return d.Data[i*d.N+j] }

// Build assembles the N x N Jacobian of fn at x0 via one central-difference
// sweep per basis direction: for column j, perturb x0[j] by +-h and form
// (R(x0+h*e_j) - R(x0-h*e_j)) / (2h). Columns are stacked directly (not
// transposed from a vjp sweep), since a forward finite-difference
// construction visits columns naturally; only the reverse-mode framing in
// framing of the vjp construction is replaced, not the resulting
// Jacobian's orientation.
//
// TODO: exploit the known tridiagonal-block sparsity of the spatial
// operator instead of the dense N^2 sweep once a sparse linear solve path
// exists ( option (a), not implemented here).
func Build(fn ResidualFn, x0 []float32) (*Dense, error) {
	n := len(x0)
	r0, err := fn(x0)
	if err != nil {
		return nil, chk.Err("jacobian: base residual evaluation failed: %v\n", err)
	}
	if len(r0) != n {
		return nil, chk.Err("jacobian: residual must return a vector of length %d, got %d\n", n, len(r0))
	}

	dense := &Dense{N: n, Data: make([]float64, n*n)}
	xPlus := make([]float32, n)
	xMinus := make([]float32, n)

	for j := 0; j < n; j++ {
		h := stepFor(x0[j])
		copy(xPlus, x0)
		copy(xMinus, x0)
		xPlus[j] += h
		xMinus[j] -= h

		rPlus, err := fn(xPlus)
		if err != nil {
			return nil, chk.Err("jacobian: column %d perturbation (+) failed: %v\n", j, err)
		}
		rMinus, err := fn(xMinus)
		if err != nil {
			return nil, chk.Err("jacobian: column %d perturbation (-) failed: %v\n", j, err)
		}
		inv2h := 1.0 / (2.0 * float64(h))
		for i := 0; i < n; i++ {
			d := (float64(rPlus[i]) - float64(rMinus[i])) * inv2h
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, chk.Err("jacobian: non-finite entry at (%d,%d)\n", i, j)
			}
			dense.Data[i*n+j] = d
		}
	}
	return dense, nil
}

// stepFor returns the central-difference step size for perturbing
// component v, scaled relative to its magnitude with a floor to avoid
// vanishing steps near zero.
func stepFor(v float32) float32 {
	h := defaultStep * float32(math.Abs(float64(v)))
	if h < floorStep {
		h = floorStep
	}
	return h
}
