// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package residual assembles the θ-method residual over the
// flattened four-equation state, normalizing each equation by its
// transient coefficient so that single-precision convergence checks are
// meaningful across wildly different physical scales.
package residual

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/coeffs"
	"github.com/cpmech/tokfem/fv"
	"github.com/cpmech/tokfem/state"
)

// normEps guards the per-equation transient-coefficient normalization
// against division by zero.
const normEps = 1e-10

// BoundaryConditions holds one VariableBC per evolved equation, in the
// fixed layout order Ti, Te, Ne, Psi.
type BoundaryConditions [state.NumEquations]fv.VariableBC

// Residual computes the θ-method residual for one step: dt and theta are
// fixed for the call, operators are built once per evaluation from the
// supplied boundary conditions.
type Residual struct {
	Layout *state.Layout
	BCs    BoundaryConditions
	Theta  float32
	Dt     float32
}

// New builds a Residual functor.
func New(layout *state.Layout, bcs BoundaryConditions, theta, dt float32) *Residual {
	return &Residual{Layout: layout, BCs: bcs, Theta: theta, Dt: dt}
}

// Compute evaluates R(xNew) given xOld, xNew (both flattened, length 4N),
// and the Block1DCoeffs assembled at old and new time. The
// result is the concatenated, per-equation-normalized residual, length 4N.
func (r *Residual) Compute(xOld, xNew []float32, coeffsOld, coeffsNew *coeffs.Block1DCoeffs) ([]float32, error) {
	n := r.Layout.NCells
	if len(xOld) != r.Layout.Total() || len(xNew) != r.Layout.Total() {
		return nil, chk.Err("residual: state vectors must have length %d\n", r.Layout.Total())
	}
	if r.Dt <= 0 {
		return nil, chk.Err("residual: dt must be positive, got %g\n", r.Dt)
	}

	out := make([]float32, r.Layout.Total())
	eqs := [state.NumEquations]struct {
		old, new *coeffs.EquationCoeffs
	}{
		{&coeffsOld.Ti, &coeffsNew.Ti},
		{&coeffsOld.Te, &coeffsNew.Te},
		{&coeffsOld.Ne, &coeffsNew.Ne},
		{&coeffsOld.Psi, &coeffsNew.Psi},
	}

	for eq := 0; eq < state.NumEquations; eq++ {
		uOld := r.Layout.Slice(xOld, eq)
		uNew := r.Layout.Slice(xNew, eq)

		op := fv.NewOperator(r.BCs[eq])
		fNew, err := op.Apply(uNew, eqs[eq].new, &coeffsNew.Geo)
		if err != nil {
			return nil, chk.Err("residual: equation %d F(new) failed: %v\n", eq, err)
		}
		fOld, err := op.Apply(uOld, eqs[eq].old, &coeffsOld.Geo)
		if err != nil {
			return nil, chk.Err("residual: equation %d F(old) failed: %v\n", eq, err)
		}

		// operator outputs cross a component boundary here; force them
		// before the elementwise reads below.
		forced := state.EvalAll(fNew, fOld)
		fNewE, fOldE := forced[0].Raw(), forced[1].Raw()

		rOut := r.Layout.Slice(out, eq)
		c := eqs[eq].new.TransientCoeff
		for i := 0; i < n; i++ {
			rRaw := c[i]*(uNew[i]-uOld[i])/r.Dt - r.Theta*fNewE[i] - (1-r.Theta)*fOldE[i]
			rOut[i] = rRaw / (c[i] + normEps)
		}
	}
	return out, nil
}
