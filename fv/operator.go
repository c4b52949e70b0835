// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fv

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/coeffs"
)

// pecletCentral/pecletUpwind bound the power-law blending regime.
const (
	pecletCentral = 0.1
	pecletUpwind  = 10.0
)

// Operator applies F(u) = div(d*grad(u)) + div(v*u_face) + s + s_mat*u for
// one equation
type Operator struct {
	BC VariableBC
}

// NewOperator builds an Operator carrying the given variable's boundary
// conditions.
func NewOperator(bc VariableBC) *Operator {
	return &Operator{BC: bc}
}

// Apply evaluates F(u) over all N cells given the equation's coefficients
// and the geometric factors view shared by all four equations.
func (o *Operator) Apply(u []float32, eq *coeffs.EquationCoeffs, geo *coeffs.GeometricFactors) ([]float32, error) {
	n := len(u)
	if err := validateLengths(n, eq, geo); err != nil {
		return nil, err
	}

	gFace := o.faceGradients(u, geo.CellDxPadded)
	fDiff := diffusiveFlux(eq.DFace, gFace)
	uFace := patankarFaceValues(u, eq.VFace, eq.DFace, geo.CellDxPadded, o.BC)
	fConv := convectiveFlux(eq.VFace, uFace)

	flux := make([]float32, n+1)
	for i := range flux {
		flux[i] = fDiff[i] + fConv[i]
	}

	div := metricDivergence(flux, geo.JacobianFace, geo.JacobianCell, geo.CellDxPadded)

	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = div[i] + eq.SourceCell[i] + eq.SourceMatCell[i]*u[i]
	}
	return out, nil
}

func validateLengths(n int, eq *coeffs.EquationCoeffs, geo *coeffs.GeometricFactors) error {
	if len(eq.DFace) != n+1 || len(eq.VFace) != n+1 {
		return chk.Err("fv: coefficient face arrays must have length %d, got DFace=%d VFace=%d\n", n+1, len(eq.DFace), len(eq.VFace))
	}
	if len(eq.SourceCell) != n || len(eq.SourceMatCell) != n {
		return chk.Err("fv: coefficient cell arrays must have length %d\n", n)
	}
	if len(geo.CellDxPadded) != n || len(geo.CellVolume) != n || len(geo.JacobianCell) != n {
		return chk.Err("fv: geometric cell arrays must have length %d\n", n)
	}
	if len(geo.JacobianFace) != n+1 {
		return chk.Err("fv: JacobianFace must have length %d\n", n+1)
	}
	return nil
}

// faceGradients computes the N+1 face gradients of u: interior faces via
// central difference, boundary faces via the variable's BC.
func (o *Operator) faceGradients(u []float32, dx []float32) []float32 {
	n := len(u)
	g := make([]float32, n+1)
	for i := 1; i < n; i++ {
		g[i] = (u[i] - u[i-1]) / dx[i-1]
	}
	g[0] = boundaryGradient(o.BC.Left, u[0], dx[0], true)
	if n > 0 {
		g[n] = boundaryGradient(o.BC.Right, u[n-1], dx[n-1], false)
	}
	return g
}

// boundaryGradient resolves one side's face gradient from its BC: a
// Dirichlet value implies a one-sided difference against the ghost value,
// a Neumann condition supplies the gradient directly.
func boundaryGradient(bc BoundaryCondition, uAdj float32, dx float32, left bool) float32 {
	switch bc.Kind {
	case Value:
		if left {
			return (uAdj - bc.V) / dx
		}
		return (bc.V - uAdj) / dx
	default: // Gradient
		return bc.V
	}
}

// diffusiveFlux is F_diff = -dFace * gFace.
func diffusiveFlux(dFace, gFace []float32) []float32 {
	out := make([]float32, len(dFace))
	for i := range out {
		out[i] = -dFace[i] * gFace[i]
	}
	return out
}

// patankarFaceValues interpolates cell values to faces for the convective
// flux using the Patankar power-law scheme, blending
// between central averaging, power-law upwind weighting, and pure
// upwind based on the local face Péclet number.
func patankarFaceValues(u, vFace, dFace, dx []float32, bc VariableBC) []float32 {
	n := len(u)
	out := make([]float32, n+1)
	out[0] = boundaryFaceValue(bc.Left, u[0])
	out[n] = boundaryFaceValue(bc.Right, u[n-1])
	for i := 1; i < n; i++ {
		d := dFace[i]
		var pe float32
		if d > 1e-30 || d < -1e-30 {
			pe = vFace[i] * dx[i-1] / d
		} else {
			pe = 0
		}
		out[i] = patankarBlend(u[i-1], u[i], pe)
	}
	return out
}

func boundaryFaceValue(bc BoundaryCondition, uAdj float32) float32 {
	if bc.Kind == Value {
		return bc.V
	}
	return uAdj
}

// patankarBlend combines the upstream (uL for positive flow, uR for
// negative) and central-average face value by the Patankar power-law
// weight.
func patankarBlend(uL, uR, pe float32) float32 {
	absPe := pe
	if absPe < 0 {
		absPe = -absPe
	}
	central := (uL + uR) / 2
	switch {
	case absPe < pecletCentral:
		return central
	case absPe > pecletUpwind:
		if pe >= 0 {
			return uL
		}
		return uR
	default:
		f := 1 - 0.1*absPe
		if f < 0 {
			f = 0
		}
		w := pow5(f)
		upwind := uR
		if pe >= 0 {
			upwind = uL
		}
		return w*central + (1-w)*upwind
	}
}

func pow5(x float32) float32 {
	x2 := x * x
	return x2 * x2 * x
}

// convectiveFlux is F_conv = vFace * u_face.
func convectiveFlux(vFace, uFace []float32) []float32 {
	out := make([]float32, len(vFace))
	for i := range out {
		out[i] = vFace[i] * uFace[i]
	}
	return out
}

// metricDivergence computes the metric-tensor-weighted divergence: faces are weighted by the (arithmetic-mean
// interpolated) Jacobian before differencing, then normalized by the
// cell Jacobian and padded cell distance.
func metricDivergence(flux, jacobianFace, jacobianCell, dxPadded []float32) []float32 {
	n := len(jacobianCell)
	weighted := make([]float32, n+1)
	for i := range weighted {
		weighted[i] = flux[i] * jacobianFace[i]
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = (weighted[i+1] - weighted[i]) / (jacobianCell[i] * dxPadded[i])
	}
	return out
}
