// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/tokfem/coeffs"
	"github.com/cpmech/tokfem/jacobian"
	"github.com/cpmech/tokfem/linsolve"
	"github.com/cpmech/tokfem/residual"
	"github.com/cpmech/tokfem/state"
)

// ToleranceSpec is an absolute+relative convergence tolerance. Thresholds
// are derived from these rather than hard-coded per equation.
type ToleranceSpec struct {
	Abs, Rel float64
}

func (t ToleranceSpec) threshold(scaleNorm float64) float64 {
	return t.Abs + t.Rel*scaleNorm
}

// Tolerances bundles one ToleranceSpec per equation; temperatures use a
// coarser tolerance than density and flux.
type Tolerances struct {
	Ti, Te, Ne, Psi ToleranceSpec
}

// DefaultTolerances returns the coarse/tight split: temperatures coarse,
// density and flux tight. The residual is a transient-normalized rate,
// so the absolute parts are in scaled 1/s units; they must sit above
// the float32 quantization floor ulp(u_scaled)/dt of the rate itself.
func DefaultTolerances() Tolerances {
	coarse := ToleranceSpec{Abs: 10.0, Rel: 1e-3}
	tight := ToleranceSpec{Abs: 0.1, Rel: 1e-4}
	return Tolerances{Ti: coarse, Te: coarse, Ne: tight, Psi: tight}
}

func (t Tolerances) byEq(eq int) ToleranceSpec {
	switch eq {
	case state.Ti:
		return t.Ti
	case state.Te:
		return t.Te
	case state.Ne:
		return t.Ne
	default:
		return t.Psi
	}
}

// FailureType enumerates how a Newton solve aborted
type FailureType int

const (
	NoFailure FailureType = iota
	NonFiniteResidual
	LinearSolverError
	InvalidDescentDirection
	LinearAccuracyFailure
	MaxIterationsExceeded
)

// CoeffsFn rebuilds Block1DCoeffs at the new-time iterate; the driver
// calls it once per Newton iteration since coefficients depend
// nonlinearly on the current profiles.
type CoeffsFn func(profiles *state.CoreProfiles) (*coeffs.Block1DCoeffs, error)

// Result is the outcome of one Newton solve
type Result struct {
	Profiles    *state.CoreProfiles
	Iterations  int
	ResidNorm   float64
	Converged   bool
	FailureType FailureType
	Theta       float32
	Dt          float32
}

// Driver runs the scaled Newton-Raphson loop
type Driver struct {
	Layout        *state.Layout
	Scales        ReferenceScales
	Tol           Tolerances
	MaxIterations int
	LinConfig     linsolve.Config
	Residual      *residual.Residual
	Verbose       bool
}

// NewDriver builds a Driver with default scales and tolerances and
// maxIterations=100.
func NewDriver(layout *state.Layout, res *residual.Residual) *Driver {
	return &Driver{
		Layout:        layout,
		Scales:        DefaultReferenceScales(),
		Tol:           DefaultTolerances(),
		MaxIterations: 100,
		LinConfig:     linsolve.DefaultConfig(),
		Residual:      res,
	}
}

// Solve advances one implicit step from xOldPhysical (flattened) given the
// old-time coefficients and a callback that rebuilds new-time
// coefficients from the current profile iterate.
func (d *Driver) Solve(xOldPhysical []float32, coeffsOld *coeffs.Block1DCoeffs, coeffsNewFn CoeffsFn) *Result {
	ref := d.Scales.Vector(d.Layout)
	xOldScaled := scaleBy(xOldPhysical, ref)
	xScaled := append([]float32(nil), xOldScaled...)

	scaledResidual := func(xs []float32) ([]float32, error) {
		xPhys := unscaleBy(xs, ref)
		profiles := (&state.FlattenedState{Layout: d.Layout, X: xPhys}).ToProfiles()
		cNew, err := coeffsNewFn(profiles)
		if err != nil {
			return nil, err
		}
		rPhys, err := d.Residual.Compute(xOldPhysical, xPhys, coeffsOld, cNew)
		if err != nil {
			return nil, err
		}
		rScaled := make([]float32, len(rPhys))
		for i := range rPhys {
			rScaled[i] = rPhys[i] / ref[i]
		}
		return rScaled, nil
	}

	var lastR []float32
	for it := 0; it < d.MaxIterations; it++ {
		rRaw, err := scaledResidual(xScaled)
		if err != nil {
			return d.fail(xOldPhysical, it, NonFiniteResidual)
		}
		// the residual crosses into scalar-returning reads (norms,
		// finiteness) from here on; force it at the boundary first.
		r := state.Eval(rRaw).Raw()
		if !allFiniteF32(r) {
			return d.fail(xOldPhysical, it, NonFiniteResidual)
		}
		lastR = r

		if d.converged(r, xScaled) {
			return d.success(xScaled, ref, it, l2NormF32(r))
		}

		jdense, err := jacobian.Build(scaledResidual, xScaled)
		if err != nil {
			return d.fail(xOldPhysical, it, NonFiniteResidual)
		}

		a := make([][]float64, jdense.N)
		for i := 0; i < jdense.N; i++ {
			a[i] = make([]float64, jdense.N)
			for j := 0; j < jdense.N; j++ {
				a[i][j] = jdense.At(i, j)
			}
		}
		negR := make([]float64, len(r))
		for i, v := range r {
			negR[i] = -float64(v)
		}

		delta, err := linsolve.Solve(a, negR, d.LinConfig)
		if err != nil {
			return d.fail(xOldPhysical, it, LinearSolverError)
		}

		if !directionValid(a, delta, negR) {
			return d.fail(xOldPhysical, it, InvalidDescentDirection)
		}

		alpha, xTry, rTry := d.lineSearch(scaledResidual, xScaled, delta, r)
		if d.Verbose {
			io.Pf("newton: it=%d |R|=%g alpha=%g\n", it, l2NormF32(r), alpha)
		}
		xScaled = xTry
		lastR = rTry
	}
	return d.fail(xOldPhysical, d.MaxIterations, MaxIterationsExceeded, lastR)
}

// directionValid checks the linear-accuracy guard |J*delta+R|/|R| < 1e-3
// and the descent guard delta.(-R) > 0.
func directionValid(a [][]float64, delta, negR []float64) bool {
	n := len(negR)
	jDelta := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += a[i][j] * delta[j]
		}
		jDelta[i] = sum
	}
	resid := 0.0
	rNorm := 0.0
	descent := 0.0
	for i := 0; i < n; i++ {
		d := jDelta[i] - negR[i]
		resid += d * d
		rNorm += negR[i] * negR[i]
		descent += delta[i] * negR[i]
	}
	resid = math.Sqrt(resid)
	rNorm = math.Sqrt(rNorm)
	if rNorm > 0 && resid/rNorm >= 1e-3 {
		return false
	}
	return descent > 0
}

// lineSearch backtracks from alpha=1, halving up to 10 times until the
// residual norm decreases, falling back to alpha=0.1 when it never does.
func (d *Driver) lineSearch(fn func([]float32) ([]float32, error), x []float32, delta []float64, r0 []float32) (float64, []float32, []float32) {
	r0Norm := l2NormF32(r0)
	alpha := 1.0
	for i := 0; i < 10; i++ {
		xTry := addScaled(x, delta, alpha)
		rTry, err := fn(xTry)
		if err == nil && allFiniteF32(rTry) && l2NormF32(rTry) < r0Norm {
			return alpha, xTry, rTry
		}
		alpha /= 2
	}
	alpha = 0.1
	xTry := addScaled(x, delta, alpha)
	rTry, err := fn(xTry)
	if err != nil {
		rTry = r0
	}
	return alpha, xTry, rTry
}

func addScaled(x []float32, delta []float64, alpha float64) []float32 {
	out := make([]float32, len(x))
	for i := range x {
		out[i] = x[i] + float32(alpha*delta[i])
	}
	return out
}

func (d *Driver) converged(r []float32, xScaled []float32) bool {
	for eq := 0; eq < state.NumEquations; eq++ {
		rEq := d.Layout.Slice(r, eq)
		xEq := d.Layout.Slice(xScaled, eq)
		if l2NormF32(rEq) >= d.Tol.byEq(eq).threshold(l2NormF32(xEq)) {
			return false
		}
	}
	return true
}

func (d *Driver) success(xScaled, ref []float32, it int, residNorm float64) *Result {
	xPhys := unscaleBy(xScaled, ref)
	profiles := (&state.FlattenedState{Layout: d.Layout, X: xPhys}).ToProfiles().ClampDensityFloor()
	return &Result{Profiles: profiles, Iterations: it, ResidNorm: residNorm, Converged: true, FailureType: NoFailure, Theta: d.Residual.Theta, Dt: d.Residual.Dt}
}

func (d *Driver) fail(xOldPhysical []float32, it int, ft FailureType, lastR ...[]float32) *Result {
	profiles := (&state.FlattenedState{Layout: d.Layout, X: xOldPhysical}).ToProfiles().ClampDensityFloor()
	residNorm := 0.0
	if len(lastR) > 0 && lastR[0] != nil {
		residNorm = l2NormF32(lastR[0])
	}
	return &Result{Profiles: profiles, Iterations: it, ResidNorm: residNorm, Converged: false, FailureType: ft, Theta: d.Residual.Theta, Dt: d.Residual.Dt}
}

func l2NormF32(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func allFiniteF32(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
