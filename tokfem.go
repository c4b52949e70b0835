// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tokfem advances a magnetically confined toroidal plasma in
// time by integrating the coupled one-dimensional transport equations
// for ion temperature, electron temperature, electron density, and
// poloidal flux on a radial finite-volume grid. Each implicit step runs
// a scaled Newton-Raphson iteration over the theta-method residual,
// with coefficients reassembled from the transport and source models at
// every iterate. The physics models themselves are external
// collaborators reached through the transport and source interfaces;
// this package wires coefficient assembly, residual, Jacobian, linear
// solve, and line search into one step driver.
package tokfem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/tokfem/coeffs"
	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/linsolve"
	"github.com/cpmech/tokfem/newton"
	"github.com/cpmech/tokfem/residual"
	"github.com/cpmech/tokfem/state"
)

// CoeffsCallback bundles the transport+sources+assembly path; it is the
// sole dependency the step driver has on physics. Implementations must
// be pure functions of the profiles and geometry.
type CoeffsCallback func(p *state.CoreProfiles, g *geom.Geometry) (*coeffs.Block1DCoeffs, error)

// Metadata carries the step context a non-converged result needs for
// the caller's retry decision.
type Metadata struct {
	Theta       float32
	Dt          float32
	FailureType newton.FailureType
}

// SolverResult is the outcome of one implicit step. Non-convergence is
// not an error: the profiles carry the last safe state and Metadata
// says why the step aborted, so the timestep controller can shrink dt
// and retry.
type SolverResult struct {
	Profiles     *state.CoreProfiles
	Iterations   int
	ResidualNorm float64
	Converged    bool
	Metadata     Metadata
}

// Stepper advances the coupled state one implicit step at a time. The
// geometry is immutable for the stepper's lifetime; profiles are owned
// by the caller and never mutated in place.
type Stepper struct {
	Geo    *geom.Geometry
	Layout *state.Layout
	BCs    residual.BoundaryConditions
	Theta  float32
	Coeffs CoeffsCallback

	Scales        newton.ReferenceScales
	Tol           newton.Tolerances
	MaxIterations int
	LinConfig     linsolve.Config
	Verbose       bool
}

// NewStepper builds a Stepper with default scaling, tolerances, and
// linear-solver tuning for the given geometry, boundary conditions,
// theta, and coefficient callback.
func NewStepper(g *geom.Geometry, bcs residual.BoundaryConditions, theta float32, cb CoeffsCallback) (*Stepper, error) {
	if g == nil {
		return nil, chk.Err("tokfem: geometry must not be nil\n")
	}
	if theta < 0 || theta > 1 {
		return nil, chk.Err("tokfem: theta must be in [0,1], got %g\n", theta)
	}
	if cb == nil {
		return nil, chk.Err("tokfem: coefficients callback must not be nil\n")
	}
	layout, err := state.NewLayout(g.NCells)
	if err != nil {
		return nil, err
	}
	return &Stepper{
		Geo:           g,
		Layout:        layout,
		BCs:           bcs,
		Theta:         theta,
		Coeffs:        cb,
		Scales:        newton.DefaultReferenceScales(),
		Tol:           newton.DefaultTolerances(),
		MaxIterations: 100,
		LinConfig:     linsolve.DefaultConfig(),
	}, nil
}

// Step advances profiles by dt seconds. Old-time coefficients are
// assembled once; new-time coefficients are rebuilt at every Newton
// iterate through the callback, since they depend nonlinearly on the
// current profiles.
func (s *Stepper) Step(p *state.CoreProfiles, dt float32) (*SolverResult, error) {
	if dt <= 0 {
		return nil, chk.Err("tokfem: dt must be positive, got %g\n", dt)
	}
	flat, err := state.FromProfiles(p)
	if err != nil {
		return nil, err
	}
	if flat.Layout.NCells != s.Geo.NCells {
		return nil, chk.Err("tokfem: profiles have %d cells, geometry has %d\n", flat.Layout.NCells, s.Geo.NCells)
	}

	coeffsOld, err := s.Coeffs(p, s.Geo)
	if err != nil {
		return nil, chk.Err("tokfem: old-time coefficient assembly failed: %v\n", err)
	}

	res := residual.New(s.Layout, s.BCs, s.Theta, dt)
	drv := &newton.Driver{
		Layout:        s.Layout,
		Scales:        s.Scales,
		Tol:           s.Tol,
		MaxIterations: s.MaxIterations,
		LinConfig:     s.LinConfig,
		Residual:      res,
		Verbose:       s.Verbose,
	}

	r := drv.Solve(flat.X, coeffsOld, func(iterate *state.CoreProfiles) (*coeffs.Block1DCoeffs, error) {
		return s.Coeffs(iterate, s.Geo)
	})
	if s.Verbose && !r.Converged {
		io.Pfred("tokfem: step did not converge after %d iterations (|R|=%g)\n", r.Iterations, r.ResidNorm)
	}
	return &SolverResult{
		Profiles:     r.Profiles,
		Iterations:   r.Iterations,
		ResidualNorm: r.ResidNorm,
		Converged:    r.Converged,
		Metadata:     Metadata{Theta: s.Theta, Dt: dt, FailureType: r.FailureType},
	}, nil
}
