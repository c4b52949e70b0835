// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom holds the immutable axisymmetric toroidal geometry a step
// is built against: cell/face grid, metric factors, and safety factor.
// Equilibrium reconstruction itself lives outside this module; this
// package only stores and validates the arrays a caller supplies.
package geom

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Kind distinguishes the flux-surface shape family; only Circular affects
// the metric factors computed here, Shaped geometries must supply their
// own JacobianCell/FaceAreas/SafetyFactor arrays from an external
// equilibrium solver.
type Kind int

const (
	Circular Kind = iota
	Shaped
)

// Geometry is the read-only grid and metric data for a step. All derived
// arrays are pre-computed at construction time; nothing here is mutated
// once a Geometry exists.
type Geometry struct {
	R0   float64 // major radius [m]
	A    float64 // minor radius [m]
	B0   float64 // toroidal field [T]
	Kind Kind

	NCells int

	CellCenters []float64 // [N] radial cell centers, monotone increasing
	CellDx      []float64 // [N-1] distances between adjacent cell centers
	CellVolume  []float64 // [N] cell volumes
	FaceArea    []float64 // [N+1] face areas
	JacobianCel []float64 // [N] cell-centered jacobian sqrt(g)
	SafetyQ     []float64 // [N] safety factor q(rho)
}

// AspectRatio returns a/R0.
func (g *Geometry) AspectRatio() float64 { return g.A / g.R0 }

// NewCircular builds a circular-cross-section geometry on a uniform
// radial grid of nCells cells from core (rho=0) to edge (rho=a), using a
// simple analytic safety-factor profile q(rho) = q0 + (qEdge-q0)*(rho/a)^2
// as a placeholder for an externally supplied equilibrium. Real shaped
// equilibria must be constructed by an external collaborator and passed
// through NewFromArrays instead.
func NewCircular(r0, a, b0 float64, nCells int, q0, qEdge float64) (*Geometry, error) {
	if nCells <= 0 {
		return nil, chk.Err("geom: nCells must be positive; got %d\n", nCells)
	}
	if a <= 0 || r0 <= 0 {
		return nil, chk.Err("geom: R0 and a must be positive\n")
	}

	g := &Geometry{R0: r0, A: a, B0: b0, Kind: Circular, NCells: nCells}
	g.CellCenters = make([]float64, nCells)
	g.CellVolume = make([]float64, nCells)
	g.FaceArea = make([]float64, nCells+1)
	g.JacobianCel = make([]float64, nCells)
	g.SafetyQ = make([]float64, nCells)

	dr := a / float64(nCells)
	for i := 0; i < nCells; i++ {
		rho := (float64(i) + 0.5) * dr
		g.CellCenters[i] = rho
		g.JacobianCel[i] = 2 * math.Pi * math.Pi * r0 * rho // sqrt(g) ~ R0*rho for circular, up to 4pi^2
		g.CellVolume[i] = g.JacobianCel[i] * dr
		g.SafetyQ[i] = q0 + (qEdge-q0)*(rho/a)*(rho/a)
	}
	for i := 0; i <= nCells; i++ {
		rho := float64(i) * dr
		g.FaceArea[i] = 2 * math.Pi * math.Pi * r0 * rho
	}
	if nCells > 1 {
		g.CellDx = make([]float64, nCells-1)
		for i := 0; i < nCells-1; i++ {
			g.CellDx[i] = g.CellCenters[i+1] - g.CellCenters[i]
		}
	} else {
		g.CellDx = []float64{}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewFromArrays builds a Geometry from externally-supplied derived
// arrays (e.g. produced by an equilibrium solver outside this module's
// scope), validating shapes and invariants.
func NewFromArrays(r0, a, b0 float64, kind Kind, cellCenters, cellDx, cellVolume, faceArea, jacobianCel, safetyQ []float64) (*Geometry, error) {
	n := len(cellCenters)
	g := &Geometry{
		R0: r0, A: a, B0: b0, Kind: kind, NCells: n,
		CellCenters: cellCenters, CellDx: cellDx, CellVolume: cellVolume,
		FaceArea: faceArea, JacobianCel: jacobianCel, SafetyQ: safetyQ,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the shape, positivity, monotonicity, and aspect-ratio
// invariants.
func (g *Geometry) Validate() error {
	n := g.NCells
	if n <= 0 {
		return chk.Err("geom: NCells must be positive\n")
	}
	if len(g.CellCenters) != n || len(g.CellVolume) != n || len(g.JacobianCel) != n || len(g.SafetyQ) != n {
		return chk.Err("geom: cell-length arrays must all have length %d\n", n)
	}
	if len(g.FaceArea) != n+1 {
		return chk.Err("geom: FaceArea must have length %d, got %d\n", n+1, len(g.FaceArea))
	}
	if n > 1 && len(g.CellDx) != n-1 {
		return chk.Err("geom: CellDx must have length %d, got %d\n", n-1, len(g.CellDx))
	}
	for i, v := range g.CellVolume {
		if v <= 0 {
			return chk.Err("geom: CellVolume[%d] must be positive, got %g\n", i, v)
		}
	}
	for i, v := range g.JacobianCel {
		if v <= 0 {
			return chk.Err("geom: JacobianCel[%d] must be positive, got %g\n", i, v)
		}
	}
	for i := 0; i < n; i++ {
		if g.FaceArea[i] < 0 {
			return chk.Err("geom: FaceArea[%d] must be non-negative, got %g\n", i, g.FaceArea[i])
		}
	}
	for i := 1; i < n; i++ {
		if g.CellCenters[i] <= g.CellCenters[i-1] {
			return chk.Err("geom: CellCenters must be strictly monotone increasing (violated at %d)\n", i)
		}
	}
	if g.AspectRatio() > 0.5 {
		return chk.Err("geom: aspect ratio a/R0=%g exceeds 0.5\n", g.AspectRatio())
	}
	return nil
}

// DxPadded returns the N-1 cell distances extended to length N by
// repeating the last entry, used by the metric-tensor divergence.
func (g *Geometry) DxPadded() []float64 {
	n := g.NCells
	out := make([]float64, n)
	copy(out, g.CellDx)
	if n > 1 {
		out[n-1] = g.CellDx[n-2]
	} else {
		out[0] = 1.0
	}
	return out
}
