// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coeffs

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/source"
	"github.com/cpmech/tokfem/state"
	"github.com/cpmech/tokfem/transport"
)

// EvPerM3PerSPerMWPerM3 converts a heating density in MW/m^3 to the
// eV/(m^3*s) units the temperature equations' sourceCell carries:
// 1 MW/m^3 = 6.241509e24 eV/(m^3*s).
const EvPerM3PerSPerMWPerM3 = 6.241509e24

// resistivity is the parallel resistivity eta_parallel used for the psi
// equation's dFace, held constant over the profile.
const resistivity = 1e-7

// Builder assembles Block1DCoeffs from a transport model, a source model,
// geometry, and the current profiles.
type Builder struct {
	Transport transport.Model
	Source    source.Model

	// Lp is the poloidal inductance used as the psi equation's transient
	// coefficient. Zero means the legacy unit value; physically it should
	// be mu0*R0 (see DefaultLp).
	Lp float32
}

// Mu0 is the vacuum permeability [H/m].
const Mu0 = 4e-7 * 3.14159265358979323846

// DefaultLp returns the physically-motivated poloidal inductance
// mu0*R0 for the given geometry.
func DefaultLp(g *geom.Geometry) float32 {
	return float32(Mu0 * g.R0)
}

// NewBuilder returns a Builder wired to the given transport and source
// models; both must already be Init'd.
func NewBuilder(t transport.Model, s source.Model) *Builder {
	return &Builder{Transport: t, Source: s}
}

// Build produces the four equations' coefficients plus the geometric
// factors view for the given geometry and profiles.
func (b *Builder) Build(p *state.CoreProfiles, g *geom.Geometry) (*Block1DCoeffs, error) {
	n := g.NCells
	floored := p.ClampDensityFloor()

	tc, err := b.Transport.Compute(floored, g)
	if err != nil {
		return nil, chk.Err("coeffs: transport model failed: %v\n", err)
	}
	st, err := b.Source.Compute(floored, g)
	if err != nil {
		return nil, chk.Err("coeffs: source model failed: %v\n", err)
	}

	neFace := InterpHarmonic(floored.Ne)
	chiIFace := InterpHarmonic(tc.ChiI)
	chiEFace := InterpHarmonic(tc.ChiE)
	dFace := InterpHarmonic(tc.D)
	vFace := InterpArithmetic(tc.V)

	out := &Block1DCoeffs{
		Ti:  b.buildTemperatureEq(n, floored.Ne, neFace, chiIFace, st.IonHeating),
		Te:  b.buildTemperatureEq(n, floored.Ne, neFace, chiEFace, st.ElectronHeating),
		Ne:  b.buildDensityEq(n, dFace, vFace, st.ParticleSource),
		Psi: b.buildPsiEq(n, st.CurrentSource),
		Geo: b.buildGeometricFactors(g),
	}
	if err := out.Validate(n); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Builder) buildTemperatureEq(n int, neCell, neFace, chiFace []float32, heatingMW []float32) EquationCoeffs {
	e := EquationCoeffs{
		DFace:          make([]float32, n+1),
		VFace:          make([]float32, n+1),
		SourceCell:     make([]float32, n),
		SourceMatCell:  make([]float32, n),
		TransientCoeff: make([]float32, n),
	}
	for i := range e.DFace {
		e.DFace[i] = neFace[i] * chiFace[i]
	}
	for i := 0; i < n; i++ {
		e.SourceCell[i] = heatingMW[i] * EvPerM3PerSPerMWPerM3
		e.TransientCoeff[i] = floorFloat32(neCell[i])
	}
	return e
}

func (b *Builder) buildDensityEq(n int, dFace, vFace []float32, particleSource []float32) EquationCoeffs {
	e := EquationCoeffs{
		DFace:          make([]float32, n+1),
		VFace:          make([]float32, n+1),
		SourceCell:     make([]float32, n),
		SourceMatCell:  make([]float32, n),
		TransientCoeff: make([]float32, n),
	}
	copy(e.DFace, dFace)
	copy(e.VFace, vFace)
	copy(e.SourceCell, particleSource)
	for i := 0; i < n; i++ {
		e.TransientCoeff[i] = 1
	}
	return e
}

func (b *Builder) buildPsiEq(n int, currentSource []float32) EquationCoeffs {
	lp := b.Lp
	if lp == 0 {
		lp = 1
	}
	e := EquationCoeffs{
		DFace:          make([]float32, n+1),
		VFace:          make([]float32, n+1),
		SourceCell:     make([]float32, n),
		SourceMatCell:  make([]float32, n),
		TransientCoeff: make([]float32, n),
	}
	for i := range e.DFace {
		e.DFace[i] = resistivity
	}
	for i := 0; i < n; i++ {
		// non-inductive current drive enters as eta*j [V/m]
		e.SourceCell[i] = resistivity * currentSource[i]
		e.TransientCoeff[i] = lp
	}
	return e
}

func (b *Builder) buildGeometricFactors(g *geom.Geometry) GeometricFactors {
	return GeometricFactors{
		CellDxPadded: ToFloat32(g.DxPadded()),
		CellVolume:   ToFloat32(g.CellVolume),
		JacobianCell: ToFloat32(g.JacobianCel),
		JacobianFace: InterpArithmetic(ToFloat32(g.JacobianCel)),
	}
}

func floorFloat32(v float32) float32 {
	if v < state.DensityFloor {
		return state.DensityFloor
	}
	return v
}
