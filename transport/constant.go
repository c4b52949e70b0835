// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Constant is the simplest transport model: flat chi_i, chi_e, D, V
// over the whole profile, useful for manufactured-solution tests.
type Constant struct {
	ChiI, ChiE, D, V float64
}

func init() {
	Register("constant", func() Model { return new(Constant) })
}

// Init reads chi_ion, chi_electron, particle_diffusivity, and
// convection_velocity.
func (o *Constant) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "chi_ion", "chi_electron", "particle_diffusivity", "convection_velocity"); err != nil {
		return err
	}
	o.ChiI = prms.FindOr("chi_ion", 1.0)
	o.ChiE = prms.FindOr("chi_electron", 1.0)
	o.D = prms.FindOr("particle_diffusivity", 0.5)
	o.V = prms.FindOr("convection_velocity", 0.0)
	return nil
}

// GetPrms returns an example parameter list.
func (o *Constant) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "chi_ion", V: 1.0},
		{N: "chi_electron", V: 1.0},
		{N: "particle_diffusivity", V: 0.5},
		{N: "convection_velocity", V: 0.0},
	}
}

// Compute returns flat coefficient arrays of the geometry's cell count.
func (o *Constant) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Coefficients, error) {
	n := g.NCells
	out := &Coefficients{
		ChiI: make([]float32, n),
		ChiE: make([]float32, n),
		D:    make([]float32, n),
		V:    make([]float32, n),
	}
	for i := 0; i < n; i++ {
		out.ChiI[i] = float32(o.ChiI)
		out.ChiE[i] = float32(o.ChiE)
		out.D[i] = float32(o.D)
		out.V[i] = float32(o.V)
	}
	return out, nil
}
