// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// GasPuff injects neutral gas at the plasma edge: a half-Gaussian
// particle source peaking at rho=a and decaying inward with width
// WidthRho, the usual shape for edge fueling. Rate is the peak
// volumetric rate at the edge.
type GasPuff struct {
	Rate     float64 // [m^-3/s] peak volumetric source at the edge
	WidthRho float64 // [m] inward decay length
}

func init() {
	Register("gas_puff", func() Model { return new(GasPuff) })
}

func (o *GasPuff) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "rate", "width_rho"); err != nil {
		return err
	}
	o.Rate = prms.FindOr("rate", 1e19)
	o.WidthRho = prms.FindOr("width_rho", 0.05)
	if o.WidthRho <= 0 {
		return chk.Err("gas_puff: width_rho must be positive, got %g\n", o.WidthRho)
	}
	if o.Rate < 0 {
		return chk.Err("gas_puff: rate must be non-negative, got %g\n", o.Rate)
	}
	return nil
}

func (o *GasPuff) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "rate", V: 1e19},
		{N: "width_rho", V: 0.05},
	}
}

func (o *GasPuff) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	out := zeroTerms(n)
	for i := 0; i < n; i++ {
		z := (g.A - g.CellCenters[i]) / o.WidthRho
		out.ParticleSource[i] = float32(o.Rate * math.Exp(-0.5*z*z))
	}
	return out, nil
}
