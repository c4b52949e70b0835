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

// ECRH deposits a fixed total electron heating power as a Gaussian profile
// centered at RhoDeposit with half-width WidthRho, modeling localized
// electron-cyclotron-resonance heating. Widths narrower than three grid
// cells are rejected; the geometry is not known at Init time, so that
// check is deferred to Compute.
type ECRH struct {
	PowerMW          float64
	RhoDeposit       float64
	WidthRho         float64
	MinCellsPerWidth float64
}

func init() {
	Register("ecrh", func() Model { return new(ECRH) })
}

func (o *ECRH) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "power_mw", "rho_deposit", "width_rho"); err != nil {
		return err
	}
	o.PowerMW = prms.FindOr("power_mw", 1.0)
	o.RhoDeposit = prms.FindOr("rho_deposit", 0.3)
	o.WidthRho = prms.FindOr("width_rho", 0.05)
	o.MinCellsPerWidth = 3.0
	if o.WidthRho <= 0 {
		return chk.Err("ecrh: width_rho must be positive, got %g\n", o.WidthRho)
	}
	return nil
}

func (o *ECRH) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "power_mw", V: 1.0},
		{N: "rho_deposit", V: 0.3},
		{N: "width_rho", V: 0.05},
	}
}

func (o *ECRH) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	if n > 0 {
		avgDx := g.A / float64(n)
		// relative slack so a width of exactly three cells survives rounding
		if o.WidthRho < o.MinCellsPerWidth*avgDx*(1-1e-9) {
			return nil, chk.Err("ecrh: deposition width %g is unresolved by the grid (need >= %g*dr = %g)\n",
				o.WidthRho, o.MinCellsPerWidth, o.MinCellsPerWidth*avgDx)
		}
	}
	out := zeroTerms(n)
	weights := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		rho := g.CellCenters[i]
		z := (rho - o.RhoDeposit) / o.WidthRho
		w := math.Exp(-0.5 * z * z)
		weights[i] = w
		sum += w * g.CellVolume[i]
	}
	if sum <= 0 {
		return out, nil
	}
	powerW := o.PowerMW * 1e6
	for i := 0; i < n; i++ {
		densityWm3 := powerW * weights[i] / sum
		out.ElectronHeating[i] = float32(densityWm3 / 1e6)
	}
	return out, nil
}
