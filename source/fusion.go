// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"math"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Fusion computes D-T fusion heating using the Bosch-Hale-style
// parametrized reactivity fit, split between ions and electrons per the
// alpha-particle slowing-down fraction.
type Fusion struct {
	DeuteriumFraction float64
	TritiumFraction   float64
	IonHeatFrac       float64 // fraction of 3.5 MeV alpha energy to ions
}

func init() {
	Register("fusion", func() Model { return new(Fusion) })
}

func (o *Fusion) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "deuterium_fraction", "tritium_fraction", "ion_heat_frac"); err != nil {
		return err
	}
	o.DeuteriumFraction = prms.FindOr("deuterium_fraction", 0.5)
	o.TritiumFraction = prms.FindOr("tritium_fraction", 0.5)
	o.IonHeatFrac = prms.FindOr("ion_heat_frac", 0.2)
	return nil
}

func (o *Fusion) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "deuterium_fraction", V: 0.5},
		{N: "tritium_fraction", V: 0.5},
		{N: "ion_heat_frac", V: 0.2},
	}
}

// reactivitySimple is a simplified <sigma*v> fit [m^3/s] for D-T valid
// over ~5-50 keV, adequate for driving the composite source model; it
// is not a substitute for a physics-validated reactivity table.
func reactivitySimple(tiKeV float64) float64 {
	if tiKeV <= 0 {
		return 0
	}
	// crude log-parabola fit: ~1e-22 m^3/s at 10 keV, rising
	// monotonically through the range above (no peak near 65 keV).
	x := math.Log(tiKeV)
	return 1.1e-24 * math.Exp(2.1*x-0.06*x*x)
}

const fusionEnergyJ = 3.5 * 1.602176634e-13 // 3.5 MeV alpha energy per D-T reaction, in Joules

func (o *Fusion) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	out := zeroTerms(n)
	for i := 0; i < n; i++ {
		ti := float64(p.Ti[i])
		ne := float64(p.Ne[i])
		nD := ne * o.DeuteriumFraction
		nT := ne * o.TritiumFraction
		sv := reactivitySimple(ti / 1000.0)
		pDensity := nD * nT * sv * fusionEnergyJ // W/m^3
		out.IonHeating[i] = float32(o.IonHeatFrac * pDensity / 1e6)
		out.ElectronHeating[i] = float32((1 - o.IonHeatFrac) * pDensity / 1e6)
	}
	return out, nil
}
