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

// Bremsstrahlung computes the electron radiative loss P = Cb*Zeff*ne^2*sqrt(Te)
// [W/m^3, Te in eV] using the standard NRL-formulary coefficient.
type Bremsstrahlung struct {
	Zeff float64
}

const bremCoeff = 5.35e-37 // W*m^3*eV^-0.5, NRL formulary convention (ne in m^-3)

func init() {
	Register("bremsstrahlung", func() Model { return new(Bremsstrahlung) })
}

func (o *Bremsstrahlung) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "zeff"); err != nil {
		return err
	}
	o.Zeff = prms.FindOr("zeff", 1.5)
	return nil
}

func (o *Bremsstrahlung) GetPrms() modelparams.Prms {
	return modelparams.Prms{{N: "zeff", V: 1.5}}
}

func (o *Bremsstrahlung) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	out := zeroTerms(n)
	for i := 0; i < n; i++ {
		ne := float64(p.Ne[i])
		te := math.Max(float64(p.Te[i]), 0)
		pRad := bremCoeff * o.Zeff * ne * ne * math.Sqrt(te) // W/m^3
		out.ElectronHeating[i] = float32(-pRad / 1e6)         // loss: negative heating
	}
	return out, nil
}
