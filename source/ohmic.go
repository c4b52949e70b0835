// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Ohmic computes the resistive (eta * j^2) electron heating from the
// current density implied by the safety-factor profile, a standard
// textbook approximation j(rho) ~ B0/(mu0*R0*q(rho)).
type Ohmic struct {
	Eta float64 // parallel resistivity [Ohm*m], ~1e-7 for hot plasma
}

const mu0 = 4e-7 * 3.14159265358979323846

func init() {
	Register("ohmic", func() Model { return new(Ohmic) })
}

func (o *Ohmic) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "eta"); err != nil {
		return err
	}
	o.Eta = prms.FindOr("eta", 1e-7)
	return nil
}

func (o *Ohmic) GetPrms() modelparams.Prms {
	return modelparams.Prms{{N: "eta", V: 1e-7}}
}

func (o *Ohmic) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	out := zeroTerms(n)
	for i := 0; i < n; i++ {
		j := g.B0 / (mu0 * g.R0 * g.SafetyQ[i])
		pOhm := o.Eta * j * j // W/m^3
		out.ElectronHeating[i] = float32(pOhm / 1e6)
		out.CurrentSource[i] = float32(j)
	}
	return out, nil
}
