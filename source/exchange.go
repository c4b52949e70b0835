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

// Exchange computes the ion-electron collisional equilibration power density
// Q_ei = 3*me/mi * ne/tau_e * (Te - Ti), using the NRL-formulary electron
// collision time. Positive Te-Ti heats ions and cools electrons equally.
type Exchange struct {
	CoulombLog float64
	IonMassAMU float64
}

const (
	electronMassKg = 9.10938356e-31
	protonMassKg   = 1.67262192369e-27
	evToJoule      = 1.602176634e-19
)

func init() {
	Register("exchange", func() Model { return new(Exchange) })
}

func (o *Exchange) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "coulomb_log", "ion_mass_amu"); err != nil {
		return err
	}
	o.CoulombLog = prms.FindOr("coulomb_log", 17.0)
	o.IonMassAMU = prms.FindOr("ion_mass_amu", 2.5) // D-T average
	return nil
}

func (o *Exchange) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "coulomb_log", V: 17.0},
		{N: "ion_mass_amu", V: 2.5},
	}
}

// electronCollisionTime returns the NRL electron-ion collision time [s] for
// a Maxwellian electron population at temperature teEV and density neM3.
func electronCollisionTime(teEV, neM3, lnLambda float64) float64 {
	if teEV <= 0 || neM3 <= 0 {
		return math.Inf(1)
	}
	// tau_e [s] = 3.44e5 * Te[eV]^1.5 / (ne[cm^-3] * lnLambda), NRL
	// formula with the density converted from SI input.
	neCm3 := neM3 * 1e-6
	return 3.44e5 * math.Pow(teEV, 1.5) / (neCm3 * lnLambda)
}

func (o *Exchange) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	n := g.NCells
	if !profileIsSane(p) {
		return zeroTerms(n), nil
	}
	out := zeroTerms(n)
	miKg := o.IonMassAMU * protonMassKg
	for i := 0; i < n; i++ {
		ti := float64(p.Ti[i])
		te := float64(p.Te[i])
		ne := float64(p.Ne[i])
		tauE := electronCollisionTime(te, ne, o.CoulombLog)
		qei := 3.0 * (electronMassKg / miKg) * ne * (te - ti) * evToJoule / tauE // W/m^3
		out.IonHeating[i] = float32(qei / 1e6)
		out.ElectronHeating[i] = float32(-qei / 1e6)
	}
	return out, nil
}
