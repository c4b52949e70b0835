// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"math"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// BohmGyroBohm is a gradient-scale-length-driven empirical closure:
// diffusivities scale with the Bohm term (T/B) plus a gyro-Bohm term
// weighted by the local temperature gradient scale length, a common
// shape for tokamak empirical transport models.
type BohmGyroBohm struct {
	ChiBohmCoeff    float64
	ChiGyroBohmCoef float64
	DRatio          float64 // D = DRatio * chi_i, a common simplification
	V               float64
}

func init() {
	Register("bohm-gyrobohm", func() Model { return new(BohmGyroBohm) })
}

func (o *BohmGyroBohm) Init(prms modelparams.Prms) error {
	if err := modelparams.CheckKnown(prms, "chi_bohm_coeff", "chi_gyrobohm_coeff", "d_ratio", "convection_velocity"); err != nil {
		return err
	}
	o.ChiBohmCoeff = prms.FindOr("chi_bohm_coeff", 1e-2)
	o.ChiGyroBohmCoef = prms.FindOr("chi_gyrobohm_coeff", 5e-3)
	o.DRatio = prms.FindOr("d_ratio", 0.3)
	o.V = prms.FindOr("convection_velocity", 0.0)
	return nil
}

func (o *BohmGyroBohm) GetPrms() modelparams.Prms {
	return modelparams.Prms{
		{N: "chi_bohm_coeff", V: 1e-2},
		{N: "chi_gyrobohm_coeff", V: 5e-3},
		{N: "d_ratio", V: 0.3},
		{N: "convection_velocity", V: 0.0},
	}
}

// Compute evaluates chi_Bohm = coeff*Te/B0 and chi_gyroBohm proportional
// to the normalized ion temperature gradient scale length, summed per
// cell; D is a fixed ratio of chi_i and V is constant.
func (o *BohmGyroBohm) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Coefficients, error) {
	n := g.NCells
	out := &Coefficients{
		ChiI: make([]float32, n),
		ChiE: make([]float32, n),
		D:    make([]float32, n),
		V:    make([]float32, n),
	}
	b0 := g.B0
	if b0 <= 0 {
		b0 = 1.0
	}
	for i := 0; i < n; i++ {
		te := math.Max(float64(p.Te[i]), 1.0)
		chiBohm := o.ChiBohmCoeff * te / b0
		grad := gradScaleLength(p.Ti, g.CellDx, i)
		chiGyroBohm := o.ChiGyroBohmCoef * te * grad
		chiI := chiBohm + chiGyroBohm
		out.ChiI[i] = float32(chiI)
		out.ChiE[i] = float32(chiBohm + 0.5*chiGyroBohm)
		out.D[i] = float32(o.DRatio * chiI)
		out.V[i] = float32(o.V)
	}
	return out, nil
}

// gradScaleLength returns |grad(u)|/u at cell i using the nearest
// available one-sided difference, a dimensionless measure used by
// empirical gyro-Bohm-style closures.
func gradScaleLength(u []float32, dx []float64, i int) float64 {
	n := len(u)
	if n < 2 {
		return 0
	}
	var dudx, ref float64
	switch {
	case i == 0:
		dudx = (float64(u[1]) - float64(u[0])) / dx[0]
		ref = float64(u[0])
	case i == n-1:
		dudx = (float64(u[n-1]) - float64(u[n-2])) / dx[n-2]
		ref = float64(u[n-1])
	default:
		dudx = (float64(u[i+1]) - float64(u[i-1])) / (dx[i-1] + dx[i])
		ref = float64(u[i])
	}
	if ref < 1.0 {
		ref = 1.0
	}
	return math.Abs(dudx) / ref
}
