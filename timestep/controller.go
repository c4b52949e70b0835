// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timestep implements the adaptive CFL-based timestep controller:
// diffusion/convection CFL limits with bounded growth and shrink between
// successive steps.
package timestep

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Config holds the controller's tuning knobs, defaults
type Config struct {
	MinDt             float64
	MaxDt             float64
	Safety            float64 // s in (0,1), default 0.9
	GrowthCap         float64 // default 1.2
	MaxRelChange      float64 // max relative per-step field change, default 0.1
	MaxTimestepGrowth float64 // step-to-step growth bound, default 1.2
}

// DefaultConfig returns a conservative default tuning.
func DefaultConfig(minDt, maxDt float64) Config {
	return Config{
		MinDt:             minDt,
		MaxDt:             maxDt,
		Safety:            0.9,
		GrowthCap:         1.2,
		MaxRelChange:      0.1,
		MaxTimestepGrowth: 1.2,
	}
}

// Inputs bundles the per-step quantities the controller reasons about.
type Inputs struct {
	ChiI, ChiE, D []float32 // transport coefficients, cell-centered
	V             []float32 // convection velocity, cell-centered
	Dr            float64   // radial cell spacing a/N
	PrevDt        float64
	PrevFields    [][]float32 // previous-step field values, one slice per evolved field
	NewFields     [][]float32 // current-step field values, same shapes as PrevFields
}

// Propose returns the next dt: diffusion and convection CFL limits, a cap on the maximum relative per-field change,
// bounded growth/shrink relative to the previous dt, and a final clamp to
// [MinDt, MaxDt].
func Propose(in Inputs, cfg Config) (float64, error) {
	if cfg.MinDt <= 0 || cfg.MaxDt <= cfg.MinDt {
		return 0, chk.Err("timestep: invalid [minDt,maxDt] = [%g,%g]\n", cfg.MinDt, cfg.MaxDt)
	}
	if in.PrevDt <= 0 {
		return 0, chk.Err("timestep: PrevDt must be positive, got %g\n", in.PrevDt)
	}

	chiMax := maxOf(in.ChiI, in.ChiE, in.D)
	vMaxAbs := maxAbsOf(in.V)

	dtDiff := cfg.Safety * in.Dr * in.Dr / math.Max(chiMax, 1e-10)
	dtConv := cfg.Safety * in.Dr / math.Max(vMaxAbs, 1e-10)
	dt := math.Min(dtDiff, dtConv)

	if maxRate := maxRelativeRate(in.PrevFields, in.NewFields, in.PrevDt); maxRate > 0 {
		dt = math.Min(dt, cfg.MaxRelChange/maxRate)
	}

	lowerGrowth := 0.5 * in.PrevDt
	upperGrowth := math.Min(1.5, math.Min(cfg.GrowthCap, cfg.MaxTimestepGrowth)) * in.PrevDt
	dt = utl.Max(lowerGrowth, utl.Min(upperGrowth, dt))

	dt = utl.Max(cfg.MinDt, utl.Min(cfg.MaxDt, dt))
	return dt, nil
}

func maxOf(arrays ...[]float32) float64 {
	m := 0.0
	for _, a := range arrays {
		for _, v := range a {
			if f := float64(v); f > m {
				m = f
			}
		}
	}
	return m
}

func maxAbsOf(a []float32) float64 {
	m := 0.0
	for _, v := range a {
		f := math.Abs(float64(v))
		if f > m {
			m = f
		}
	}
	return m
}

// maxRelativeRate returns max over fields of ||u_new - u_old||_inf / dt_prev.
func maxRelativeRate(prev, next [][]float32, dtPrev float64) float64 {
	m := 0.0
	for fi := range prev {
		if fi >= len(next) {
			continue
		}
		a, b := prev[fi], next[fi]
		for i := range a {
			if i >= len(b) {
				break
			}
			d := math.Abs(float64(b[i]-a[i])) / dtPrev
			if d > m {
				m = d
			}
		}
	}
	return m
}
