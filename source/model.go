// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source defines the source-model external interface
// and ships concrete variants: ohmic, fusion, bremsstrahlung, exchange,
// ecrh, gas_puff, none, and composite. Models register themselves into
// an allocators map at init time, the same registry style transport
// uses.
package source

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Terms is the cell-centered output of a source model:
// ion/electron heating in MW/m^3, particle source in m^-3/s, current
// source in A/m^2.
type Terms struct {
	IonHeating      []float32 // [N] MW/m^3
	ElectronHeating []float32 // [N] MW/m^3
	ParticleSource  []float32 // [N] m^-3/s
	CurrentSource   []float32 // [N] A/m^2
	Meta            map[string]float64
}

// Model is a pure function of profiles and geometry returning source
// terms. Implementations must fail safe (return the zero-valued Terms,
// i.e. unchanged contribution) when invariants cannot be satisfied:
// non-finite inputs or ne <= 0.
type Model interface {
	Init(prms modelparams.Prms) error
	GetPrms() modelparams.Prms
	Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error)
}

var allocators = make(map[string]func() Model)

// Register adds a model constructor to the registry.
func Register(name string, alloc func() Model) {
	allocators[name] = alloc
}

// New allocates and returns the model registered under name.
func New(name string) (Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("source: model %q is not available in the registry\n", name)
	}
	return alloc(), nil
}

// zeroTerms allocates a Terms with all-zero arrays of the geometry's
// cell count, the fail-safe output.
func zeroTerms(n int) *Terms {
	return &Terms{
		IonHeating:      make([]float32, n),
		ElectronHeating: make([]float32, n),
		ParticleSource:  make([]float32, n),
		CurrentSource:   make([]float32, n),
	}
}

// profileIsSane reports whether profiles are finite and ne>0 everywhere,
// the precondition every source model must check before computing.
func profileIsSane(p *state.CoreProfiles) bool {
	check := func(a []float32) bool {
		for _, v := range a {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return false
			}
		}
		return true
	}
	if !check(p.Ti) || !check(p.Te) || !check(p.Ne) || !check(p.Psi) {
		return false
	}
	for _, v := range p.Ne {
		if v <= 0 {
			return false
		}
	}
	return true
}
