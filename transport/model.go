// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport defines the transport-model external interface
// and ships a small registry of concrete variants: constant, an
// empirical Bohm/gyro-Bohm-style closure, and a composite that sums
// named sub-models. Models register themselves into an allocators map
// at init time.
package transport

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Coefficients is the cell-centered output of a transport model: chi_i,
// chi_e, D, V, all length N. Chi and D must be non-negative.
type Coefficients struct {
	ChiI []float32 // ion heat diffusivity [m^2/s]
	ChiE []float32 // electron heat diffusivity [m^2/s]
	D    []float32 // particle diffusivity [m^2/s]
	V    []float32 // particle convection velocity [m/s]
}

// Model is a pure function of profiles and geometry that returns
// transport coefficients. Implementations must not mutate their inputs.
type Model interface {
	// Init initialises the model from a named parameter list.
	Init(prms modelparams.Prms) error
	// GetPrms returns an example parameter list (for documentation/tests).
	GetPrms() modelparams.Prms
	// Compute returns the transport coefficients for the given profiles
	// and geometry.
	Compute(p *state.CoreProfiles, g *geom.Geometry) (*Coefficients, error)
}

// allocators holds all available transport models, keyed by tag.
var allocators = make(map[string]func() Model)

// Register adds a model constructor to the registry; intended to be
// called from package init() functions.
func Register(name string, alloc func() Model) {
	allocators[name] = alloc
}

// New allocates and returns the model registered under name.
func New(name string) (Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("transport: model %q is not available in the registry\n", name)
	}
	return alloc(), nil
}
