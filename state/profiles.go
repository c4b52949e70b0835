// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "github.com/cpmech/gosl/chk"

// DensityFloor is the minimum electron density [m^-3] enforced whenever
// profiles are consumed by coefficient assembly, so the non-conservation
// division by ne stays well-defined.
const DensityFloor = 1e18

// CoreProfiles holds the four cell-centered physical fields of length N.
type CoreProfiles struct {
	Ti  []float32 // ion temperature [eV]
	Te  []float32 // electron temperature [eV]
	Ne  []float32 // electron density [m^-3]
	Psi []float32 // poloidal flux [Wb]
}

// NCells returns the common cell count, or an error if the four arrays
// disagree on length.
func (p *CoreProfiles) NCells() (int, error) {
	n := len(p.Ti)
	if len(p.Te) != n || len(p.Ne) != n || len(p.Psi) != n {
		return 0, chk.Err("state: CoreProfiles arrays disagree on length: Ti=%d Te=%d Ne=%d Psi=%d\n",
			len(p.Ti), len(p.Te), len(p.Ne), len(p.Psi))
	}
	return n, nil
}

// ClampDensityFloor returns a copy of p with Ne clamped elementwise to at
// least DensityFloor. Profiles are never mutated in place.
func (p *CoreProfiles) ClampDensityFloor() *CoreProfiles {
	ne := make([]float32, len(p.Ne))
	for i, v := range p.Ne {
		if v < DensityFloor {
			ne[i] = DensityFloor
		} else {
			ne[i] = v
		}
	}
	return &CoreProfiles{Ti: p.Ti, Te: p.Te, Ne: ne, Psi: p.Psi}
}

// FlattenedState is the length-4N state vector bijective with
// CoreProfiles via a fixed layout order (Ti, Te, Ne, Psi).
type FlattenedState struct {
	Layout *Layout
	X      []float32
}

// FromProfiles concatenates the four profile arrays in the fixed order.
func FromProfiles(p *CoreProfiles) (*FlattenedState, error) {
	n, err := p.NCells()
	if err != nil {
		return nil, err
	}
	layout, err := NewLayout(n)
	if err != nil {
		return nil, err
	}
	x := make([]float32, layout.Total())
	copy(x[layout.Ranges[Ti].Start:layout.Ranges[Ti].End], p.Ti)
	copy(x[layout.Ranges[Te].Start:layout.Ranges[Te].End], p.Te)
	copy(x[layout.Ranges[Ne].Start:layout.Ranges[Ne].End], p.Ne)
	copy(x[layout.Ranges[Psi].Start:layout.Ranges[Psi].End], p.Psi)
	return &FlattenedState{Layout: layout, X: x}, nil
}

// ToProfiles slices the flattened state back into a CoreProfiles, in the
// same fixed order used by FromProfiles. Round-trips bijectively.
func (s *FlattenedState) ToProfiles() *CoreProfiles {
	l := s.Layout
	clone := func(r Range) []float32 {
		out := make([]float32, r.Len())
		copy(out, s.X[r.Start:r.End])
		return out
	}
	return &CoreProfiles{
		Ti:  clone(l.Ranges[Ti]),
		Te:  clone(l.Ranges[Te]),
		Ne:  clone(l.Ranges[Ne]),
		Psi: clone(l.Ranges[Psi]),
	}
}

// Scaled returns a new FlattenedState with X divided elementwise by ref
// (the physical reference state), bringing magnitudes to O(1).
func (s *FlattenedState) Scaled(ref []float32) (*FlattenedState, error) {
	if len(ref) != len(s.X) {
		return nil, chk.Err("state: reference state length %d does not match state length %d\n", len(ref), len(s.X))
	}
	out := make([]float32, len(s.X))
	for i := range s.X {
		out[i] = s.X[i] / ref[i]
	}
	return &FlattenedState{Layout: s.Layout, X: out}, nil
}

// Unscaled returns a new FlattenedState with X multiplied elementwise by
// ref, the inverse of Scaled.
func (s *FlattenedState) Unscaled(ref []float32) (*FlattenedState, error) {
	if len(ref) != len(s.X) {
		return nil, chk.Err("state: reference state length %d does not match state length %d\n", len(ref), len(s.X))
	}
	out := make([]float32, len(s.X))
	for i := range s.X {
		out[i] = s.X[i] * ref[i]
	}
	return &FlattenedState{Layout: s.Layout, X: out}, nil
}
