// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package newton implements the Newton-Raphson outer loop:
// physically-motivated per-equation scaling, direction-validity guards,
// and a backtracking line search around the hybrid linear solver.
package newton

import (
	"github.com/cpmech/tokfem/state"
)

// ReferenceScales is the per-equation physical magnitude used to bring
// the state and residual to O(1) ("physically-motivated
// per-variable scaling" is the only strategy offered; absolute-value
// scaling is deliberately not implemented since it underflows near a
// flat psi=0 initial condition).
type ReferenceScales struct {
	TiRef, TeRef, NeRef, PsiRef float64
}

// DefaultReferenceScales returns the magnitudes named in : ~1 keV
// for temperatures, ~1e20 for density, ~1 Wb for psi.
func DefaultReferenceScales() ReferenceScales {
	return ReferenceScales{TiRef: 1000, TeRef: 1000, NeRef: 1e20, PsiRef: 1.0}
}

// Vector expands the four scalar references into a length-4N vector in
// the layout's fixed equation order, for elementwise scale/unscale.
func (r ReferenceScales) Vector(layout *state.Layout) []float32 {
	n := layout.NCells
	out := make([]float32, layout.Total())
	fill := func(eq int, v float64) {
		s := layout.Slice(out, eq)
		fv := float32(v)
		for i := 0; i < n; i++ {
			s[i] = fv
		}
	}
	fill(state.Ti, r.TiRef)
	fill(state.Te, r.TeRef)
	fill(state.Ne, r.NeRef)
	fill(state.Psi, r.PsiRef)
	return out
}

// scaleBy returns x elementwise divided by ref.
func scaleBy(x, ref []float32) []float32 {
	out := make([]float32, len(x))
	for i := range x {
		out[i] = x[i] / ref[i]
	}
	return out
}

// unscaleBy returns x elementwise multiplied by ref.
func unscaleBy(x, ref []float32) []float32 {
	out := make([]float32, len(x))
	for i := range x {
		out[i] = x[i] * ref[i]
	}
	return out
}
