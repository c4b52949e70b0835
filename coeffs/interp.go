// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coeffs

// harmonicEps guards the reciprocal-harmonic mean on interior faces
// against division by zero when a cell value is zero; boundary faces copy
// the cell value and do not use it.
const harmonicEps = 1e-30

// InterpHarmonic computes the N+1 face values of a positive cell
// quantity (chi, D, ne) via the reciprocal-harmonic mean
// 2/(1/a_i + 1/a_{i+1}), which never overflows at magnitudes ~1e20 the
// way the equivalent product form 2ab/(a+b) does in single precision.
// Boundary faces copy the adjacent cell value (no ghost-cell
// extrapolation).
func InterpHarmonic(cell []float32) []float32 {
	n := len(cell)
	face := make([]float32, n+1)
	face[0] = cell[0]
	face[n] = cell[n-1]
	for i := 0; i < n-1; i++ {
		a, b := cell[i], cell[i+1]
		inv := 1/(float64(a)+harmonicEps) + 1/(float64(b)+harmonicEps)
		face[i+1] = float32(2 / inv)
	}
	return face
}

// InterpArithmetic computes the N+1 face values of a signed cell
// quantity (convection velocities, the geometric Jacobian) via the
// arithmetic mean (a_i+a_{i+1})/2. Boundary faces copy the adjacent cell
// value.
func InterpArithmetic(cell []float32) []float32 {
	n := len(cell)
	face := make([]float32, n+1)
	face[0] = cell[0]
	face[n] = cell[n-1]
	for i := 0; i < n-1; i++ {
		face[i+1] = (cell[i] + cell[i+1]) / 2
	}
	return face
}

// ToFloat32 converts a []float64 to []float32.
func ToFloat32(a []float64) []float32 {
	out := make([]float32, len(a))
	for i, v := range a {
		out[i] = float32(v)
	}
	return out
}
