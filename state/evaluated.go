// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state implements the flattened, four-field plasma state and the
// evaluation-discipline wrapper that guarantees every array crossing a
// component boundary has been forced to concrete values.
package state

import "math"

// Evaluated wraps a numerical array that has been forced to concrete
// values. Every component boundary in this module traffics in Evaluated
// handles, never in lazy graphs. Since the backend here (plain []float32
// slices) is already eager, construction is a no-op pass-through; the
// type's role is purely to mark the boundary.
type Evaluated struct {
	data []float32
}

// Eval forces a into an Evaluated handle.
func Eval(a []float32) Evaluated {
	return Evaluated{data: a}
}

// EvalAll forces several arrays in a single pass, amortizing wrapper
// overhead across arrays.
func EvalAll(arrays ...[]float32) []Evaluated {
	out := make([]Evaluated, len(arrays))
	for i, a := range arrays {
		out[i] = Eval(a)
	}
	return out
}

// Shape returns the length of the wrapped array as a one-element shape.
func (e Evaluated) Shape() []int { return []int{len(e.data)} }

// Len returns the number of elements.
func (e Evaluated) Len() int { return len(e.data) }

// Raw returns the underlying array. The caller must not retain a lazy
// graph derived from it across a Newton iteration boundary.
func (e Evaluated) Raw() []float32 { return e.data }

// Equal reports whether e and o are element-wise equal within tol.
func (e Evaluated) Equal(o Evaluated, tol float64) bool {
	if len(e.data) != len(o.data) {
		return false
	}
	for i := range e.data {
		if math.Abs(float64(e.data[i]-o.data[i])) > tol {
			return false
		}
	}
	return true
}
