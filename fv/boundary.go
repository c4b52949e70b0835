// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fv implements the finite-volume spatial operator:
// face gradients, boundary conditions, Patankar power-law convection flux,
// and a metric-tensor-aware divergence. Everything operates on whole
// []float32 slices rather than per-node scalar loops.
package fv

// BCKind distinguishes a Dirichlet value condition from a Neumann
// gradient condition at one side of the domain.
type BCKind int

const (
	Value BCKind = iota
	Gradient
)

// BoundaryCondition is one side's condition for one variable: either a
// Dirichlet value or a Neumann gradient
type BoundaryCondition struct {
	Kind BCKind
	V    float32
}

// Dirichlet builds a Value boundary condition.
func Dirichlet(v float32) BoundaryCondition { return BoundaryCondition{Kind: Value, V: v} }

// Neumann builds a Gradient boundary condition.
func Neumann(g float32) BoundaryCondition { return BoundaryCondition{Kind: Gradient, V: g} }

// VariableBC holds the left (core, rho=0) and right (edge, rho=a) boundary
// conditions for one evolved variable.
type VariableBC struct {
	Left, Right BoundaryCondition
}
