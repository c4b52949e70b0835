// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coeffs assembles per-equation finite-volume coefficients from
// transport models, source models, geometry, and the current profiles.
package coeffs

import "github.com/cpmech/gosl/chk"

// EquationCoeffs holds one equation's drift-diffusion coefficients:
// dFace/vFace on the N+1 faces, sourceCell/sourceMatCell/transientCoeff
// on the N cells.
type EquationCoeffs struct {
	DFace          []float32 // [N+1] diffusion coefficient at faces
	VFace          []float32 // [N+1] convection velocity at faces
	SourceCell     []float32 // [N] source term
	SourceMatCell  []float32 // [N] implicit (matrix) source coupling
	TransientCoeff []float32 // [N] coefficient multiplying d/dt
}

// Validate checks that the five arrays have the shapes {N+1,N+1,N,N,N}.
func (e *EquationCoeffs) Validate(nCells int) error {
	if len(e.DFace) != nCells+1 {
		return chk.Err("coeffs: DFace must have length %d, got %d\n", nCells+1, len(e.DFace))
	}
	if len(e.VFace) != nCells+1 {
		return chk.Err("coeffs: VFace must have length %d, got %d\n", nCells+1, len(e.VFace))
	}
	if len(e.SourceCell) != nCells {
		return chk.Err("coeffs: SourceCell must have length %d, got %d\n", nCells, len(e.SourceCell))
	}
	if len(e.SourceMatCell) != nCells {
		return chk.Err("coeffs: SourceMatCell must have length %d, got %d\n", nCells, len(e.SourceMatCell))
	}
	if len(e.TransientCoeff) != nCells {
		return chk.Err("coeffs: TransientCoeff must have length %d, got %d\n", nCells, len(e.TransientCoeff))
	}
	return nil
}

// GeometricFactors is the subset of geom.Geometry consumed by the
// spatial operator: cell distances, volumes, and the cell/face Jacobian.
type GeometricFactors struct {
	CellDxPadded []float32 // [N]
	CellVolume   []float32 // [N]
	JacobianCell []float32 // [N]
	JacobianFace []float32 // [N+1], arithmetic-mean interpolated, boundary-copied
}

// Block1DCoeffs bundles the four equations' coefficients together with
// the geometric factors view, produced once per coefficient evaluation
// (old time, new time, and each Newton iterate's coeffs_new).
type Block1DCoeffs struct {
	Ti, Te, Ne, Psi EquationCoeffs
	Geo             GeometricFactors
}

// Validate validates all four equations' coefficient shapes.
func (b *Block1DCoeffs) Validate(nCells int) error {
	for name, eq := range map[string]*EquationCoeffs{"Ti": &b.Ti, "Te": &b.Te, "Ne": &b.Ne, "Psi": &b.Psi} {
		if err := eq.Validate(nCells); err != nil {
			return chk.Err("coeffs: equation %s invalid: %v\n", name, err)
		}
	}
	return nil
}
