// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsolve implements the hybrid linear solver: a dense direct
// solve first, falling back to a row-normalization preconditioned SOR
// iteration when the direct attempt is unusable.
package linsolve

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Config holds the SOR fallback's tuning knobs.
type Config struct {
	Omega         float64 // relaxation factor, default 1.5
	MaxIterations int     // default 10000
	ConvergeTol   float64 // default 1e-8
	DivergeRatio  float64 // default 1e6

	// ConditionThreshold gates the direct result on its relative residual
	// |Ax-b|/|b|; zero trusts any finite direct solution.
	ConditionThreshold float64
}

// DefaultConfig returns the default tuning: omega=1.5, up to 10000
// sweeps, convergence at 1e-8 relative change.
func DefaultConfig() Config {
	return Config{
		Omega:         1.5,
		MaxIterations: 10000,
		ConvergeTol:   1e-8,
		DivergeRatio:  1e6,
	}
}

// Failure is returned when neither the direct nor the SOR strategy
// produces a usable solution; it carries enough context to let the
// caller's Newton driver report the witness.
type Failure struct {
	Stage      string // "direct" or "sor"
	Iterations int
	ResidNorm  float64
	Cause      error
}

func (f *Failure) Error() string {
	return chk.Err("linsolve: %s stage failed after %d iterations (residual norm %g): %v\n",
		f.Stage, f.Iterations, f.ResidNorm, f.Cause).Error()
}

// Solve returns x such that A*x ~= b, trying the direct dense solver
// first and falling back to row-normalization preconditioned SOR when
// the direct result is unusable.
func Solve(a [][]float64, b []float64, cfg Config) ([]float64, error) {
	n := len(b)
	if len(a) != n {
		return nil, chk.Err("linsolve: A must be %d x %d, has %d rows\n", n, n, len(a))
	}
	for i, row := range a {
		if len(row) != n {
			return nil, chk.Err("linsolve: A row %d has length %d, want %d\n", i, len(row), n)
		}
	}

	if x, ok := tryDirect(a, b); ok {
		if cfg.ConditionThreshold <= 0 || relativeResidual(a, x, b) < cfg.ConditionThreshold {
			return x, nil
		}
	}
	return sorSolve(a, b, cfg)
}

// tryDirect inverts A and evaluates x = Ainv*b, the dense path of
// num.NlSolver (la.MatInv then mdx = inv(J)*fx). The la routines panic
// on singular input, so the attempt is recover-guarded and reports
// ok=false instead.
func tryDirect(a [][]float64, b []float64) (x []float64, ok bool) {
	defer func() {
		if recover() != nil {
			x, ok = nil, false
		}
	}()
	n := len(b)
	am := la.NewMatrixDeep2(a)
	ai := la.NewMatrix(n, n)
	la.MatInv(ai, am, false)
	x = make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += ai.Get(i, j) * b[j]
		}
		x[i] = sum
	}
	if !allFinite(x) {
		return nil, false
	}
	return x, true
}

// sorSolve applies row-normalization preconditioning then a forward
// Gauss-Seidel-style SOR sweep. Row norms are used instead of plain
// diagonal (Jacobi) scaling: the Jacobian's diagonal magnitudes span
// more than 1e8 here, where diagonal scaling underflows in single
// precision.
func sorSolve(a [][]float64, b []float64, cfg Config) ([]float64, error) {
	n := len(b)
	ap := make([][]float64, n)
	bp := make([]float64, n)
	for i := 0; i < n; i++ {
		s := 1.0 / math.Max(rowNorm(a[i]), 1e-10)
		ap[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			ap[i][j] = s * a[i][j]
		}
		bp[i] = s * b[i]
	}

	x := make([]float64, n)
	xNew := make([]float64, n)
	const eps = 1e-10

	it := 0
	for ; it < cfg.MaxIterations; it++ {
		for i := 0; i < n; i++ {
			aii := ap[i][i]
			sum := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if j < i {
					sum += ap[i][j] * xNew[j]
					continue
				}
				sum += ap[i][j] * x[j]
			}
			xNew[i] = (1-cfg.Omega)*x[i] + (cfg.Omega/(aii+eps))*(bp[i]-sum)
		}
		diffNorm := 0.0
		newNorm := 0.0
		for i := 0; i < n; i++ {
			d := xNew[i] - x[i]
			diffNorm += d * d
			newNorm += xNew[i] * xNew[i]
		}
		diffNorm = math.Sqrt(diffNorm)
		newNorm = math.Sqrt(newNorm)
		ratio := diffNorm / (newNorm + 1e-10)

		copy(x, xNew)

		if !allFinite(x) || ratio > cfg.DivergeRatio {
			return nil, &Failure{Stage: "sor", Iterations: it + 1, ResidNorm: ratio, Cause: chk.Err("diverged\n")}
		}
		if ratio < cfg.ConvergeTol {
			return x, nil
		}
	}
	return nil, &Failure{Stage: "sor", Iterations: it, ResidNorm: 0, Cause: chk.Err("exceeded maxIterations=%d\n", cfg.MaxIterations)}
}

// relativeResidual returns |A*x - b| / (|b| + eps).
func relativeResidual(a [][]float64, x, b []float64) float64 {
	n := len(b)
	num := 0.0
	den := 0.0
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += a[i][j] * x[j]
		}
		d := sum - b[i]
		num += d * d
		den += b[i] * b[i]
	}
	return math.Sqrt(num) / (math.Sqrt(den) + 1e-30)
}

func rowNorm(row []float64) float64 {
	sum := 0.0
	for _, v := range row {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
