// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokfem

import (
	"math"
	"testing"

	"github.com/cpmech/tokfem/coeffs"
	"github.com/cpmech/tokfem/fv"
	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/newton"
	"github.com/cpmech/tokfem/residual"
	"github.com/cpmech/tokfem/source"
	"github.com/cpmech/tokfem/state"
	"github.com/cpmech/tokfem/timestep"
	"github.com/cpmech/tokfem/transport"
)

func constantTransport(t *testing.T, chiI, chiE, d, v float64) transport.Model {
	t.Helper()
	tm, err := transport.New("constant")
	if err != nil {
		t.Fatalf("transport.New: %v", err)
	}
	prms := modelparams.Prms{
		{N: "chi_ion", V: chiI},
		{N: "chi_electron", V: chiE},
		{N: "particle_diffusivity", V: d},
		{N: "convection_velocity", V: v},
	}
	if err := tm.Init(prms); err != nil {
		t.Fatalf("transport.Init: %v", err)
	}
	return tm
}

func sourceModel(t *testing.T, name string, prms modelparams.Prms) source.Model {
	t.Helper()
	sm, err := source.New(name)
	if err != nil {
		t.Fatalf("source.New(%s): %v", name, err)
	}
	if err := sm.Init(prms); err != nil {
		t.Fatalf("source.Init(%s): %v", name, err)
	}
	return sm
}

func builderCallback(tm transport.Model, sm source.Model) CoeffsCallback {
	b := coeffs.NewBuilder(tm, sm)
	return func(p *state.CoreProfiles, g *geom.Geometry) (*coeffs.Block1DCoeffs, error) {
		return b.Build(p, g)
	}
}

func uniformProfiles(n int, ti, te, ne, psi float32) *state.CoreProfiles {
	p := &state.CoreProfiles{
		Ti:  make([]float32, n),
		Te:  make([]float32, n),
		Ne:  make([]float32, n),
		Psi: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		p.Ti[i] = ti
		p.Te[i] = te
		p.Ne[i] = ne
		p.Psi[i] = psi
	}
	return p
}

func parabolic(n int, core, edge float64) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		x := (float64(i) + 0.5) / float64(n)
		out[i] = float32(edge + (core-edge)*(1-x*x))
	}
	return out
}

func maxAbs(a []float32) float64 {
	m := 0.0
	for _, v := range a {
		if f := math.Abs(float64(v)); f > m {
			m = f
		}
	}
	return m
}

func assertFinite(t *testing.T, name string, a []float32) {
	t.Helper()
	for i, v := range a {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("%s[%d] is not finite: %g", name, i, f)
		}
	}
}

// Implicit stepping with fixed edge temperature, no sources, and zero
// core flux must relax both temperatures to the uniform edge value.
func TestImplicitDiffusionReachesSteadyState(t *testing.T) {
	n := 50
	g, err := geom.NewCircular(3.0, 1.0, 2.5, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}

	const edgeT = 100.0
	tempBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Dirichlet(edgeT)}
	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{tempBC, tempBC, flatBC, flatBC}

	tm := constantTransport(t, 1.0, 1.0, 0.5, 0.0)
	sm := sourceModel(t, "none", nil)
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, sm))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}
	// the default coarse temperature tolerance accepts residual rates
	// too large for a sub-percent steady-state comparison; tighten it.
	tightT := newton.ToleranceSpec{Abs: 0.01, Rel: 1e-6}
	st.Tol.Ti = tightT
	st.Tol.Te = tightT

	p := uniformProfiles(n, 5000, 5000, 1e20, 0)
	for step := 0; step < 20; step++ {
		res, err := st.Step(p, 1.0)
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if !res.Converged {
			t.Fatalf("step %d did not converge (failure %d, |R|=%g)", step, res.Metadata.FailureType, res.ResidualNorm)
		}
		p = res.Profiles
	}

	for i := 0; i < n; i++ {
		if math.Abs(float64(p.Ti[i])-edgeT)/5000 > 5e-3 {
			t.Fatalf("Ti[%d] = %g, want %g within 5e-3 of the initial core value", i, p.Ti[i], edgeT)
		}
		if p.Ne[i] < state.DensityFloor {
			t.Fatalf("Ne[%d] = %g violates the density floor", i, p.Ne[i])
		}
	}
}

// A single small implicit step on ITER-like geometry with the composite
// fusion+ohmic+bremsstrahlung source must converge quickly and keep the
// temperature peak physical.
func TestHeatedSlabStepConverges(t *testing.T) {
	n := 100
	g, err := geom.NewCircular(6.2, 2.0, 5.3, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}

	tempBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Dirichlet(1000)}
	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{tempBC, tempBC, flatBC, flatBC}

	comp := &source.Composite{}
	comp.AddSub("fusion", sourceModel(t, "fusion", modelparams.Prms{
		{N: "deuterium_fraction", V: 0.5},
		{N: "tritium_fraction", V: 0.5},
	}))
	comp.AddSub("ohmic", sourceModel(t, "ohmic", nil))
	comp.AddSub("bremsstrahlung", sourceModel(t, "bremsstrahlung", nil))

	tm := constantTransport(t, 1.0, 1.0, 0.5, 0.0)
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, comp))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	p := &state.CoreProfiles{
		Ti:  parabolic(n, 20000, 1000),
		Te:  parabolic(n, 20000, 1000),
		Ne:  parabolic(n, 1e20, 2e19),
		Psi: make([]float32, n),
	}

	res, err := st.Step(p, 1e-4)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !res.Converged {
		t.Fatalf("step did not converge (failure %d, |R|=%g)", res.Metadata.FailureType, res.ResidualNorm)
	}
	if res.Iterations > 20 {
		t.Fatalf("converged in %d iterations, want <= 20", res.Iterations)
	}
	peak := maxAbs(res.Profiles.Ti)
	if peak < 2e3 || peak > 3e4 {
		t.Fatalf("Ti peak = %g eV, want within [2e3, 3e4]", peak)
	}
}

// Zero transport plus a state-independent heating source produces
// Jacobian rows with no diagonal, so the step must abort cleanly with a
// solver failure and must not leak NaN into the reported state.
func TestZeroTransportAbortsWithoutNaN(t *testing.T) {
	n := 50
	g, err := geom.NewCircular(3.0, 1.0, 2.5, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}

	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{flatBC, flatBC, flatBC, flatBC}

	tm := constantTransport(t, 0, 0, 0, 0)
	sm := sourceModel(t, "ecrh", modelparams.Prms{
		{N: "power_mw", V: 50},
		{N: "rho_deposit", V: 0.5},
		{N: "width_rho", V: 0.2},
	})
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, sm))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	p := uniformProfiles(n, 5000, 5000, 1e20, 0)
	res, err := st.Step(p, 1e30) // transient term vanishes: pure singular system
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if res.Converged {
		t.Fatal("expected non-converged result")
	}
	ft := res.Metadata.FailureType
	if ft != newton.LinearSolverError && ft != newton.InvalidDescentDirection && ft != newton.NonFiniteResidual {
		t.Fatalf("unexpected failure type %d", ft)
	}
	assertFinite(t, "Ti", res.Profiles.Ti)
	assertFinite(t, "Te", res.Profiles.Te)
	assertFinite(t, "Ne", res.Profiles.Ne)
	assertFinite(t, "Psi", res.Profiles.Psi)
}

// With reflecting boundaries, zero convection, and no particle source,
// the total particle inventory is conserved.
func TestParticleConservation(t *testing.T) {
	n := 50
	g, err := geom.NewCircular(3.0, 1.0, 2.5, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}

	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{flatBC, flatBC, flatBC, flatBC}

	tm := constantTransport(t, 1.0, 1.0, 0.5, 0.0)
	sm := sourceModel(t, "none", nil)
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, sm))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	p := &state.CoreProfiles{
		Ti:  parabolic(n, 5000, 5000),
		Te:  parabolic(n, 5000, 5000),
		Ne:  parabolic(n, 1e20, 5e19),
		Psi: make([]float32, n),
	}

	inventory := func(ne []float32) float64 {
		total := 0.0
		for i := 0; i < n; i++ {
			total += float64(ne[i]) * g.CellVolume[i]
		}
		return total
	}

	before := inventory(p.Ne)
	for step := 0; step < 5; step++ {
		res, err := st.Step(p, 1e-3)
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if !res.Converged {
			t.Fatalf("step %d did not converge", step)
		}
		p = res.Profiles
	}
	after := inventory(p.Ne)

	if drift := math.Abs(after-before) / before; drift > 5e-4 {
		t.Fatalf("particle inventory drifted by %g relative, want <= 5e-4 over 5 steps", drift)
	}
}

// Profiles entering a step below the density floor come back clamped.
func TestStepEnforcesDensityFloor(t *testing.T) {
	n := 50
	g, err := geom.NewCircular(3.0, 1.0, 2.5, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}
	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{flatBC, flatBC, flatBC, flatBC}

	tm := constantTransport(t, 1.0, 1.0, 0.5, 0.0)
	sm := sourceModel(t, "none", nil)
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, sm))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	p := uniformProfiles(n, 1000, 1000, 5e17, 0) // below the 1e18 floor
	res, err := st.Step(p, 1e-3)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	for i, v := range res.Profiles.Ne {
		if v < state.DensityFloor {
			t.Fatalf("Ne[%d] = %g below the floor after step", i, v)
		}
	}
}

// The runner halves dt and retries when a step rejects, and stops once
// the interval is covered.
func TestRunnerCoversInterval(t *testing.T) {
	n := 50
	g, err := geom.NewCircular(3.0, 1.0, 2.5, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}
	tempBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Dirichlet(100)}
	flatBC := fv.VariableBC{Left: fv.Neumann(0), Right: fv.Neumann(0)}
	bcs := residual.BoundaryConditions{tempBC, tempBC, flatBC, flatBC}

	tm := constantTransport(t, 1.0, 1.0, 0.5, 0.0)
	sm := sourceModel(t, "none", nil)
	st, err := NewStepper(g, bcs, 1.0, builderCallback(tm, sm))
	if err != nil {
		t.Fatalf("NewStepper: %v", err)
	}

	cfg := timestep.DefaultConfig(1e-6, 1e-2)
	cfg.MaxRelChange = 1e12 // temperatures swing by keV/s here; do not let the rate cap stall dt
	r := &Runner{
		Stepper:   st,
		Transport: tm,
		TimeCfg:   cfg,
	}
	p := uniformProfiles(n, 5000, 5000, 1e20, 0)
	out, err := r.Run(p, 0, 0.01, 1e-3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if math.Abs(out.Time-0.01) > 1e-9 {
		t.Fatalf("run stopped at t=%g, want 0.01", out.Time)
	}
	if out.Steps == 0 {
		t.Fatal("expected at least one accepted step")
	}
}
