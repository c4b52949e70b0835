// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"strings"
	"testing"
)

// baseParams returns a configuration that passes all three phases.
func baseParams() *RuntimeParams {
	return &RuntimeParams{
		Static: Static{
			Mesh:   Mesh{NCells: 50, R: 3.0, A: 1.0, B: 2.5, Geometry: "circular"},
			Evolve: EvolveFlags{Ti: true, Te: true, Ne: true, Psi: true},
			Solver: SolverParams{Type: "newton", MaxIterations: 100},
			Scheme: SchemeParams{Theta: 1.0},
		},
		Dynamic: Dynamic{
			Transport: TransportSelect{
				Model: "constant",
				Params: map[string]float64{
					"chi_ion":              1.0,
					"chi_electron":         1.0,
					"particle_diffusivity": 0.5,
				},
			},
			Sources: Sources{
				Ohmic:             true,
				DeuteriumFraction: 0.5,
				TritiumFraction:   0.5,
			},
			Profiles: ProfileShape{
				TiCore: 5000, TiEdge: 100,
				TeCore: 5000, TeEdge: 100,
				NeCore: 1e20, NeEdge: 5e19,
				TExponent: 2, NeExponent: 1,
			},
		},
		Time: Time{
			Start: 0, End: 1, InitialDt: 1e-4,
			Adaptive: Adaptive{MinDt: 1e-8, MaxDt: 1e-1, SafetyFactor: 0.9, MaxTimestepGrowth: 1.2},
		},
		Output: Output{SaveInterval: 0.1, Directory: "out", Format: "netcdf"},
	}
}

func findKind(errs []*ValidationError, kind ErrKind) *ValidationError {
	for _, e := range errs {
		if e.Kind == kind {
			return e
		}
	}
	return nil
}

func TestValidConfigPasses(t *testing.T) {
	if errs := Validate(baseParams()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs[0])
	}
}

func TestPhysicalRangeRejected(t *testing.T) {
	p := baseParams()
	p.Static.Mesh.B = 20 // above 15 T
	errs := Validate(p)
	e := findKind(errs, InvalidValue)
	if e == nil {
		t.Fatal("expected invalidValue error for toroidal field")
	}
	if !strings.Contains(e.Field, "toroidal_field") {
		t.Fatalf("error names %q, want toroidal_field", e.Field)
	}
}

func TestAspectRatioInconsistencyRejected(t *testing.T) {
	p := baseParams()
	p.Static.Mesh.R = 1.5
	p.Static.Mesh.A = 1.0 // a/R = 0.67
	if findKind(Validate(p), Inconsistency) == nil {
		t.Fatal("expected inconsistency error for aspect ratio")
	}
}

// chi=10, dt=0.2, dr = 1/50 = 0.02: chi*dt/dr^2 is far above 0.5 and
// the validator must reject, naming the channel and a usable dt.
func TestCFLViolationRejected(t *testing.T) {
	p := baseParams()
	p.Dynamic.Transport.Params["chi_ion"] = 10
	p.Time.InitialDt = 0.2
	errs := Validate(p)
	e := findKind(errs, CFLViolation)
	if e == nil {
		t.Fatal("expected cflViolation error")
	}
	if !strings.Contains(e.Field, "chi_ion") {
		t.Fatalf("error names %q, want chi_ion", e.Field)
	}
	if !strings.Contains(e.Msg, "reduce dt") {
		t.Fatalf("error must suggest a reduced dt, got %q", e.Msg)
	}
}

func TestFuelMixRejected(t *testing.T) {
	p := baseParams()
	p.Dynamic.Sources.Fusion = true
	p.Dynamic.Sources.DeuteriumFraction = 0.5
	p.Dynamic.Sources.TritiumFraction = 0.49
	if findKind(Validate(p), InvalidFuelMix) == nil {
		t.Fatal("expected invalidFuelMix error")
	}
}

func TestFuelMixWithinToleranceAccepted(t *testing.T) {
	p := baseParams()
	p.Dynamic.Sources.Fusion = true
	p.Dynamic.Sources.TritiumFraction = 0.500005
	p.Dynamic.Sources.DeuteriumFraction = 0.5
	if e := findKind(Validate(p), InvalidFuelMix); e != nil {
		t.Fatalf("sum within 1e-4 must pass, got %v", e)
	}
}

func TestMeshTooCoarseRejected(t *testing.T) {
	p := baseParams()
	p.Static.Mesh.NCells = 30
	if findKind(Validate(p), InsufficientResolution) == nil {
		t.Fatal("expected insufficientResolution error for ncells < 50")
	}
}

func TestUnresolvedDepositionRejected(t *testing.T) {
	p := baseParams()
	p.Dynamic.Sources.ECRH = &ECRHConfig{PowerMW: 1, RhoDeposit: 0.3, WidthRho: 0.01} // < 3*dr = 0.06
	if findKind(Validate(p), UnresolvedDeposition) == nil {
		t.Fatal("expected unresolvedDeposition error")
	}
}

func TestPeakedProfileNeedsCoreAboveEdge(t *testing.T) {
	p := baseParams()
	p.Dynamic.Profiles.TiCore = 100
	p.Dynamic.Profiles.TiEdge = 5000
	if findKind(Validate(p), Inconsistency) == nil {
		t.Fatal("expected inconsistency error for inverted peaked profile")
	}
}

func TestSurrogateRangeEnforced(t *testing.T) {
	p := baseParams()
	p.Dynamic.Transport.Model = "surrogate"
	p.Dynamic.Profiles.TeEdge = 100 // below the 500 eV training floor
	if findKind(Validate(p), SurrogateRange) == nil {
		t.Fatal("expected surrogateRange error")
	}
}

func TestCollectWarningsIdempotent(t *testing.T) {
	p := baseParams()
	p.Static.Mesh.NCells = 600
	p.Dynamic.Sources.Fusion = true
	p.Dynamic.Sources.TritiumFraction = 0.5
	p.Dynamic.Profiles.TiCore = 2000 // fusion-negligible regime
	w1 := CollectWarnings(p)
	w2 := CollectWarnings(p)
	if len(w1) == 0 {
		t.Fatal("expected at least one warning")
	}
	if len(w1) != len(w2) {
		t.Fatalf("warning counts differ: %d vs %d", len(w1), len(w2))
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Fatalf("warning %d differs between calls", i)
		}
	}
}

func TestWarningsDoNotBlock(t *testing.T) {
	p := baseParams()
	p.Static.Mesh.NCells = 600
	p.Time.InitialDt = 1e-6 // keeps chi*dt/dr^2 = 0.36 under the CFL limit on the finer mesh
	if errs := Validate(p); len(errs) != 0 {
		t.Fatalf("fine mesh is advisory only, got error %v", errs[0])
	}
	found := false
	for _, w := range CollectWarnings(p) {
		if w.Kind == FineMesh {
			found = true
		}
	}
	if !found {
		t.Fatal("expected fineMesh warning")
	}
}

func TestGasPuffStabilityRejected(t *testing.T) {
	p := baseParams()
	// dn/n per step = rate*dt/ne_edge = 1e25*1e-4/5e19 = 20, far above 0.2.
	p.Dynamic.Sources.GasPuff = &GasPuffConfig{RatePerM3PerS: 1e25, WidthRho: 0.1}
	e := findKind(Validate(p), SourceInstability)
	if e == nil {
		t.Fatal("expected sourceInstability error for the gas-puff rate")
	}
	if !strings.Contains(e.Field, "gas_puff") {
		t.Fatalf("error names %q, want gas_puff", e.Field)
	}
}

func TestGasPuffUnresolvedWidthRejected(t *testing.T) {
	p := baseParams()
	p.Dynamic.Sources.GasPuff = &GasPuffConfig{RatePerM3PerS: 1e19, WidthRho: 0.01} // < 3*dr = 0.06
	if findKind(Validate(p), UnresolvedDeposition) == nil {
		t.Fatal("expected unresolvedDeposition error for the gas-puff width")
	}
}

func TestGasPuffWithinLimitsAccepted(t *testing.T) {
	p := baseParams()
	p.Dynamic.Sources.GasPuff = &GasPuffConfig{RatePerM3PerS: 1e19, WidthRho: 0.1}
	if errs := Validate(p); len(errs) != 0 {
		t.Fatalf("expected a resolvable, stable gas puff to pass, got %v", errs[0])
	}
}
