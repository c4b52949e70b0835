// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"testing"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

func testGeomProfiles(t *testing.T, n int) (*geom.Geometry, *state.CoreProfiles) {
	t.Helper()
	g, err := geom.NewCircular(6.2, 2.0, 5.3, n, 1.0, 3.0)
	if err != nil {
		t.Fatalf("geom: %v", err)
	}
	p := &state.CoreProfiles{
		Ti:  make([]float32, n),
		Te:  make([]float32, n),
		Ne:  make([]float32, n),
		Psi: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		p.Ti[i] = float32(5000 - 40*i)
		p.Te[i] = float32(4500 - 35*i)
		p.Ne[i] = 1e20
		p.Psi[i] = float32(i) * 0.01
	}
	return g, p
}

func TestOhmicProducesPositiveHeating(t *testing.T) {
	m, _ := New("ohmic")
	if err := m.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	g, p := testGeomProfiles(t, 10)
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range out.ElectronHeating {
		if v <= 0 {
			t.Fatalf("ElectronHeating[%d] = %g, expected positive", i, v)
		}
	}
}

func TestFusionScalesWithFraction(t *testing.T) {
	m, _ := New("fusion")
	m.Init(modelparams.Prms{{N: "ion_heat_frac", V: 0.5}})
	g, p := testGeomProfiles(t, 8)
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range out.IonHeating {
		if out.IonHeating[i] != out.ElectronHeating[i] {
			t.Fatalf("at ion_heat_frac=0.5 ion/electron split should match, got %g vs %g",
				out.IonHeating[i], out.ElectronHeating[i])
		}
	}
}

func TestBremsstrahlungIsLoss(t *testing.T) {
	m, _ := New("bremsstrahlung")
	m.Init(nil)
	g, p := testGeomProfiles(t, 6)
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, v := range out.ElectronHeating {
		if v > 0 {
			t.Fatalf("ElectronHeating[%d] = %g, expected a radiative loss (<=0)", i, v)
		}
	}
}

func TestExchangeConservesEnergy(t *testing.T) {
	m, _ := New("exchange")
	m.Init(nil)
	g, p := testGeomProfiles(t, 6)
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range out.IonHeating {
		sum := out.IonHeating[i] + out.ElectronHeating[i]
		if sum < -1e-6 || sum > 1e-6 {
			t.Fatalf("exchange at cell %d not energy-conserving: ion=%g electron=%g",
				i, out.IonHeating[i], out.ElectronHeating[i])
		}
	}
}

func TestExchangeSignFollowsTemperatureDifference(t *testing.T) {
	m, _ := New("exchange")
	m.Init(nil)
	g, p := testGeomProfiles(t, 4)
	// force Te > Ti everywhere so ions should be heated, electrons cooled
	for i := range p.Ti {
		p.Ti[i] = 1000
		p.Te[i] = 5000
	}
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range out.IonHeating {
		if out.IonHeating[i] <= 0 {
			t.Fatalf("expected ion heating at cell %d, got %g", i, out.IonHeating[i])
		}
		if out.ElectronHeating[i] >= 0 {
			t.Fatalf("expected electron cooling at cell %d, got %g", i, out.ElectronHeating[i])
		}
	}
}

func TestECRHRejectsUnresolvedWidth(t *testing.T) {
	m, _ := New("ecrh")
	err := m.Init(modelparams.Prms{{N: "width_rho", V: 1e-6}})
	if err != nil {
		t.Fatalf("Init should accept positive width: %v", err)
	}
	g, p := testGeomProfiles(t, 20)
	if _, err := m.Compute(p, g); err == nil {
		t.Fatal("expected error for deposition width unresolved by the grid")
	}
}

func TestECRHDepositsNearTarget(t *testing.T) {
	m, _ := New("ecrh")
	m.Init(modelparams.Prms{{N: "rho_deposit", V: 1.0}, {N: "width_rho", V: 0.3}, {N: "power_mw", V: 2.0}})
	g, p := testGeomProfiles(t, 20)
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	maxIdx := 0
	for i := range out.ElectronHeating {
		if out.ElectronHeating[i] > out.ElectronHeating[maxIdx] {
			maxIdx = i
		}
	}
	rhoAtMax := g.CellCenters[maxIdx]
	if rhoAtMax < 0.7 || rhoAtMax > 1.3 {
		t.Fatalf("peak deposition at rho=%g, expected near 1.0", rhoAtMax)
	}
}

func TestCompositeSumsAllSources(t *testing.T) {
	a, _ := New("ohmic")
	a.Init(nil)
	b, _ := New("fusion")
	b.Init(nil)

	comp := new(Composite)
	comp.AddSub("ohmic", a)
	comp.AddSub("fusion", b)

	g, p := testGeomProfiles(t, 8)
	expectA, _ := a.Compute(p, g)
	expectB, _ := b.Compute(p, g)
	got, err := comp.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := range got.ElectronHeating {
		want := expectA.ElectronHeating[i] + expectB.ElectronHeating[i]
		if got.ElectronHeating[i] != want {
			t.Fatalf("cell %d: got %g want %g", i, got.ElectronHeating[i], want)
		}
	}
}

func TestCompositeRejectsEmpty(t *testing.T) {
	comp := new(Composite)
	g, p := testGeomProfiles(t, 4)
	if _, err := comp.Compute(p, g); err == nil {
		t.Fatal("expected error for composite with no sub-models")
	}
}

func TestUnsaneProfileFailsSafe(t *testing.T) {
	m, _ := New("ohmic")
	m.Init(nil)
	g, p := testGeomProfiles(t, 4)
	p.Ne[0] = 0
	out, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute should fail safe, not error: %v", err)
	}
	for _, v := range out.ElectronHeating {
		if v != 0 {
			t.Fatalf("expected zero output on insane profile, got %g", v)
		}
	}
}

func TestGasPuffDepositsAtEdge(t *testing.T) {
	g, p := testGeomProfiles(t, 40)
	m, err := New("gas_puff")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Init(modelparams.Prms{{N: "rate", V: 1e19}, {N: "width_rho", V: 0.2}}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	terms, err := m.Compute(p, g)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	n := g.NCells
	if terms.ParticleSource[n-1] <= 0 {
		t.Fatalf("edge particle source = %g, want positive", terms.ParticleSource[n-1])
	}
	if terms.ParticleSource[0] >= terms.ParticleSource[n-1] {
		t.Fatalf("source must peak at the edge: core=%g edge=%g", terms.ParticleSource[0], terms.ParticleSource[n-1])
	}
	for i := 0; i < n; i++ {
		if terms.IonHeating[i] != 0 || terms.ElectronHeating[i] != 0 || terms.CurrentSource[i] != 0 {
			t.Fatalf("gas puff must only contribute particles (cell %d)", i)
		}
	}
}

func TestGasPuffRejectsBadParams(t *testing.T) {
	m, _ := New("gas_puff")
	if err := m.Init(modelparams.Prms{{N: "width_rho", V: -1}}); err == nil {
		t.Fatal("expected rejection of non-positive width")
	}
	if err := m.Init(modelparams.Prms{{N: "rate", V: -1}}); err == nil {
		t.Fatal("expected rejection of negative rate")
	}
}
