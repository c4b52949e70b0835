// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokfem

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/coeffs"
	"github.com/cpmech/tokfem/config"
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

// Simulation bundles everything a run needs: geometry, stepper, runner,
// and the initial profiles built from the configured shape.
type Simulation struct {
	Geo      *geom.Geometry
	Stepper  *Stepper
	Runner   *Runner
	Profiles *state.CoreProfiles
	Params   *config.RuntimeParams
}

// NewSimulation validates prm, constructs the geometry, transport and
// source models, boundary conditions, and stepping machinery, and
// returns the assembled Simulation. The configuration validator is the
// gate: any hard error aborts construction.
func NewSimulation(prm *config.RuntimeParams) (*Simulation, error) {
	if err := config.ValidateOrErr(prm); err != nil {
		return nil, err
	}

	mesh := &prm.Static.Mesh
	if mesh.Geometry != "" && mesh.Geometry != "circular" {
		return nil, chk.Err("tokfem: geometry %q requires externally supplied metric arrays; use geom.NewFromArrays and NewStepper directly\n", mesh.Geometry)
	}
	g, err := geom.NewCircular(mesh.R, mesh.A, mesh.B, mesh.NCells, 1.0, 3.0)
	if err != nil {
		return nil, err
	}

	tm, err := buildTransport(&prm.Dynamic.Transport)
	if err != nil {
		return nil, err
	}
	sm, err := buildSources(&prm.Dynamic.Sources)
	if err != nil {
		return nil, err
	}

	b := coeffs.NewBuilder(tm, sm)
	b.Lp = coeffs.DefaultLp(g)
	cb := func(p *state.CoreProfiles, gg *geom.Geometry) (*coeffs.Block1DCoeffs, error) {
		return b.Build(p, gg)
	}

	bcs := buildBoundaryConditions(&prm.Dynamic.Boundaries)
	st, err := NewStepper(g, bcs, float32(prm.Static.Scheme.Theta), cb)
	if err != nil {
		return nil, err
	}
	applySolverParams(st, &prm.Static.Solver)

	tcfg := buildTimestepConfig(&prm.Time)
	return &Simulation{
		Geo:      g,
		Stepper:  st,
		Runner:   &Runner{Stepper: st, Transport: tm, TimeCfg: tcfg},
		Profiles: InitialProfiles(&prm.Dynamic.Profiles, mesh.NCells),
		Params:   prm,
	}, nil
}

// Run advances the simulation over the configured time interval.
func (s *Simulation) Run() (*RunResult, error) {
	t := &s.Params.Time
	return s.Runner.Run(s.Profiles, t.Start, t.End, t.InitialDt)
}

// InitialProfiles realizes the configured profile shape on n cells:
// u(rho) = edge + (core-edge)*(1-(rho/a)^2)^exponent, with psi flat.
func InitialProfiles(shape *config.ProfileShape, n int) *state.CoreProfiles {
	p := &state.CoreProfiles{
		Ti:  make([]float32, n),
		Te:  make([]float32, n),
		Ne:  make([]float32, n),
		Psi: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		x := (float64(i) + 0.5) / float64(n)
		p.Ti[i] = float32(shapeValue(shape.TiCore, shape.TiEdge, shape.TExponent, x))
		p.Te[i] = float32(shapeValue(shape.TeCore, shape.TeEdge, shape.TExponent, x))
		p.Ne[i] = float32(shapeValue(shape.NeCore, shape.NeEdge, shape.NeExponent, x))
	}
	return p
}

func shapeValue(core, edge, exponent, x float64) float64 {
	if exponent <= 0 {
		return core
	}
	return edge + (core-edge)*math.Pow(1-x*x, exponent)
}

func buildTransport(sel *config.TransportSelect) (transport.Model, error) {
	tm, err := transport.New(sel.Model)
	if err != nil {
		return nil, err
	}
	return tm, tm.Init(prmsFromMap(sel.Params))
}

// prmsFromMap converts the configuration's parameter map into the
// ordered list models consume; sorted for deterministic error messages.
func prmsFromMap(m map[string]float64) modelparams.Prms {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out modelparams.Prms
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out
}

// buildSources assembles the composite source from the enabled
// mechanisms, or the "none" model when everything is disabled.
func buildSources(src *config.Sources) (source.Model, error) {
	comp := &source.Composite{}
	add := func(name string, prms modelparams.Prms) error {
		m, err := source.New(name)
		if err != nil {
			return err
		}
		if err := m.Init(prms); err != nil {
			return err
		}
		comp.AddSub(name, m)
		return nil
	}

	count := 0
	if src.Ohmic {
		if err := add("ohmic", nil); err != nil {
			return nil, err
		}
		count++
	}
	if src.Fusion {
		prms := modelparams.Prms{}
		prms.Set("deuterium_fraction", src.DeuteriumFraction)
		prms.Set("tritium_fraction", src.TritiumFraction)
		if err := add("fusion", prms); err != nil {
			return nil, err
		}
		count++
	}
	if src.Bremsstrahlung {
		var prms modelparams.Prms
		if src.Impurity != nil {
			prms.Set("zeff", src.Impurity.Zeff)
		}
		if err := add("bremsstrahlung", prms); err != nil {
			return nil, err
		}
		count++
	}
	if src.Exchange {
		if err := add("exchange", nil); err != nil {
			return nil, err
		}
		count++
	}
	if src.ECRH != nil {
		prms := modelparams.Prms{}
		prms.Set("power_mw", src.ECRH.PowerMW)
		prms.Set("rho_deposit", src.ECRH.RhoDeposit)
		prms.Set("width_rho", src.ECRH.WidthRho)
		if err := add("ecrh", prms); err != nil {
			return nil, err
		}
		count++
	}
	if src.GasPuff != nil {
		prms := modelparams.Prms{}
		prms.Set("rate", src.GasPuff.RatePerM3PerS)
		if src.GasPuff.WidthRho > 0 {
			prms.Set("width_rho", src.GasPuff.WidthRho)
		}
		if err := add("gas_puff", prms); err != nil {
			return nil, err
		}
		count++
	}
	if count == 0 {
		return source.New("none")
	}
	return comp, nil
}

func buildBoundaryConditions(b *config.Boundaries) residual.BoundaryConditions {
	return residual.BoundaryConditions{
		state.Ti:  varBC(&b.Ti),
		state.Te:  varBC(&b.Te),
		state.Ne:  varBC(&b.Ne),
		state.Psi: varBC(&b.Psi),
	}
}

func varBC(v *config.VarBC) fv.VariableBC {
	return fv.VariableBC{Left: bcSide(&v.Left), Right: bcSide(&v.Right)}
}

func bcSide(s *config.BCSide) fv.BoundaryCondition {
	if s.Kind == "value" {
		return fv.Dirichlet(float32(s.Value))
	}
	return fv.Neumann(float32(s.Value))
}

func applySolverParams(st *Stepper, sp *config.SolverParams) {
	if sp.MaxIterations > 0 {
		st.MaxIterations = sp.MaxIterations
	}
	if sp.TolCoarseAbs > 0 || sp.TolCoarseRel > 0 {
		coarse := newton.ToleranceSpec{Abs: sp.TolCoarseAbs, Rel: sp.TolCoarseRel}
		st.Tol.Ti = coarse
		st.Tol.Te = coarse
	}
	if sp.TolTightAbs > 0 || sp.TolTightRel > 0 {
		tight := newton.ToleranceSpec{Abs: sp.TolTightAbs, Rel: sp.TolTightRel}
		st.Tol.Ne = tight
		st.Tol.Psi = tight
	}
	st.LinConfig.ConditionThreshold = sp.ConditionThreshold
}

func buildTimestepConfig(t *config.Time) timestep.Config {
	minDt := t.Adaptive.MinDt
	if minDt <= 0 && t.Adaptive.MinDtFraction > 0 {
		minDt = t.Adaptive.MinDtFraction * t.InitialDt
	}
	if minDt <= 0 {
		minDt = 1e-8
	}
	maxDt := t.Adaptive.MaxDt
	if maxDt <= minDt {
		maxDt = 1e3 * minDt
	}
	cfg := timestep.DefaultConfig(minDt, maxDt)
	if t.Adaptive.SafetyFactor > 0 {
		cfg.Safety = t.Adaptive.SafetyFactor
	}
	if t.Adaptive.MaxTimestepGrowth > 0 {
		cfg.MaxTimestepGrowth = t.Adaptive.MaxTimestepGrowth
	}
	return cfg
}
