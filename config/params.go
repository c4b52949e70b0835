// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the hierarchical runtime-parameter schema and the
// three-phase validator that gates every simulation before its first
// step: physical ranges, numerical stability, and model-specific
// constraints as hard errors, with advisory conditions collected
// separately as warnings. Reading and writing the schema from files is
// owned by an external collaborator; only the in-memory tree lives here.
package config

// Mesh describes the radial grid and the torus it discretizes.
type Mesh struct {
	NCells   int     `json:"ncells"`
	R        float64 `json:"major_radius"`  // [m]
	A        float64 `json:"minor_radius"`  // [m]
	B        float64 `json:"toroidal_field"` // [T]
	Geometry string  `json:"geometry"`      // "circular" or "shaped"
}

// Dr returns the radial cell spacing a/N.
func (m *Mesh) Dr() float64 {
	if m.NCells <= 0 {
		return 0
	}
	return m.A / float64(m.NCells)
}

// EvolveFlags names which of the four fields are evolved. Validate does
// not check them, and Stepper.Step evolves all four fields regardless of
// their values.
type EvolveFlags struct {
	Ti  bool `json:"ion_heat"`
	Te  bool `json:"electron_heat"`
	Ne  bool `json:"density"`
	Psi bool `json:"current"`
}

// SolverParams carries the Newton/linear-solver tuning of the static
// configuration.
type SolverParams struct {
	Type               string  `json:"type"` // "newton"
	MaxIterations      int     `json:"max_iterations"`
	TolCoarseAbs       float64 `json:"tol_coarse_abs"` // temperatures
	TolCoarseRel       float64 `json:"tol_coarse_rel"`
	TolTightAbs        float64 `json:"tol_tight_abs"` // density, flux
	TolTightRel        float64 `json:"tol_tight_rel"`
	LineSearchSteps    int     `json:"line_search_steps"`
	ConditionThreshold float64 `json:"condition_threshold"` // 0 disables the direct-solve quality gate
}

// SchemeParams selects the time discretization.
type SchemeParams struct {
	Theta              float64 `json:"theta"` // 0 explicit, 0.5 Crank-Nicolson, 1 implicit
	StiffStabilization bool    `json:"stiff_stabilization"`
}

// Static groups the parameters that change the structure of the problem
// and therefore may not vary between steps.
type Static struct {
	Mesh   Mesh         `json:"mesh"`
	Evolve EvolveFlags  `json:"evolve"`
	Solver SolverParams `json:"solver"`
	Scheme SchemeParams `json:"scheme"`
}

// BCSide is one side's boundary condition: kind "value" (Dirichlet) or
// "gradient" (Neumann).
type BCSide struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// VarBC holds the core (left) and edge (right) conditions for one
// variable.
type VarBC struct {
	Left  BCSide `json:"left"`
	Right BCSide `json:"right"`
}

// Boundaries carries one VarBC per evolved variable.
type Boundaries struct {
	Ti  VarBC `json:"ion_temperature"`
	Te  VarBC `json:"electron_temperature"`
	Ne  VarBC `json:"density"`
	Psi VarBC `json:"psi"`
}

// TransportSelect names a transport model and its parameter map; the
// recognized keys depend on the model tag.
type TransportSelect struct {
	Model  string             `json:"model"`
	Params map[string]float64 `json:"params"`
}

// ECRHConfig configures localized electron-cyclotron heating.
type ECRHConfig struct {
	PowerMW    float64 `json:"power_mw"`
	RhoDeposit float64 `json:"rho_deposit"`
	WidthRho   float64 `json:"width_rho"`
}

// GasPuffConfig configures an edge particle source.
type GasPuffConfig struct {
	RatePerM3PerS float64 `json:"rate"`       // [m^-3/s] peak volumetric rate
	WidthRho      float64 `json:"width_rho"`
}

// ImpurityConfig carries the impurity content. Zeff sets the effective
// charge of the bremsstrahlung source; Fraction is not consumed by any
// source model.
type ImpurityConfig struct {
	Zeff     float64 `json:"zeff"`
	Fraction float64 `json:"fraction"`
}

// Sources enables the bundled source mechanisms and carries their
// sub-configurations plus the fuel mix.
type Sources struct {
	Ohmic             bool            `json:"ohmic"`
	Fusion            bool            `json:"fusion"`
	Bremsstrahlung    bool            `json:"bremsstrahlung"`
	Exchange          bool            `json:"exchange"`
	ECRH              *ECRHConfig     `json:"ecrh,omitempty"`
	GasPuff           *GasPuffConfig  `json:"gas_puff,omitempty"`
	Impurity          *ImpurityConfig `json:"impurity,omitempty"`
	DeuteriumFraction float64         `json:"deuterium_fraction"`
	TritiumFraction   float64         `json:"tritium_fraction"`
}

// MHD toggles the sawtooth crash model (external collaborator).
type MHD struct {
	Sawteeth bool `json:"sawteeth"`
}

// Restart points at a previous run to continue from.
type Restart struct {
	Filename string  `json:"filename"`
	Time     float64 `json:"time"`
	Stitch   bool    `json:"stitch"`
}

// ProfileShape parametrizes the initial profiles: core and edge values
// plus peaking exponents, u(rho) = edge + (core-edge)*(1-(rho/a)^2)^exp.
type ProfileShape struct {
	TiCore     float64 `json:"ti_core"` // [eV]
	TiEdge     float64 `json:"ti_edge"`
	TeCore     float64 `json:"te_core"`
	TeEdge     float64 `json:"te_edge"`
	NeCore     float64 `json:"ne_core"` // [m^-3]
	NeEdge     float64 `json:"ne_edge"`
	TExponent  float64 `json:"t_exponent"`
	NeExponent float64 `json:"ne_exponent"`
}

// Dynamic groups the parameters that may change between steps without
// restructuring the problem.
type Dynamic struct {
	Boundaries Boundaries      `json:"boundaries"`
	Transport  TransportSelect `json:"transport"`
	Sources    Sources         `json:"sources"`
	MHD        MHD             `json:"mhd"`
	Restart    *Restart        `json:"restart,omitempty"`
	Profiles   ProfileShape    `json:"initial_profiles"`
}

// Adaptive carries the timestep controller's bounds. MinDt and
// MinDtFraction are alternatives; when MinDt is zero the floor is
// MinDtFraction*InitialDt.
type Adaptive struct {
	MinDt             float64 `json:"min_dt"`
	MinDtFraction     float64 `json:"min_dt_fraction"`
	MaxDt             float64 `json:"max_dt"`
	SafetyFactor      float64 `json:"safety_factor"`
	MaxTimestepGrowth float64 `json:"max_timestep_growth"`
}

// Time carries the simulated interval and stepping bounds.
type Time struct {
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	InitialDt float64  `json:"initial_dt"`
	Adaptive  Adaptive `json:"adaptive"`
}

// Output selects where and how often results are saved; the format
// itself is owned by the I/O collaborator.
type Output struct {
	SaveInterval float64 `json:"save_interval"`
	Directory    string  `json:"directory"`
	Format       string  `json:"format"`
}

// RuntimeParams is the root of the configuration tree.
type RuntimeParams struct {
	Static  Static  `json:"static"`
	Dynamic Dynamic `json:"dynamic"`
	Time    Time    `json:"time"`
	Output  Output  `json:"output"`
}
