// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// ErrKind classifies a hard validation error.
type ErrKind int

const (
	InvalidValue ErrKind = iota
	MissingRequired
	Inconsistency
	CFLViolation
	SourceInstability
	UnresolvedDeposition
	InsufficientResolution
	SurrogateRange
	InvalidFuelMix
)

// kindNames maps ErrKind to the tag shown to the user.
var kindNames = map[ErrKind]string{
	InvalidValue:           "invalidValue",
	MissingRequired:        "missingRequired",
	Inconsistency:          "inconsistency",
	CFLViolation:           "cflViolation",
	SourceInstability:      "sourceInstability",
	UnresolvedDeposition:   "unresolvedDeposition",
	InsufficientResolution: "insufficientResolution",
	SurrogateRange:         "surrogateRange",
	InvalidFuelMix:         "invalidFuelMix",
}

// ValidationError is one hard error found by Validate. Field names the
// offending configuration entry; Msg explains the violation and, where
// possible, a remedy.
type ValidationError struct {
	Kind  ErrKind
	Field string
	Msg   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return io.Sf("config: [%s] %s: %s", kindNames[e.Kind], e.Field, e.Msg)
}

// evConv converts MW/m^3 to eV/(m^3*s), the factor used to estimate the
// per-step temperature change a heating source induces.
const evConv = 6.241509e24

// physical ranges accepted by phase 1.
const (
	tempMinEV  = 1.0
	tempMaxEV  = 1e5
	neMinM3    = 1e17
	neMaxM3    = 1e21
	fieldMinT  = 0.5
	fieldMaxT  = 15.0
	majorRMinM = 0.5
	majorRMaxM = 10.0
	minorAMinM = 0.2
	minorAMaxM = 3.0
)

// Validate runs the three gate phases in order and returns every hard
// error found; an empty slice means the configuration may run. Advisory
// conditions are not reported here, see CollectWarnings.
func Validate(p *RuntimeParams) []*ValidationError {
	var errs []*ValidationError
	errs = append(errs, validatePhysicalRanges(p)...)
	errs = append(errs, validateNumericalStability(p)...)
	errs = append(errs, validateModelConstraints(p)...)
	return errs
}

// ValidateOrErr wraps Validate into a single error for callers that only
// need pass/fail.
func ValidateOrErr(p *RuntimeParams) error {
	errs := Validate(p)
	if len(errs) == 0 {
		return nil
	}
	msg := ""
	for _, e := range errs {
		msg += e.Error() + "\n"
	}
	return chk.Err("%d configuration error(s):\n%s", len(errs), msg)
}

// validatePhysicalRanges is phase 1: every scalar the configuration
// pins down directly must sit inside its physically plausible range.
func validatePhysicalRanges(p *RuntimeParams) []*ValidationError {
	var errs []*ValidationError
	mesh := &p.Static.Mesh
	prof := &p.Dynamic.Profiles

	inRange := func(kind ErrKind, field string, v, lo, hi float64) {
		if v < lo || v > hi {
			errs = append(errs, &ValidationError{Kind: kind, Field: field,
				Msg: io.Sf("value %g outside [%g, %g]", v, lo, hi)})
		}
	}

	inRange(InvalidValue, "mesh.toroidal_field", mesh.B, fieldMinT, fieldMaxT)
	inRange(InvalidValue, "mesh.major_radius", mesh.R, majorRMinM, majorRMaxM)
	inRange(InvalidValue, "mesh.minor_radius", mesh.A, minorAMinM, minorAMaxM)
	if mesh.R > 0 && mesh.A/mesh.R > 0.5 {
		errs = append(errs, &ValidationError{Kind: Inconsistency, Field: "mesh",
			Msg: io.Sf("aspect ratio a/R = %g exceeds 0.5", mesh.A/mesh.R)})
	}

	inRange(InvalidValue, "initial_profiles.ti_core", prof.TiCore, tempMinEV, tempMaxEV)
	inRange(InvalidValue, "initial_profiles.ti_edge", prof.TiEdge, tempMinEV, tempMaxEV)
	inRange(InvalidValue, "initial_profiles.te_core", prof.TeCore, tempMinEV, tempMaxEV)
	inRange(InvalidValue, "initial_profiles.te_edge", prof.TeEdge, tempMinEV, tempMaxEV)
	inRange(InvalidValue, "initial_profiles.ne_core", prof.NeCore, neMinM3, neMaxM3)
	inRange(InvalidValue, "initial_profiles.ne_edge", prof.NeEdge, neMinM3, neMaxM3)
	return errs
}

// validateNumericalStability is phase 2: CFL limits, source-driven
// per-step change estimates, deposition resolution, and mesh size.
func validateNumericalStability(p *RuntimeParams) []*ValidationError {
	var errs []*ValidationError
	mesh := &p.Static.Mesh
	dr := mesh.Dr()
	dt := p.Time.InitialDt

	if mesh.NCells < 50 {
		errs = append(errs, &ValidationError{Kind: InsufficientResolution, Field: "mesh.ncells",
			Msg: io.Sf("ncells=%d is below the minimum of 50", mesh.NCells)})
	}
	if dr <= 0 || dt <= 0 {
		errs = append(errs, &ValidationError{Kind: InvalidValue, Field: "time.initial_dt",
			Msg: io.Sf("need positive dt and cell spacing, got dt=%g dr=%g", dt, dr)})
		return errs
	}

	// Diffusion CFL per transport channel: chi*dt/dr^2 <= 0.5.
	chiMax := 0.0
	for _, key := range []string{"chi_ion", "chi_electron", "particle_diffusivity"} {
		chi, ok := p.Dynamic.Transport.Params[key]
		if !ok || chi <= 0 {
			continue
		}
		if chi > chiMax {
			chiMax = chi
		}
		cfl := chi * dt / (dr * dr)
		if cfl > 0.5 {
			errs = append(errs, &ValidationError{Kind: CFLViolation, Field: "transport." + key,
				Msg: io.Sf("chi*dt/dr^2 = %g exceeds 0.5; reduce dt to at most %g s", cfl, 0.5*dr*dr/chi)})
		}
	}

	// Diffusion timescale: dt must not exceed a^2/chi_max.
	if chiMax > 0 && dt > mesh.A*mesh.A/chiMax {
		errs = append(errs, &ValidationError{Kind: InvalidValue, Field: "time.initial_dt",
			Msg: io.Sf("dt=%g exceeds the global diffusion timescale a^2/chi = %g", dt, mesh.A*mesh.A/chiMax)})
	}

	src := &p.Dynamic.Sources
	prof := &p.Dynamic.Profiles

	// Heating-source stability: the fractional temperature change one
	// step induces at the deposition peak must stay below 0.5.
	if src.ECRH != nil && prof.NeCore > 0 && prof.TeCore > 0 {
		peak := peakPowerDensityMW(src.ECRH, mesh)
		dT := peak * evConv * dt / prof.NeCore
		if dT/prof.TeCore > 0.5 {
			errs = append(errs, &ValidationError{Kind: SourceInstability, Field: "sources.ecrh",
				Msg: io.Sf("estimated |dT|/T per step = %g exceeds 0.5; reduce power or dt", dT/prof.TeCore)})
		}
		if src.ECRH.WidthRho < 3*dr {
			errs = append(errs, &ValidationError{Kind: UnresolvedDeposition, Field: "sources.ecrh.width_rho",
				Msg: io.Sf("deposition width %g is below 3*dr = %g", src.ECRH.WidthRho, 3*dr)})
		}
	}

	// Particle-source stability: fractional density change below 0.2.
	if src.GasPuff != nil && prof.NeEdge > 0 {
		dn := src.GasPuff.RatePerM3PerS * dt
		if dn/prof.NeEdge > 0.2 {
			errs = append(errs, &ValidationError{Kind: SourceInstability, Field: "sources.gas_puff",
				Msg: io.Sf("estimated |dn|/n per step = %g exceeds 0.2; reduce rate or dt", dn/prof.NeEdge)})
		}
		if src.GasPuff.WidthRho > 0 && src.GasPuff.WidthRho < 3*dr {
			errs = append(errs, &ValidationError{Kind: UnresolvedDeposition, Field: "sources.gas_puff.width_rho",
				Msg: io.Sf("deposition width %g is below 3*dr = %g", src.GasPuff.WidthRho, 3*dr)})
		}
	}

	// Boundary-peak consistency: a peaked profile needs core > edge.
	if prof.TExponent > 0 && (prof.TiCore <= prof.TiEdge || prof.TeCore <= prof.TeEdge) {
		errs = append(errs, &ValidationError{Kind: Inconsistency, Field: "initial_profiles",
			Msg: "peaked temperature profile requires core > edge"})
	}
	if prof.NeExponent > 0 && prof.NeCore <= prof.NeEdge {
		errs = append(errs, &ValidationError{Kind: Inconsistency, Field: "initial_profiles",
			Msg: "peaked density profile requires ne_core > ne_edge"})
	}
	return errs
}

// validateModelConstraints is phase 3: ranges individual models are
// valid over, and cross-parameter identities.
func validateModelConstraints(p *RuntimeParams) []*ValidationError {
	var errs []*ValidationError
	src := &p.Dynamic.Sources
	prof := &p.Dynamic.Profiles

	// Surrogate transport closures are trained on a limited window.
	if p.Dynamic.Transport.Model == "surrogate" {
		if prof.TeEdge < 500 {
			errs = append(errs, &ValidationError{Kind: SurrogateRange, Field: "transport.surrogate",
				Msg: io.Sf("surrogate closure requires Te >= 500 eV everywhere; edge is %g", prof.TeEdge)})
		}
		if prof.NeEdge < 1e19 || prof.NeCore > 1e20 {
			errs = append(errs, &ValidationError{Kind: SurrogateRange, Field: "transport.surrogate",
				Msg: io.Sf("surrogate closure requires ne in [1e19, 1e20]; profile spans [%g, %g]", prof.NeEdge, prof.NeCore)})
		}
	}

	// The D-T fuel mix must sum to one.
	if src.Fusion {
		sum := src.DeuteriumFraction + src.TritiumFraction
		if math.Abs(sum-1) > 1e-4 {
			errs = append(errs, &ValidationError{Kind: InvalidFuelMix, Field: "sources",
				Msg: io.Sf("deuterium_fraction + tritium_fraction = %g, must equal 1 within 1e-4", sum)})
		}
	}
	return errs
}

// peakPowerDensityMW estimates the peak volumetric power density of a
// Gaussian deposition in MW/m^3, spreading the total power over the
// annular shell the Gaussian occupies.
func peakPowerDensityMW(e *ECRHConfig, m *Mesh) float64 {
	shellVol := 4 * math.Pi * math.Pi * m.R * math.Max(e.RhoDeposit, e.WidthRho) * (2 * e.WidthRho)
	if shellVol <= 0 {
		return math.Inf(1)
	}
	return e.PowerMW / shellVol
}
