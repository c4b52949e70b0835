// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"sync/atomic"

	"github.com/cpmech/gosl/io"
)

// WarnKind classifies an advisory condition.
type WarnKind int

const (
	HighPowerDensity WarnKind = iota
	TimestepFarBelowCFL
	VeryPeakedProfiles
	FineMesh
	FusionNegligible
)

var warnNames = map[WarnKind]string{
	HighPowerDensity:    "highPowerDensity",
	TimestepFarBelowCFL: "timestepFarBelowCFL",
	VeryPeakedProfiles:  "veryPeakedProfiles",
	FineMesh:            "fineMesh",
	FusionNegligible:    "fusionNegligible",
}

// Warning is one advisory condition; it never blocks a run.
type Warning struct {
	Kind WarnKind
	Msg  string
}

// String renders the warning with its tag.
func (w Warning) String() string {
	return io.Sf("config: warning [%s]: %s", warnNames[w.Kind], w.Msg)
}

// CollectWarnings scans the configuration for advisory conditions. It
// never mutates p, so calling it twice yields identical enumerations.
func CollectWarnings(p *RuntimeParams) []Warning {
	var out []Warning
	mesh := &p.Static.Mesh
	prof := &p.Dynamic.Profiles
	src := &p.Dynamic.Sources
	dr := mesh.Dr()
	dt := p.Time.InitialDt

	if mesh.NCells > 500 {
		out = append(out, Warning{Kind: FineMesh,
			Msg: io.Sf("ncells=%d is unusually fine; steps will be slow", mesh.NCells)})
	}

	if src.ECRH != nil {
		if peak := peakPowerDensityMW(src.ECRH, mesh); peak > 10 {
			out = append(out, Warning{Kind: HighPowerDensity,
				Msg: io.Sf("estimated peak deposition %g MW/m^3 exceeds 10 MW/m^3", peak)})
		}
	}

	// A timestep orders of magnitude below the CFL limit wastes work.
	if dr > 0 && dt > 0 {
		chiMax := 0.0
		for _, key := range []string{"chi_ion", "chi_electron", "particle_diffusivity"} {
			if chi := p.Dynamic.Transport.Params[key]; chi > chiMax {
				chiMax = chi
			}
		}
		if chiMax > 0 {
			cflDt := 0.5 * dr * dr / chiMax
			if dt < 0.01*cflDt {
				out = append(out, Warning{Kind: TimestepFarBelowCFL,
					Msg: io.Sf("dt=%g is below 1%% of the CFL limit %g; implicit stepping allows larger steps", dt, cflDt)})
			}
		}
	}

	if prof.TiEdge > 0 && prof.TiCore/prof.TiEdge > 10 && mesh.NCells < 100 {
		out = append(out, Warning{Kind: VeryPeakedProfiles,
			Msg: io.Sf("peaking ratio %g with only %d cells under-resolves the gradient region", prof.TiCore/prof.TiEdge, mesh.NCells)})
	}

	if src.Fusion && prof.TiCore < 5000 {
		out = append(out, Warning{Kind: FusionNegligible,
			Msg: io.Sf("fusion source enabled but Ti core = %g eV; fusion power will be negligible below ~5 keV", prof.TiCore)})
	}
	return out
}

// maxRuntimeWarnings caps how many times RuntimeWarn prints; the counter
// is process-wide and best-effort, races only affect log output.
const maxRuntimeWarnings = 20

var runtimeWarnCount int64

// RuntimeWarn prints a rate-limited advisory message during stepping.
func RuntimeWarn(msg string, prm ...interface{}) {
	n := atomic.AddInt64(&runtimeWarnCount, 1)
	if n > maxRuntimeWarnings {
		return
	}
	io.Pfyel("warning: "+msg+"\n", prm...)
	if n == maxRuntimeWarnings {
		io.Pfyel("warning: further runtime warnings suppressed\n")
	}
}
