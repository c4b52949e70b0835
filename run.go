// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokfem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/tokfem/state"
	"github.com/cpmech/tokfem/timestep"
	"github.com/cpmech/tokfem/transport"
)

// Runner advances a Stepper over a simulated time interval, proposing
// each dt from the CFL-based controller and shrinking dt to retry when
// a step fails to converge. A step that still fails at the controller's
// minimum dt aborts the run.
type Runner struct {
	Stepper   *Stepper
	Transport transport.Model
	TimeCfg   timestep.Config
	Verbose   bool
}

// RunResult summarizes a completed (or aborted) multi-step run.
type RunResult struct {
	Profiles *state.CoreProfiles
	Time     float64 // simulated time reached
	Steps    int
	Retries  int
}

// Run advances profiles from tStart to tEnd starting at dt0. The
// returned profiles are always the last converged state, even on error.
func (r *Runner) Run(p *state.CoreProfiles, tStart, tEnd, dt0 float64) (*RunResult, error) {
	if tEnd <= tStart {
		return nil, chk.Err("tokfem: tEnd=%g must exceed tStart=%g\n", tEnd, tStart)
	}
	if dt0 <= 0 {
		return nil, chk.Err("tokfem: initial dt must be positive, got %g\n", dt0)
	}

	out := &RunResult{Profiles: p, Time: tStart}
	dt := dt0
	for out.Time < tEnd {
		stepDt := math.Min(dt, tEnd-out.Time)

		res, err := r.Stepper.Step(out.Profiles, float32(stepDt))
		if err != nil {
			return out, err
		}
		if !res.Converged {
			out.Retries++
			dt = stepDt / 2
			if dt < r.TimeCfg.MinDt {
				return out, chk.Err("tokfem: step at t=%g failed to converge at the minimum dt=%g (failure type %d)\n",
					out.Time, r.TimeCfg.MinDt, res.Metadata.FailureType)
			}
			if r.Verbose {
				io.Pfyel("tokfem: t=%g step rejected, retrying with dt=%g\n", out.Time, dt)
			}
			continue
		}

		prev := out.Profiles
		out.Profiles = res.Profiles
		out.Time += stepDt
		out.Steps++
		if r.Verbose {
			io.Pf("tokfem: t=%g dt=%g iterations=%d |R|=%g\n", out.Time, stepDt, res.Iterations, res.ResidualNorm)
		}

		next, err := r.proposeDt(prev, out.Profiles, stepDt)
		if err != nil {
			return out, err
		}
		dt = next
	}
	return out, nil
}

// proposeDt asks the CFL controller for the next dt using the transport
// coefficients at the new state.
func (r *Runner) proposeDt(prev, next *state.CoreProfiles, prevDt float64) (float64, error) {
	tc, err := r.Transport.Compute(next.ClampDensityFloor(), r.Stepper.Geo)
	if err != nil {
		return 0, chk.Err("tokfem: transport evaluation for timestep control failed: %v\n", err)
	}
	in := timestep.Inputs{
		ChiI:       tc.ChiI,
		ChiE:       tc.ChiE,
		D:          tc.D,
		V:          tc.V,
		Dr:         r.Stepper.Geo.A / float64(r.Stepper.Geo.NCells),
		PrevDt:     prevDt,
		PrevFields: [][]float32{prev.Ti, prev.Te, prev.Ne, prev.Psi},
		NewFields:  [][]float32{next.Ti, next.Te, next.Ne, next.Psi},
	}
	return timestep.Propose(in, r.TimeCfg)
}
