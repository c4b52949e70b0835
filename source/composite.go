// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Composite sums the Terms of an arbitrary number of sub-models, mirroring
// transport.Composite so multiple heating/source mechanisms (ohmic, fusion,
// bremsstrahlung, exchange, ecrh, ...) can be run together in one step.
type Composite struct {
	names []string
	subs  []Model
}

func init() {
	Register("composite", func() Model { return new(Composite) })
}

// AddSub registers a named sub-model; name is used only for error messages.
func (o *Composite) AddSub(name string, m Model) {
	o.names = append(o.names, name)
	o.subs = append(o.subs, m)
}

// Init is a no-op: sub-models are configured individually via AddSub, not
// through a flat parameter list, since each may take different parameters.
func (o *Composite) Init(prms modelparams.Prms) error {
	return nil
}

func (o *Composite) GetPrms() modelparams.Prms {
	return modelparams.Prms{}
}

func (o *Composite) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	if len(o.subs) == 0 {
		return nil, chk.Err("source: composite model has no sub-models configured\n")
	}
	out := zeroTerms(g.NCells)
	for idx, sub := range o.subs {
		t, err := sub.Compute(p, g)
		if err != nil {
			return nil, chk.Err("source: sub-model %q failed: %v\n", o.names[idx], err)
		}
		for i := 0; i < g.NCells; i++ {
			out.IonHeating[i] += t.IonHeating[i]
			out.ElectronHeating[i] += t.ElectronHeating[i]
			out.ParticleSource[i] += t.ParticleSource[i]
			out.CurrentSource[i] += t.CurrentSource[i]
		}
	}
	return out, nil
}
