// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// Composite sums the coefficients of several named sub-models,
// fulfilling the "composite" tagged variant expected of model
// polymorphism.
type Composite struct {
	names []string
	subs  []Model
}

func init() {
	Register("composite", func() Model { return new(Composite) })
}

// Init resets the sub-model list; sub-models are configured
// individually via AddSub, not through a flat parameter list, since
// each takes different parameters.
func (o *Composite) Init(prms modelparams.Prms) error {
	o.names = nil
	o.subs = nil
	return nil
}

// AddSub appends an already-initialised sub-model to the composite.
func (o *Composite) AddSub(name string, m Model) {
	o.names = append(o.names, name)
	o.subs = append(o.subs, m)
}

func (o *Composite) GetPrms() modelparams.Prms { return modelparams.Prms{} }

// Compute sums all sub-models' coefficient arrays elementwise.
func (o *Composite) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Coefficients, error) {
	if len(o.subs) == 0 {
		return nil, chk.Err("transport: composite model has no sub-models configured\n")
	}
	n := g.NCells
	out := &Coefficients{
		ChiI: make([]float32, n),
		ChiE: make([]float32, n),
		D:    make([]float32, n),
		V:    make([]float32, n),
	}
	for _, sub := range o.subs {
		c, err := sub.Compute(p, g)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out.ChiI[i] += c.ChiI[i]
			out.ChiE[i] += c.ChiE[i]
			out.D[i] += c.D[i]
			out.V[i] += c.V[i]
		}
	}
	return out, nil
}
