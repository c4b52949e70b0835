// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"github.com/cpmech/tokfem/geom"
	"github.com/cpmech/tokfem/modelparams"
	"github.com/cpmech/tokfem/state"
)

// None contributes no sources at all; it is the model wired in when the
// configuration disables every source mechanism.
type None struct{}

func init() {
	Register("none", func() Model { return new(None) })
}

func (o *None) Init(prms modelparams.Prms) error {
	return modelparams.CheckKnown(prms)
}

func (o *None) GetPrms() modelparams.Prms {
	return modelparams.Prms{}
}

func (o *None) Compute(p *state.CoreProfiles, g *geom.Geometry) (*Terms, error) {
	return zeroTerms(g.NCells), nil
}
