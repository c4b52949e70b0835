// Copyright 2026 The Tokfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modelparams implements a small tagged parameter-list type used
// by transport and source models as the opaque parameter map of their
// narrow contract.
package modelparams

import "github.com/cpmech/gosl/chk"

// Prm holds one named scalar model parameter.
type Prm struct {
	N string  // name; e.g. "chi_ion"
	V float64 // value
}

// Prms is a list of named parameters, as read from the dynamic runtime
// configuration's transport/source parameter maps.
type Prms []*Prm

// Find returns the value of the parameter named n and true, or 0 and
// false if not present.
func (o Prms) Find(n string) (float64, bool) {
	for _, p := range o {
		if p.N == n {
			return p.V, true
		}
	}
	return 0, false
}

// FindOr returns the value of the parameter named n, or deflt if absent.
func (o Prms) FindOr(n string, deflt float64) float64 {
	if v, ok := o.Find(n); ok {
		return v
	}
	return deflt
}

// Set sets (or appends) the parameter named n to v.
func (o *Prms) Set(n string, v float64) {
	for _, p := range *o {
		if p.N == n {
			p.V = v
			return
		}
	}
	*o = append(*o, &Prm{N: n, V: v})
}

// CheckKnown returns an error if prms contains a name not present in
// known, so typos in a configuration surface at Init time.
func CheckKnown(prms Prms, known ...string) error {
	for _, p := range prms {
		found := false
		for _, k := range known {
			if p.N == k {
				found = true
				break
			}
		}
		if !found {
			return chk.Err("parameter named %q is not recognized\n", p.N)
		}
	}
	return nil
}
