// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"math/rand"

	"github.com/grailbio/base/log"
	"github.com/grailbio/repdist/downsample"
	"github.com/grailbio/repdist/repertoire"
	"gonum.org/v1/gonum/mat"
)

// EvalOpts controls Evaluate.
type EvalOpts struct {
	// Seed seeds the generator shared by every hypergeometric downsampling of
	// the run.
	Seed int64
}

// DefaultEvalOpts are the options used by the command line tool.
var DefaultEvalOpts = EvalOpts{Seed: downsample.DefaultSeed}

// NewProfiles returns one profile per sample in samples, built from the
// (already normalized) rows of t.  Samples without rows get an empty
// profile.  When two rows of a sample have the same key, the later row's
// fraction replaces the earlier one.
func NewProfiles(t *repertoire.Table, in repertoire.Intersection, samples []string) ([]Profile, error) {
	pos := make(map[string]int, len(samples))
	profiles := make([]Profile, len(samples))
	for i, s := range samples {
		pos[s] = i
		profiles[i] = Profile{}
	}
	for i := range t.Rows {
		row := &t.Rows[i]
		p, ok := pos[row.SampleID]
		if !ok {
			continue
		}
		key, err := repertoire.Key(row, in, t.Paired)
		if err != nil {
			return nil, err
		}
		profiles[p][key] = row.Fraction
	}
	return profiles, nil
}

// Evaluate computes every request for every pair of samples of t.
//
// Requests are grouped by (intersection, downsampling); each group
// downsamples and builds profiles once, and each distinct metric of a group
// is computed once per unordered sample pair.  A single generator, seeded
// from opts, is threaded through all groups in group order.
func Evaluate(t *repertoire.Table, reqs []Request, opts EvalOpts) (*Result, error) {
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	samples := t.SampleIDs()
	res := &Result{
		Samples:  samples,
		Requests: reqs,
		Labels:   Labels(reqs),
		values:   make([]*mat.SymDense, len(reqs)),
	}
	if len(samples) == 0 {
		return res, nil
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	groups := GroupRequests(reqs)
	log.Printf("evaluating %d metric requests in %d groups over %d samples", len(reqs), len(groups), len(samples))
	for gi, g := range groups {
		log.Printf("group %d/%d: intersection %v, downsampling %v, %d metrics",
			gi+1, len(groups), g.Intersection, g.Downsampling, len(g.Columns))
		ds, err := downsample.Apply(t, g.Downsampling, rng)
		if err != nil {
			return nil, err
		}
		profiles, err := NewProfiles(ds, g.Intersection, samples)
		if err != nil {
			return nil, err
		}
		byMetric := map[Metric]*mat.SymDense{}
		for _, col := range g.Columns {
			m := reqs[col].Type
			values, ok := byMetric[m]
			if !ok {
				if values, err = pairValues(m, samples, profiles); err != nil {
					return nil, err
				}
				byMetric[m] = values
			}
			res.values[col] = values
		}
	}
	return res, nil
}

// pairValues computes m once for every unordered pair of samples.  The
// symmetric matrix mirrors each value to both orderings.
func pairValues(m Metric, samples []string, profiles []Profile) (*mat.SymDense, error) {
	n := len(samples)
	values := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v, err := Compute(m, samples[i], samples[j], profiles[i], profiles[j])
			if err != nil {
				return nil, err
			}
			values.SetSym(i, j, v)
		}
	}
	return values, nil
}
