// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package downsample normalizes sequencing depth across the samples of a
// repertoire table before overlap metrics are computed.
package downsample

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/repdist/repertoire"
)

// DefaultSeed seeds the generator used by hypergeometric downsampling.
const DefaultSeed = 12345

// Apply returns a downsampled copy of t with Fraction recomputed for every
// row.  t itself is not modified.  rng is only consumed by Hypergeometric
// configs; samples are visited in first-appearance order so that a given
// rng state always yields the same counts.
func Apply(t *repertoire.Table, cfg Config, rng *rand.Rand) (*repertoire.Table, error) {
	var (
		out *repertoire.Table
		err error
	)
	switch cfg.Strategy {
	case None:
		out = t.Clone()
	case Top:
		out = top(t, cfg.N)
	case CumTop:
		out = cumTop(t, cfg.N)
	case Hypergeometric:
		out, err = hypergeometricTable(t, cfg, rng)
	default:
		err = errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling type %v", cfg.Strategy))
	}
	if err != nil {
		return nil, err
	}
	out.Normalize()
	return out, nil
}

// byReadsDesc returns the row indices sorted by decreasing read count.  Ties
// keep table order.
func byReadsDesc(t *repertoire.Table, idx []int) []int {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.SliceStable(sorted, func(i, j int) bool {
		return t.Rows[sorted[i]].Reads > t.Rows[sorted[j]].Reads
	})
	return sorted
}

// filter returns the rows of t whose index is in keep, in table order.
func filter(t *repertoire.Table, keep map[int]bool) *repertoire.Table {
	out := &repertoire.Table{Paired: t.Paired, Rows: make([]repertoire.Row, 0, len(keep))}
	for i := range t.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

func top(t *repertoire.Table, n int64) *repertoire.Table {
	keep := map[int]bool{}
	_, groups := t.Groups()
	for _, idx := range groups {
		for rank, i := range byReadsDesc(t, idx) {
			if int64(rank) >= n {
				break
			}
			keep[i] = true
		}
	}
	return filter(t, keep)
}

func cumTop(t *repertoire.Table, percent int64) *repertoire.Table {
	keep := map[int]bool{}
	totals := t.Totals()
	_, groups := t.Groups()
	for id, idx := range groups {
		threshold := float64(totals[id]) * float64(percent) / 100
		var cum int64
		for _, i := range byReadsDesc(t, idx) {
			cum += t.Rows[i].Reads
			if float64(cum) > threshold {
				break
			}
			keep[i] = true
		}
	}
	return filter(t, keep)
}

func hypergeometricTable(t *repertoire.Table, cfg Config, rng *rand.Rand) (*repertoire.Table, error) {
	if rng == nil {
		return nil, errors.E(errors.Invalid, "hypergeometric downsampling needs a random generator")
	}
	order, groups := t.Groups()
	totals := make([]int64, len(order))
	byID := t.Totals()
	for i, id := range order {
		totals[i] = byID[id]
	}
	target, err := Target(totals, cfg.Chooser, cfg.N)
	if err != nil {
		return nil, err
	}
	log.Printf("hypergeometric downsampling (%v): target depth %d over %d samples", cfg.Chooser, target, len(order))

	out := t.Clone()
	if target <= 0 {
		return out, nil
	}
	for i, id := range order {
		if totals[i] <= target {
			continue
		}
		idx := groups[id]
		counts := make([]int64, len(idx))
		for j, r := range idx {
			counts[j] = t.Rows[r].Reads
		}
		drawn := MultivariateHypergeometric(rng, counts, target)
		for j, r := range idx {
			out.Rows[r].Reads = drawn[j]
		}
		log.Debug.Printf("sample %s: downsampled %d -> %d reads", id, totals[i], target)
	}
	return out, nil
}

// Target returns the depth that hypergeometric downsampling reduces samples
// to, given every sample's total read count.  Zero means samples are left
// unchanged.
func Target(totals []int64, c Chooser, n int64) (int64, error) {
	switch c {
	case Fixed:
		return n, nil
	case Min, Max:
		if len(totals) == 0 {
			return 0, nil
		}
		v := totals[0]
		for _, x := range totals[1:] {
			if (c == Min && x < v) || (c == Max && x > v) {
				v = x
			}
		}
		return v, nil
	case Auto:
		if len(totals) == 0 {
			return 0, nil
		}
		depths := make([]float64, len(totals))
		for i, x := range totals {
			depths[i] = float64(x)
		}
		threshold := 0.5 * quantile(0.2, depths)
		target := int64(-1)
		for _, x := range totals {
			if float64(x) > threshold && (target < 0 || x < target) {
				target = x
			}
		}
		if target < 0 {
			return 0, nil
		}
		return target, nil
	}
	return 0, errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling value chooser %v", c))
}

// quantile returns the p-quantile of x by linear interpolation between the
// closest ranks, h = (len(x)-1)*p.  x is sorted in place.
func quantile(p float64, x []float64) float64 {
	sort.Float64s(x)
	h := float64(len(x)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[i] + (h-lo)*(x[i+1]-x[i])
}
