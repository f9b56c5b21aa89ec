// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package downsample

import (
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/repdist/repertoire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func makeTable(samples map[string][]int64, order ...string) *repertoire.Table {
	t := &repertoire.Table{}
	for _, id := range order {
		for i, n := range samples[id] {
			t.Rows = append(t.Rows, repertoire.Row{
				SampleID: id,
				Reads:    n,
				A:        repertoire.Chain{CDR3nt: string(rune('A' + i))},
			})
		}
	}
	return t
}

func reads(t *repertoire.Table, id string) []int64 {
	var r []int64
	for _, row := range t.Rows {
		if row.SampleID == id {
			r = append(r, row.Reads)
		}
	}
	return r
}

func fractionSums(t *repertoire.Table) map[string]float64 {
	sums := map[string]float64{}
	for _, row := range t.Rows {
		sums[row.SampleID] += row.Fraction
	}
	return sums
}

func TestQuantile(t *testing.T) {
	assert.InDelta(t, 1.8, quantile(0.2, []float64{5, 3, 1, 4, 2}), 1e-12)
	assert.Equal(t, 7.0, quantile(0.2, []float64{7}))
	assert.Equal(t, 4.0, quantile(1, []float64{1, 4}))
}

func TestTarget(t *testing.T) {
	totals := []int64{100, 200, 300, 10}
	tests := []struct {
		chooser  Chooser
		n        int64
		expected int64
	}{
		// 20th percentile is 64, so samples above 32 reads qualify.
		{Auto, 0, 100},
		{Min, 0, 10},
		{Max, 0, 300},
		{Fixed, 50, 50},
	}
	for _, test := range tests {
		target, err := Target(totals, test.chooser, test.n)
		require.NoError(t, err)
		assert.Equal(t, test.expected, target, "chooser %v", test.chooser)
	}

	target, err := Target([]int64{0, 0}, Auto, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), target)

	_, err = Target(totals, Chooser(9), 0)
	assert.True(t, errors.Is(errors.NotSupported, err))
}

func TestApplyNone(t *testing.T) {
	in := makeTable(map[string][]int64{"a": {1, 3}, "b": {0, 0}}, "a", "b")
	out, err := Apply(in, Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, reads(in, "a"), reads(out, "a"))
	assert.Equal(t, []float64{0.25, 0.75}, []float64{out.Rows[0].Fraction, out.Rows[1].Fraction})
	assert.Equal(t, 0.0, fractionSums(out)["b"])
	// The input is left alone.
	assert.Equal(t, 0.0, in.Rows[0].Fraction)
}

func TestApplyTop(t *testing.T) {
	in := makeTable(map[string][]int64{"a": {5, 10, 10, 1}, "b": {7}}, "a", "b")
	cfg, err := NewConfig(Top, Auto, 2)
	require.NoError(t, err)
	out, err := Apply(in, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 10}, reads(out, "a"))
	assert.Equal(t, "B", out.Rows[0].A.CDR3nt)
	assert.Equal(t, "C", out.Rows[1].A.CDR3nt)
	assert.Equal(t, []int64{7}, reads(out, "b"))
	for id, sum := range fractionSums(out) {
		assert.InDelta(t, 1.0, sum, 1e-12, "sample %s", id)
	}
}

func TestApplyTopTies(t *testing.T) {
	in := makeTable(map[string][]int64{"a": {3, 3, 3}}, "a")
	cfg, err := NewConfig(Top, Auto, 1)
	require.NoError(t, err)
	out, err := Apply(in, cfg, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "A", out.Rows[0].A.CDR3nt)
}

func TestApplyCumTop(t *testing.T) {
	in := makeTable(map[string][]int64{"a": {20, 50, 30}}, "a")
	tests := []struct {
		percent  int64
		expected []int64
	}{
		{100, []int64{20, 50, 30}},
		{80, []int64{50, 30}},
		{79, []int64{50}},
		{10, nil},
	}
	for _, test := range tests {
		cfg, err := NewConfig(CumTop, Auto, test.percent)
		require.NoError(t, err)
		out, err := Apply(in, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, test.expected, reads(out, "a"), "percent %d", test.percent)
	}
}

func TestApplyHypergeometric(t *testing.T) {
	in := makeTable(map[string][]int64{"deep": {40, 30, 20, 10}, "shallow": {6, 4}}, "deep", "shallow")
	cfg, err := NewConfig(Hypergeometric, Min, 0)
	require.NoError(t, err)
	out, err := Apply(in, cfg, rand.New(rand.NewSource(DefaultSeed)))
	require.NoError(t, err)

	deep := reads(out, "deep")
	var total int64
	for i, n := range deep {
		assert.True(t, n <= in.Rows[i].Reads, "clonotype %d grew from %d to %d", i, in.Rows[i].Reads, n)
		total += n
	}
	assert.Equal(t, int64(10), total)
	assert.Equal(t, []int64{6, 4}, reads(out, "shallow"))
	for id, sum := range fractionSums(out) {
		assert.InDelta(t, 1.0, sum, 1e-12, "sample %s", id)
	}

	again, err := Apply(in, cfg, rand.New(rand.NewSource(DefaultSeed)))
	require.NoError(t, err)
	assert.Equal(t, deep, reads(again, "deep"))

	_, err = Apply(in, cfg, nil)
	assert.Error(t, err)
}

func TestMultivariateHypergeometric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := []int64{10, 0, 20, 30, 1}
	for _, n := range []int64{0, 1, 15, 60, 61, 1000} {
		drawn := MultivariateHypergeometric(rng, counts, n)
		require.Len(t, drawn, len(counts))
		var sum int64
		for i := range drawn {
			assert.True(t, drawn[i] >= 0 && drawn[i] <= counts[i])
			sum += drawn[i]
		}
		expected := n
		if expected > 61 {
			expected = 61
		}
		assert.Equal(t, expected, sum, "n=%d", n)
	}
	assert.Equal(t, counts, MultivariateHypergeometric(rng, counts, 61))
}

func TestHypergeometricMean(t *testing.T) {
	rng := rand.New(rand.NewSource(DefaultSeed))
	const trials = 20000
	draws := make([]float64, trials)
	for i := range draws {
		x := hypergeometric(rng, 30, 70, 10)
		require.True(t, x >= 0 && x <= 10)
		draws[i] = float64(x)
	}
	assert.InDelta(t, 3.0, floats.Sum(draws)/trials, 0.05)

	// Degenerate urns.
	assert.Equal(t, int64(0), hypergeometric(rng, 0, 10, 5))
	assert.Equal(t, int64(5), hypergeometric(rng, 10, 0, 5))
	assert.Equal(t, int64(5), hypergeometric(rng, 5, 2, 7))
}
