// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric is a pairwise repertoire similarity measure.
type Metric int

const (
	// F1 is the geometric mean of the read fractions both samples spend on
	// shared clonotypes.
	F1 Metric = iota + 1
	// F2 sums the geometric mean frequency of every shared clonotype.
	F2
	// Jaccard is the size of the clonotype intersection over the size of the
	// union.
	Jaccard
	// D is the size of the clonotype intersection over the product of both
	// clonotype counts.
	D
	// Correlation is the Pearson correlation of shared clonotype frequencies.
	Correlation
	// SharedClonotypes counts shared clonotypes.
	SharedClonotypes
)

var metricNames = map[Metric]string{
	F1:               "F1",
	F2:               "F2",
	Jaccard:          "jaccard",
	D:                "D",
	Correlation:      "correlation",
	SharedClonotypes: "sharedClonotypes",
}

var metricDescriptions = map[Metric]string{
	F1:               "F1 metric",
	F2:               "F2 metric",
	Jaccard:          "Jaccard",
	D:                "D metric",
	Correlation:      "Correlation",
	SharedClonotypes: "Shared Clonotypes",
}

// ParseMetric returns the metric with the given name.
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return m, nil
		}
	}
	return 0, errors.E(errors.NotSupported, fmt.Sprintf("unsupported metric %q", name))
}

// String implements fmt.Stringer.
func (m Metric) String() string {
	if n, ok := metricNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Description returns a human readable name, e.g. "Shared Clonotypes".
func (m Metric) Description() string {
	return metricDescriptions[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if _, ok := metricNames[m]; !ok {
		return nil, errors.E(errors.NotSupported, fmt.Sprintf("unsupported metric %d", int(m)))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	v, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Profile is the clonotype frequency map of one sample: clonotype key to
// the fraction of the sample's reads.  The keys of a profile are the
// sample's clonotype set.
type Profile map[string]float64

// sharedKeys returns the keys present in both profiles, sorted.
func sharedKeys(p1, p2 Profile) []string {
	if len(p2) < len(p1) {
		p1, p2 = p2, p1
	}
	var shared []string
	for k := range p1 {
		if _, ok := p2[k]; ok {
			shared = append(shared, k)
		}
	}
	sort.Strings(shared)
	return shared
}

// Compute returns metric m for samples s1 and s2 with profiles p1 and p2.
// A sample compared with itself scores 1, except for SharedClonotypes which
// counts the sample's clonotypes.  Samples without shared clonotypes score 0.
// The result is never NaN.
func Compute(m Metric, s1, s2 string, p1, p2 Profile) (float64, error) {
	if _, ok := metricNames[m]; !ok {
		return 0, errors.E(errors.NotSupported, fmt.Sprintf("unsupported metric %v", m))
	}
	if s1 == s2 {
		if m == SharedClonotypes {
			return float64(len(p1)), nil
		}
		return 1, nil
	}
	shared := sharedKeys(p1, p2)
	if len(shared) == 0 {
		return 0, nil
	}
	f1 := make([]float64, len(shared))
	f2 := make([]float64, len(shared))
	for i, k := range shared {
		f1[i], f2[i] = p1[k], p2[k]
	}
	n := float64(len(shared))
	switch m {
	case F1:
		return math.Sqrt(floats.Sum(f1) * floats.Sum(f2)), nil
	case F2:
		var sum float64
		for i := range f1 {
			sum += math.Sqrt(f1[i] * f2[i])
		}
		return sum, nil
	case Jaccard:
		return n / float64(len(p1)+len(p2)-len(shared)), nil
	case D:
		return n / (float64(len(p1)) * float64(len(p2))), nil
	case Correlation:
		return correlation(f1, f2), nil
	case SharedClonotypes:
		return n, nil
	}
	panic(m)
}

// correlation returns the Pearson correlation of x and y.  When it is
// undefined (fewer than two points or a constant vector) it returns 1 if x
// and y are identical and 0 otherwise.
func correlation(x, y []float64) float64 {
	if len(x) <= 1 || constant(x) || constant(y) {
		if floats.Equal(x, y) {
			return 1
		}
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
