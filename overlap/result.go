// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"gonum.org/v1/gonum/mat"
)

// Layout is the shape of an output table.
type Layout int

const (
	// Wide tables have one row per sample pair and one column per request.
	Wide Layout = iota
	// Long tables have one row per sample pair and request.
	Long
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case Wide:
		return "wide"
	case Long:
		return "long"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Set implements flag.Value.
func (l *Layout) Set(s string) error {
	switch s {
	case "wide":
		*l = Wide
	case "long":
		*l = Long
	default:
		return errors.E(errors.NotSupported, fmt.Sprintf("unsupported layout %q", s))
	}
	return nil
}

// Result holds the metric values of every request for every sample pair.
type Result struct {
	// Samples are sorted.
	Samples []string
	// Requests and Labels are parallel: Labels[i] names the column of
	// Requests[i].
	Requests []Request
	Labels   []string

	values []*mat.SymDense
}

// PairRow is one row of a wide table.
type PairRow struct {
	Sample1, Sample2 string
	// Values is parallel to Result.Labels.
	Values []float64
}

// LongRow is one row of a long table.
type LongRow struct {
	Sample1, Sample2 string
	Metric           string
	Value            float64
}

// Value returns the value of request col for samples i and j, indexing
// Samples.  Missing values are 0.
func (r *Result) Value(i, j, col int) float64 {
	if col >= len(r.values) || r.values[col] == nil {
		return 0
	}
	return r.values[col].At(i, j)
}

func (r *Result) row(i, j int) PairRow {
	pr := PairRow{Sample1: r.Samples[i], Sample2: r.Samples[j], Values: make([]float64, len(r.Labels))}
	for col := range r.Labels {
		pr.Values[col] = r.Value(i, j, col)
	}
	return pr
}

// Full returns one row for every ordered pair of samples, self pairs
// included, in sample order.
func (r *Result) Full() []PairRow {
	n := len(r.Samples)
	rows := make([]PairRow, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			rows = append(rows, r.row(i, j))
		}
	}
	return rows
}

// Unique returns the rows of Full with Sample1 <= Sample2.
func (r *Result) Unique() []PairRow {
	n := len(r.Samples)
	rows := make([]PairRow, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			rows = append(rows, r.row(i, j))
		}
	}
	return rows
}

// Long converts wide rows to long rows, one per row and label.
func (r *Result) Long(rows []PairRow) []LongRow {
	long := make([]LongRow, 0, len(rows)*len(r.Labels))
	for _, pr := range rows {
		for col, l := range r.Labels {
			long = append(long, LongRow{Sample1: pr.Sample1, Sample2: pr.Sample2, Metric: l, Value: pr.Values[col]})
		}
	}
	return long
}

// WriteWide writes a tab-separated table with header
// "sample1 sample2 <labels...>".
func WriteWide(w io.Writer, labels []string, rows []PairRow) error {
	tw := tsv.NewWriter(w)
	tw.WriteString("sample1")
	tw.WriteString("sample2")
	for _, l := range labels {
		tw.WriteString(l)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, pr := range rows {
		tw.WriteString(pr.Sample1)
		tw.WriteString(pr.Sample2)
		for _, v := range pr.Values {
			tw.WriteFloat64(v, 'g', -1)
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteLong writes a tab-separated table with header
// "sample1 sample2 metric value".
func WriteLong(w io.Writer, rows []LongRow) error {
	tw := tsv.NewWriter(w)
	for _, h := range []string{"sample1", "sample2", "metric", "value"} {
		tw.WriteString(h)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for _, lr := range rows {
		tw.WriteString(lr.Sample1)
		tw.WriteString(lr.Sample2)
		tw.WriteString(lr.Metric)
		tw.WriteFloat64(lr.Value, 'g', -1)
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Write writes rows in the given layout.
func (r *Result) Write(w io.Writer, layout Layout, rows []PairRow) error {
	switch layout {
	case Wide:
		return WriteWide(w, r.Labels, rows)
	case Long:
		return WriteLong(w, r.Long(rows))
	}
	return errors.E(errors.NotSupported, fmt.Sprintf("unsupported layout %v", layout))
}
