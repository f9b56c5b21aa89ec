// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package repertoire

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
)

// Chain is one receptor chain of a clonotype.
type Chain struct {
	CDR3nt string
	CDR3aa string
	VGene  string
	JGene  string
}

// Row is one clonotype observed in one sample.
//
// B is nil for bulk data.  Fraction is the share of the sample's reads held
// by this row; it is only meaningful after the table has been through
// (*Table).Normalize.
type Row struct {
	SampleID string
	Reads    int64
	Fraction float64
	A        Chain
	B        *Chain
}

// Table is an ordered collection of rows.  Rows of the same sample need not
// be adjacent; sample order is the order in which sample IDs first appear.
type Table struct {
	// Paired is true for single-cell tables where each row has both chains.
	Paired bool
	Rows   []Row
}

// Validate checks the invariants every table must satisfy: read counts are
// non-negative and paired tables have chain B on every row.
func (t *Table) Validate() error {
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Reads < 0 {
			return errors.E(errors.Invalid, fmt.Sprintf("row %d of sample %s has negative read count %d", i, r.SampleID, r.Reads))
		}
		if t.Paired && r.B == nil {
			return errors.E(errors.Invalid, fmt.Sprintf("row %d of sample %s is missing chain B fields", i, r.SampleID))
		}
	}
	return nil
}

// SampleIDs returns the distinct sample IDs of t in sorted order.
func (t *Table) SampleIDs() []string {
	ids, _ := t.Groups()
	sort.Strings(ids)
	return ids
}

// Groups returns the row indices of every sample, keyed by sample ID, along
// with the sample IDs in first-appearance order.  Indices within a sample
// keep table order.
func (t *Table) Groups() (order []string, rows map[string][]int) {
	rows = map[string][]int{}
	for i := range t.Rows {
		id := t.Rows[i].SampleID
		if _, ok := rows[id]; !ok {
			order = append(order, id)
		}
		rows[id] = append(rows[id], i)
	}
	return order, rows
}

// Totals returns the total read count of every sample.
func (t *Table) Totals() map[string]int64 {
	totals := map[string]int64{}
	for i := range t.Rows {
		totals[t.Rows[i].SampleID] += t.Rows[i].Reads
	}
	return totals
}

// Clone returns a copy of t whose rows can be modified without touching t.
// Chain B values are shared; they are never modified.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Paired: t.Paired, Rows: rows}
}

// Normalize recomputes Fraction for every row as the row's share of its
// sample's reads.  Rows of samples without reads get a fraction of zero.
func (t *Table) Normalize() {
	totals := t.Totals()
	for i := range t.Rows {
		r := &t.Rows[i]
		if total := totals[r.SampleID]; total > 0 {
			r.Fraction = float64(r.Reads) / float64(total)
		} else {
			r.Fraction = 0
		}
	}
}
