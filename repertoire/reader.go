// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package repertoire

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Canonical column names.
const (
	ColSampleID = "sampleId"
	ColReads    = "numberOfreads"
	ColCDR3nt   = "CDR3nt"
	ColCDR3aa   = "CDR3aa"
	ColVGene    = "VGene"
	ColJGene    = "JGene"

	suffixA = "_A"
	suffixB = "_B"
)

var chainColumns = []string{ColCDR3nt, ColCDR3aa, ColVGene, ColJGene}

// ReadOpts controls ReadTable.
type ReadOpts struct {
	// Separator is the field delimiter.  If zero, it is detected from the
	// content.
	Separator rune
}

// DetectSeparator returns the most likely field delimiter of the
// delimiter-separated text in data.  It falls back to a comma.
func DetectSeparator(data []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')
	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}
	return ','
}

// CleanColumnName strips surrounding whitespace, double quotes and inner
// spaces from a header field.
func CleanColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Replace(name, `"`, "", -1)
	return strings.Replace(name, " ", "", -1)
}

// canonicalColumn maps a cleaned header field to its canonical name.
func canonicalColumn(name string) string {
	if name == "count" {
		return ColReads
	}
	for _, c := range chainColumns {
		switch name {
		case c + "A":
			return c + suffixA
		case c + "B":
			return c + suffixB
		}
	}
	return name
}

// isPairedHeader reports whether the header carries the chain B columns that
// identify single-cell data.
func isPairedHeader(cols map[string]int) bool {
	for _, c := range chainColumns {
		if _, ok := cols[c+suffixB]; !ok {
			return false
		}
	}
	return true
}

func requiredColumns(paired bool) []string {
	req := []string{ColSampleID, ColReads}
	for _, c := range chainColumns {
		if paired {
			req = append(req, c+suffixA, c+suffixB)
		} else {
			req = append(req, c)
		}
	}
	return req
}

// ReadTable parses a delimiter-separated repertoire table with a header row.
// The schema (bulk or paired) is decided by the presence of chain B columns.
// Missing required columns are reported as an errors.Invalid error before any
// row is read.
func ReadTable(r io.Reader, opts ReadOpts) (*Table, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sep := opts.Separator
	if sep == 0 {
		sep = DetectSeparator(data)
		log.Debug.Printf("detected field separator %q", sep)
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sep
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.E(errors.Invalid, "empty repertoire table")
	}
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[canonicalColumn(CleanColumnName(h))] = i
	}
	t := &Table{Paired: isPairedHeader(cols)}
	var missing []string
	for _, c := range requiredColumns(t.Paired) {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.E(errors.Invalid, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	chain := func(rec []string, suffix string) Chain {
		return Chain{
			CDR3nt: rec[cols[ColCDR3nt+suffix]],
			CDR3aa: rec[cols[ColCDR3aa+suffix]],
			VGene:  rec[cols[ColVGene+suffix]],
			JGene:  rec[cols[ColJGene+suffix]],
		}
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		reads, err := parseReads(rec[cols[ColReads]])
		if err != nil {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("line %d", line), err)
		}
		row := Row{SampleID: rec[cols[ColSampleID]], Reads: reads}
		if t.Paired {
			row.A = chain(rec, suffixA)
			b := chain(rec, suffixB)
			row.B = &b
		} else {
			row.A = chain(rec, "")
		}
		t.Rows = append(t.Rows, row)
	}
	log.Printf("read %d rows (paired=%v)", len(t.Rows), t.Paired)
	return t, nil
}

// parseReads accepts non-negative integers, also when written with a
// fractional part of zero ("12.0").
func parseReads(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("malformed read count %q", s)
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative read count %d", n)
	}
	return n, nil
}
