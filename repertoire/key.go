// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package repertoire

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// Intersection selects the fields that define clonotype identity.
type Intersection int

const (
	// CDR3nt compares nucleotide CDR3 sequences.
	CDR3nt Intersection = iota + 1
	// CDR3aa compares amino-acid CDR3 sequences.
	CDR3aa
	// CDR3ntVJ compares nucleotide CDR3 sequences together with V and J genes.
	CDR3ntVJ
	// CDR3aaVJ compares amino-acid CDR3 sequences together with V and J genes.
	CDR3aaVJ
)

// KeySeparator joins the fields of a clonotype key.  It is not expected to
// occur in any sequence or gene name.
const KeySeparator = "|"

var intersectionNames = map[Intersection]string{
	CDR3nt:   "CDR3nt",
	CDR3aa:   "CDR3aa",
	CDR3ntVJ: "CDR3ntVJ",
	CDR3aaVJ: "CDR3aaVJ",
}

// ParseIntersection returns the intersection with the given name.
func ParseIntersection(name string) (Intersection, error) {
	for in, n := range intersectionNames {
		if n == name {
			return in, nil
		}
	}
	return 0, errors.E(errors.NotSupported, fmt.Sprintf("unsupported intersection type %q", name))
}

// String implements fmt.Stringer.
func (in Intersection) String() string {
	if n, ok := intersectionNames[in]; ok {
		return n
	}
	return fmt.Sprintf("Intersection(%d)", int(in))
}

// MarshalText implements encoding.TextMarshaler.
func (in Intersection) MarshalText() ([]byte, error) {
	if _, ok := intersectionNames[in]; !ok {
		return nil, errors.E(errors.NotSupported, fmt.Sprintf("unsupported intersection type %d", int(in)))
	}
	return []byte(in.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (in *Intersection) UnmarshalText(text []byte) error {
	v, err := ParseIntersection(string(text))
	if err != nil {
		return err
	}
	*in = v
	return nil
}

// Key returns the clonotype key of row under the given intersection.  For
// paired data both chains contribute, chain A first.  Key is a pure function
// of the row.
func Key(row *Row, in Intersection, paired bool) (string, error) {
	if !paired {
		a := &row.A
		switch in {
		case CDR3nt:
			return a.CDR3nt, nil
		case CDR3aa:
			return a.CDR3aa, nil
		case CDR3ntVJ:
			return join(a.CDR3nt, a.VGene, a.JGene), nil
		case CDR3aaVJ:
			return join(a.CDR3aa, a.VGene, a.JGene), nil
		}
		return "", errors.E(errors.NotSupported, fmt.Sprintf("unsupported intersection type %v for bulk data", in))
	}
	if row.B == nil {
		return "", errors.E(errors.Invalid, fmt.Sprintf("paired row of sample %s is missing chain B fields", row.SampleID))
	}
	a, b := &row.A, row.B
	switch in {
	case CDR3nt:
		return join(a.CDR3nt, b.CDR3nt), nil
	case CDR3aa:
		return join(a.CDR3aa, b.CDR3aa), nil
	case CDR3ntVJ:
		return join(a.CDR3nt, b.CDR3nt, a.VGene, b.VGene, a.JGene, b.JGene), nil
	case CDR3aaVJ:
		return join(a.CDR3aa, b.CDR3aa, a.VGene, b.VGene, a.JGene, b.JGene), nil
	}
	return "", errors.E(errors.NotSupported, fmt.Sprintf("unsupported intersection type %v for paired data", in))
}

func join(fields ...string) string {
	return strings.Join(fields, KeySeparator)
}
