// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package downsample

import (
	"encoding/json"
	"fmt"

	"github.com/grailbio/base/errors"
)

// Strategy is a downsampling strategy.
type Strategy int

const (
	// None keeps every read.
	None Strategy = iota
	// Top keeps the N most abundant clonotypes of every sample.
	Top
	// CumTop keeps the most abundant clonotypes of every sample that together
	// hold at most N percent of the sample's reads.
	CumTop
	// Hypergeometric draws reads without replacement down to a common depth.
	Hypergeometric
)

var strategyNames = []string{"none", "top", "cumtop", "hypergeometric"}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	for i, name := range strategyNames {
		if name == string(text) {
			*s = Strategy(i)
			return nil
		}
	}
	return errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling type %q", text))
}

// Chooser selects the target depth of hypergeometric downsampling.
type Chooser int

const (
	// Auto targets the smallest depth among samples deeper than half the
	// 20th percentile of sample depths.
	Auto Chooser = iota
	// Fixed targets a given depth.
	Fixed
	// Min targets the smallest sample depth.
	Min
	// Max targets the largest sample depth.
	Max
)

var chooserNames = []string{"auto", "fixed", "min", "max"}

// String implements fmt.Stringer.
func (c Chooser) String() string {
	if c >= 0 && int(c) < len(chooserNames) {
		return chooserNames[c]
	}
	return fmt.Sprintf("Chooser(%d)", int(c))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Chooser) UnmarshalText(text []byte) error {
	for i, name := range chooserNames {
		if name == string(text) {
			*c = Chooser(i)
			return nil
		}
	}
	return errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling value chooser %q", text))
}

// Config is a validated downsampling configuration.  Configs are comparable
// and normalized: parameters that a strategy ignores are zero, so two
// configs that downsample identically compare equal.
type Config struct {
	Strategy Strategy
	// Chooser is only set for Hypergeometric.
	Chooser Chooser
	// N is the clonotype count for Top, the percentage for CumTop and the
	// target depth for Hypergeometric with the Fixed chooser.
	N int64
}

// NewConfig validates and normalizes a downsampling configuration.
func NewConfig(s Strategy, c Chooser, n int64) (Config, error) {
	switch s {
	case None:
		return Config{}, nil
	case Top:
		if n <= 0 {
			return Config{}, errors.E(errors.Invalid, fmt.Sprintf("top downsampling needs a positive n, got %d", n))
		}
		return Config{Strategy: Top, N: n}, nil
	case CumTop:
		if n <= 0 || n > 100 {
			return Config{}, errors.E(errors.Invalid, fmt.Sprintf("cumtop downsampling needs n in (0, 100], got %d", n))
		}
		return Config{Strategy: CumTop, N: n}, nil
	case Hypergeometric:
		switch c {
		case Auto, Min, Max:
			return Config{Strategy: Hypergeometric, Chooser: c}, nil
		case Fixed:
			if n <= 0 {
				return Config{}, errors.E(errors.Invalid, fmt.Sprintf("fixed hypergeometric downsampling needs a positive n, got %d", n))
			}
			return Config{Strategy: Hypergeometric, Chooser: Fixed, N: n}, nil
		}
		return Config{}, errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling value chooser %v", c))
	}
	return Config{}, errors.E(errors.NotSupported, fmt.Sprintf("unsupported downsampling type %v", s))
}

// String returns a compact descriptor such as "none", "top100", "cumtop80",
// "hypergeometric-auto" or "hypergeometric-fixed5000".
func (c Config) String() string {
	switch c.Strategy {
	case Top, CumTop:
		return fmt.Sprintf("%v%d", c.Strategy, c.N)
	case Hypergeometric:
		if c.Chooser == Fixed {
			return fmt.Sprintf("%v-%v%d", c.Strategy, c.Chooser, c.N)
		}
		return fmt.Sprintf("%v-%v", c.Strategy, c.Chooser)
	}
	return c.Strategy.String()
}

type jsonConfig struct {
	Type         *Strategy `json:"type,omitempty"`
	ValueChooser *Chooser  `json:"valueChooser,omitempty"`
	N            *float64  `json:"n,omitempty"`
}

// UnmarshalJSON decodes {"type": ..., "valueChooser": ..., "n": ...}.  A
// missing type means no downsampling and a missing value chooser means auto.
func (c *Config) UnmarshalJSON(data []byte) error {
	var j jsonConfig
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	var (
		s   = None
		ch  = Auto
		n   int64
		err error
	)
	if j.Type != nil {
		s = *j.Type
	}
	if j.ValueChooser != nil {
		ch = *j.ValueChooser
	}
	if j.N != nil {
		if *j.N != float64(int64(*j.N)) {
			return errors.E(errors.Invalid, fmt.Sprintf("downsampling n must be an integer, got %v", *j.N))
		}
		n = int64(*j.N)
	}
	*c, err = NewConfig(s, ch, n)
	return err
}

// MarshalJSON implements json.Marshaler.
func (c Config) MarshalJSON() ([]byte, error) {
	j := struct {
		Type         string `json:"type"`
		ValueChooser string `json:"valueChooser,omitempty"`
		N            int64  `json:"n,omitempty"`
	}{Type: c.Strategy.String(), N: c.N}
	if c.Strategy == Hypergeometric {
		j.ValueChooser = c.Chooser.String()
	}
	return json.Marshal(j)
}
