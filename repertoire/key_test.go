// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package repertoire

import (
	"encoding/json"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBulk(t *testing.T) {
	row := &Row{
		SampleID: "s1",
		Reads:    10,
		A:        Chain{CDR3nt: "TGTGCC", CDR3aa: "CA", VGene: "TRBV2", JGene: "TRBJ1-1"},
	}
	tests := []struct {
		in       Intersection
		expected string
	}{
		{CDR3nt, "TGTGCC"},
		{CDR3aa, "CA"},
		{CDR3ntVJ, "TGTGCC|TRBV2|TRBJ1-1"},
		{CDR3aaVJ, "CA|TRBV2|TRBJ1-1"},
	}
	for _, test := range tests {
		key, err := Key(row, test.in, false)
		require.NoError(t, err)
		assert.Equal(t, test.expected, key, "intersection %v", test.in)
	}
}

func TestKeyPaired(t *testing.T) {
	row := &Row{
		SampleID: "s1",
		Reads:    3,
		A:        Chain{CDR3nt: "AAA", CDR3aa: "K", VGene: "TRAV1", JGene: "TRAJ2"},
		B:        &Chain{CDR3nt: "CCC", CDR3aa: "P", VGene: "TRBV3", JGene: "TRBJ4"},
	}
	tests := []struct {
		in       Intersection
		expected string
	}{
		{CDR3nt, "AAA|CCC"},
		{CDR3aa, "K|P"},
		{CDR3ntVJ, "AAA|CCC|TRAV1|TRBV3|TRAJ2|TRBJ4"},
		{CDR3aaVJ, "K|P|TRAV1|TRBV3|TRAJ2|TRBJ4"},
	}
	for _, test := range tests {
		key, err := Key(row, test.in, true)
		require.NoError(t, err)
		assert.Equal(t, test.expected, key, "intersection %v", test.in)
	}
}

func TestKeyErrors(t *testing.T) {
	row := &Row{SampleID: "s1", A: Chain{CDR3nt: "AAA"}}
	_, err := Key(row, Intersection(42), false)
	assert.True(t, errors.Is(errors.NotSupported, err), "got %v", err)

	_, err = Key(row, CDR3nt, true)
	assert.True(t, errors.Is(errors.Invalid, err), "got %v", err)
}

func TestParseIntersection(t *testing.T) {
	for _, name := range []string{"CDR3nt", "CDR3aa", "CDR3ntVJ", "CDR3aaVJ"} {
		in, err := ParseIntersection(name)
		require.NoError(t, err)
		assert.Equal(t, name, in.String())
	}
	_, err := ParseIntersection("CDR3")
	assert.True(t, errors.Is(errors.NotSupported, err))

	var in Intersection
	require.NoError(t, json.Unmarshal([]byte(`"CDR3aaVJ"`), &in))
	assert.Equal(t, CDR3aaVJ, in)
	assert.Error(t, json.Unmarshal([]byte(`"VJ"`), &in))
}
