// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"bytes"
	"os"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutFlag(t *testing.T) {
	var l Layout
	require.NoError(t, l.Set("long"))
	assert.Equal(t, Long, l)
	require.NoError(t, l.Set("wide"))
	assert.Equal(t, "wide", l.String())
	assert.True(t, errors.Is(errors.NotSupported, l.Set("matrix")))
}

func TestResultLong(t *testing.T) {
	res, err := Evaluate(newTable(
		clone{"b", "X", 1},
		clone{"a", "X", 1},
	), []Request{request(SharedClonotypes), request(Jaccard)}, DefaultEvalOpts)
	require.NoError(t, err)
	long := res.Long(res.Unique())
	assert.Equal(t, []LongRow{
		{"a", "a", "sharedClonotypes_CDR3nt", 1},
		{"a", "a", "jaccard_CDR3nt", 1},
		{"a", "b", "sharedClonotypes_CDR3nt", 1},
		{"a", "b", "jaccard_CDR3nt", 1},
		{"b", "b", "sharedClonotypes_CDR3nt", 1},
		{"b", "b", "jaccard_CDR3nt", 1},
	}, long)

	var buf bytes.Buffer
	require.NoError(t, res.Write(&buf, Wide, res.Unique()))
	assert.Equal(t, "sample1\tsample2\tsharedClonotypes_CDR3nt\tjaccard_CDR3nt\n"+
		"a\ta\t1\t1\n"+
		"a\tb\t1\t1\n"+
		"b\tb\t1\t1\n", buf.String())
	assert.Error(t, res.Write(&buf, Layout(7), nil))
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	defer shutdown()
	os.Exit(m.Run())
}
