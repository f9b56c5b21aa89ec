// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package downsample

import (
	"encoding/json"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Config
		name     string
	}{
		{`{}`, Config{}, "none"},
		{`{"type":"none","valueChooser":"max","n":5}`, Config{}, "none"},
		{`{"type":"top","n":100}`, Config{Strategy: Top, N: 100}, "top100"},
		{`{"type":"cumtop","n":80}`, Config{Strategy: CumTop, N: 80}, "cumtop80"},
		{`{"type":"hypergeometric"}`, Config{Strategy: Hypergeometric, Chooser: Auto}, "hypergeometric-auto"},
		{`{"type":"hypergeometric","valueChooser":"min","n":7}`, Config{Strategy: Hypergeometric, Chooser: Min}, "hypergeometric-min"},
		{`{"type":"hypergeometric","valueChooser":"fixed","n":5000}`, Config{Strategy: Hypergeometric, Chooser: Fixed, N: 5000}, "hypergeometric-fixed5000"},
	}
	for _, test := range tests {
		var c Config
		require.NoError(t, json.Unmarshal([]byte(test.input), &c), test.input)
		assert.Equal(t, test.expected, c, test.input)
		assert.Equal(t, test.name, c.String())

		data, err := json.Marshal(c)
		require.NoError(t, err)
		var back Config
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, c, back)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  errors.Kind
	}{
		{`{"type":"random"}`, errors.NotSupported},
		{`{"type":"hypergeometric","valueChooser":"median"}`, errors.NotSupported},
		{`{"type":"top"}`, errors.Invalid},
		{`{"type":"top","n":2.5}`, errors.Invalid},
		{`{"type":"cumtop","n":150}`, errors.Invalid},
		{`{"type":"hypergeometric","valueChooser":"fixed"}`, errors.Invalid},
	}
	for _, test := range tests {
		var c Config
		err := json.Unmarshal([]byte(test.input), &c)
		require.Error(t, err, test.input)
		assert.True(t, errors.Is(test.kind, err), "%s: got %v", test.input, err)
	}

	_, err := NewConfig(Strategy(17), Auto, 0)
	assert.True(t, errors.Is(errors.NotSupported, err))
	_, err = NewConfig(Hypergeometric, Chooser(17), 0)
	assert.True(t, errors.Is(errors.NotSupported, err))
}
