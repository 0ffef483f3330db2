// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/realty/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemVerText(t *testing.T) {
	cases := map[string]model.SemVer{
		"1":      {1, 0, 0},
		"1.2":    {1, 2, 0},
		"1.2.3":  {1, 2, 3},
		"10.0.7": {10, 0, 7},
	}
	for text, expected := range cases {
		var sv model.SemVer
		require.NoError(t, sv.UnmarshalText([]byte(text)), text)
		assert.Equal(t, expected, sv)
	}
	sv := model.SemVer{4, 5, 6}
	for _, text := range []string{"", "1.2.3.4", "1.x", "-1.0.0"} {
		assert.Error(t, sv.UnmarshalText([]byte(text)), text)
	}
	assert.Equal(t, model.SemVer{4, 5, 6}, sv)
	b, err := sv.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "4.5.6", string(b))
}

func TestSemVerCompatibleWith(t *testing.T) {
	supported := model.SemVer{1, 2, 0}
	assert.NoError(t, model.SemVer{1, 0, 9}.CompatibleWith(supported))
	assert.NoError(t, model.SemVer{1, 2, 3}.CompatibleWith(supported))
	assert.ErrorIs(t,
		model.SemVer{1, 3, 0}.CompatibleWith(supported),
		model.ErrIncompatibleVersion,
	)
	assert.ErrorIs(t,
		model.SemVer{2, 0, 0}.CompatibleWith(supported),
		model.ErrIncompatibleVersion,
	)
}
