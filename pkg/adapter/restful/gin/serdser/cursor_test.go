// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serdser_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/momeni/realty/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorTokens(t *testing.T) {
	ts := time.Date(2024, 2, 29, 23, 59, 59, 999999000, time.UTC)
	for _, c := range []model.Cursor{
		{Index: model.IndexCreated, Time: ts, ID: "a"},
		{Index: model.IndexStatus, Time: ts, ID: "b"},
		{Index: model.IndexLocation, Price: 1234.56, ID: "c"},
		{Index: model.IndexLocation, Price: 0, ID: "d"},
	} {
		tok := serdser.EncodeCursor(&c)
		require.NotNil(t, tok)
		got, err := serdser.DecodeCursor(*tok)
		require.NoError(t, err, "decoding %q", *tok)
		assert.Equal(t, c, *got)
	}
	assert.Nil(t, serdser.EncodeCursor(nil))
}

func TestMalformedCursors(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	for name, tok := range map[string]string{
		"not base64":    "%%%",
		"not json":      enc([]byte("cursor")),
		"unknown index": enc([]byte(`{"i":"price","id":"x"}`)),
		"missing id":    enc([]byte(`{"i":"created","t":1}`)),
	} {
		_, err := serdser.DecodeCursor(tok)
		assert.ErrorIs(t, err, serdser.ErrMalformedCursor, name)
	}
}
