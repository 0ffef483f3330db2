// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serdser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/realty/pkg/core/model"
)

// ErrMalformedCursor indicates that a cursor token was not produced by
// EncodeCursor.
var ErrMalformedCursor = errors.New("malformed cursor")

// rawCursor is the JSON form of a cursor. Timestamps are kept as unix
// microseconds, which is the precision of the persisted timestamps.
type rawCursor struct {
	Index string  `json:"i"`
	Time  int64   `json:"t,omitempty"`
	Price float64 `json:"p,omitempty"`
	ID    string  `json:"id"`
}

// EncodeCursor returns the opaque token of the c cursor, or nil if c
// is nil, so it may be used as the nextCursor field directly.
func EncodeCursor(c *model.Cursor) *string {
	if c == nil {
		return nil
	}
	rc := rawCursor{Index: string(c.Index), Price: c.Price, ID: c.ID}
	if !c.Time.IsZero() {
		rc.Time = c.Time.UnixMicro()
	}
	b, err := json.Marshal(rc)
	if err != nil {
		panic(fmt.Sprintf("marshaling cursor: %v", err))
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return &s
}

// DecodeCursor parses a token which was returned by EncodeCursor.
func DecodeCursor(token string) (*model.Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCursor, err)
	}
	var rc rawCursor
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCursor, err)
	}
	idx := model.PropertyIndex(rc.Index)
	switch idx {
	case model.IndexCreated, model.IndexStatus, model.IndexLocation:
	default:
		return nil, fmt.Errorf("%w: unknown index", ErrMalformedCursor)
	}
	if rc.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedCursor)
	}
	c := &model.Cursor{Index: idx, Price: rc.Price, ID: rc.ID}
	if rc.Time != 0 {
		c.Time = time.UnixMicro(rc.Time).UTC()
	}
	return c, nil
}
