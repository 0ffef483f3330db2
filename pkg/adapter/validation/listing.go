// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation

import (
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
)

type listing struct {
	Status   *string  `json:"status" validate:"omitnil,oneof=active pending sold archived"`
	Location *string  `json:"location" validate:"omitnil,min=1,max=100"`
	MinPrice *float64 `json:"minPrice" validate:"omitnil,gte=0"`
	MaxPrice *float64 `json:"maxPrice" validate:"omitnil,gte=0"`
	Limit    *int     `json:"limit" validate:"omitnil,gte=1"`
}

// ListQuery is a validated properties listing request. A zero Limit
// asks for the default page size.
type ListQuery struct {
	Filter model.PropertyFilter
	Limit  int
	After  *model.Cursor
}

// CursorDecoder parses an opaque cursor token.
type CursorDecoder func(token string) (*model.Cursor, error)

// List validates the raw listing query parameters. The cursor token is
// parsed by the dec decoder and must belong to the index which serves
// the given filters. A limit beyond the hard cap is accepted here and
// clamped by the use case, including values beyond the int32 range.
func List(raw map[string]any, dec CursorDecoder) (*ListQuery, error) {
	r := newReader(raw)
	l := &listing{
		Status:   r.str("status"),
		Location: r.str("location"),
		MinPrice: r.float("minPrice"),
		MaxPrice: r.float("maxPrice"),
		Limit:    r.saturated("limit"),
	}
	if l.MinPrice != nil && l.MaxPrice != nil && *l.MinPrice > *l.MaxPrice {
		r.fail("minPrice", cerr.ReasonOutOfRange)
	}
	q := &ListQuery{}
	if tok := r.str("cursor"); tok != nil && *tok != "" {
		c, err := dec(*tok)
		if err != nil {
			r.fail("cursor", cerr.ReasonInvalidCursor)
		}
		q.After = c
	}
	if err := check(r, l); err != nil {
		return nil, err
	}
	if l.Status != nil {
		st := model.PropertyStatus(*l.Status)
		q.Filter.Status = &st
	}
	q.Filter.Location = l.Location
	q.Filter.MinPrice = l.MinPrice
	q.Filter.MaxPrice = l.MaxPrice
	if l.Limit != nil {
		q.Limit = *l.Limit
	}
	if q.After != nil && q.After.Index != q.Filter.Index() {
		return nil, cerr.Validation(cerr.FieldError{
			Field: "cursor", Reason: cerr.ReasonInvalidCursor,
		})
	}
	return q, nil
}

// QueryMap converts the first value of each query parameter into the
// raw field map which List expects.
func QueryMap(query map[string][]string) map[string]any {
	m := make(map[string]any, len(query))
	for k, vs := range query {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m
}
