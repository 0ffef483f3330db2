// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/realty/pkg/adapter/validation"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode parses s like the REST layer does, keeping numbers as
// json.Number values.
func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	var m map[string]any
	require.NoError(t, d.Decode(&m), "decoding %s", s)
	return m
}

func fieldsOf(t *testing.T, err error) []cerr.FieldError {
	t.Helper()
	var ce *cerr.Error
	require.True(t, errors.As(err, &ce), "expected *cerr.Error: %v", err)
	require.Equal(t, cerr.KindValidation, ce.Kind)
	return ce.Fields
}

func TestPropertyCreateValid(t *testing.T) {
	p, err := validation.PropertyCreate(decode(t, `{
		"address": "12 Main Street",
		"location": "Austin",
		"propertyType": "condo",
		"bedrooms": 3,
		"bathrooms": "2.5",
		"price": 250000,
		"status": "pending",
		"unknown": {"nested": true}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "12 Main Street", p.Address)
	assert.Equal(t, 3, *p.Bedrooms)
	assert.Equal(t, 2.5, *p.Bathrooms)
	assert.Nil(t, p.SquareFeet)
	assert.Equal(t, 250000.0, p.Price)
	assert.Equal(t, model.StatusPending, p.Status)
	assert.Empty(t, p.ID)
}

func TestPropertyCreateNegativePrice(t *testing.T) {
	_, err := validation.PropertyCreate(decode(t, `{
		"address": "12 Main Street",
		"location": "Austin",
		"propertyType": "condo",
		"price": -100
	}`))
	assert.Equal(t, []cerr.FieldError{{
		Field: "price", Reason: cerr.ReasonOutOfRange,
	}}, fieldsOf(t, err))
}

func TestPropertyCreateReportsEveryField(t *testing.T) {
	_, err := validation.PropertyCreate(decode(t, `{
		"id": "not-a-uuid",
		"address": "tiny",
		"propertyType": 7,
		"bedrooms": 2.5,
		"squareFeet": 0,
		"price": "cheap",
		"status": "haunted"
	}`))
	assert.Equal(t, []cerr.FieldError{
		{Field: "address", Reason: cerr.ReasonInvalidLength},
		{Field: "bedrooms", Reason: cerr.ReasonInvalidNumber},
		{Field: "id", Reason: cerr.ReasonInvalidFormat},
		{Field: "location", Reason: cerr.ReasonMissing},
		{Field: "price", Reason: cerr.ReasonInvalidNumber},
		{Field: "propertyType", Reason: cerr.ReasonInvalidType},
		{Field: "squareFeet", Reason: cerr.ReasonOutOfRange},
		{Field: "status", Reason: cerr.ReasonInvalidEnum},
	}, fieldsOf(t, err))
}

func TestPropertyPatch(t *testing.T) {
	pp, err := validation.PropertyPatch(decode(t, `{
		"price": 10, "status": "sold", "id": "ignored"
	}`))
	require.NoError(t, err)
	assert.Equal(t, 10.0, *pp.Price)
	assert.Equal(t, model.StatusSold, *pp.Status)
	assert.Nil(t, pp.Address)

	pp, err = validation.PropertyPatch(map[string]any{})
	require.NoError(t, err)
	assert.True(t, pp.IsEmpty())

	_, err = validation.PropertyPatch(decode(t, `{"status": "gone"}`))
	assert.Equal(t, []cerr.FieldError{{
		Field: "status", Reason: cerr.ReasonInvalidEnum,
	}}, fieldsOf(t, err))
}

func TestCashFlowValid(t *testing.T) {
	req, err := validation.CashFlow(decode(t, `{
		"purchasePrice": 300000,
		"downPayment": 60000,
		"interestRate": 0.06,
		"loanTermMonths": 360,
		"monthlyRent": 2000,
		"monthlyExpenses": 500
	}`))
	require.NoError(t, err)
	assert.Equal(t, 300000.0, req.PurchasePrice)
	assert.Equal(t, 60000.0, req.DownPaymentAmount())
	assert.Equal(t, 360, req.LoanTermMonths)
	assert.Equal(t, 500.0, req.MonthlyExpenses)
	assert.Equal(t, 1, req.Units())
}

func TestCashFlowInvalid(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		fields []cerr.FieldError
	}{
		{
			name: "empty",
			body: `{}`,
			fields: []cerr.FieldError{
				{Field: "downPayment", Reason: cerr.ReasonMissing},
				{Field: "interestRate", Reason: cerr.ReasonMissing},
				{Field: "loanTermMonths", Reason: cerr.ReasonMissing},
				{Field: "monthlyRent", Reason: cerr.ReasonMissing},
				{Field: "purchasePrice", Reason: cerr.ReasonMissing},
			},
		},
		{
			name: "down payment beyond price",
			body: `{"purchasePrice": 100, "downPayment": 101,
				"interestRate": 0.05, "loanTermMonths": 12,
				"monthlyRent": 1}`,
			fields: []cerr.FieldError{
				{Field: "downPayment", Reason: cerr.ReasonOutOfRange},
			},
		},
		{
			name: "both down payment forms",
			body: `{"purchasePrice": 100, "downPayment": 10,
				"downPaymentPercent": 0.1, "interestRate": 0.05,
				"loanTermMonths": 12, "monthlyRent": 1}`,
			fields: []cerr.FieldError{{
				Field:  "downPaymentPercent",
				Reason: cerr.ReasonMutuallyExclusive,
			}},
		},
		{
			name: "ranges",
			body: `{"purchasePrice": 0, "downPaymentPercent": 2,
				"interestRate": -0.01, "loanTermMonths": 0,
				"monthlyRent": -5, "vacancyRate": 1.5}`,
			fields: []cerr.FieldError{
				{Field: "downPaymentPercent", Reason: cerr.ReasonOutOfRange},
				{Field: "interestRate", Reason: cerr.ReasonOutOfRange},
				{Field: "loanTermMonths", Reason: cerr.ReasonOutOfRange},
				{Field: "monthlyRent", Reason: cerr.ReasonOutOfRange},
				{Field: "purchasePrice", Reason: cerr.ReasonOutOfRange},
				{Field: "vacancyRate", Reason: cerr.ReasonOutOfRange},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validation.CashFlow(decode(t, tc.body))
			assert.Equal(t, tc.fields, fieldsOf(t, err))
		})
	}
}

func TestList(t *testing.T) {
	noCursor := func(string) (*model.Cursor, error) {
		return nil, errors.New("no cursor expected")
	}
	q, err := validation.List(validation.QueryMap(map[string][]string{
		"status": {"sold"},
		"limit":  {"1"},
		"extra":  {"x"},
	}), noCursor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, *q.Filter.Status)
	assert.Equal(t, 1, q.Limit)
	assert.Nil(t, q.After)

	_, err = validation.List(map[string]any{
		"limit":    "0",
		"status":   "lost",
		"cursor":   "garbage",
		"minPrice": "10",
		"maxPrice": "5",
	}, noCursor)
	assert.Equal(t, []cerr.FieldError{
		{Field: "cursor", Reason: cerr.ReasonInvalidCursor},
		{Field: "limit", Reason: cerr.ReasonOutOfRange},
		{Field: "minPrice", Reason: cerr.ReasonOutOfRange},
		{Field: "status", Reason: cerr.ReasonInvalidEnum},
	}, fieldsOf(t, err))

	locCursor := func(string) (*model.Cursor, error) {
		return &model.Cursor{Index: model.IndexLocation, ID: "a"}, nil
	}
	_, err = validation.List(map[string]any{
		"status": "active", "cursor": "x",
	}, locCursor)
	assert.Equal(t, []cerr.FieldError{{
		Field: "cursor", Reason: cerr.ReasonInvalidCursor,
	}}, fieldsOf(t, err))
}

func TestPropertyCreateAcceptsEveryUUIDVersion(t *testing.T) {
	for _, id := range []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8", // v1
		"0190c7c2-4a5e-7cc1-9a51-2d3f6c6e8b11", // v7
		"a9b1c0f4-5d2e-4b8a-9f3c-7e6d5c4b3a21", // v4
	} {
		p, err := validation.PropertyCreate(map[string]any{
			"id":           id,
			"address":      "12 Main Street",
			"location":     "Austin",
			"propertyType": "condo",
			"price":        "100",
		})
		require.NoError(t, err, "id %s", id)
		assert.Equal(t, id, p.ID)
	}
}

func TestEmptyStringsAreValidated(t *testing.T) {
	_, err := validation.PropertyCreate(decode(t, `{
		"address": "12 Main Street",
		"location": "Austin",
		"propertyType": "condo",
		"price": 1,
		"status": ""
	}`))
	assert.Equal(t, []cerr.FieldError{{
		Field: "status", Reason: cerr.ReasonInvalidEnum,
	}}, fieldsOf(t, err))

	_, err = validation.PropertyPatch(decode(t, `{
		"status": "", "address": ""
	}`))
	assert.Equal(t, []cerr.FieldError{
		{Field: "address", Reason: cerr.ReasonInvalidLength},
		{Field: "status", Reason: cerr.ReasonInvalidEnum},
	}, fieldsOf(t, err))

	_, err = validation.List(validation.QueryMap(map[string][]string{
		"status":   {""},
		"location": {""},
	}), nil)
	assert.Equal(t, []cerr.FieldError{
		{Field: "location", Reason: cerr.ReasonInvalidLength},
		{Field: "status", Reason: cerr.ReasonInvalidEnum},
	}, fieldsOf(t, err))
}

func TestListSaturatesHugeLimit(t *testing.T) {
	q, err := validation.List(map[string]any{
		"limit": "100000000000",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, q.Limit)

	_, err = validation.List(map[string]any{"limit": "-100000000000"}, nil)
	assert.Equal(t, []cerr.FieldError{{
		Field: "limit", Reason: cerr.ReasonOutOfRange,
	}}, fieldsOf(t, err))

	_, err = validation.PropertyCreate(decode(t, `{
		"address": "12 Main Street",
		"location": "Austin",
		"propertyType": "condo",
		"price": 1,
		"squareFeet": 100000000000
	}`))
	assert.Equal(t, []cerr.FieldError{{
		Field: "squareFeet", Reason: cerr.ReasonOutOfRange,
	}}, fieldsOf(t, err))
}
