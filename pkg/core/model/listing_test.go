// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/momeni/realty/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

func TestFilterIndex(t *testing.T) {
	st, loc := model.StatusSold, "Austin"
	assert.Equal(t, model.IndexCreated, model.PropertyFilter{}.Index())
	assert.Equal(t, model.IndexLocation,
		model.PropertyFilter{Location: &loc}.Index())
	assert.Equal(t, model.IndexStatus,
		model.PropertyFilter{Status: &st, Location: &loc}.Index(),
		"status takes precedence over location")
}

func TestIndexOrdering(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &model.Property{ID: "a", CreatedAt: t0, UpdatedAt: t0, Price: 5}
	b := &model.Property{
		ID: "b", CreatedAt: t0, UpdatedAt: t0.Add(time.Second), Price: 5,
	}
	c := &model.Property{
		ID: "c", CreatedAt: t0.Add(time.Second), UpdatedAt: t0, Price: 1,
	}

	assert.True(t, model.IndexCreated.Precedes(a, b), "id breaks ties")
	assert.True(t, model.IndexCreated.Precedes(b, c))
	assert.True(t, model.IndexStatus.Precedes(b, a), "newest first")
	assert.True(t, model.IndexStatus.Precedes(c, a), "id desc breaks ties")
	assert.True(t, model.IndexLocation.Precedes(c, a), "cheapest first")
	assert.True(t, model.IndexLocation.Precedes(a, b), "id breaks ties")
	assert.False(t, model.IndexLocation.Precedes(a, a))
}

func TestCursorFollows(t *testing.T) {
	a := &model.Property{ID: "a", Price: 10}
	b := &model.Property{ID: "b", Price: 10}
	cur := model.CursorAt(model.IndexLocation, a)
	assert.False(t, cur.Follows(a), "cursor item is excluded")
	assert.True(t, cur.Follows(b))
	assert.False(t, cur.Follows(&model.Property{ID: "z", Price: 9}))
}

func TestNewPage(t *testing.T) {
	items := []model.Property{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	pg := model.NewPage(model.IndexCreated, items, 2)
	assert.Len(t, pg.Items, 2)
	if assert.NotNil(t, pg.Next) {
		assert.Equal(t, "b", pg.Next.ID)
	}
	pg = model.NewPage(model.IndexCreated, items, 3)
	assert.Nil(t, pg.Next)
	pg = model.NewPage(model.IndexCreated, nil, 3)
	assert.NotNil(t, pg.Items)
}

func TestPatchApply(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	beds := 3
	p := &model.Property{ID: "a", CreatedAt: t0, UpdatedAt: t0, Price: 5}
	pp := &model.PropertyPatch{Bedrooms: &beds}
	pp.Apply(p, t0.Add(-time.Hour))
	assert.Equal(t, t0, p.UpdatedAt, "updatedAt may not precede createdAt")
	beds = 4
	assert.Equal(t, 3, *p.Bedrooms, "patch values may not be aliased")
	assert.Equal(t, 5.0, p.Price)
	assert.True(t, (&model.PropertyPatch{}).IsEmpty())
	assert.False(t, pp.IsEmpty())
}
