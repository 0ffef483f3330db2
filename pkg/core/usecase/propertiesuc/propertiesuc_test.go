// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesuc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/momeni/realty/internal/test/memrp"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/usecase/propertiesuc"
	"github.com/stretchr/testify/suite"
)

type PropertiesUseCaseTestSuite struct {
	suite.Suite

	Ctx   context.Context
	Store *memrp.Store
	UC    *propertiesuc.UseCase

	clock time.Time
}

func TestPropertiesUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &PropertiesUseCaseTestSuite{
		Ctx: context.Background(),
	})
}

func (puts *PropertiesUseCaseTestSuite) SetupTest() {
	puts.Store = memrp.New()
	puts.clock = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	uc, err := propertiesuc.New(
		puts.Store, memrp.NewRepo(),
		propertiesuc.WithStoreTimeout(200*time.Millisecond),
		propertiesuc.WithPageSizes(3, 5),
		propertiesuc.WithClock(puts.tick),
	)
	puts.Require().NoError(err, "instantiating properties use case")
	puts.UC = uc
}

// tick returns a strictly increasing time on each call.
func (puts *PropertiesUseCaseTestSuite) tick() time.Time {
	puts.clock = puts.clock.Add(time.Second)
	return puts.clock
}

func statusAddr(s model.PropertyStatus) *model.PropertyStatus {
	return &s
}

func stringAddr(s string) *string {
	return &s
}

func floatAddr(f float64) *float64 {
	return &f
}

func (puts *PropertiesUseCaseTestSuite) create(
	loc string, price float64, st model.PropertyStatus,
) *model.Property {
	p, err := puts.UC.Create(puts.Ctx, &model.Property{
		Address:      fmt.Sprintf("%d Main Street", 10+puts.Store.Len()),
		Location:     loc,
		PropertyType: "condo",
		Price:        price,
		Status:       st,
	})
	puts.Require().NoError(err, "creating property")
	return p
}

func (puts *PropertiesUseCaseTestSuite) TestCreateThenGet() {
	p := puts.create("Austin", 250000, "")
	puts.NotEmpty(p.ID, "id must be assigned")
	puts.Equal(model.StatusActive, p.Status, "default status")
	puts.Equal(p.CreatedAt, p.UpdatedAt, "fresh timestamps must match")

	got, err := puts.UC.Get(puts.Ctx, p.ID)
	puts.Require().NoError(err, "getting created property")
	puts.Equal(*p, *got)
}

func (puts *PropertiesUseCaseTestSuite) TestGetMissing() {
	_, err := puts.UC.Get(puts.Ctx, "no-such-id")
	puts.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (puts *PropertiesUseCaseTestSuite) TestCreateConflict() {
	p := puts.create("Austin", 250000, "")
	_, err := puts.UC.Create(puts.Ctx, &model.Property{
		ID:           p.ID,
		Address:      "34 Side Street",
		Location:     "Dallas",
		PropertyType: "house",
		Price:        1,
	})
	puts.Equal(cerr.KindConflict, cerr.KindOf(err))
	puts.Equal(1, puts.Store.Len())
}

func (puts *PropertiesUseCaseTestSuite) TestCreateDuplicateAddress() {
	p := puts.create("Austin", 250000, "")
	_, err := puts.UC.Create(puts.Ctx, &model.Property{
		Address:      p.Address,
		Location:     "Dallas",
		PropertyType: "house",
		Price:        1,
	})
	puts.Equal(cerr.KindConflict, cerr.KindOf(err))
	puts.Equal(1, puts.Store.Len())
}

func (puts *PropertiesUseCaseTestSuite) TestCreateNegativePrice() {
	_, err := puts.UC.Create(puts.Ctx, &model.Property{
		Address:      "12 Main Street",
		Location:     "Austin",
		PropertyType: "condo",
		Price:        -100,
	})
	puts.Require().Error(err)
	ce := err.(*cerr.Error)
	puts.Equal(cerr.KindValidation, ce.Kind)
	puts.Equal([]cerr.FieldError{{
		Field: "price", Reason: cerr.ReasonOutOfRange,
	}}, ce.Fields)
	puts.Zero(puts.Store.Len())
}

func (puts *PropertiesUseCaseTestSuite) TestListByStatusOrder() {
	a := puts.create("Austin", 3, model.StatusActive)
	puts.create("Austin", 2, model.StatusSold)
	b := puts.create("Dallas", 1, model.StatusActive)
	c := puts.create("Austin", 4, model.StatusActive)

	pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{
		Status: statusAddr(model.StatusActive),
	}, 0, nil)
	puts.Require().NoError(err)
	puts.Equal([]string{c.ID, b.ID, a.ID}, ids(pg.Items),
		"status index must be ordered by updatedAt descending")
	puts.Nil(pg.Next, "all items fit into the default page")
}

func (puts *PropertiesUseCaseTestSuite) TestListByLocationOrder() {
	a := puts.create("Austin", 300, "")
	b := puts.create("Austin", 100, "")
	puts.create("Dallas", 50, "")
	c := puts.create("Austin", 200, "")

	pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{
		Location: stringAddr("Austin"),
	}, 5, nil)
	puts.Require().NoError(err)
	puts.Equal([]string{b.ID, c.ID, a.ID}, ids(pg.Items),
		"location index must be ordered by price ascending")

	pg, err = puts.UC.List(puts.Ctx, model.PropertyFilter{
		Location: stringAddr("Austin"),
		MinPrice: floatAddr(150),
		MaxPrice: floatAddr(300),
	}, 5, nil)
	puts.Require().NoError(err)
	puts.Equal([]string{c.ID, a.ID}, ids(pg.Items),
		"price range bounds are inclusive")
}

func (puts *PropertiesUseCaseTestSuite) TestListEmpty() {
	pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{}, 0, nil)
	puts.Require().NoError(err)
	puts.NotNil(pg.Items)
	puts.Empty(pg.Items)
	puts.Nil(pg.Next)
}

func (puts *PropertiesUseCaseTestSuite) TestPaginationIsStable() {
	var want []string
	for i := 0; i < 7; i++ {
		p := puts.create(fmt.Sprintf("City%d", i), float64(i), "")
		want = append(want, p.ID)
	}
	var seen []string
	var after *model.Cursor
	for pages := 0; ; pages++ {
		puts.Require().Less(pages, 10, "pagination does not terminate")
		pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{}, 2, after)
		puts.Require().NoError(err)
		puts.LessOrEqual(len(pg.Items), 2)
		seen = append(seen, ids(pg.Items)...)
		if pg.Next == nil {
			break
		}
		after = pg.Next
		// new items sort after all existing ones in the created index
		puts.create("Late", 1, "")
	}
	puts.Equal(want, seen[:len(want)], "items skipped or duplicated")
	puts.Equal(len(seen), len(uniq(seen)), "duplicated items")
}

func (puts *PropertiesUseCaseTestSuite) TestListValidation() {
	for _, tc := range []struct {
		name   string
		f      model.PropertyFilter
		limit  int
		after  *model.Cursor
		fields []cerr.FieldError
	}{
		{
			name:  "negative limit",
			limit: -1,
			fields: []cerr.FieldError{{
				Field: "limit", Reason: cerr.ReasonOutOfRange,
			}},
		},
		{
			name: "inverted price range",
			f: model.PropertyFilter{
				MinPrice: floatAddr(10), MaxPrice: floatAddr(5),
			},
			fields: []cerr.FieldError{{
				Field: "minPrice", Reason: cerr.ReasonOutOfRange,
			}},
		},
		{
			name: "unknown status",
			f:    model.PropertyFilter{Status: statusAddr("haunted")},
			fields: []cerr.FieldError{{
				Field: "status", Reason: cerr.ReasonInvalidEnum,
			}},
		},
		{
			name: "cursor of another index",
			f:    model.PropertyFilter{Location: stringAddr("Austin")},
			after: &model.Cursor{
				Index: model.IndexStatus, ID: "x",
			},
			fields: []cerr.FieldError{{
				Field: "cursor", Reason: cerr.ReasonInvalidCursor,
			}},
		},
	} {
		puts.Run(tc.name, func() {
			_, err := puts.UC.List(puts.Ctx, tc.f, tc.limit, tc.after)
			puts.Require().Error(err)
			ce := err.(*cerr.Error)
			puts.Equal(cerr.KindValidation, ce.Kind)
			puts.Equal(tc.fields, ce.Fields)
		})
	}
}

func (puts *PropertiesUseCaseTestSuite) TestListClampsLimit() {
	for i := 0; i < 7; i++ {
		puts.create("Austin", float64(i), "")
	}
	pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{}, 100, nil)
	puts.Require().NoError(err)
	puts.Len(pg.Items, 5, "limit must be clamped to the max page size")
	puts.NotNil(pg.Next)
}

func (puts *PropertiesUseCaseTestSuite) TestUpdate() {
	p := puts.create("Austin", 100, "")
	pg, err := puts.UC.List(puts.Ctx, model.PropertyFilter{
		Status: statusAddr(model.StatusPending),
	}, 0, nil)
	puts.Require().NoError(err)
	puts.Empty(pg.Items)

	u, err := puts.UC.Update(puts.Ctx, p.ID, &model.PropertyPatch{
		Status: statusAddr(model.StatusPending),
		Price:  floatAddr(120),
	})
	puts.Require().NoError(err)
	puts.Equal(model.StatusPending, u.Status)
	puts.Equal(120.0, u.Price)
	puts.Equal(p.Address, u.Address, "untouched fields must be kept")
	puts.Equal(p.CreatedAt, u.CreatedAt)
	puts.True(u.UpdatedAt.After(p.UpdatedAt), "updatedAt not refreshed")

	pg, err = puts.UC.List(puts.Ctx, model.PropertyFilter{
		Status: statusAddr(model.StatusPending),
	}, 0, nil)
	puts.Require().NoError(err)
	puts.Equal([]string{p.ID}, ids(pg.Items))
}

func (puts *PropertiesUseCaseTestSuite) TestEmptyUpdateRefreshesTimestamp() {
	p := puts.create("Austin", 100, "")
	u, err := puts.UC.Update(puts.Ctx, p.ID, &model.PropertyPatch{})
	puts.Require().NoError(err)
	puts.True(u.UpdatedAt.After(p.UpdatedAt))
	puts.Equal(p.Price, u.Price)
}

func (puts *PropertiesUseCaseTestSuite) TestUpdateMissing() {
	_, err := puts.UC.Update(puts.Ctx, "missing", &model.PropertyPatch{
		Price: floatAddr(1),
	})
	puts.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (puts *PropertiesUseCaseTestSuite) TestSlowStoreTimesOut() {
	puts.Store.SetDelay(time.Second)
	_, err := puts.UC.Get(puts.Ctx, "any")
	puts.Equal(cerr.KindTimeout, cerr.KindOf(err))
}

func ids(items []model.Property) []string {
	s := make([]string, 0, len(items))
	for _, p := range items {
		s = append(s, p.ID)
	}
	return s
}

func uniq(s []string) map[string]struct{} {
	m := make(map[string]struct{}, len(s))
	for _, v := range s {
		m[v] = struct{}{}
	}
	return m
}
