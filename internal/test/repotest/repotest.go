// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repotest is an internal helper for the test packages.
// It provides a test suite which checks a repo.Properties
// implementation against the behavior which all repositories must
// share, so the PostgreSQL, SQLite, and in-memory repositories return
// identical pages and cursors for the same data.
//
// A concrete test embeds the PropertiesSuite, assigns its Pool and
// Repo fields, and provides a Reset hook which empties the store
// before each test.
package repotest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

// PropertiesSuite is the shared properties repository test suite.
type PropertiesSuite struct {
	suite.Suite

	Ctx   context.Context
	Pool  repo.Pool
	Repo  repo.Properties
	Reset func() error

	base time.Time
	seq  int
}

// SetupTest empties the store using the Reset hook.
func (ps *PropertiesSuite) SetupTest() {
	if ps.Reset != nil {
		ps.Require().NoError(ps.Reset(), "resetting the store")
	}
	ps.base = time.Date(2024, 5, 1, 8, 30, 0, 123456000, time.UTC)
	ps.seq = 0
}

func (ps *PropertiesSuite) conn(f func(q repo.PropertiesConnQueryer) error) error {
	return ps.Pool.Conn(ps.Ctx, func(ctx context.Context, c repo.Conn) error {
		return f(ps.Repo.Conn(c))
	})
}

func (ps *PropertiesSuite) tx(f func(q repo.PropertiesTxQueryer) error) error {
	return ps.Pool.Conn(ps.Ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return f(ps.Repo.Tx(tx))
		})
	})
}

// property returns a property whose timestamps increase by one minute
// on every call.
func (ps *PropertiesSuite) property(
	loc string, price float64, st model.PropertyStatus,
) *model.Property {
	ps.seq++
	ts := ps.base.Add(time.Duration(ps.seq) * time.Minute)
	beds := ps.seq % 4
	return &model.Property{
		ID:           uuid.NewString(),
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Address:      fmt.Sprintf("%d Baker Street", 200+ps.seq),
		Location:     loc,
		PropertyType: "townhouse",
		Bedrooms:     &beds,
		Price:        price,
		Status:       st,
	}
}

func (ps *PropertiesSuite) insert(props ...*model.Property) {
	err := ps.conn(func(q repo.PropertiesConnQueryer) error {
		for _, p := range props {
			if err := q.Create(ps.Ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	ps.Require().NoError(err, "inserting properties")
}

// collect pages through the f filter results, returning their ids.
func (ps *PropertiesSuite) collect(f model.PropertyFilter, limit int) []string {
	return ps.scan(f, limit, nil)
}

// scan is like collect, but calls the between function (if not nil)
// after each page which has a next cursor.
func (ps *PropertiesSuite) scan(
	f model.PropertyFilter, limit int, between func(page int),
) []string {
	var ids []string
	var after *model.Cursor
	for pages := 0; ; pages++ {
		ps.Require().Less(pages, 100, "too many pages")
		var pg *model.Page
		err := ps.conn(func(q repo.PropertiesConnQueryer) (err error) {
			pg, err = q.List(ps.Ctx, f, model.PageRequest{
				Limit: limit, After: after,
			})
			return err
		})
		ps.Require().NoError(err, "listing properties")
		ps.Require().LessOrEqual(len(pg.Items), limit)
		for _, p := range pg.Items {
			ids = append(ids, p.ID)
		}
		if pg.Next == nil {
			return ids
		}
		ps.Equal(f.Index(), pg.Next.Index)
		after = pg.Next
		if between != nil {
			between(pages)
		}
	}
}

func ids(props ...*model.Property) []string {
	s := make([]string, 0, len(props))
	for _, p := range props {
		s = append(s, p.ID)
	}
	return s
}

func (ps *PropertiesSuite) TestCreateAndGet() {
	p := ps.property("Austin", 250000, model.StatusActive)
	desc := "corner lot"
	p.Description = &desc
	ps.insert(p)
	var got *model.Property
	err := ps.conn(func(q repo.PropertiesConnQueryer) (err error) {
		got, err = q.Get(ps.Ctx, p.ID)
		return err
	})
	ps.Require().NoError(err)
	ps.Equal(p, got)
}

func (ps *PropertiesSuite) TestCreateConflictKeepsOriginal() {
	p := ps.property("Austin", 250000, model.StatusActive)
	ps.insert(p)
	dup := *p
	dup.Price = 1
	err := ps.conn(func(q repo.PropertiesConnQueryer) error {
		return q.Create(ps.Ctx, &dup)
	})
	ps.Equal(cerr.KindConflict, cerr.KindOf(err))
	err = ps.conn(func(q repo.PropertiesConnQueryer) error {
		got, err := q.Get(ps.Ctx, p.ID)
		if err == nil {
			ps.Equal(250000.0, got.Price)
		}
		return err
	})
	ps.NoError(err)
}

func (ps *PropertiesSuite) TestGetMissing() {
	err := ps.conn(func(q repo.PropertiesConnQueryer) error {
		_, err := q.Get(ps.Ctx, uuid.NewString())
		return err
	})
	ps.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (ps *PropertiesSuite) TestListCreatedOrder() {
	a := ps.property("Austin", 300, model.StatusActive)
	b := ps.property("Boston", 100, model.StatusSold)
	c := ps.property("Austin", 200, model.StatusPending)
	d := ps.property("Denver", 400, model.StatusActive)
	ps.insert(d, b, a, c)
	ps.Equal(ids(a, b, c, d), ps.collect(model.PropertyFilter{}, 3))
	ps.Equal(ids(a, b, c, d), ps.collect(model.PropertyFilter{}, 1))
}

func (ps *PropertiesSuite) TestListStatusOrder() {
	a := ps.property("Austin", 300, model.StatusActive)
	b := ps.property("Boston", 100, model.StatusSold)
	c := ps.property("Austin", 200, model.StatusActive)
	d := ps.property("Denver", 400, model.StatusActive)
	c.UpdatedAt = d.UpdatedAt // tie broken by descending id
	ps.insert(a, b, c, d)
	st := model.StatusActive
	want := ids(d, c)
	if c.ID > d.ID {
		want = ids(c, d)
	}
	want = append(want, a.ID)
	ps.Equal(want, ps.collect(model.PropertyFilter{Status: &st}, 2))
}

func (ps *PropertiesSuite) TestListLocationOrderWithPriceRange() {
	a := ps.property("Austin", 300, model.StatusActive)
	b := ps.property("Austin", 100, model.StatusSold)
	c := ps.property("Austin", 200, model.StatusPending)
	d := ps.property("Austin", 900, model.StatusActive)
	e := ps.property("Boston", 150, model.StatusActive)
	ps.insert(a, b, c, d, e)
	loc := "Austin"
	ps.Equal(ids(b, c, a, d), ps.collect(model.PropertyFilter{Location: &loc}, 2))
	lo, hi := 150.0, 300.0
	ps.Equal(ids(c, a), ps.collect(model.PropertyFilter{
		Location: &loc, MinPrice: &lo, MaxPrice: &hi,
	}, 5))
	ps.Equal(ids(a, c, e), ps.collect(model.PropertyFilter{
		MinPrice: &lo, MaxPrice: &hi,
	}, 2))
}

func (ps *PropertiesSuite) TestListEmpty() {
	var pg *model.Page
	err := ps.conn(func(q repo.PropertiesConnQueryer) (err error) {
		pg, err = q.List(ps.Ctx, model.PropertyFilter{}, model.PageRequest{
			Limit: 10,
		})
		return err
	})
	ps.Require().NoError(err)
	ps.NotNil(pg.Items)
	ps.Empty(pg.Items)
	ps.Nil(pg.Next)
}

func (ps *PropertiesSuite) TestUpdate() {
	p := ps.property("Austin", 300, model.StatusActive)
	ps.insert(p)
	price := 275.5
	st := model.StatusPending
	now := p.CreatedAt.Add(time.Hour)
	var got *model.Property
	err := ps.tx(func(q repo.PropertiesTxQueryer) (err error) {
		got, err = q.Update(ps.Ctx, p.ID, &model.PropertyPatch{
			Price: &price, Status: &st,
		}, now)
		return err
	})
	ps.Require().NoError(err)
	ps.Equal(price, got.Price)
	ps.Equal(st, got.Status)
	ps.Equal(now, got.UpdatedAt)
	ps.Equal(p.CreatedAt, got.CreatedAt)
	ps.Equal(p.Address, got.Address)

	err = ps.conn(func(q repo.PropertiesConnQueryer) error {
		stored, err := q.Get(ps.Ctx, p.ID)
		if err == nil {
			ps.Equal(got, stored)
		}
		return err
	})
	ps.NoError(err)
}

func (ps *PropertiesSuite) TestUpdateMissing() {
	err := ps.tx(func(q repo.PropertiesTxQueryer) error {
		_, err := q.Update(
			ps.Ctx, uuid.NewString(), &model.PropertyPatch{}, ps.base,
		)
		return err
	})
	ps.Equal(cerr.KindNotFound, cerr.KindOf(err))
}

func (ps *PropertiesSuite) TestProbe() {
	err := ps.conn(func(q repo.PropertiesConnQueryer) error {
		return q.Probe(ps.Ctx)
	})
	ps.NoError(err)
}

func (ps *PropertiesSuite) TestCreateDuplicateAddress() {
	p := ps.property("Austin", 250000, model.StatusActive)
	ps.insert(p)
	dup := ps.property("Boston", 1, model.StatusSold)
	dup.Address = p.Address
	err := ps.conn(func(q repo.PropertiesConnQueryer) error {
		return q.Create(ps.Ctx, dup)
	})
	ps.Equal(cerr.KindConflict, cerr.KindOf(err))
	ps.Equal(ids(p), ps.collect(model.PropertyFilter{}, 10))
}

func (ps *PropertiesSuite) TestUpdateToTakenAddress() {
	a := ps.property("Austin", 300, model.StatusActive)
	b := ps.property("Austin", 400, model.StatusActive)
	ps.insert(a, b)
	err := ps.tx(func(q repo.PropertiesTxQueryer) error {
		_, err := q.Update(ps.Ctx, b.ID, &model.PropertyPatch{
			Address: &a.Address,
		}, b.UpdatedAt.Add(time.Minute))
		return err
	})
	ps.Equal(cerr.KindConflict, cerr.KindOf(err))

	price := 450.0
	var got *model.Property
	err = ps.tx(func(q repo.PropertiesTxQueryer) (err error) {
		got, err = q.Update(ps.Ctx, b.ID, &model.PropertyPatch{
			Address: &b.Address, Price: &price,
		}, b.UpdatedAt.Add(time.Minute))
		return err
	})
	ps.Require().NoError(err, "keeping the own address must be allowed")
	ps.Equal(b.Address, got.Address)
	ps.Equal(price, got.Price)
}

// assertStableScan checks that every id of want is seen exactly once
// while pages of f are fetched and late() properties are inserted
// between them.
func (ps *PropertiesSuite) assertStableScan(
	f model.PropertyFilter, want []string, late func(page int) *model.Property,
) {
	got := ps.scan(f, 2, func(page int) {
		ps.insert(late(page))
	})
	seen := make(map[string]int, len(got))
	for _, id := range got {
		seen[id]++
	}
	for id, n := range seen {
		ps.Equal(1, n, "id %s is duplicated", id)
	}
	for _, id := range want {
		ps.Contains(seen, id, "id %s is skipped", id)
	}
}

func (ps *PropertiesSuite) TestStatusCursorSurvivesInserts() {
	var want []string
	for i := 0; i < 7; i++ {
		p := ps.property("Austin", float64(100+i), model.StatusActive)
		ps.insert(p)
		want = append(want, p.ID)
	}
	st := model.StatusActive
	ps.assertStableScan(model.PropertyFilter{Status: &st}, want,
		func(page int) *model.Property {
			p := ps.property("Boston", 1, model.StatusActive)
			if page%2 == 1 {
				// sorts after every original item
				p.CreatedAt = ps.base
				p.UpdatedAt = ps.base
			}
			return p
		},
	)
}

func (ps *PropertiesSuite) TestLocationCursorSurvivesInserts() {
	var want []string
	for i := 0; i < 7; i++ {
		p := ps.property("Austin", float64(100*(i+1)), model.StatusActive)
		ps.insert(p)
		want = append(want, p.ID)
	}
	loc := "Austin"
	ps.assertStableScan(model.PropertyFilter{Location: &loc}, want,
		func(page int) *model.Property {
			price := 50.0 // before the cursor
			if page%2 == 1 {
				price = 10000
			}
			return ps.property("Austin", price, model.StatusActive)
		},
	)
}
