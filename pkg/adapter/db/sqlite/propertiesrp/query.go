// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesrp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/momeni/realty/pkg/adapter/db/sqlite"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
)

type sProperty struct {
	ID        string `db:"id"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`

	Address      string          `db:"address"`
	Location     string          `db:"location"`
	PropertyType string          `db:"property_type"`
	Bedrooms     sql.NullInt64   `db:"bedrooms"`
	Bathrooms    sql.NullFloat64 `db:"bathrooms"`
	SquareFeet   sql.NullInt64   `db:"square_feet"`
	Description  sql.NullString  `db:"description"`

	Price  float64 `db:"price"`
	Status string  `db:"status"`
}

const columns = `id, created_at, updated_at, address, location,
    property_type, bedrooms, bathrooms, square_feet, description,
    price, status`

func (sp *sProperty) Model() *model.Property {
	p := &model.Property{
		ID:           sp.ID,
		CreatedAt:    time.UnixMicro(sp.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMicro(sp.UpdatedAt).UTC(),
		Address:      sp.Address,
		Location:     sp.Location,
		PropertyType: sp.PropertyType,
		Price:        sp.Price,
		Status:       model.PropertyStatus(sp.Status),
	}
	if sp.Bedrooms.Valid {
		n := int(sp.Bedrooms.Int64)
		p.Bedrooms = &n
	}
	if sp.Bathrooms.Valid {
		p.Bathrooms = &sp.Bathrooms.Float64
	}
	if sp.SquareFeet.Valid {
		n := int(sp.SquareFeet.Int64)
		p.SquareFeet = &n
	}
	if sp.Description.Valid {
		p.Description = &sp.Description.String
	}
	return p
}

func args(p *model.Property) []any {
	return []any{
		p.ID, micros(p.CreatedAt), micros(p.UpdatedAt),
		p.Address, p.Location, p.PropertyType,
		nullable(p.Bedrooms), nullable(p.Bathrooms),
		nullable(p.SquareFeet), nullable(p.Description),
		p.Price, string(p.Status),
	}
}

func micros(t time.Time) int64 {
	return model.NormalizeTime(t).UnixMicro()
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Create inserts the p property. A conflicting id or address leaves the
// existing row untouched and no row is affected, which is reported as a
// cerr.Conflict error.
func Create[Q sqlite.Queryer](ctx context.Context, q Q, p *model.Property) error {
	n, err := q.Exec(ctx, `INSERT INTO properties (`+columns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`, args(p)...)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if n != 0 {
		return nil
	}
	if _, err := Get(ctx, q, p.ID); err == nil {
		return cerr.Conflict(fmt.Errorf("property %q exists", p.ID))
	}
	if err := addressFree(ctx, q, p.Address, p.ID); err != nil {
		return err
	}
	return cerr.Conflict(fmt.Errorf("property %q was not inserted", p.ID))
}

// addressFree fails with a cerr.Conflict error if a property other
// than id is located at addr.
func addressFree[Q sqlite.Queryer](ctx context.Context, q Q, addr, id string) error {
	var owner string
	err := sqlx.GetContext(
		ctx, q.SQLX(), &owner,
		`SELECT id FROM properties WHERE address = ? AND id <> ? LIMIT 1`,
		addr, id,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("query: %w", err)
	default:
		return cerr.Conflict(fmt.Errorf(
			"address %q is taken by property %q", addr, owner,
		))
	}
}

func Get[Q sqlite.Queryer](ctx context.Context, q Q, id string) (*model.Property, error) {
	var sp sProperty
	err := sqlx.GetContext(
		ctx, q.SQLX(), &sp,
		`SELECT `+columns+` FROM properties WHERE id = ?`, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.NotFound(err)
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return sp.Model(), nil
}

// List runs a keyset query on the index which serves f. One extra row
// is fetched in order to find out if a next page exists.
func List[Q sqlite.Queryer](
	ctx context.Context, q Q, f model.PropertyFilter, pr model.PageRequest,
) (*model.Page, error) {
	var conds []string
	var vals []any
	where := func(cond string, v ...any) {
		conds = append(conds, cond)
		vals = append(vals, v...)
	}
	if f.Status != nil {
		where("status = ?", string(*f.Status))
	}
	if f.Location != nil {
		where("location = ?", *f.Location)
	}
	if f.MinPrice != nil {
		where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where("price <= ?", *f.MaxPrice)
	}
	idx := f.Index()
	after := pr.After
	var order string
	switch idx {
	case model.IndexStatus:
		if after != nil {
			where("(updated_at, id) < (?, ?)", micros(after.Time), after.ID)
		}
		order = "updated_at DESC, id DESC"
	case model.IndexLocation:
		if after != nil {
			where("(price, id) > (?, ?)", after.Price, after.ID)
		}
		order = "price, id"
	default:
		if after != nil {
			where("(created_at, id) > (?, ?)", micros(after.Time), after.ID)
		}
		order = "created_at, id"
	}
	stmt := `SELECT ` + columns + ` FROM properties`
	if conds != nil {
		stmt += ` WHERE ` + strings.Join(conds, " AND ")
	}
	stmt += ` ORDER BY ` + order + ` LIMIT ?`
	vals = append(vals, pr.Limit+1)

	var sps []sProperty
	if err := sqlx.SelectContext(ctx, q.SQLX(), &sps, stmt, vals...); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	items := make([]model.Property, 0, len(sps))
	for i := range sps {
		items = append(items, *sps[i].Model())
	}
	return model.NewPage(idx, items, pr.Limit), nil
}

// Update reads the id row, applies pp on it, and writes back all of
// its mutable columns. SQLite serializes writers, so running it in a
// transaction is enough to keep the read and write atomic.
func Update(
	ctx context.Context, tx *sqlite.Tx, id string,
	pp *model.PropertyPatch, now time.Time,
) (*model.Property, error) {
	p, err := Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if pp.Address != nil {
		if err := addressFree(ctx, tx, *pp.Address, id); err != nil {
			return nil, err
		}
	}
	pp.Apply(p, now)
	vals := args(p)
	n, err := tx.Exec(ctx, `UPDATE properties SET
    updated_at = ?, address = ?, location = ?, property_type = ?,
    bedrooms = ?, bathrooms = ?, square_feet = ?, description = ?,
    price = ?, status = ?
WHERE id = ?`, append(vals[2:], p.ID)...)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return p, nil
}

// Probe checks that the properties table can be queried.
func Probe[Q sqlite.Queryer](ctx context.Context, q Q) error {
	var n int
	err := sqlx.GetContext(
		ctx, q.SQLX(), &n,
		`SELECT count(*) FROM (SELECT 1 FROM properties LIMIT 1)`,
	)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	return nil
}
