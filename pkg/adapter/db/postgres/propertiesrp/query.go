// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/realty/pkg/adapter/db/postgres"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gProperty struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	Address      string
	Location     string
	PropertyType string
	Bedrooms     *int
	Bathrooms    *float64
	SquareFeet   *int
	Description  *string

	Price  float64
	Status string
}

func (gp *gProperty) TableName() string {
	return "properties"
}

func (gp *gProperty) Model() *model.Property {
	return &model.Property{
		ID:           gp.ID.String(),
		CreatedAt:    model.NormalizeTime(gp.CreatedAt),
		UpdatedAt:    model.NormalizeTime(gp.UpdatedAt),
		Address:      gp.Address,
		Location:     gp.Location,
		PropertyType: gp.PropertyType,
		Bedrooms:     gp.Bedrooms,
		Bathrooms:    gp.Bathrooms,
		SquareFeet:   gp.SquareFeet,
		Description:  gp.Description,
		Price:        gp.Price,
		Status:       model.PropertyStatus(gp.Status),
	}
}

func fromModel(id uuid.UUID, p *model.Property) *gProperty {
	return &gProperty{
		ID:           id,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Address:      p.Address,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		SquareFeet:   p.SquareFeet,
		Description:  p.Description,
		Price:        p.Price,
		Status:       string(p.Status),
	}
}

// Create inserts the p property. The id column is a uuid, so ids which
// are not UUIDs are rejected before reaching the database. Duplicate
// ids and addresses are reported as cerr.Conflict errors.
func Create[Q postgres.Queryer](ctx context.Context, q Q, p *model.Property) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return cerr.BadRequest(fmt.Errorf("parsing id: %w", err))
	}
	gdb := q.GORM(ctx).Create(fromModel(id, p))
	if err := gdb.Error; err != nil {
		if cErr := conflict(err, p); cErr != nil {
			return cErr
		}
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, id string) (*model.Property, error) {
	return get(q.GORM(ctx), id)
}

func get(gdb *gorm.DB, id string) (*model.Property, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, cerr.NotFound(fmt.Errorf("parsing id: %w", err))
	}
	var gp gProperty
	gdb = gdb.Take(&gp, "id = ?", pid)
	if err := gdb.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cerr.NotFound(err)
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return gp.Model(), nil
}

// List runs a keyset query on the index which serves f. One extra row
// is fetched in order to find out if a next page exists.
func List[Q postgres.Queryer](
	ctx context.Context, q Q, f model.PropertyFilter, pr model.PageRequest,
) (*model.Page, error) {
	gdb := q.GORM(ctx).Model(&gProperty{})
	if f.Status != nil {
		gdb = gdb.Where("status = ?", string(*f.Status))
	}
	if f.Location != nil {
		gdb = gdb.Where("location = ?", *f.Location)
	}
	if f.MinPrice != nil {
		gdb = gdb.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		gdb = gdb.Where("price <= ?", *f.MaxPrice)
	}
	idx := f.Index()
	after := pr.After
	switch idx {
	case model.IndexStatus:
		if after != nil {
			gdb = gdb.Where(
				"(updated_at, id) < (CAST(? AS timestamptz), CAST(? AS uuid))",
				after.Time, after.ID,
			)
		}
		gdb = gdb.Order("updated_at DESC, id DESC")
	case model.IndexLocation:
		if after != nil {
			gdb = gdb.Where(
				"(price, id) > (CAST(? AS double precision), CAST(? AS uuid))",
				after.Price, after.ID,
			)
		}
		gdb = gdb.Order("price, id")
	default:
		if after != nil {
			gdb = gdb.Where(
				"(created_at, id) > (CAST(? AS timestamptz), CAST(? AS uuid))",
				after.Time, after.ID,
			)
		}
		gdb = gdb.Order("created_at, id")
	}
	var gps []gProperty
	gdb = gdb.Limit(pr.Limit + 1).Find(&gps)
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	items := make([]model.Property, 0, len(gps))
	for i := range gps {
		items = append(items, *gps[i].Model())
	}
	return model.NewPage(idx, items, pr.Limit), nil
}

// Update locks the id row, applies pp on it, and writes back all of
// its mutable columns. It must run in a transaction, so the row lock
// is held until the patched version is committed.
func Update(
	ctx context.Context, tx *postgres.Tx, id string,
	pp *model.PropertyPatch, now time.Time,
) (*model.Property, error) {
	gdb := tx.GORM(ctx)
	p, err := get(gdb.Clauses(clause.Locking{Strength: "UPDATE"}), id)
	if err != nil {
		return nil, err
	}
	pp.Apply(p, now)
	gp := fromModel(uuid.MustParse(p.ID), p)
	gdb = gdb.Model(gp).Select(
		"updated_at", "address", "location", "property_type",
		"bedrooms", "bathrooms", "square_feet", "description",
		"price", "status",
	).Updates(gp)
	if err := gdb.Error; err != nil {
		if cErr := conflict(err, p); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("update: %w", err)
	}
	if n := gdb.RowsAffected; n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return p, nil
}

// conflict converts a unique violation of err into a cerr.Conflict
// error which names the duplicated address or id of p. Other errors
// give nil.
func conflict(err error, p *model.Property) error {
	pgErr := postgres.UniqueViolation(err)
	switch {
	case pgErr == nil:
		return nil
	case pgErr.ConstraintName == postgres.AddressKey:
		return cerr.Conflict(fmt.Errorf("address %q is taken", p.Address))
	default:
		return cerr.Conflict(fmt.Errorf("property %q exists", p.ID))
	}
}

// Probe checks that the properties table can be queried.
func Probe[Q postgres.Queryer](ctx context.Context, q Q) error {
	var n int
	gdb := q.GORM(ctx).Raw("SELECT count(*) FROM (SELECT 1 FROM properties LIMIT 1) AS p").Scan(&n)
	if err := gdb.Error; err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	return nil
}
