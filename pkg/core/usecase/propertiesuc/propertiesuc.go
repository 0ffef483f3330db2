// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package propertiesuc contains the properties UseCase which supports
// the property records related use cases:
//  1. Creating a property (with conflict detection on its id),
//  2. Fetching a property by its id,
//  3. Listing properties by status, location, price range, or none of
//     them, one cursor-based page at a time,
//  4. Patching a property partially.
//
// Every repository call is bounded by the store timeout, so a slow
// store is reported as a cerr.Timeout error instead of hanging.
package propertiesuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/log"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// Default settings which are used when their options are not given.
const (
	DefaultStoreTimeout = 10 * time.Second
	DefaultPageSize     = 50
	MaxPageSize         = 1000
)

// UseCase represents a properties use case. It holds a database
// connection pool, the properties repository instance (to be guided
// with the DB pool), and the properties use case specific settings.
type UseCase struct {
	pool    repo.Pool
	propsrp repo.Properties

	storeTimeout    time.Duration
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// New instantiates a properties use case.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options
// in order to facilitate their validation and flexibility.
func New(p repo.Pool, r repo.Properties, opts ...Option) (*UseCase, error) {
	uc := &UseCase{pool: p, propsrp: r}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.storeTimeout == 0 {
		uc.storeTimeout = DefaultStoreTimeout
	}
	if uc.defaultPageSize == 0 {
		uc.defaultPageSize = DefaultPageSize
		uc.maxPageSize = MaxPageSize
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// Create persists the p property. Missing id and timestamps are
// assigned here, so a fresh property has createdAt == updatedAt.
// A caller-supplied id which exists already is reported as a
// cerr.Conflict error. The stored record is returned and p is left
// unchanged.
func (props *UseCase) Create(
	ctx context.Context, p *model.Property,
) (*model.Property, error) {
	np := *p
	if np.ID == "" {
		np.ID = uuid.NewString()
	} else if u, err := uuid.Parse(np.ID); err == nil {
		np.ID = u.String() // canonical lowercase form
	}
	if np.Status == "" {
		np.Status = model.StatusActive
	}
	if np.CreatedAt.IsZero() {
		np.CreatedAt = model.NormalizeTime(props.now())
	} else {
		np.CreatedAt = model.NormalizeTime(np.CreatedAt)
	}
	if np.UpdatedAt.IsZero() {
		np.UpdatedAt = np.CreatedAt
	} else {
		np.UpdatedAt = model.NormalizeTime(np.UpdatedAt)
	}
	if err := invariantErr(np.Validate()); err != nil {
		return nil, err
	}
	err := props.withStore(ctx, func(ctx context.Context) error {
		return props.pool.Conn(
			ctx, func(ctx context.Context, c repo.Conn) error {
				return props.propsrp.Conn(c).Create(ctx, &np)
			},
		)
	})
	if err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}
	log.Info(ctx, "property created",
		slog.String("id", np.ID), slog.String("status", string(np.Status)),
	)
	return &np, nil
}

// Get returns the id property or a cerr.NotFound error.
func (props *UseCase) Get(
	ctx context.Context, id string,
) (p *model.Property, err error) {
	err = props.withStore(ctx, func(ctx context.Context) error {
		return props.pool.Conn(
			ctx, func(ctx context.Context, c repo.Conn) error {
				p, err = props.propsrp.Conn(c).Get(ctx, id)
				return err
			},
		)
	})
	if err != nil {
		return nil, fmt.Errorf("getting property %q: %w", id, err)
	}
	return p, nil
}

// List returns one page of properties which pass the f filter. A zero
// limit takes the default page size and limits beyond the hard cap are
// clamped. The after cursor must be taken from a previous page of the
// same index (i.e., with the same status/location filters presence).
func (props *UseCase) List(
	ctx context.Context,
	f model.PropertyFilter,
	limit int,
	after *model.Cursor,
) (page *model.Page, err error) {
	var fields []cerr.FieldError
	switch {
	case limit < 0:
		fields = append(fields, cerr.FieldError{
			Field: "limit", Reason: cerr.ReasonOutOfRange,
		})
	case limit == 0:
		limit = props.defaultPageSize
	case limit > props.maxPageSize:
		limit = props.maxPageSize
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		fields = append(fields, cerr.FieldError{
			Field: "minPrice", Reason: cerr.ReasonOutOfRange,
		})
	}
	if f.Status != nil && f.Status.Validate() != nil {
		fields = append(fields, cerr.FieldError{
			Field: "status", Reason: cerr.ReasonInvalidEnum,
		})
	}
	if after != nil && after.Index != f.Index() {
		fields = append(fields, cerr.FieldError{
			Field: "cursor", Reason: cerr.ReasonInvalidCursor,
		})
	}
	if fields != nil {
		return nil, cerr.Validation(fields...)
	}
	pr := model.PageRequest{Limit: limit, After: after}
	err = props.withStore(ctx, func(ctx context.Context) error {
		return props.pool.Conn(
			ctx, func(ctx context.Context, c repo.Conn) error {
				page, err = props.propsrp.Conn(c).List(ctx, f, pr)
				return err
			},
		)
	})
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return page, nil
}

// Update applies the pp partial patch on the id property and returns
// the updated record. The updatedAt timestamp is always refreshed,
// even if pp changes no field.
func (props *UseCase) Update(
	ctx context.Context, id string, pp *model.PropertyPatch,
) (p *model.Property, err error) {
	if pp.Price != nil && *pp.Price < 0 {
		return nil, invariantErr(model.ErrNegativePrice)
	}
	if pp.Status != nil && pp.Status.Validate() != nil {
		return nil, invariantErr(pp.Status.Validate())
	}
	now := model.NormalizeTime(props.now())
	err = props.withStore(ctx, func(ctx context.Context) error {
		return props.pool.Conn(
			ctx, func(ctx context.Context, c repo.Conn) error {
				return c.Tx(
					ctx, func(ctx context.Context, tx repo.Tx) error {
						q := props.propsrp.Tx(tx)
						p, err = q.Update(ctx, id, pp, now)
						return err
					},
				)
			},
		)
	})
	if err != nil {
		return nil, fmt.Errorf("updating property %q: %w", id, err)
	}
	log.Info(ctx, "property updated", slog.String("id", id))
	return p, nil
}

// withStore runs f with a child context which expires after the store
// timeout. Exceeding that deadline is reported as a cerr.Timeout error.
func (props *UseCase) withStore(
	ctx context.Context, f func(ctx context.Context) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, props.storeTimeout)
	defer cancel()
	err := f(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		var ce *cerr.Error
		if errors.As(err, &ce) && ce.Kind != cerr.KindInternal {
			return err
		}
		return cerr.Timeout(fmt.Errorf(
			"store call exceeded %s: %w", props.storeTimeout, err,
		))
	}
	return err
}

// invariantErr converts a model invariant violation into the field
// level validation error which the REST clients expect.
func invariantErr(err error) error {
	var pse model.PropertyStatusError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNegativePrice):
		return cerr.Validation(cerr.FieldError{
			Field: "price", Reason: cerr.ReasonOutOfRange,
		})
	case errors.As(err, &pse):
		return cerr.Validation(cerr.FieldError{
			Field: "status", Reason: cerr.ReasonInvalidEnum,
		})
	case errors.Is(err, model.ErrUpdatedBeforeCreated):
		return cerr.Validation(cerr.FieldError{
			Field: "updatedAt", Reason: cerr.ReasonOutOfRange,
		})
	}
	return cerr.BadRequest(err)
}
