// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
// By the way, it is acceptable to annotate structs in this package with
// multiple frameworks dependent tags (e.g., json tags for the REST API)
// since adding more tags does not complicate definition of a struct,
// but can prevent unnecessary structs duplication.
package model

import (
	"errors"
	"time"
)

// Property models a real-estate listing record. The ID and CreatedAt
// fields are assigned once (by the repository if they are missing) and
// never change afterwards, while UpdatedAt is refreshed on every update.
// Optional descriptive attributes are kept as pointers, so a missing
// value can be told apart from a zero value.
//
// The database specific struct which is persisted by each repository
// package is kept unexported in that package, e.g., see the gProperty
// struct in the pkg/adapter/db/postgres/propertiesrp package.
type Property struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Address      string   `json:"address"`
	Location     string   `json:"location"`
	PropertyType string   `json:"propertyType"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	SquareFeet   *int     `json:"squareFeet,omitempty"`
	Description  *string  `json:"description,omitempty"`

	Price  float64        `json:"price"` // non-negative monetary amount
	Status PropertyStatus `json:"status"`
}

// ErrNegativePrice indicates that a property price was less than zero.
var ErrNegativePrice = errors.New("price is negative")

// ErrUpdatedBeforeCreated indicates that the UpdatedAt timestamp of a
// property was older than its CreatedAt timestamp.
var ErrUpdatedBeforeCreated = errors.New("updatedAt precedes createdAt")

// Validate checks the invariants which must hold for every persisted
// property. Field level rules (such as the address length) belong to
// the validation layer and are not repeated here.
func (p *Property) Validate() error {
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if !p.CreatedAt.IsZero() && p.UpdatedAt.Before(p.CreatedAt) {
		return ErrUpdatedBeforeCreated
	}
	return nil
}

// PropertyPatch describes a partial update of a property. Only non-nil
// fields are applied. The ID and timestamps may not be patched.
type PropertyPatch struct {
	Address      *string
	Location     *string
	PropertyType *string
	Bedrooms     *int
	Bathrooms    *float64
	SquareFeet   *int
	Description  *string
	Price        *float64
	Status       *PropertyStatus
}

// IsEmpty reports if no field is going to be changed by pp.
func (pp *PropertyPatch) IsEmpty() bool {
	return pp.Address == nil && pp.Location == nil &&
		pp.PropertyType == nil && pp.Bedrooms == nil &&
		pp.Bathrooms == nil && pp.SquareFeet == nil &&
		pp.Description == nil && pp.Price == nil && pp.Status == nil
}

// Apply updates the p property in-place with the non-nil fields of pp.
// The UpdatedAt field is set to the given now timestamp (or CreatedAt
// if now is older), so it is refreshed even for an empty patch.
func (pp *PropertyPatch) Apply(p *Property, now time.Time) {
	assign(&p.Address, pp.Address)
	assign(&p.Location, pp.Location)
	assign(&p.PropertyType, pp.PropertyType)
	assignPtr(&p.Bedrooms, pp.Bedrooms)
	assignPtr(&p.Bathrooms, pp.Bathrooms)
	assignPtr(&p.SquareFeet, pp.SquareFeet)
	assignPtr(&p.Description, pp.Description)
	assign(&p.Price, pp.Price)
	assign(&p.Status, pp.Status)
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func assignPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Timestamp returns the current time in the precision which all
// repositories can persist and return unchanged, i.e., UTC truncated
// to microseconds.
func Timestamp() time.Time {
	return NormalizeTime(time.Now())
}

// NormalizeTime converts t to UTC and truncates it to microseconds.
// Monotonic clock readings are stripped too.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
