// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation

import (
	"github.com/momeni/realty/pkg/core/model"
)

type propertyFields struct {
	Address      *string  `json:"address" validate:"required,min=5,max=500"`
	Location     *string  `json:"location" validate:"required,min=2,max=100"`
	PropertyType *string  `json:"propertyType" validate:"required,min=2,max=50"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitnil,gte=0,lte=20"`
	Bathrooms    *float64 `json:"bathrooms" validate:"omitnil,gte=0,lte=10"`
	SquareFeet   *int     `json:"squareFeet" validate:"omitnil,gt=0"`
	Description  *string  `json:"description" validate:"omitnil,max=2000"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Status       *string  `json:"status" validate:"omitnil,oneof=active pending sold archived"`
}

type propertyCreate struct {
	ID *string `json:"id" validate:"omitnil,uuid"`
	propertyFields
}

// The patch rules are the create rules without the required ones.
type propertyPatch struct {
	Address      *string  `json:"address" validate:"omitnil,min=5,max=500"`
	Location     *string  `json:"location" validate:"omitnil,min=2,max=100"`
	PropertyType *string  `json:"propertyType" validate:"omitnil,min=2,max=50"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitnil,gte=0,lte=20"`
	Bathrooms    *float64 `json:"bathrooms" validate:"omitnil,gte=0,lte=10"`
	SquareFeet   *int     `json:"squareFeet" validate:"omitnil,gt=0"`
	Description  *string  `json:"description" validate:"omitnil,max=2000"`
	Price        *float64 `json:"price" validate:"omitnil,gte=0"`
	Status       *string  `json:"status" validate:"omitnil,oneof=active pending sold archived"`
}

func (r *reader) propertyFields() propertyFields {
	return propertyFields{
		Address:      r.str("address"),
		Location:     r.str("location"),
		PropertyType: r.str("propertyType"),
		Bedrooms:     r.integer("bedrooms"),
		Bathrooms:    r.float("bathrooms"),
		SquareFeet:   r.integer("squareFeet"),
		Description:  r.str("description"),
		Price:        r.float("price"),
		Status:       r.str("status"),
	}
}

// PropertyCreate validates the raw fields of a property creation
// request. The id field is optional and must be a UUID if given, while
// the createdAt and updatedAt fields are ignored.
func PropertyCreate(raw map[string]any) (*model.Property, error) {
	r := newReader(raw)
	pc := &propertyCreate{ID: r.str("id"), propertyFields: r.propertyFields()}
	if err := check(r, pc); err != nil {
		return nil, err
	}
	p := &model.Property{
		Address:      *pc.Address,
		Location:     *pc.Location,
		PropertyType: *pc.PropertyType,
		Bedrooms:     pc.Bedrooms,
		Bathrooms:    pc.Bathrooms,
		SquareFeet:   pc.SquareFeet,
		Description:  pc.Description,
		Price:        *pc.Price,
	}
	if pc.ID != nil {
		p.ID = *pc.ID
	}
	if pc.Status != nil {
		p.Status = model.PropertyStatus(*pc.Status)
	}
	return p, nil
}

// PropertyPatch validates the raw fields of a partial update. All
// fields are optional and an empty patch is valid.
func PropertyPatch(raw map[string]any) (*model.PropertyPatch, error) {
	r := newReader(raw)
	pf := r.propertyFields()
	pp := propertyPatch(pf)
	if err := check(r, &pp); err != nil {
		return nil, err
	}
	var st *model.PropertyStatus
	if pp.Status != nil {
		s := model.PropertyStatus(*pp.Status)
		st = &s
	}
	return &model.PropertyPatch{
		Address:      pp.Address,
		Location:     pp.Location,
		PropertyType: pp.PropertyType,
		Bedrooms:     pp.Bedrooms,
		Bathrooms:    pp.Bathrooms,
		SquareFeet:   pp.SquareFeet,
		Description:  pp.Description,
		Price:        pp.Price,
		Status:       st,
	}, nil
}
