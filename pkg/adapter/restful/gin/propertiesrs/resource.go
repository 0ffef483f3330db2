// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package propertiesrs realizes the properties resource, allowing the
// property records REST APIs to be accepted and delegated to the
// properties use case respectively.
package propertiesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/realty/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/realty/pkg/adapter/validation"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/usecase/propertiesuc"
)

type resource struct {
	props *propertiesuc.UseCase
}

// ListResp is one page of the properties listing. The NextCursor field
// is serialized as null on the last page.
type ListResp struct {
	Items      []model.Property `json:"items"`
	NextCursor *string          `json:"nextCursor"`
}

// Register instantiates a resource adapting the properties use case
// instance with the relevant REST APIs including:
//  1. GET request to /properties
//     in order to list properties, filtered by status, location, or
//     price range, one page at a time,
//  2. POST request to /properties
//     in order to create a property,
//  3. GET request to /properties/:id
//     in order to fetch one property,
//  4. PATCH request to /properties/:id
//     in order to update some fields of a property.
func Register(r *gin.RouterGroup, props *propertiesuc.UseCase) {
	rs := &resource{props: props}
	r.GET("properties", rs.ListProperties)
	r.POST("properties", rs.CreateProperty)
	r.GET("properties/:id", rs.GetProperty)
	r.PATCH("properties/:id", rs.UpdateProperty)
}

func (rs *resource) ListProperties(c *gin.Context) {
	q, err := validation.List(serdser.Query(c), serdser.DecodeCursor)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	page, err := rs.props.List(c, q.Filter, q.Limit, q.After)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResp{
		Items:      page.Items,
		NextCursor: serdser.EncodeCursor(page.Next),
	})
}

func (rs *resource) CreateProperty(c *gin.Context) {
	raw, ok := serdser.Body(c)
	if !ok {
		return
	}
	p, err := validation.PropertyCreate(raw)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	p, err = rs.props.Create(c, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Header("Location", "/properties/"+p.ID)
	c.JSON(http.StatusCreated, p)
}

func (rs *resource) GetProperty(c *gin.Context) {
	p, err := rs.props.Get(c, c.Param("id"))
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (rs *resource) UpdateProperty(c *gin.Context) {
	raw, ok := serdser.Body(c)
	if !ok {
		return
	}
	pp, err := validation.PropertyPatch(raw)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	p, err := rs.props.Update(c, c.Param("id"), pp)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
