// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cashflowrs realizes the cash-flow calculator resource.
package cashflowrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/realty/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/realty/pkg/adapter/validation"
	"github.com/momeni/realty/pkg/core/usecase/cashflowuc"
)

type resource struct {
	cf *cashflowuc.UseCase
}

// Register instantiates a resource adapting the cash-flow use case
// with the POST /api/v1/calculate/cash-flow REST API.
func Register(r *gin.RouterGroup, cf *cashflowuc.UseCase) {
	rs := &resource{cf: cf}
	r.POST("api/v1/calculate/cash-flow", rs.CalculateCashFlow)
}

func (rs *resource) CalculateCashFlow(c *gin.Context) {
	raw, ok := serdser.Body(c)
	if !ok {
		return
	}
	req, err := validation.CashFlow(raw)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	res, err := rs.cf.Calculate(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
