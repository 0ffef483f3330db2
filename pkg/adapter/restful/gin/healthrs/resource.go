// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package healthrs realizes the welcome and health check resources.
// Both of them respond with 200 even when the service is degraded, so
// the report body must be inspected for the actual status.
package healthrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/usecase/healthuc"
)

type resource struct {
	health *healthuc.UseCase
}

// WelcomeResp is the health report plus a short API guide.
type WelcomeResp struct {
	*model.Health
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Register instantiates a resource adapting the health use case with
// the GET / and GET /health REST APIs.
func Register(r *gin.RouterGroup, health *healthuc.UseCase) {
	rs := &resource{health: health}
	r.GET("", rs.Welcome)
	r.GET("health", rs.CheckHealth)
}

func (rs *resource) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, WelcomeResp{
		Health:  rs.health.Check(c),
		Message: "Welcome to the real-estate property and cash-flow API",
		Endpoints: map[string]string{
			"health":     "/health",
			"properties": "/properties",
			"cashFlow":   "/api/v1/calculate/cash-flow",
		},
	})
}

func (rs *resource) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, rs.health.Check(c))
}
