// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all use case and resource packages
// based on the user provided configuration settings.
package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/momeni/realty/pkg/adapter/config/cfg1"
	"github.com/momeni/realty/pkg/adapter/restful/gin/cashflowrs"
	"github.com/momeni/realty/pkg/adapter/restful/gin/healthrs"
	"github.com/momeni/realty/pkg/adapter/restful/gin/propertiesrs"
	"github.com/momeni/realty/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/log"
	"github.com/momeni/realty/pkg/core/repo"
)

// Register instantiates the use cases based on the c configuration
// settings. The p connections pool is passed to the use case instances,
// so they may acquire/release connections and transactions on demand.
// These connections/transactions will be passed to the r properties
// repository later in order to run relevant queries on them and
// accomplish those use cases. Each use case package is named like
// propertiesuc and each repository package is named like propertiesrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like propertiesrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
// Unmatched paths and methods are answered with the NotFound and
// MethodNotAllowed error envelopes.
//
// The returned stop function releases the resources of the use cases
// (such as the health probe cache) and must be called after the engine
// stops serving requests.
func Register(
	ctx context.Context,
	e *gin.Engine,
	p repo.Pool,
	r repo.Properties,
	c *cfg1.Config,
) (stop func(), err error) {
	propsUseCase, err := c.NewPropertiesUseCase(p, r)
	if err != nil {
		return nil, fmt.Errorf("creating properties use case: %w", err)
	}
	healthUseCase, stop, err := c.NewHealthUseCase(p, r)
	if err != nil {
		return nil, fmt.Errorf("creating health use case: %w", err)
	}
	e.NoRoute(func(c *gin.Context) {
		serdser.SerErr(c, cerr.NotFound(errors.New("no such route")))
	})
	e.NoMethod(func(c *gin.Context) {
		serdser.SerErr(c, cerr.MethodNotAllowed(fmt.Errorf(
			"method %s is not allowed", c.Request.Method,
		)))
	})
	g := e.Group("/")
	healthrs.Register(g, healthUseCase)
	propertiesrs.Register(g, propsUseCase)
	cashflowrs.Register(g, c.NewCashFlowUseCase())
	log.Info(ctx, "routes registered",
		slog.Int("count", len(e.Routes())),
		slog.String("environment", c.Environment),
	)
	return stop, nil
}
