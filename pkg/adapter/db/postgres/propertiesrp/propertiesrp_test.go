// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesrp_test

import (
	"context"
	"testing"
	"time"

	"github.com/momeni/realty/internal/test/dbcontainer"
	"github.com/momeni/realty/internal/test/repotest"
	"github.com/momeni/realty/pkg/adapter/db/postgres/propertiesrp"
	"github.com/stretchr/testify/suite"
)

func TestIntegrationPostgresPropertiesSuite(t *testing.T) {
	ctx := context.Background()
	pool := dbcontainer.New(ctx, t, 60*time.Second)
	suite.Run(t, &repotest.PropertiesSuite{
		Ctx:  ctx,
		Pool: pool,
		Repo: propertiesrp.New(),
		Reset: func() error {
			return dbcontainer.Truncate(ctx, pool)
		},
	})
}
