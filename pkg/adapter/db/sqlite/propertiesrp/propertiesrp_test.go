// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package propertiesrp_test

import (
	"context"
	"testing"

	"github.com/momeni/realty/internal/test/repotest"
	"github.com/momeni/realty/pkg/adapter/db/sqlite"
	"github.com/momeni/realty/pkg/adapter/db/sqlite/propertiesrp"
	"github.com/stretchr/testify/suite"
)

func TestSQLitePropertiesSuite(t *testing.T) {
	ctx := context.Background()
	ps := &repotest.PropertiesSuite{
		Ctx:  ctx,
		Repo: propertiesrp.New(),
	}
	var pool *sqlite.Pool
	defer func() {
		if pool != nil {
			_ = pool.Close()
		}
	}()
	ps.Reset = func() error {
		if pool != nil {
			_ = pool.Close()
		}
		var err error
		pool, err = sqlite.NewPool(ctx, sqlite.MemoryPath)
		if err != nil {
			return err
		}
		ps.Pool = pool
		return pool.Conn(ctx, sqlite.InitSchema)
	}
	suite.Run(t, ps)
}
