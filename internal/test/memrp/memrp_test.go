// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memrp_test

import (
	"context"
	"testing"

	"github.com/momeni/realty/internal/test/memrp"
	"github.com/momeni/realty/internal/test/repotest"
	"github.com/stretchr/testify/suite"
)

func TestMemoryPropertiesSuite(t *testing.T) {
	ps := &repotest.PropertiesSuite{
		Ctx:  context.Background(),
		Repo: memrp.NewRepo(),
	}
	ps.Reset = func() error {
		ps.Pool = memrp.New()
		return nil
	}
	suite.Run(t, ps)
}
