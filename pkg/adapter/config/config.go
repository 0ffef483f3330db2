// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config loads the yaml config files of reweb. The format of
// a file is selected by its versions header (see the vers package) and
// decoded by the matching cfgN package, currently cfg1 alone. The
// loaded config then builds the pools, repositories, use cases, and
// the web engine, passing the optional settings to them as functional
// options, so components never read the config files themselves.
package config

import (
	"fmt"
	"os"

	"github.com/momeni/realty/pkg/adapter/config/cfg1"
	"github.com/momeni/realty/pkg/adapter/config/vers"
)

// Load reads the path config file, decodes it based on its versions
// header, and returns the validated and normalized settings.
// Environment variables overrides are applied by the cfg1 package.
func Load(path string) (*cfg1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	v, err := vers.Load(data)
	if err != nil {
		return nil, err
	}
	switch major := v.Versions.Config[0]; major {
	case cfg1.Major:
		return loadCfg1(data)
	default:
		return nil, fmt.Errorf("unsupported config major version: %d", major)
	}
}

func loadCfg1(data []byte) (*cfg1.Config, error) {
	c, err := cfg1.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading cfg1.Config: %w", err)
	}
	if err := c.Vers.CheckDatabase(c.Database.SchemaVersion()); err != nil {
		return nil, err
	}
	return c, nil
}
