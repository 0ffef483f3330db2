// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers parses the versions header of the config files:
//
//	versions:
//	  config: 1.0.0
//	  database: 1.0.0
//
// The config version selects the cfgN package which can decode the
// rest of the file, and the database version is compared with the
// schema version of the configured store.
package vers

import (
	"fmt"

	"github.com/momeni/realty/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config contains the versions header. It is embedded inline in the
// cfgN config structs.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions of the config file format and the database schema.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Marshalled is the textual form of a Config, for the Marshalled
// structs of the cfgN packages.
type Marshalled struct {
	Versions struct {
		Database string
		Config   string
	}
}

// Marshal returns the Marshalled form of vc.
func (vc *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Versions.Database = vc.Versions.Database.Marshal()
	m.Versions.Config = vc.Versions.Config.Marshal()
	return m
}

// Load decodes only the versions header of data.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, fmt.Errorf("decoding versions header: %w", err)
	}
	return vc, nil
}

// CheckConfig returns an error if the config file version may not be
// decoded by a cfgN package which supports the `supported` version.
func (vc *Config) CheckConfig(supported model.SemVer) error {
	if err := vc.Versions.Config.CompatibleWith(supported); err != nil {
		return fmt.Errorf("config version %s: %w", vc.Versions.Config, err)
	}
	return nil
}

// CheckDatabase returns an error if the database version of the header
// is not compatible with the `schema` version of the configured store.
func (vc *Config) CheckDatabase(schema model.SemVer) error {
	if err := vc.Versions.Database.CompatibleWith(schema); err != nil {
		return fmt.Errorf(
			"database schema version %s: %w", vc.Versions.Database, err,
		)
	}
	return nil
}
