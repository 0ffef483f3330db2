// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/realty/pkg/adapter/db/postgres"
	pgpropertiesrp "github.com/momeni/realty/pkg/adapter/db/postgres/propertiesrp"
	"github.com/momeni/realty/pkg/adapter/db/sqlite"
	sqlitepropertiesrp "github.com/momeni/realty/pkg/adapter/db/sqlite/propertiesrp"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultRole is the database role which is used for the PostgreSQL
// connections when the role setting is left empty.
const DefaultRole = "realty"

// Database contains the database related configuration settings.
type Database struct {
	Driver string // postgres (default) or sqlite

	// URL is a complete PostgreSQL connection URL. When it is set, the
	// host, port, name, role, and pass-dir settings are ignored.
	URL string `yaml:"url,omitempty"`

	Host    string `yaml:",omitempty"`         // domain name or IP address of the DBMS server
	Port    int    `yaml:",omitempty"`         // port number of the DBMS server
	Name    string `yaml:",omitempty"`         // database name, like realty
	Role    string `yaml:",omitempty"`         // role name, like realty
	PassDir string `yaml:"pass-dir,omitempty"` // path of the passwords dir

	// Path is the SQLite database file path, or ":memory:" for
	// a private in-memory database.
	Path string `yaml:",omitempty"`
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
//
// For PostgreSQL, unless a URL is given explicitly, the .pgpass file
// in the d.PassDir folder is checked which should conform with the
// pgpass format with lines like this:
//
//	host:port:dbname:role:password
func (d Database) ConnectionPool(ctx context.Context) (repo.Pool, error) {
	if d.Driver == DriverSQLite {
		return sqlite.NewPool(ctx, d.Path)
	}
	u := d.URL
	if u == "" {
		path := filepath.Join(d.PassDir, ".pgpass")
		var err error
		u, err = d.ConnectionURL(path)
		if err != nil {
			return nil, fmt.Errorf("using %q pass-file: %w", path, err)
		}
	}
	return postgres.NewPool(ctx, u)
}

// ConnectionURL returns the database connection URL embedding the host,
// port, role name, database name, and password value. These items are
// directly taken from the `d` settings, but the password value which is
// read from the given `path` file. Returned URL has the postgresql
// scheme. The `path` file may contain empty or `#`-commented lines in
// addition to the password specifying lines which should conform with
// the pgpass files format with lines like this:
//
//	host:port:dbname:role:password
//
// If the `path` file could be read and a password for the role could
// be identified, a URL and a nil error will be returned. Otherwise,
// returned string will be empty and error will describe the wrapped
// error condition.
func (d Database) ConnectionURL(path string) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, d.Role)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.Role, pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// InitSchema creates the properties table and its indexes using the
// DDL of the `d.Driver` database. Existing tables are kept intact.
func (d Database) InitSchema(ctx context.Context, p repo.Pool) error {
	if d.Driver == DriverSQLite {
		return p.Conn(ctx, sqlite.InitSchema)
	}
	return p.Conn(ctx, postgres.InitSchema)
}

// NewPropertiesRepo instantiates the properties repository of the
// `d.Driver` database.
func (d Database) NewPropertiesRepo() repo.Properties {
	if d.Driver == DriverSQLite {
		return sqlitepropertiesrp.New()
	}
	return pgpropertiesrp.New()
}

// SchemaVersion returns the latest database schema version which is
// supported for the `d.Driver` database.
func (d Database) SchemaVersion() model.SemVer {
	if d.Driver == DriverSQLite {
		return sqlite.Version
	}
	return postgres.Version
}

// ValidateAndNormalize validates the database settings and returns an
// error if they were not acceptable. It can also modify settings in
// order to normalize them or replace some zero values with their
// expected default values (if any). So, it takes a pointer receiver
// instead of a non-reference receiver (in contrast to other methods).
func (d *Database) ValidateAndNormalize() error {
	switch d.Driver {
	case "":
		d.Driver = DriverPostgres
		fallthrough
	case DriverPostgres:
		if d.URL != "" {
			return nil
		}
		if d.Host == "" || d.Name == "" {
			return fmt.Errorf("postgres host and name are required")
		}
		if d.Port == 0 {
			d.Port = 5432
		}
		if d.Port < 0 || d.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", d.Port)
		}
		if d.Role == "" {
			d.Role = DefaultRole
		}
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", d.Driver)
	}
	return nil
}

// redacted returns a copy of `d` which its URL password is masked.
func (d Database) redacted() Database {
	if d.URL == "" {
		return d
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		d.URL = "<invalid>"
		return d
	}
	d.URL = u.Redacted()
	return d
}
