// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 makes it possible to load configuration settings with
// version 1.x.y since all minor and patch versions (which are known)
// with the same major version, can be loaded with one implementation.
// When trying to serialize and write out settings, the latest known
// minor and patch version will be used since older versions (with the
// same major version) can ignore the extra fields too.
package cfg1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/momeni/realty/pkg/adapter/cache/probecache"
	"github.com/momeni/realty/pkg/adapter/config/settings"
	"github.com/momeni/realty/pkg/adapter/config/vers"
	"github.com/momeni/realty/pkg/adapter/restful/gin"
	"github.com/momeni/realty/pkg/core/log"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/repo"
	"github.com/momeni/realty/pkg/core/usecase/cashflowuc"
	"github.com/momeni/realty/pkg/core/usecase/healthuc"
	"github.com/momeni/realty/pkg/core/usecase/propertiesuc"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// DefaultService is the service name which is reported by the health
// endpoints when the service setting is left empty.
const DefaultService = "realty-api"

// Names of the environment variables which override the settings of
// a configuration file.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvEnvironment    = "ENVIRONMENT"
	EnvRegion         = "REGION"
	EnvLogLevel       = "LOG_LEVEL"
	EnvAllowedOrigins = "CORS_ALLOWED_ORIGINS"
)

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format, such as adapters or
// use cases. It is preferred to implement Config with primitive fields
// or other structs which are defined locally, not models or structs
// which are defined in lower layers, so the configuration can be
// versioned and kept intact while other layers can change freely.
//
// A Config is not modified after Load returns. It acts as a builder
// for the adapters and use cases, passing the settings as functional
// options to each one of them.
type Config struct {
	Service     string // service name, as reported by health checks
	Environment string // deployment environment, e.g., dev or prod
	Region      string // deployment region, may be empty

	Database Database // Database driver and connection settings
	Gin      Gin      // Gin-Gonic instantiation settings
	Logging  Logging  // Structured logging settings
	CORS     CORS     `yaml:"cors"`
	Features Features // Optional features toggles
	Usecases Usecases // Configuration settings for supported use cases

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized. Missing items are filled by their
// default values in the ValidateAndNormalize method.
type Gin struct {
	Logger   *bool // Whether to register the access log middleware
	Recovery *bool // Whether to register the panic recovery middleware
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings. The CORS middleware is registered after the logger
// and recovery middlewares, so preflight requests are logged too.
func (g Gin) NewEngine(cors CORS) *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 3)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	if len(cors.AllowedOrigins) > 0 {
		middlewares = append(middlewares, gin.CORS(cors.AllowedOrigins))
	}
	return gin.New(middlewares...)
}

// Logging contains the log/slog handler settings.
type Logging struct {
	Level  string // debug, info (default), warn, or error
	Format string // json (default) or text
}

// NewHandler creates a slog.Handler which writes to w, following the
// `l` settings. ValidateAndNormalize must be called beforehand.
func (l Logging) NewHandler(w io.Writer) slog.Handler {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(l.Level)) // verified on load
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func (l *Logging) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	l.Level = strings.ToLower(l.Level)
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %q", l.Format)
	}
	return nil
}

// CORS contains the cross-origin resource sharing settings.
type CORS struct {
	// AllowedOrigins lists the origins which may call the REST API
	// from a browser. The "*" item allows all origins and an empty
	// list disables the CORS headers.
	AllowedOrigins []string `yaml:"allowed-origins,omitempty"`
}

// Features contains the optional features toggles.
type Features struct {
	// HealthProbe indicates if the health checks should probe the
	// database connectivity. It is enabled by default.
	HealthProbe *bool `yaml:"health-probe"`
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Properties Properties // properties use cases related settings
	Health     Health     // health check use case related settings
}

// Properties contains the configuration settings for the properties
// use cases. A nil field takes its default value from the use cases
// layer.
type Properties struct {
	// StoreTimeout bounds each repository call.
	StoreTimeout *settings.Duration `yaml:"store-timeout"`
	// DefaultPageSize is used when a listing asks for no limit.
	DefaultPageSize *int `yaml:"default-page-size"`
	// MaxPageSize is the hard cap of the page sizes.
	MaxPageSize *int `yaml:"max-page-size"`
}

// NewUseCase instantiates a new properties use case based on the
// settings in the `p` struct.
func (p Properties) NewUseCase(
	pool repo.Pool, r repo.Properties,
) (*propertiesuc.UseCase, error) {
	opts := make([]propertiesuc.Option, 0, 2)
	if p.StoreTimeout != nil {
		opts = append(opts, propertiesuc.WithStoreTimeout(
			p.StoreTimeout.Std(),
		))
	}
	if p.DefaultPageSize != nil {
		opts = append(opts, propertiesuc.WithPageSizes(
			*p.DefaultPageSize, *p.MaxPageSize,
		))
	}
	return propertiesuc.New(pool, r, opts...)
}

// Health contains the configuration settings for the health check
// use case.
type Health struct {
	// ProbeTimeout bounds each database connectivity probe.
	ProbeTimeout *settings.Duration `yaml:"probe-timeout"`
	// CacheTTL keeps a probe outcome for the given duration, so
	// frequent health checks do not hit the database each time.
	// A zero value disables the cache.
	CacheTTL *settings.Duration `yaml:"cache-ttl"`
}

// probeCacheSize is the ccache capacity. One key is used for now.
const probeCacheSize = 16

// Load unmarshals the data byte slice and loads a Config instance
// assuming that it contains the Config settings. Extra items in the
// data will be ignored and missing items will take their default
// values. Thereafter, the environment variables overrides are applied
// and the loaded Config will be validated and normalized in order to
// ensure that provided settings are acceptable (for example the major
// version which is reported by data settings must match with number 1
// which is the major version of this config package).
func Load(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	c.overrideByEnv(os.LookupEnv)
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// overrideByEnv replaces the settings which have a non-empty
// environment variable, as reported by the lookup function.
func (c *Config) overrideByEnv(lookup func(string) (string, bool)) {
	env := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	env(EnvDatabaseURL, &c.Database.URL)
	env(EnvEnvironment, &c.Environment)
	env(EnvRegion, &c.Region)
	env(EnvLogLevel, &c.Logging.Level)
	var origins string
	env(EnvAllowedOrigins, &origins)
	if origins != "" {
		c.CORS.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, o)
			}
		}
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.CheckConfig(Version); err != nil {
		return err
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Environment == "" {
		c.Environment = "unknown"
	}
	settings.Nil2Zero(&c.Gin.Logger)
	settings.Nil2Zero(&c.Gin.Recovery)
	settings.Default(&c.Features.HealthProbe, true)
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Logging.validateAndNormalize(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	if err := c.Usecases.validate(); err != nil {
		return fmt.Errorf("validating use cases settings: %w", err)
	}
	return nil
}

func (u *Usecases) validate() error {
	p := &u.Properties
	if err := p.StoreTimeout.Positive("store-timeout"); err != nil {
		return err
	}
	switch {
	case p.DefaultPageSize == nil && p.MaxPageSize == nil:
	case p.DefaultPageSize == nil || p.MaxPageSize == nil:
		return errors.New("page sizes must be set together")
	default:
		minb := 1
		if err := settings.VerifyRange(
			"max-page-size", p.MaxPageSize, &minb, nil,
		); err != nil {
			return err
		}
		if err := settings.VerifyRange(
			"default-page-size", p.DefaultPageSize, &minb, p.MaxPageSize,
		); err != nil {
			return err
		}
	}
	h := &u.Health
	if err := h.ProbeTimeout.Positive("probe-timeout"); err != nil {
		return err
	}
	if h.CacheTTL != nil && *h.CacheTTL < 0 {
		return errors.New("cache-ttl may not be negative")
	}
	return nil
}

// SetupLogger installs a slog logger, writing to w, as the default
// logger of the process.
func (c *Config) SetupLogger(w io.Writer) {
	slog.SetDefault(slog.New(log.NewHandler(c.Logging.NewHandler(w))))
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(ctx context.Context) (repo.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return nil, fmt.Errorf(
			"%s.ConnectionPool: %w", c.Database.Driver, err,
		)
	}
	return p, nil
}

// SchemaVersion returns the semantic version of the database schema
// which its connection information are kept by this Config struct.
// There is no direct dependency between the configuration file and
// database schema versions.
func (c *Config) SchemaVersion() model.SemVer {
	return c.Vers.Versions.Database
}

// NewEngine instantiates a gin-gonic engine with the configured
// middlewares.
func (c *Config) NewEngine() *gin.Engine {
	return c.Gin.NewEngine(c.CORS)
}

// NewPropertiesRepo instantiates the properties repository which
// matches the configured database driver.
func (c *Config) NewPropertiesRepo() repo.Properties {
	return c.Database.NewPropertiesRepo()
}

// NewPropertiesUseCase instantiates a new properties use case based on
// the settings in the c struct.
func (c *Config) NewPropertiesUseCase(
	p repo.Pool, r repo.Properties,
) (*propertiesuc.UseCase, error) {
	return c.Usecases.Properties.NewUseCase(p, r)
}

// NewCashFlowUseCase instantiates a new cash flow calculator use case.
// It has no settings for now.
func (c *Config) NewCashFlowUseCase() *cashflowuc.UseCase {
	return cashflowuc.New()
}

// NewHealthUseCase instantiates a new health check use case based on
// the settings in the c struct. When a positive cache TTL is set,
// probe outcomes are kept in a ccache backed cache which is stopped
// by the returned stop function. The stop function is never nil.
func (c *Config) NewHealthUseCase(
	p repo.Pool, r repo.Properties,
) (uc *healthuc.UseCase, stop func(), err error) {
	h := c.Usecases.Health
	opts := []healthuc.Option{
		healthuc.WithProbe(*c.Features.HealthProbe),
		healthuc.WithIdentity(c.Service, c.Environment, c.Region),
	}
	if h.ProbeTimeout != nil {
		opts = append(opts, healthuc.WithProbeTimeout(h.ProbeTimeout.Std()))
	}
	stop = func() {}
	if ttl := h.CacheTTL.Std(); ttl > 0 {
		pc := probecache.New(probeCacheSize)
		stop = pc.Stop
		opts = append(opts, healthuc.WithCache(pc, ttl))
	}
	uc, err = healthuc.New(p, r, opts...)
	if err != nil {
		stop()
		return nil, nil, err
	}
	return uc, stop, nil
}

// Marshalled struct contains a field for each one of the Config struct
// fields. The field names may be different for simplicity, but the
// yaml tag of fields are chosen to have consistent names after the
// serialization operation. The types of those fields are the same if
// their default serialization format is acceptable, otherwise, they
// will be serialized manually using the Marshal method and their
// target primitive types will be used in the Marshalled struct.
type Marshalled struct {
	Service     string
	Environment string
	Region      string `yaml:",omitempty"`
	Database    Database
	Gin         Gin
	Logging     Logging
	CORS        CORS `yaml:"cors"`
	Features    Features
	Usecases    struct {
		Properties struct {
			StoreTimeout    *string `yaml:"store-timeout,omitempty"`
			DefaultPageSize *int    `yaml:"default-page-size,omitempty"`
			MaxPageSize     *int    `yaml:"max-page-size,omitempty"`
		}
		Health struct {
			ProbeTimeout *string `yaml:"probe-timeout,omitempty"`
			CacheTTL     *string `yaml:"cache-ttl,omitempty"`
		}
	}
	Vers *vers.Marshalled `yaml:",inline"`
}

// MarshalYAML computes an instance of the Marshalled struct, as created
// by the Marshal method, so it may be marshalled instead of the `c`
// Config instance.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Marshal(), nil
}

// Marshal creates an instance of the Marshalled struct and fills it
// with the `c` Config instance contents. Durations are replaced by
// their textual form and the database URL is redacted, so the result
// may be printed safely.
func (c *Config) Marshal() *Marshalled {
	m := &Marshalled{
		Service:     c.Service,
		Environment: c.Environment,
		Region:      c.Region,
		Database:    c.Database.redacted(),
		Gin:         c.Gin,
		Logging:     c.Logging,
		CORS:        c.CORS,
		Features:    c.Features,
	}
	p, h := c.Usecases.Properties, c.Usecases.Health
	m.Usecases.Properties.StoreTimeout = p.StoreTimeout.Marshal()
	m.Usecases.Properties.DefaultPageSize = p.DefaultPageSize
	m.Usecases.Properties.MaxPageSize = p.MaxPageSize
	m.Usecases.Health.ProbeTimeout = h.ProbeTimeout.Marshal()
	m.Usecases.Health.CacheTTL = h.CacheTTL.Marshal()
	m.Vers = c.Vers.Marshal()
	return m
}
