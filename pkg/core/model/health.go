// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// HealthStatus is the overall status of the service.
type HealthStatus string

// Valid values for the HealthStatus enum.
const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
)

// ProbeStatus is the outcome of the repository connectivity probe.
type ProbeStatus string

// Valid values for the ProbeStatus enum.
const (
	ProbeHealthy   ProbeStatus = "healthy"
	ProbeUnhealthy ProbeStatus = "unhealthy"
	ProbeDisabled  ProbeStatus = "disabled"
)

// Health is the liveness/readiness report of the service. The service
// is degraded if, and only if, the database probe was enabled and did
// not succeed in time.
type Health struct {
	Status      HealthStatus `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
	Service     string       `json:"service,omitempty"`
	Environment string       `json:"environment,omitempty"`
	Region      string       `json:"region,omitempty"`
	Database    DBHealth     `json:"database"`
}

// DBHealth describes the last repository probe. The Error field is
// filled only for the unhealthy status.
type DBHealth struct {
	Status    ProbeStatus `json:"status"`
	CheckedAt *time.Time  `json:"checkedAt,omitempty"`
	Error     string      `json:"error,omitempty"`
}
