// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for presence metrics.
const (
	StatusSuccess          = "success"
	StatusError            = "error"
	StatusNotFound         = "not_found"
	StatusCapacityExceeded = "capacity_exceeded"
	StatusPermissionDenied = "permission_denied"
)

// PresenceOps counts presence operations by operation and status.
// Use RegisterMetrics to register this with a Prometheus registry.
var PresenceOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gridtown_presence_operations_total",
		Help: "Total number of presence operations (join/leave/move)",
	},
	[]string{"operation", "status"},
)

// CapacityRejections counts joins rejected because a location was full.
var CapacityRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gridtown_capacity_rejections_total",
		Help: "Total number of joins rejected by capacity limits",
	},
	[]string{"kind"},
)

// DialogCreations counts dialog sessions created by type.
var DialogCreations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gridtown_dialog_creations_total",
		Help: "Total number of dialog sessions created",
	},
	[]string{"type"},
)

// RegisterMetrics registers world package metrics with the given
// Prometheus registry. Call once at startup; panics on duplicate
// registration (prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(PresenceOps)
	reg.MustRegister(CapacityRejections)
	reg.MustRegister(DialogCreations)
}

// recordPresenceOp increments the presence operation counter.
func recordPresenceOp(operation, status string) {
	PresenceOps.WithLabelValues(operation, status).Inc()
}
