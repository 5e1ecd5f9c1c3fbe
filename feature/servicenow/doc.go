// Package servicenow implements the CMDB connector (the asset source).
//
// It pulls server records from the Table API with an optional operating-entity
// filter expressed as an OR-combined encoded query, resolves reference fields
// to their display values, and discovers dynamically named custom fields
// (u_*) from the first sample record, carrying them through in an explicit
// side-table on each normalized record.
//
// CMDB unavailability is non-fatal: the run continues in degraded
// Illumio-only mode.
package servicenow
