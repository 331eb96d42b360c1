// Package entities provides the core domain types for the assistant's
// safety and action-authorization subsystem: action requests, capabilities,
// risk tiers, consent grants, verdicts, and audit records.
package entities
