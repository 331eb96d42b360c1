package entities

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionMode distinguishes simulated from live execution.
type ExecutionMode string

const (
	ModeDryRun ExecutionMode = "dry-run"
	ModeLive   ExecutionMode = "live"
)

// Outcome summarizes how an audited operation ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
)

// AuditRecord is one immutable, append-only audit trail entry. Records are
// appended only by the Execution Gate (request lifecycle) and the
// capability registry (reconfiguration); nothing mutates or deletes them.
// New fields must be optional so persisted logs stay forward-readable.
type AuditRecord struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Timestamp is when the record was created (UTC).
	Timestamp time.Time `json:"timestamp"`

	// RequestID ties the record to the originating ActionRequest.
	RequestID string `json:"request_id,omitempty"`

	// Kind and Resource summarize the audited action.
	Kind     ActionKind `json:"kind,omitempty"`
	Resource string     `json:"resource,omitempty"`

	// Verdict is the terminal authorization state label.
	Verdict string `json:"verdict,omitempty"`

	// Reason carries the denial or failure reason code.
	Reason ReasonCode `json:"reason,omitempty"`

	// Mode records whether execution was simulated or live.
	Mode ExecutionMode `json:"mode,omitempty"`

	// Outcome is the execution result classification.
	Outcome Outcome `json:"outcome"`

	// GrantID identifies the consent grant used, if any.
	GrantID string `json:"grant_id,omitempty"`

	// Detail is free-form context (effect handler detail, error text).
	Detail string `json:"detail,omitempty"`
}

// NewAuditRecord creates a record stamped with a fresh ID and the given
// timestamp.
func NewAuditRecord(now time.Time) AuditRecord {
	return AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
	}
}
