package entities

import "time"

// ExecutionResult is the outcome of one Execution Gate call.
type ExecutionResult struct {
	// Timestamp is when the result was produced.
	Timestamp time.Time `json:"timestamp"`

	// Outcome classifies the result.
	Outcome Outcome `json:"outcome"`

	// Mode records whether the execution was simulated or live.
	Mode ExecutionMode `json:"mode"`

	// Detail is a human-readable description of what happened (or, in
	// dry-run mode, what would have happened).
	Detail string `json:"detail,omitempty"`

	// Reason carries a failure or denial reason code.
	Reason ReasonCode `json:"reason,omitempty"`

	// Data contains operation-specific result data from the effect
	// handler (file content, process list, ...).
	Data map[string]any `json:"data,omitempty"`
}

// Succeeded reports whether the execution completed successfully.
func (r ExecutionResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// EffectResult is what an external effect handler returns to the gate.
// Handlers never perform their own authorization; gating happens before
// the call.
type EffectResult struct {
	// Detail describes the performed effect.
	Detail string

	// Data contains operation-specific payload.
	Data map[string]any

	// Replaced marks a mutation that overwrote or removed prior content.
	// When set, BackupHandle must be present.
	Replaced bool

	// BackupHandle points at the pre-mutation backup for file-write and
	// file-delete operations. The gate treats absence as BackupMissing
	// whenever prior content was replaced.
	BackupHandle string
}
