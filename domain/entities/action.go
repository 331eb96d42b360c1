package entities

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies one class of side-effecting assistant operation.
// The set is closed: adding a kind means adding it here and to kindSpecs,
// which keeps the capability and risk mapping a compile-time concern.
type ActionKind string

const (
	ActionFileRead     ActionKind = "file-read"
	ActionFileWrite    ActionKind = "file-write"
	ActionFileDelete   ActionKind = "file-delete"
	ActionFileList     ActionKind = "file-list"
	ActionFileFind     ActionKind = "file-find"
	ActionProcessKill  ActionKind = "process-kill"
	ActionProcessList  ActionKind = "process-list"
	ActionShellExec    ActionKind = "shell-exec"
	ActionWindowAction ActionKind = "window-action"
	ActionAppLaunch    ActionKind = "app-launch"
	ActionURLOpen      ActionKind = "url-open"
	ActionScreenshot   ActionKind = "screenshot"
	ActionTypeText     ActionKind = "type-text"
)

// kindSpec is the static dispatch row for one action kind.
type kindSpec struct {
	capability Capability
	baseTier   RiskTier
	targetsFS  bool
	targetsPID bool
}

var kindSpecs = map[ActionKind]kindSpec{
	ActionFileRead:     {CapabilityFS, RiskLow, true, false},
	ActionFileWrite:    {CapabilityFS, RiskMedium, true, false},
	ActionFileDelete:   {CapabilityFS, RiskMedium, true, false},
	ActionFileList:     {CapabilityFS, RiskLow, true, false},
	ActionFileFind:     {CapabilityFS, RiskLow, true, false},
	ActionProcessKill:  {CapabilityProcessControl, RiskHigh, false, true},
	ActionProcessList:  {CapabilityProcessControl, RiskLow, false, true},
	ActionShellExec:    {CapabilityRunShell, RiskCritical, false, false},
	ActionWindowAction: {CapabilityWindowControl, RiskLow, false, false},
	ActionAppLaunch:    {CapabilityWindowControl, RiskLow, false, false},
	ActionURLOpen:      {CapabilityBrowserControl, RiskLow, false, false},
	ActionScreenshot:   {CapabilityScreenshot, RiskLow, false, false},
	ActionTypeText:     {CapabilityWindowControl, RiskLow, false, false},
}

// IsKnown reports whether k is a member of the closed kind set.
func (k ActionKind) IsKnown() bool {
	_, ok := kindSpecs[k]
	return ok
}

// RequiredCapability returns the capability gating this kind.
func (k ActionKind) RequiredCapability() Capability {
	return kindSpecs[k].capability
}

// BaseRiskTier returns the static risk tier for this kind, before
// size-based escalation.
func (k ActionKind) BaseRiskTier() RiskTier {
	return kindSpecs[k].baseTier
}

// TargetsFilesystem reports whether the kind's resource is a path subject
// to sandbox validation.
func (k ActionKind) TargetsFilesystem() bool {
	return kindSpecs[k].targetsFS
}

// TargetsProcess reports whether the kind's resource names a process.
func (k ActionKind) TargetsProcess() bool {
	return kindSpecs[k].targetsPID
}

// ActionRequest is one candidate side-effecting operation, produced by the
// external task router from a parsed intent. Immutable once constructed.
type ActionRequest struct {
	// ID uniquely identifies the request across the audit trail.
	ID string `json:"id"`

	// Kind selects the operation class.
	Kind ActionKind `json:"kind"`

	// Resource is the operation target: a path, process name, command
	// string, URL, or window title, depending on Kind.
	Resource string `json:"resource"`

	// SizeBytes is an optional severity hint for file operations.
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// Detail is an optional human-readable summary for prompts.
	Detail string `json:"detail,omitempty"`

	// Payload carries the content for file-write operations. Excluded
	// from serialized summaries and audit records.
	Payload []byte `json:"-"`

	// CreatedAt is when the request was constructed.
	CreatedAt time.Time `json:"created_at"`
}

// NewActionRequest constructs an immutable ActionRequest with a fresh ID.
func NewActionRequest(kind ActionKind, resource string) ActionRequest {
	return ActionRequest{
		ID:        uuid.NewString(),
		Kind:      kind,
		Resource:  resource,
		CreatedAt: time.Now().UTC(),
	}
}

// WithSize returns a copy of the request carrying a byte-count hint.
func (r ActionRequest) WithSize(n int64) ActionRequest {
	r.SizeBytes = n
	return r
}

// WithPayload returns a copy of the request carrying write content.
func (r ActionRequest) WithPayload(p []byte) ActionRequest {
	r.Payload = p
	return r
}

// WithDetail returns a copy of the request carrying a prompt summary.
func (r ActionRequest) WithDetail(detail string) ActionRequest {
	r.Detail = detail
	return r
}

// Summary returns a short "kind resource" description for prompts and
// audit records.
func (r ActionRequest) Summary() string {
	if r.Detail != "" {
		return r.Detail
	}
	return string(r.Kind) + " " + r.Resource
}
