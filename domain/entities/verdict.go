package entities

// VerdictState is one state of the authorization state machine. Every
// request moves Received → PolicyEvaluated → one of the intermediate
// states → a terminal Allowed/Denied.
type VerdictState int

const (
	StateReceived VerdictState = iota
	StatePolicyEvaluated
	StateAutoAllowed
	StateAutoDenied
	StateAwaitingConsent
	StateAllowed
	StateDenied
)

// String returns the state machine label for the state.
func (s VerdictState) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StatePolicyEvaluated:
		return "POLICY_EVALUATED"
	case StateAutoAllowed:
		return "AUTO_ALLOWED"
	case StateAutoDenied:
		return "AUTO_DENIED"
	case StateAwaitingConsent:
		return "AWAITING_CONSENT"
	case StateAllowed:
		return "ALLOWED"
	case StateDenied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state is a final verdict.
func (s VerdictState) Terminal() bool {
	return s == StateAllowed || s == StateDenied
}

// ReasonCode identifies why a request was denied or failed. Authorization
// denials are first-class outcomes, not errors.
type ReasonCode string

const (
	ReasonNone                 ReasonCode = ""
	ReasonCapabilityDisabled   ReasonCode = "CapabilityDisabled"
	ReasonOutsideSafeRoots     ReasonCode = "OutsideSafeRoots"
	ReasonProtectedTarget      ReasonCode = "ProtectedTarget"
	ReasonConsentTimeout       ReasonCode = "ConsentTimeout"
	ReasonConsentDenied        ReasonCode = "ConsentDenied"
	ReasonBackupMissing        ReasonCode = "BackupMissing"
	ReasonAuditWriteFailed     ReasonCode = "AuditWriteFailed"
	ReasonPathResolutionFailed ReasonCode = "PathResolutionFailed"
	ReasonUnknownCapability    ReasonCode = "UnknownCapability"
	ReasonEffectHandlerFailure ReasonCode = "EffectHandlerFailure"
)

// Verdict is the outcome of authorizing one ActionRequest.
type Verdict struct {
	// State is the terminal state of the request (Allowed or Denied);
	// intermediate states never escape the engine.
	State VerdictState `json:"state"`

	// Reason explains a denial. Empty when allowed.
	Reason ReasonCode `json:"reason,omitempty"`

	// Tier is the risk tier computed for the request.
	Tier RiskTier `json:"-"`

	// CanonicalPath is the sandbox-resolved target path for filesystem
	// actions, empty otherwise.
	CanonicalPath string `json:"canonical_path,omitempty"`

	// GrantID identifies the consent grant that authorized the request,
	// when one was consulted.
	GrantID string `json:"grant_id,omitempty"`

	// Auto marks verdicts decided by static policy (AUTO_ALLOWED or
	// AUTO_DENIED) rather than by consent.
	Auto bool `json:"auto,omitempty"`
}

// Allowed reports whether the verdict permits execution.
func (v Verdict) Allowed() bool {
	return v.State == StateAllowed
}
