package entities

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ConsentDecision is the user's answer to a consent prompt.
type ConsentDecision string

const (
	ConsentAllowOnce   ConsentDecision = "allow-once"
	ConsentAllowAlways ConsentDecision = "allow-always"
	ConsentDeny        ConsentDecision = "deny"
)

// ConsentGrant is a persisted user authorization decision for one subject
// key. Allow-once grants are consumed on first use and never persisted.
type ConsentGrant struct {
	// ID identifies the grant in audit records.
	ID string `json:"id" yaml:"id"`

	// Subject is the (kind, signature) key this grant applies to.
	Subject SubjectKey `json:"subject" yaml:"subject"`

	// Decision is the recorded user choice.
	Decision ConsentDecision `json:"decision" yaml:"decision"`

	// CreatedAt is when the user answered the prompt.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// ExpiresAt bounds allow-always and deny grants. Zero means the grant
	// never expires (allow-once, which is bounded by consumption instead).
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the grant is stale at the given instant. Expiry
// is a pure function of (grant, now) so the engine stays deterministic.
func (g ConsentGrant) Expired(now time.Time) bool {
	if g.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(g.ExpiresAt)
}

// Allows reports whether the grant authorizes a matching request at now.
func (g ConsentGrant) Allows(now time.Time) bool {
	if g.Expired(now) {
		return false
	}
	return g.Decision == ConsentAllowOnce || g.Decision == ConsentAllowAlways
}

// SubjectKey identifies the class of requests a consent decision covers:
// the action kind plus a normalized resource signature. Two requests with
// the same kind and signature map to the same key regardless of incidental
// formatting in the original resource string.
type SubjectKey string

// NewSubjectKey derives the subject key for a request. Filesystem targets
// use the canonical path when the sandbox resolved one; process targets
// use the lowercased executable name; shell commands use the first command
// token; URLs use the lowercased host.
func NewSubjectKey(req ActionRequest, canonicalPath string) SubjectKey {
	sig := normalizeSignature(req, canonicalPath)
	return SubjectKey(string(req.Kind) + ":" + sig)
}

func normalizeSignature(req ActionRequest, canonicalPath string) string {
	switch {
	case req.Kind.TargetsFilesystem():
		if canonicalPath != "" {
			return canonicalPath
		}
		return filepath.Clean(strings.TrimSpace(req.Resource))
	case req.Kind.TargetsProcess():
		return strings.ToLower(strings.TrimSpace(req.Resource))
	case req.Kind == ActionShellExec:
		return firstToken(req.Resource)
	case req.Kind == ActionURLOpen:
		if u, err := url.Parse(strings.TrimSpace(req.Resource)); err == nil && u.Host != "" {
			return strings.ToLower(u.Host)
		}
		return strings.ToLower(strings.TrimSpace(req.Resource))
	default:
		return strings.TrimSpace(req.Resource)
	}
}

func firstToken(command string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(command), unicode.IsSpace)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
