package ports

import (
	"context"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// ConsentPrompt is what the user sees when a request needs authorization.
type ConsentPrompt struct {
	Request entities.ActionRequest
	Tier    entities.RiskTier
	Subject entities.SubjectKey
}

// ConsentResponse is the user's typed answer. Cancelled covers timeouts
// and any non-answer; it never defaults to allow.
type ConsentResponse struct {
	Decision  entities.ConsentDecision
	Cancelled bool
}

// ConsentPrompter drives the interactive consent protocol. The engine
// treats the call as a suspension point: it blocks until an answer or
// until ctx expires, whichever comes first.
type ConsentPrompter interface {
	// IsInteractive reports whether a user can actually be asked.
	IsInteractive() bool

	// RequestConsent presents the prompt and returns exactly one answer.
	RequestConsent(ctx context.Context, prompt ConsentPrompt) (ConsentResponse, error)
}
