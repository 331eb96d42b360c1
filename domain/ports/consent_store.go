package ports

import (
	"time"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// ConsentStore persists user authorization decisions keyed by subject.
// Implementations must tolerate concurrent readers and appenders from
// multiple front ends sharing one state directory: a grant is never
// partially visible.
type ConsentStore interface {
	// Lookup returns the grant for the key, or ok=false when none exists.
	// Grants expired at now are treated as absent and evicted. Allow-once
	// grants are valid for exactly one lookup: they are invalidated
	// before Lookup returns.
	Lookup(key entities.SubjectKey, now time.Time) (entities.ConsentGrant, bool, error)

	// Record persists a decision and returns the created grant.
	// Allow-once grants are held in memory only, never written to disk.
	Record(key entities.SubjectKey, decision entities.ConsentDecision, now time.Time) (entities.ConsentGrant, error)

	// Revoke removes any grant for the key.
	Revoke(key entities.SubjectKey) error

	// Clear removes all grants.
	Clear() error
}
