package ports

import "github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"

// CapabilityRegistry holds the enabled/disabled state of each named
// capability. State is read-only during an authorization decision; writes
// go through SetEnabled, which is itself audited.
type CapabilityRegistry interface {
	// IsEnabled reports whether the capability is enabled. Unknown names
	// fail with *errors.UnknownCapabilityError.
	IsEnabled(c entities.Capability) (bool, error)

	// SetEnabled updates one capability and returns its previous state.
	// The update is appended to the audit log before it becomes visible.
	SetEnabled(c entities.Capability, enabled bool) (previous bool, err error)

	// Snapshot returns a copy of the full capability map.
	Snapshot() map[entities.Capability]bool
}
