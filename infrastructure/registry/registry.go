// Package registry provides the in-memory capability registry. The state
// is an explicit snapshot loaded at startup; updates go through SetEnabled
// and are audited.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	audit  ports.AuditLog
	clock  ports.Clock
	logger *slog.Logger
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		clock:  ports.SystemClock(),
		logger: slog.Default(),
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithAuditLog routes capability updates to the audit log.
func WithAuditLog(log ports.AuditLog) RegistryOption {
	return func(c *registryConfig) {
		c.audit = log
	}
}

// WithClock sets the time source for audit timestamps.
func WithClock(clock ports.Clock) RegistryOption {
	return func(c *registryConfig) {
		c.clock = clock
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// Registry is the capability registry implementation.
type Registry struct {
	config registryConfig

	mu    sync.RWMutex
	state map[entities.Capability]bool
}

var _ ports.CapabilityRegistry = (*Registry)(nil)

// New creates a Registry from an explicit, fully-enumerated initial
// configuration. Names outside the known capability set are rejected.
// A nil initial map yields the default minimal safe set.
func New(initial map[entities.Capability]bool, opts ...RegistryOption) (*Registry, error) {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	state := entities.DefaultCapabilities()
	for c, enabled := range initial {
		if !c.IsKnown() {
			return nil, &errors.UnknownCapabilityError{Name: string(c)}
		}
		state[c] = enabled
	}

	return &Registry{config: cfg, state: state}, nil
}

// IsEnabled reports the capability state.
func (r *Registry) IsEnabled(c entities.Capability) (bool, error) {
	if !c.IsKnown() {
		return false, &errors.UnknownCapabilityError{Name: string(c)}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[c], nil
}

// SetEnabled updates one capability, audits the change, and returns the
// previous state. Audit write failures are reported as warnings; they do
// not roll back the update.
func (r *Registry) SetEnabled(c entities.Capability, enabled bool) (bool, error) {
	if !c.IsKnown() {
		return false, &errors.UnknownCapabilityError{Name: string(c)}
	}

	r.mu.Lock()
	previous := r.state[c]
	r.state[c] = enabled
	r.mu.Unlock()

	if r.config.audit != nil {
		rec := entities.NewAuditRecord(r.config.clock.Now())
		rec.Resource = string(c)
		rec.Outcome = entities.OutcomeSuccess
		rec.Detail = fmt.Sprintf("capability %s: %t -> %t", c, previous, enabled)
		if err := r.config.audit.Append(rec); err != nil {
			r.config.logger.Warn("audit write failed for capability update",
				"capability", string(c), "error", err)
		}
	}

	return previous, nil
}

// Snapshot returns a copy of the full capability map.
func (r *Registry) Snapshot() map[entities.Capability]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[entities.Capability]bool, len(r.state))
	for c, enabled := range r.state {
		out[c] = enabled
	}
	return out
}
