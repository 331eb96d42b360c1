// Package gate implements the execution gate: the single wrapper around
// side-effecting actions. It refuses non-allowed verdicts, simulates in
// dry-run mode, verifies backups on mutating file operations, and appends
// exactly one audit record per call.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// DefaultEffectTimeout bounds a live effect handler call.
const DefaultEffectTimeout = 60 * time.Second

// gateConfig holds configuration for the Gate.
type gateConfig struct {
	effectTimeout time.Duration
	clock         ports.Clock
	logger        *slog.Logger
}

func defaultGateConfig() gateConfig {
	return gateConfig{
		effectTimeout: DefaultEffectTimeout,
		clock:         ports.SystemClock(),
		logger:        slog.Default(),
	}
}

// GateOption configures the Gate.
type GateOption func(*gateConfig)

// WithEffectTimeout bounds how long a live effect handler may run.
func WithEffectTimeout(d time.Duration) GateOption {
	return func(c *gateConfig) {
		if d > 0 {
			c.effectTimeout = d
		}
	}
}

// WithClock sets the time source for audit timestamps.
func WithClock(clock ports.Clock) GateOption {
	return func(c *gateConfig) {
		c.clock = clock
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(c *gateConfig) {
		c.logger = l
	}
}

// Gate dispatches allowed requests to their effect handlers.
type Gate struct {
	handlers map[entities.ActionKind]ports.EffectHandler
	audit    ports.AuditLog
	config   gateConfig
}

// New creates a Gate over the handler table and audit log.
func New(handlers map[entities.ActionKind]ports.EffectHandler, audit ports.AuditLog, opts ...GateOption) *Gate {
	cfg := defaultGateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Gate{handlers: handlers, audit: audit, config: cfg}
}

// Execute runs one request under the given verdict. Every call, dry-run or
// live, allowed or denied, produces exactly one audit record. A denied
// verdict is an audited no-op, never a silent skip.
func (g *Gate) Execute(ctx context.Context, req entities.ActionRequest, verdict entities.Verdict, dryRun bool) entities.ExecutionResult {
	now := g.config.clock.Now()
	mode := entities.ModeLive
	if dryRun {
		mode = entities.ModeDryRun
	}

	rec := entities.NewAuditRecord(now)
	rec.RequestID = req.ID
	rec.Kind = req.Kind
	rec.Resource = req.Resource
	rec.Verdict = verdict.State.String()
	rec.Reason = verdict.Reason
	rec.Mode = mode
	rec.GrantID = verdict.GrantID

	result := g.run(ctx, req, verdict, dryRun)

	rec.Outcome = result.Outcome
	if result.Reason != "" {
		rec.Reason = result.Reason
	}
	rec.Detail = result.Detail

	// An audit failure is surfaced, never allowed to reverse the outcome.
	if err := g.audit.Append(rec); err != nil {
		g.config.logger.Warn("audit write failed",
			"request_id", req.ID,
			"reason", string(entities.ReasonAuditWriteFailed),
			"error", err,
		)
	}

	result.Timestamp = now
	return result
}

func (g *Gate) run(ctx context.Context, req entities.ActionRequest, verdict entities.Verdict, dryRun bool) entities.ExecutionResult {
	if !verdict.Allowed() {
		return entities.ExecutionResult{
			Outcome: entities.OutcomeDenied,
			Mode:    modeOf(dryRun),
			Reason:  verdict.Reason,
			Detail:  fmt.Sprintf("refused %s: %s", req.Summary(), verdict.Reason),
		}
	}

	if dryRun {
		// Deterministic simulation: echo the action without touching the
		// effect handler.
		return entities.ExecutionResult{
			Outcome: entities.OutcomeSuccess,
			Mode:    entities.ModeDryRun,
			Detail:  fmt.Sprintf("[dry-run] would %s", req.Summary()),
		}
	}

	handler, ok := g.handlers[req.Kind]
	if !ok {
		return entities.ExecutionResult{
			Outcome: entities.OutcomeFailure,
			Mode:    entities.ModeLive,
			Reason:  entities.ReasonEffectHandlerFailure,
			Detail:  fmt.Sprintf("no effect handler for %s", req.Kind),
		}
	}

	effectCtx, cancel := context.WithTimeout(ctx, g.config.effectTimeout)
	defer cancel()

	effect, err := handler.Perform(effectCtx, req, verdict.CanonicalPath)
	if err != nil {
		detail := (&errors.EffectError{Kind: req.Kind, Err: err}).Error()
		if effectCtx.Err() != nil {
			detail = fmt.Sprintf("effect handler for %s timed out after %s", req.Kind, g.config.effectTimeout)
		}
		return entities.ExecutionResult{
			Outcome: entities.OutcomeFailure,
			Mode:    entities.ModeLive,
			Reason:  entities.ReasonEffectHandlerFailure,
			Detail:  detail,
		}
	}

	if mutatesFile(req.Kind) && effect.Replaced && effect.BackupHandle == "" {
		return entities.ExecutionResult{
			Outcome: entities.OutcomeFailure,
			Mode:    entities.ModeLive,
			Reason:  entities.ReasonBackupMissing,
			Detail:  (&errors.BackupMissingError{Path: verdict.CanonicalPath}).Error(),
		}
	}

	return entities.ExecutionResult{
		Outcome: entities.OutcomeSuccess,
		Mode:    entities.ModeLive,
		Detail:  effect.Detail,
		Data:    effect.Data,
	}
}

func mutatesFile(k entities.ActionKind) bool {
	return k == entities.ActionFileWrite || k == entities.ActionFileDelete
}

func modeOf(dryRun bool) entities.ExecutionMode {
	if dryRun {
		return entities.ModeDryRun
	}
	return entities.ModeLive
}
