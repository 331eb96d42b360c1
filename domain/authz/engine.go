// Package authz implements the authorization engine: the policy state
// machine that turns an ActionRequest into a terminal verdict, driving the
// interactive consent protocol when static policy cannot decide.
package authz

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// DefaultConsentTimeout bounds how long a consent prompt may stay open
// before it resolves to a denial.
const DefaultConsentTimeout = 30 * time.Second

// DefaultProtectedTargets is the static deny-list of process and service
// names that no grant can override. Entries are doublestar patterns
// matched against the lowercased target name; the defaults use substring
// form so variants like "systemd-logind" or "lsass.exe.bak" stay covered.
var DefaultProtectedTargets = []string{
	"*system*", "*kernel*", "*init*", "*systemd*",
	"*csrss.exe*", "*wininit.exe*", "*winlogon.exe*",
	"*lsass.exe*", "*services.exe*", "*svchost.exe*",
}

// engineConfig holds configuration for the Engine.
type engineConfig struct {
	consentTimeout   time.Duration
	protectedTargets []string
	clock            ports.Clock
	assessor         *entities.RiskAssessor
	denialHandler    DenialHandler
	logger           *slog.Logger
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		consentTimeout:   DefaultConsentTimeout,
		protectedTargets: DefaultProtectedTargets,
		clock:            ports.SystemClock(),
		assessor:         entities.NewRiskAssessor(),
		denialHandler:    &SlogDenialHandler{},
		logger:           slog.Default(),
	}
}

// EngineOption configures the Engine.
type EngineOption func(*engineConfig)

// WithConsentTimeout bounds the consent prompt. A timeout always resolves
// to a denial, never to an allow.
func WithConsentTimeout(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		if d > 0 {
			c.consentTimeout = d
		}
	}
}

// WithProtectedTargets replaces the protected process deny-list. Entries
// are doublestar patterns matched against the lowercased target name.
func WithProtectedTargets(patterns []string) EngineOption {
	return func(c *engineConfig) {
		c.protectedTargets = patterns
	}
}

// WithClock sets the time source used for grant expiry checks.
func WithClock(clock ports.Clock) EngineOption {
	return func(c *engineConfig) {
		c.clock = clock
	}
}

// WithRiskAssessor sets the risk assessor (size thresholds etc).
func WithRiskAssessor(a *entities.RiskAssessor) EngineOption {
	return func(c *engineConfig) {
		c.assessor = a
	}
}

// WithDenialHandler sets the denial handler.
func WithDenialHandler(h DenialHandler) EngineOption {
	return func(c *engineConfig) {
		c.denialHandler = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = l
	}
}

// Engine evaluates the transition rules in strict order; the first
// matching rule decides. Every request reaches exactly one terminal
// verdict.
type Engine struct {
	registry ports.CapabilityRegistry
	sandbox  ports.PathSandbox
	store    ports.ConsentStore
	prompter ports.ConsentPrompter
	config   engineConfig

	mu       sync.Mutex
	inflight map[entities.SubjectKey]*subjectLock
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(registry ports.CapabilityRegistry, sandbox ports.PathSandbox,
	store ports.ConsentStore, prompter ports.ConsentPrompter, opts ...EngineOption) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		registry: registry,
		sandbox:  sandbox,
		store:    store,
		prompter: prompter,
		config:   cfg,
		inflight: make(map[entities.SubjectKey]*subjectLock),
	}
}

// Authorize runs the state machine for one request. Denials are verdicts,
// not errors; the error return covers operational failures only (store
// I/O, unknown action kinds) and the verdict is still terminal when it is
// non-nil.
func (e *Engine) Authorize(ctx context.Context, req entities.ActionRequest) (entities.Verdict, error) {
	if !req.Kind.IsKnown() {
		e.deny(req, entities.ReasonUnknownCapability)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonUnknownCapability, Auto: true},
			&errors.UnknownCapabilityError{Name: string(req.Kind)}
	}

	// Rule 1: required capability must be enabled.
	enabled, err := e.registry.IsEnabled(req.Kind.RequiredCapability())
	if err != nil {
		e.deny(req, entities.ReasonUnknownCapability)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonUnknownCapability, Auto: true}, err
	}
	if !enabled {
		e.deny(req, entities.ReasonCapabilityDisabled)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonCapabilityDisabled, Auto: true}, nil
	}

	// Rule 2: filesystem targets must resolve inside the safe roots.
	var canonical string
	if req.Kind.TargetsFilesystem() {
		canonical, err = e.sandbox.Authorize(req.Resource)
		if err != nil {
			reason := entities.ReasonOutsideSafeRoots
			var coded errors.CodedError
			if stdErrors.As(err, &coded) {
				reason = coded.Code()
			}
			e.deny(req, reason)
			return entities.Verdict{State: entities.StateDenied, Reason: reason, Auto: true}, nil
		}
	}

	// Rule 3: protected targets are absolute; evaluated before any consent
	// lookup so an allow-always grant can never override it.
	if req.Kind.TargetsProcess() && e.isProtectedTarget(req.Resource) {
		e.deny(req, entities.ReasonProtectedTarget)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonProtectedTarget, Auto: true}, nil
	}

	tier := e.config.assessor.Assess(req)

	// Rule 4: low-risk actions with an enabled capability and an
	// in-sandbox path need no consent.
	if tier == entities.RiskLow {
		return entities.Verdict{State: entities.StateAllowed, Tier: tier, CanonicalPath: canonical, Auto: true}, nil
	}

	// Rule 5: consult the consent store, prompting when no grant exists.
	subject := entities.NewSubjectKey(req, canonical)
	unlock := e.lockSubject(subject)
	defer unlock()

	now := e.config.clock.Now()
	grant, found, err := e.store.Lookup(subject, now)
	if err != nil {
		// Fail closed on store errors.
		e.deny(req, entities.ReasonConsentDenied)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier}, err
	}
	if found {
		if grant.Allows(now) {
			return entities.Verdict{State: entities.StateAllowed, Tier: tier, CanonicalPath: canonical, GrantID: grant.ID}, nil
		}
		e.deny(req, entities.ReasonConsentDenied)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier, GrantID: grant.ID}, nil
	}

	return e.awaitConsent(ctx, req, subject, tier, canonical)
}

// awaitConsent is the AWAITING_CONSENT suspension point.
func (e *Engine) awaitConsent(ctx context.Context, req entities.ActionRequest,
	subject entities.SubjectKey, tier entities.RiskTier, canonical string) (entities.Verdict, error) {
	if !e.prompter.IsInteractive() {
		e.deny(req, entities.ReasonConsentDenied)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier}, nil
	}

	promptCtx, cancel := context.WithTimeout(ctx, e.config.consentTimeout)
	defer cancel()

	resp, err := e.prompter.RequestConsent(promptCtx, ports.ConsentPrompt{
		Request: req,
		Tier:    tier,
		Subject: subject,
	})
	if err != nil || resp.Cancelled {
		e.deny(req, entities.ReasonConsentTimeout)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentTimeout, Tier: tier}, nil
	}

	now := e.config.clock.Now()
	switch resp.Decision {
	case entities.ConsentAllowOnce:
		// Consumed by this request; nothing persists, the next identical
		// request prompts again.
		grant, err := e.store.Record(subject, entities.ConsentAllowOnce, now)
		if err != nil {
			e.deny(req, entities.ReasonConsentDenied)
			return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier}, err
		}
		if _, _, err := e.store.Lookup(subject, now); err != nil {
			e.config.logger.Warn("failed to consume allow-once grant", "subject", string(subject), "error", err)
		}
		return entities.Verdict{State: entities.StateAllowed, Tier: tier, CanonicalPath: canonical, GrantID: grant.ID}, nil

	case entities.ConsentAllowAlways:
		grant, err := e.store.Record(subject, entities.ConsentAllowAlways, now)
		if err != nil {
			e.deny(req, entities.ReasonConsentDenied)
			return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier}, err
		}
		return entities.Verdict{State: entities.StateAllowed, Tier: tier, CanonicalPath: canonical, GrantID: grant.ID}, nil

	case entities.ConsentDeny:
		grant, err := e.store.Record(subject, entities.ConsentDeny, now)
		e.deny(req, entities.ReasonConsentDenied)
		if err != nil {
			return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier}, err
		}
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentDenied, Tier: tier, GrantID: grant.ID}, nil

	default:
		e.deny(req, entities.ReasonConsentTimeout)
		return entities.Verdict{State: entities.StateDenied, Reason: entities.ReasonConsentTimeout, Tier: tier}, nil
	}
}

// subjectLock is one entry in the in-flight table. waiters counts the
// holders plus queued requests so the entry can be evicted once idle.
type subjectLock struct {
	mu      sync.Mutex
	waiters int
}

// lockSubject serializes evaluation per subject key so a pending prompt is
// never duplicated for the same key. Entries are removed when the last
// waiter releases; the table never grows with the session.
func (e *Engine) lockSubject(key entities.SubjectKey) func() {
	e.mu.Lock()
	l, ok := e.inflight[key]
	if !ok {
		l = &subjectLock{}
		e.inflight[key] = l
	}
	l.waiters++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(e.inflight, key)
		}
		e.mu.Unlock()
	}
}

func (e *Engine) isProtectedTarget(name string) bool {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, pattern := range e.config.protectedTargets {
		if matched, _ := doublestar.Match(strings.ToLower(pattern), target); matched {
			return true
		}
	}
	return false
}

func (e *Engine) deny(req entities.ActionRequest, reason entities.ReasonCode) {
	e.config.denialHandler.OnDenial(req, reason)
}
