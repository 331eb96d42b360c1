// Package testutil provides shared fakes for the safety core's tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) ports.Clock {
	return ports.ClockFunc(func() time.Time { return t })
}

// RecordingAuditLog collects appended records in memory.
type RecordingAuditLog struct {
	mu      sync.Mutex
	Records []entities.AuditRecord
	// Err, when set, is returned from Append to simulate write failure.
	Err error
}

func (l *RecordingAuditLog) Append(rec entities.AuditRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Records = append(l.Records, rec)
	return nil
}

// Len returns how many records were appended.
func (l *RecordingAuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Records)
}

// Last returns the most recent record.
func (l *RecordingAuditLog) Last() entities.AuditRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Records[len(l.Records)-1]
}

// ScriptedPrompter replays a fixed sequence of consent responses. Once the
// script is exhausted it cancels, mimicking a user who walked away.
type ScriptedPrompter struct {
	mu        sync.Mutex
	Responses []ports.ConsentResponse
	Prompts   []ports.ConsentPrompt
	// Interactive defaults to true; set NonInteractive to flip it.
	NonInteractive bool
	// Block, when set, waits for ctx to expire instead of answering,
	// simulating a consent timeout.
	Block bool
}

func (p *ScriptedPrompter) IsInteractive() bool {
	return !p.NonInteractive
}

func (p *ScriptedPrompter) RequestConsent(ctx context.Context, prompt ports.ConsentPrompt) (ports.ConsentResponse, error) {
	p.mu.Lock()
	p.Prompts = append(p.Prompts, prompt)
	if p.Block {
		p.mu.Unlock()
		<-ctx.Done()
		return ports.ConsentResponse{Cancelled: true}, nil
	}
	defer p.mu.Unlock()
	if len(p.Responses) == 0 {
		return ports.ConsentResponse{Cancelled: true}, nil
	}
	resp := p.Responses[0]
	p.Responses = p.Responses[1:]
	return resp, nil
}

// PromptCount returns how many prompts were presented.
func (p *ScriptedPrompter) PromptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Prompts)
}

// StaticEffectHandler returns a fixed result (or error) and counts calls.
type StaticEffectHandler struct {
	mu     sync.Mutex
	Result entities.EffectResult
	Err    error
	calls  int
}

func (h *StaticEffectHandler) Perform(_ context.Context, _ entities.ActionRequest, _ string) (entities.EffectResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.Err != nil {
		return entities.EffectResult{}, h.Err
	}
	return h.Result, nil
}

// Calls returns how many times Perform ran.
func (h *StaticEffectHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}
