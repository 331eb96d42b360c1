package authz_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/authz"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/infrastructure/consentstore"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/infrastructure/registry"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/infrastructure/sandbox"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/internal/testutil"
)

// harness wires an Engine over real infrastructure rooted in a temp dir.
type harness struct {
	engine   *authz.Engine
	prompter *testutil.ScriptedPrompter
	store    *consentstore.FileStore
	root     string
	now      time.Time
}

func newHarness(t *testing.T, caps map[entities.Capability]bool, opts ...authz.EngineOption) *harness {
	t.Helper()

	h := &harness{
		prompter: &testutil.ScriptedPrompter{},
		now:      time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	reg, err := registry.New(caps)
	require.NoError(t, err)

	h.root = t.TempDir()
	box, err := sandbox.New([]string{h.root})
	require.NoError(t, err)

	h.store = consentstore.New(
		consentstore.WithPath(filepath.Join(t.TempDir(), "consents.yaml")))

	opts = append([]authz.EngineOption{
		authz.WithClock(ports.ClockFunc(func() time.Time { return h.now })),
		authz.WithDenialHandler(&authz.NopDenialHandler{}),
	}, opts...)

	h.engine = authz.NewEngine(reg, box, h.store, h.prompter, opts...)
	return h
}

// writeReq returns a file-write request targeting a path under the safe root.
func (h *harness) writeReq(t *testing.T, name string) entities.ActionRequest {
	t.Helper()
	path := filepath.Join(h.root, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return entities.NewActionRequest(entities.ActionFileWrite, path)
}

func TestEngine_DisabledCapabilityDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: false})

	req := entities.NewActionRequest(entities.ActionFileRead, filepath.Join(h.root, "a.txt"))
	verdict, err := h.engine.Authorize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonCapabilityDisabled, verdict.Reason)
	assert.True(t, verdict.Auto)
	// Capability gating never reaches the prompt.
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_UnknownKindDenies(t *testing.T) {
	h := newHarness(t, nil)

	verdict, err := h.engine.Authorize(context.Background(),
		entities.ActionRequest{ID: "r1", Kind: "format-disk", Resource: "/"})

	require.Error(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonUnknownCapability, verdict.Reason)
}

func TestEngine_OutsideSafeRootsDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})

	outside := filepath.Join(t.TempDir(), "other.txt")
	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionFileRead, outside))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonOutsideSafeRoots, verdict.Reason)
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_TraversalOutOfRootDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})

	// Starts under the root but ".." escapes it.
	sneaky := filepath.Join(h.root, "sub", "..", "..", "escape.txt")
	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionFileRead, sneaky))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonOutsideSafeRoots, verdict.Reason)
}

func TestEngine_LowRiskInSandboxAutoAllows(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})

	path := filepath.Join(h.root, "nested", "deep")
	require.NoError(t, os.MkdirAll(path, 0o755))

	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionFileList, path))

	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, verdict.State)
	assert.True(t, verdict.Auto)
	assert.Equal(t, entities.RiskLow, verdict.Tier)
	assert.NotEmpty(t, verdict.CanonicalPath)
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_MediumRiskPrompts(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentAllowOnce}}

	verdict, err := h.engine.Authorize(context.Background(), h.writeReq(t, "a.txt"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, verdict.State)
	assert.False(t, verdict.Auto)
	assert.NotEmpty(t, verdict.GrantID)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_AllowOnceIsSingleUse(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
	}

	req := h.writeReq(t, "a.txt")

	first, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, first.State)

	// The identical request prompts again; nothing survived the first use.
	second, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, second.State)
	assert.Equal(t, 2, h.prompter.PromptCount())
}

func TestEngine_AllowAlwaysPersistsAcrossRequests(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentAllowAlways}}

	req := h.writeReq(t, "a.txt")

	first, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, first.State)

	second, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, second.State)
	assert.NotEmpty(t, second.GrantID)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_AllowAlwaysExpiresAtBoundary(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{
		{Decision: entities.ConsentAllowAlways},
		{Decision: entities.ConsentDeny},
	}

	req := h.writeReq(t, "a.txt")

	first, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, first.State)

	// One second past the 30-day window the grant is stale, so the engine
	// prompts again and this time the user denies.
	h.now = h.now.Add(30*24*time.Hour + time.Second)
	second, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, second.State)
	assert.Equal(t, entities.ReasonConsentDenied, second.Reason)
	assert.Equal(t, 2, h.prompter.PromptCount())
}

func TestEngine_DenyDecisionPersists(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentDeny}}

	req := h.writeReq(t, "a.txt")

	first, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, first.State)
	assert.Equal(t, entities.ReasonConsentDenied, first.Reason)

	// The recorded denial answers the second request without a prompt.
	second, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, second.State)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_ProtectedTargetBeatsAllowAlways(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityProcessControl: true})

	req := entities.NewActionRequest(entities.ActionProcessKill, "systemd")

	// Even a pre-existing allow-always grant cannot override the
	// protected-target rule: it is evaluated before any consent lookup.
	subject := entities.NewSubjectKey(req, "")
	_, err := h.store.Record(subject, entities.ConsentAllowAlways, h.now)
	require.NoError(t, err)

	verdict, err := h.engine.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonProtectedTarget, verdict.Reason)
	assert.True(t, verdict.Auto)
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_ProtectedTargetCoversContainingNames(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityProcessControl: true})

	// Names that merely contain a protected token are just as absolute:
	// no prompt, no grant, DENIED.
	for _, name := range []string{"systemd-logind", "lsass.exe.bak", "svchost.exe (pid 4)"} {
		verdict, err := h.engine.Authorize(context.Background(),
			entities.NewActionRequest(entities.ActionProcessKill, name))

		require.NoError(t, err)
		assert.Equal(t, entities.StateDenied, verdict.State, name)
		assert.Equal(t, entities.ReasonProtectedTarget, verdict.Reason, name)
	}
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_UnprotectedProcessStillPrompts(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityProcessControl: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentAllowOnce}}

	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionProcessKill, "chrome"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, verdict.State)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_ProtectedTargetMatchingIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityProcessControl: true})

	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionProcessKill, "  LSASS.EXE "))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonProtectedTarget, verdict.Reason)
}

func TestEngine_NonInteractiveDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.NonInteractive = true

	verdict, err := h.engine.Authorize(context.Background(), h.writeReq(t, "a.txt"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonConsentDenied, verdict.Reason)
	assert.Zero(t, h.prompter.PromptCount())
}

func TestEngine_ConsentTimeoutDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true},
		authz.WithConsentTimeout(50*time.Millisecond))
	h.prompter.Block = true

	verdict, err := h.engine.Authorize(context.Background(), h.writeReq(t, "a.txt"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonConsentTimeout, verdict.Reason)
}

func TestEngine_CancelledPromptDenies(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{{Cancelled: true}}

	verdict, err := h.engine.Authorize(context.Background(), h.writeReq(t, "a.txt"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonConsentTimeout, verdict.Reason)
}

func TestEngine_SubjectLocksReleasedAfterUse(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
	}

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := h.engine.Authorize(context.Background(), h.writeReq(t, name))
		require.NoError(t, err)
	}

	// Distinct subject keys must not accumulate across requests.
	assert.Zero(t, h.engine.InflightSubjects())
}

func TestEngine_ConcurrentSameSubjectReleasesLock(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
		{Decision: entities.ConsentAllowOnce},
	}

	req := h.writeReq(t, "a.txt")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.engine.Authorize(context.Background(), req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, h.engine.InflightSubjects())
	assert.Equal(t, 4, h.prompter.PromptCount())
}

func TestEngine_ShellExecIsAlwaysPrompted(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityRunShell: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentAllowOnce}}

	verdict, err := h.engine.Authorize(context.Background(),
		entities.NewActionRequest(entities.ActionShellExec, "ls -la"))

	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, verdict.State)
	assert.Equal(t, entities.RiskCritical, verdict.Tier)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_OversizedWriteDeniedByUser(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true})
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentDeny}}

	// A 10MB write against the default 5MB threshold escalates Medium to
	// High; the user refuses at the prompt.
	req := entities.NewActionRequest(entities.ActionFileWrite, filepath.Join(h.root, "huge.bin")).
		WithSize(10 * 1024 * 1024)
	verdict, err := h.engine.Authorize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, entities.StateDenied, verdict.State)
	assert.Equal(t, entities.ReasonConsentDenied, verdict.Reason)
	assert.Equal(t, entities.RiskHigh, verdict.Tier)
	assert.Equal(t, 1, h.prompter.PromptCount())
}

func TestEngine_SizeEscalationForcesPrompt(t *testing.T) {
	h := newHarness(t, map[entities.Capability]bool{entities.CapabilityFS: true},
		authz.WithRiskAssessor(entities.NewRiskAssessor(entities.WithMaxFileSize(10))))
	h.prompter.Responses = []ports.ConsentResponse{{Decision: entities.ConsentAllowOnce}}

	path := filepath.Join(h.root, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789AB"), 0o644))

	// A read is normally auto-allowed; above the size threshold it
	// escalates to Medium and requires consent.
	req := entities.NewActionRequest(entities.ActionFileRead, path).WithSize(12)
	verdict, err := h.engine.Authorize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, entities.StateAllowed, verdict.State)
	assert.Equal(t, entities.RiskMedium, verdict.Tier)
	assert.Equal(t, 1, h.prompter.PromptCount())
}
