package ports

import (
	"context"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// EffectHandler performs the actual side effect for an allowed action.
// Handlers never perform their own authorization; all gating happens
// before Perform is called. For file-write and file-delete the handler
// must produce a backup of prior content and return its handle.
type EffectHandler interface {
	Perform(ctx context.Context, req entities.ActionRequest, canonicalPath string) (entities.EffectResult, error)
}

// EffectHandlerFunc adapts a function to the EffectHandler interface.
type EffectHandlerFunc func(ctx context.Context, req entities.ActionRequest, canonicalPath string) (entities.EffectResult, error)

// Perform implements EffectHandler.
func (f EffectHandlerFunc) Perform(ctx context.Context, req entities.ActionRequest, canonicalPath string) (entities.EffectResult, error) {
	return f(ctx, req, canonicalPath)
}
