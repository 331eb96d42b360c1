package authz

import (
	"log/slog"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// DenialHandler is called when the engine denies a request.
// Implementations can log, collect metrics, or take other actions.
type DenialHandler interface {
	OnDenial(req entities.ActionRequest, reason entities.ReasonCode)
}

// Ensure implementations satisfy the interface.
var _ DenialHandler = (*SlogDenialHandler)(nil)
var _ DenialHandler = (*NopDenialHandler)(nil)

// SlogDenialHandler logs denials through slog.
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(req entities.ActionRequest, reason entities.ReasonCode) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("action denied",
		"kind", string(req.Kind),
		"resource", req.Resource,
		"reason", string(reason),
	)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(entities.ActionRequest, entities.ReasonCode) {}
