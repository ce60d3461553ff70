// Package http exposes the engine's local observability and control API:
// sync status, the unresolved-conflict list, manual resolution, and
// on-demand triggering. The API is consumed by the desktop UI over
// loopback.
package http

import (
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/service"
	"github.com/ortano/docsync/internal/store"
)

type Handler struct {
	orchestrator service.Orchestrator
	mutations    store.MutationStore

	logger *logger.Logger
}

func NewHandler(orchestrator service.Orchestrator, mutations store.MutationStore, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		orchestrator: orchestrator,
		mutations:    mutations,
		logger:       logger,
	}
}
