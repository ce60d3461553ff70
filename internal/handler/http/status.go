package http

import (
	"net/http"

	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/service"
	"github.com/ortano/docsync/internal/utils"
	"github.com/ortano/docsync/models"
)

// statusResponse is the aggregate snapshot the UI polls: engine state,
// queue depth, deferred links and telemetry counters in one round trip.
type statusResponse struct {
	State models.EngineState `json:"state"`

	Enabled  bool   `json:"enabled"`
	DeviceID string `json:"device_id"`

	PendingMutations int `json:"pending_mutations"`
	PendingLinks     int `json:"pending_links"`

	Telemetry service.TelemetrySnapshot `json:"telemetry"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	state, err := h.mutations.LoadOrCreateSyncState(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error loading sync state")
		http.Error(w, "error loading sync state", statusFromError(err))
		return
	}

	pending, err := h.mutations.CountPendingMutations(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error counting pending mutations")
		http.Error(w, "error counting pending mutations", statusFromError(err))
		return
	}

	links, err := h.mutations.CountPendingLinks(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error counting pending links")
		http.Error(w, "error counting pending links", statusFromError(err))
		return
	}

	response := statusResponse{
		State:            h.orchestrator.State(),
		Enabled:          state.IsSyncEnabled,
		DeviceID:         state.DeviceID,
		PendingMutations: pending,
		PendingLinks:     links,
		Telemetry:        h.orchestrator.Telemetry(),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}
