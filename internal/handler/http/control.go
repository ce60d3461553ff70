package http

import (
	"encoding/json"
	"net/http"

	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/utils"
)

// TriggerReasonManual labels cycles requested through the control API.
const TriggerReasonManual = "manual"

type triggerRequest struct {
	Reason string `json:"reason,omitempty"`
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var request triggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			log.Err(err).Str("func", "*Handler.triggerSync").Msg("invalid JSON was passed")
			http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
			return
		}
	}

	reason := request.Reason
	if reason == "" {
		reason = TriggerReasonManual
	}

	h.orchestrator.TriggerSync(reason)

	utils.WriteJSON(w, acceptedResponse{Accepted: true}, http.StatusAccepted)
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.setEnabled").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.orchestrator.SetSyncEnabled(ctx, request.Enabled); err != nil {
		log.Err(err).Str("func", "*Handler.setEnabled").Msg("error toggling sync")
		http.Error(w, "error toggling sync", statusFromError(err))
		return
	}

	utils.WriteJSON(w, enabledRequest{Enabled: request.Enabled}, http.StatusOK)
}
