package http

import (
	"net/http"
	"strconv"

	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/utils"
	"github.com/ortano/docsync/models"
)

const defaultEventLimit = 50

type eventListResponse struct {
	Events []models.ConflictEvent `json:"events"`
	Length int                    `json:"length"`
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Error().Str("func", "*Handler.listEvents").Str("limit", raw).Msg("invalid limit parameter")
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.mutations.ListConflictEvents(ctx, limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listEvents").Msg("error listing conflict events")
		http.Error(w, "error listing conflict events", statusFromError(err))
		return
	}

	utils.WriteJSON(w, eventListResponse{Events: events, Length: len(events)}, http.StatusOK)
}
