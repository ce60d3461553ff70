package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/utils"
	"github.com/ortano/docsync/models"
)

// conflictView is a Conflict enriched with the human-readable reason the
// manual-review UI shows next to each item.
type conflictView struct {
	models.Conflict
	DisplayReason string `json:"display_reason"`
}

type conflictListResponse struct {
	Conflicts []conflictView `json:"conflicts"`
	Length    int            `json:"length"`
}

func (h *Handler) listConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts := h.orchestrator.Conflicts()

	views := make([]conflictView, 0, len(conflicts))
	for _, c := range conflicts {
		views = append(views, conflictView{Conflict: c, DisplayReason: c.Reason.DisplayString()})
	}

	utils.WriteJSON(w, conflictListResponse{Conflicts: views, Length: len(views)}, http.StatusOK)
}

func (h *Handler) resolveKeepMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	opID := chi.URLParam(r, "opID")
	if err := h.orchestrator.ResolveKeepMine(ctx, opID); err != nil {
		log.Err(err).Str("func", "*Handler.resolveKeepMine").Str("op_id", opID).Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	utils.WriteJSON(w, acceptedResponse{Accepted: true}, http.StatusOK)
}

func (h *Handler) resolveKeepServer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	opID := chi.URLParam(r, "opID")
	if err := h.orchestrator.ResolveKeepServer(ctx, opID); err != nil {
		log.Err(err).Str("func", "*Handler.resolveKeepServer").Str("op_id", opID).Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	utils.WriteJSON(w, acceptedResponse{Accepted: true}, http.StatusOK)
}

func (h *Handler) resolveAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var resolution models.Resolution
	switch choice := r.URL.Query().Get("choice"); choice {
	case "keep_mine":
		resolution = models.KeepMine
	case "keep_server":
		resolution = models.KeepServer
	default:
		log.Error().Str("func", "*Handler.resolveAll").Str("choice", choice).Msg("unknown resolution choice")
		http.Error(w, "choice must be keep_mine or keep_server", http.StatusBadRequest)
		return
	}

	if err := h.orchestrator.ResolveAll(ctx, resolution); err != nil {
		log.Err(err).Str("func", "*Handler.resolveAll").Msg("error resolving conflicts")
		http.Error(w, "error resolving conflicts", statusFromError(err))
		return
	}

	utils.WriteJSON(w, acceptedResponse{Accepted: true}, http.StatusOK)
}
