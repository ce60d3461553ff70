package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api/sync", func(r chi.Router) {
		r.Get("/status", h.getStatus)
		r.Post("/trigger", h.triggerSync)
		r.Post("/enabled", h.setEnabled)

		r.Get("/conflicts", h.listConflicts)
		r.Post("/conflicts/resolve-all", h.resolveAll)
		r.Post("/conflicts/{opID}/keep-mine", h.resolveKeepMine)
		r.Post("/conflicts/{opID}/keep-server", h.resolveKeepServer)

		r.Get("/events", h.listEvents)
	})

	return router
}
