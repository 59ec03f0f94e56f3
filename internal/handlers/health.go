package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/docuflow/doc-scanner/internal/store"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// (GET /health)
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		_ = render.Render(w, r, HealthReply{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	counts, err := h.store.Upload().CountByStatus(r.Context())
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		_ = render.Render(w, r, HealthReply{
			Status:   "unhealthy",
			Database: "connected",
			Error:    err.Error(),
		})
		return
	}

	_ = render.Render(w, r, HealthReply{
		Status:     "healthy",
		Database:   "connected",
		FileCounts: counts,
	})
}
