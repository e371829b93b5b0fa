package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const serviceName = "SSL Certificate Checker"

type HealthHandler struct {
	version string
	now     func() time.Time
}

func NewHealthHandler(version string, now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{version: version, now: now}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Health{
		Status:    "UP",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   h.version,
	})
}
