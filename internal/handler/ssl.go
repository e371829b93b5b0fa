package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/sslcheck"
)

type sslChecker interface {
	Check(ctx context.Context, target string, port int) (*model.SSLCheckResult, error)
}

type SSLHandler struct {
	checker sslChecker
}

func NewSSLHandler(checker sslChecker) *SSLHandler {
	return &SSLHandler{checker: checker}
}

func (h *SSLHandler) RegisterRoutes(r chi.Router) {
	r.Post("/check-ssl", h.Check)
}

func (h *SSLHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req model.CheckSSLRequest
	if !decodeBody(w, r, &req) {
		return
	}

	port := sslcheck.DefaultPort
	if req.Port != nil {
		port = *req.Port
	}

	res, err := h.checker.Check(r.Context(), req.URL, port)
	if err != nil {
		respondError(w, err, "Failed to check SSL certificate")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
