package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

type portScanner interface {
	Scan(ctx context.Context, host string, port int) (*model.PortScanResult, error)
}

type PortHandler struct {
	scanner portScanner
}

func NewPortHandler(scanner portScanner) *PortHandler {
	return &PortHandler{scanner: scanner}
}

func (h *PortHandler) RegisterRoutes(r chi.Router) {
	r.Post("/scan-port", h.Scan)
}

func (h *PortHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req model.ScanPortRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Host) == "" || req.Port == 0 {
		writeError(w, http.StatusBadRequest, "Host and port are required")
		return
	}

	res, err := h.scanner.Scan(r.Context(), req.Host, req.Port)
	if err != nil {
		respondError(w, err, "Failed to scan port")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
