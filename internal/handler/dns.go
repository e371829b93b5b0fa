package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

type dnsResolver interface {
	Lookup(ctx context.Context, domain string) (*model.DNSLookupResult, error)
}

type DNSHandler struct {
	resolver dnsResolver
}

func NewDNSHandler(resolver dnsResolver) *DNSHandler {
	return &DNSHandler{resolver: resolver}
}

func (h *DNSHandler) RegisterRoutes(r chi.Router) {
	r.Post("/dns-lookup", h.Lookup)
}

func (h *DNSHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req model.DNSLookupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.resolver.Lookup(r.Context(), req.Domain)
	if err != nil {
		respondError(w, err, "DNS lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
