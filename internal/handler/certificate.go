package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/certinfo"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/csr"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/keymatch"
)

// CertificateHandler serves the offline PEM tools.
type CertificateHandler struct {
	now func() time.Time
}

func NewCertificateHandler(now func() time.Time) *CertificateHandler {
	if now == nil {
		now = time.Now
	}
	return &CertificateHandler{now: now}
}

func (h *CertificateHandler) RegisterRoutes(r chi.Router) {
	r.Post("/decode-certificate", h.DecodeCertificate)
	r.Post("/decode-csr", h.DecodeCSR)
	r.Post("/match-cert-key", h.MatchKey)
}

func (h *CertificateHandler) DecodeCertificate(w http.ResponseWriter, r *http.Request) {
	var req model.DecodeCertificateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := certinfo.DecodeBundle(req.Certificate, h.now())
	if err != nil {
		respondError(w, err, "Failed to decode certificate")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CertificateHandler) DecodeCSR(w http.ResponseWriter, r *http.Request) {
	var req model.DecodeCSRRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := csr.Decode(req.CSR, h.now())
	if err != nil {
		respondError(w, err, "Failed to decode CSR")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CertificateHandler) MatchKey(w http.ResponseWriter, r *http.Request) {
	var req model.MatchCertKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := keymatch.Match(req.Certificate, req.PrivateKey, h.now())
	if err != nil {
		respondError(w, err, "Failed to process certificate and key")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
