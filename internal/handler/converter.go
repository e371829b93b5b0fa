package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/codec"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/epoch"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/jwtinspect"
)

// ConverterHandler serves the encoding and time tools.
type ConverterHandler struct {
	now func() time.Time
	loc *time.Location
}

// NewConverterHandler uses loc for "local" time renderings.
func NewConverterHandler(now func() time.Time, loc *time.Location) *ConverterHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &ConverterHandler{now: now, loc: loc}
}

func (h *ConverterHandler) RegisterRoutes(r chi.Router) {
	r.Post("/decode-jwt", h.DecodeJWT)
	r.Route("/epoch", func(r chi.Router) {
		r.Get("/now", h.EpochNow)
		r.Post("/to-human", h.EpochToHuman)
		r.Post("/from-human", h.EpochFromHuman)
	})
	r.Route("/base64", func(r chi.Router) {
		r.Post("/encode", h.Base64Encode)
		r.Post("/decode", h.Base64Decode)
	})
}

func (h *ConverterHandler) DecodeJWT(w http.ResponseWriter, r *http.Request) {
	var req model.DecodeJWTRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := jwtinspect.Inspect(req.Token, h.now())
	if err != nil {
		respondError(w, err, "Failed to decode JWT")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ConverterHandler) EpochNow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, epoch.Now(h.now()))
}

func (h *ConverterHandler) EpochToHuman(w http.ResponseWriter, r *http.Request) {
	var req model.EpochToHumanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := epoch.ToHuman(req.Timestamp, h.loc)
	if err != nil {
		respondError(w, err, "Failed to convert timestamp")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ConverterHandler) EpochFromHuman(w http.ResponseWriter, r *http.Request) {
	var req model.EpochFromHumanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := epoch.FromHuman(req.Date, req.Time, req.Timezone, h.loc)
	if err != nil {
		respondError(w, err, "Failed to convert date")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ConverterHandler) Base64Encode(w http.ResponseWriter, r *http.Request) {
	var req model.Base64Request
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := codec.Encode(req.Text, req.URLSafe)
	if err != nil {
		respondError(w, err, "Failed to encode text to Base64")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ConverterHandler) Base64Decode(w http.ResponseWriter, r *http.Request) {
	var req model.Base64Request
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := codec.Decode(req.Input, req.URLSafe)
	if err != nil {
		respondError(w, err, "Failed to decode Base64 string")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
