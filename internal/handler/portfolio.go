package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/service"
)

// PortfolioHandler manages portfolio endpoints.
//
//	POST /api/portfolios      → record an achievement or activity
//	GET  /api/portfolios      → browse all entries (?category= filters)
//	GET  /api/portfolios/{id} → one entry with its full owner detail
//
// Browsing is public; only creation requires a session.
type PortfolioHandler struct {
	portfolios *service.PortfolioService
	logger     *slog.Logger
}

// NewPortfolioHandler creates a PortfolioHandler.
func NewPortfolioHandler(portfolios *service.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios, logger: logger}
}

// HandleCreate records a new portfolio entry for the logged-in
// identity's profile.
//
// HTTP: POST /api/portfolios
// Auth: required
//
// The owner comes from the session, never from the body. An identity
// without a profile gets a 404 so the frontend can route to onboarding.
func (h *PortfolioHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	portfolio, err := h.portfolios.Create(r.Context(), id.Subject, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, portfolio)
}

// HandleList returns every portfolio entry with its owner summary,
// newest first.
//
// HTTP: GET /api/portfolios?category=prestasi|kegiatan
// Auth: none
//
// An empty result is an empty JSON array, not null and not a 404.
func (h *PortfolioHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	portfolios, err := h.portfolios.List(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolios)
}

// HandleGet returns one portfolio entry with the full owner detail.
//
// HTTP: GET /api/portfolios/{id}
// Auth: none
func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolios.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, portfolio)
}
