package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/service"
)

// UserHandler manages student profile endpoints.
//
//	POST /api/users      → create the profile for the logged-in identity
//	PUT  /api/users/{id} → partial profile edit
//	GET  /api/me         → resolve the logged-in identity to its profile
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleCreate makes the profile for the authenticated identity.
//
// HTTP: POST /api/users
// Auth: required
//
// Creation is explicit: logging in never creates a profile, and a
// second create for the same identity is a 409. The response status is
// 200, matching what the frontend already expects from this route.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireIdentity, but don't rely on wiring.
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

	user, err := h.users.Create(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate applies a partial profile edit.
//
// HTTP: PUT /api/users/{id}
// Auth: required
//
// Only the fields present in the body change; everything else is left
// as stored. An unknown id is a 404.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleMe returns the profile linked to the logged-in identity.
//
// HTTP: GET /api/me
// Auth: required
//
// The two-step contract the frontend relies on: 401 means "not logged
// in" (the middleware answers that), 404 means "logged in but no
// profile yet, go to onboarding".
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.users.GetBySubject(r.Context(), id.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
