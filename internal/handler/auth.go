package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/nadhifra/portofolio-api/internal/apperror"
	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/model"
	"github.com/nadhifra/portofolio-api/internal/repository"
	"github.com/nadhifra/portofolio-api/internal/validate"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 600 // seconds; long enough to approve on GitHub

	// sessionTTL mirrors the token lifetime so the cookie and the JWT
	// expire together.
	sessionTTL = 24 * time.Hour
)

// Register and login payload shapes. The password floor applies only
// at registration; login just checks presence.
var registerRules = []validate.Rule{
	{Field: "email", Kind: validate.Email, Required: true, MaxLen: 255},
	{Field: "password", Kind: validate.String, Required: true, MinLen: 8, MaxLen: 72},
}

var loginRules = []validate.Rule{
	{Field: "email", Kind: validate.Email, Required: true, MaxLen: 255},
	{Field: "password", Kind: validate.String, Required: true, MaxLen: 72},
}

// AuthHandler manages how an identity comes into being: the GitHub
// OAuth flow, local email/password accounts, and session teardown.
//
// Logging in never creates a profile. Both flows end the same way, a
// JWT session cookie carrying the identity subject; the profile is a
// separate explicit POST /api/users afterwards.
type AuthHandler struct {
	github      *auth.GitHubProvider
	tokens      *auth.TokenService
	passwords   *auth.PasswordService
	credentials repository.CredentialRepository
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when the
// OAuth app isn't configured; the server then skips those routes.
func NewAuthHandler(
	github *auth.GitHubProvider,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	credentials repository.CredentialRepository,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:      github,
		tokens:      tokens,
		passwords:   passwords,
		credentials: credentials,
		logger:      logger,
	}
}

// HandleGitHubLogin redirects the browser to GitHub's authorization
// page.
//
// HTTP: GET /auth/github/login
//
// The random state lands in a short-lived HttpOnly cookie; the
// callback compares it to the state GitHub echoes back. A mismatch
// means the callback wasn't initiated by this server.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// Flow: verify the CSRF state, exchange the code for the GitHub
// profile, issue the session JWT with subject "github:<id>", redirect
// home. No database write happens here.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	id := auth.Identity{Subject: ghUser.Subject(), Email: ghUser.Email}
	if err := h.issueSession(w, id); err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("identity authenticated",
		slog.String("subject", id.Subject),
		slog.String("login", ghUser.Login),
	)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleRegister creates a local email/password account.
//
// HTTP: POST /auth/register {"email": "...", "password": "..."}
//
// A duplicate email is a 409. The fresh account is logged in
// immediately; its subject is "local:<credential id>".
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	values, violations := validate.Apply(registerRules, payload)
	if len(violations) > 0 {
		writeError(w, apperror.Invalid(violations))
		return
	}

	hash, err := h.passwords.Hash(values.String("password"))
	if err != nil {
		h.logger.Error("register: hashing failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	cred := &model.Credential{
		Email:        values.String("email"),
		PasswordHash: hash,
	}
	if err := h.credentials.CreateCredential(r.Context(), cred); err != nil {
		writeError(w, err)
		return
	}

	id := auth.Identity{Subject: "local:" + cred.ID, Email: cred.Email}
	if err := h.issueSession(w, id); err != nil {
		h.logger.Error("register: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	h.logger.Info("local account registered", slog.String("subject", id.Subject))

	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

// HandleLogin signs into an existing local account.
//
// HTTP: POST /auth/login {"email": "...", "password": "..."}
//
// Unknown email and wrong password both answer 401 with the same
// message, so the endpoint doesn't reveal which emails exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	values, violations := validate.Apply(loginRules, payload)
	if len(violations) > 0 {
		writeError(w, apperror.Invalid(violations))
		return
	}

	cred, err := h.credentials.GetCredentialByEmail(r.Context(), values.String("email"))
	if err != nil {
		writeError(w, apperror.Unauthorized("invalid email or password"))
		return
	}
	if err := h.passwords.Verify(cred.PasswordHash, values.String("password")); err != nil {
		writeError(w, apperror.Unauthorized("invalid email or password"))
		return
	}

	id := auth.Identity{Subject: "local:" + cred.ID, Email: cred.Email}
	if err := h.issueSession(w, id); err != nil {
		h.logger.Error("login: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged in"})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless, so logout is purely client-side: without the
// cookie the browser can't present the token again. POST, not GET, so
// prefetchers can't log people out.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// issueSession generates the JWT and sets it as the HttpOnly session
// cookie. Secure stays off for local dev; enable it behind HTTPS.
func (h *AuthHandler) issueSession(w http.ResponseWriter, id auth.Identity) error {
	tokenStr, err := h.tokens.Generate(id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
