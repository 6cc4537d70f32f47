package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/handler"
)

func registerBody(t *testing.T, email, password string) map[string]any {
	t.Helper()
	return map[string]any{"email": email, "password": password}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates an account and starts a session", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)

		assert.Equal(t, http.StatusCreated, rr.Code)

		cookie := sessionCookie(rr)
		if assert.NotNil(t, cookie, "register should set the session cookie") {
			assert.True(t, cookie.HttpOnly)
			assert.NotEmpty(t, cookie.Value)

			id, err := e.tokens.Validate(cookie.Value)
			assert.NoError(t, err)
			assert.True(t, len(id.Subject) > len("local:") && id.Subject[:6] == "local:", id.Subject)
			assert.Equal(t, "siti@example.com", id.Email)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		e := newEnv(t)
		e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)

		rr := e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "siti@example.com", "lain-lagi-123")), nil)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("short password and bad email reported together", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "not-an-email", "short")), nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		decodeBody(t, rr, &errRes)
		assert.Len(t, errRes.Fields, 2)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials start a session", func(t *testing.T) {
		e := newEnv(t)
		e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)

		rr := e.do(t, http.MethodPost, "/auth/login",
			jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotNil(t, sessionCookie(rr))
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		e := newEnv(t)
		e.do(t, http.MethodPost, "/auth/register",
			jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)

		wrongPassword := e.do(t, http.MethodPost, "/auth/login",
			jsonBody(t, registerBody(t, "siti@example.com", "salah-semua-1")), nil)
		unknownEmail := e.do(t, http.MethodPost, "/auth/login",
			jsonBody(t, registerBody(t, "nobody@example.com", "rahasia-banget")), nil)

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String(),
			"responses must not reveal which emails exist")
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, http.MethodPost, "/auth/logout", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(rr)
	if assert.NotNil(t, cookie) {
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge, "cookie must be expired")
	}
}

// The session a register hands out must work against the protected
// API: /api/me answers 404 (no profile yet), and after the explicit
// profile create it answers 200. Login never creates the profile.
func TestAuthHandler_RegisteredSessionDrivesTheAPI(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, http.MethodPost, "/auth/register",
		jsonBody(t, registerBody(t, "siti@example.com", "rahasia-banget")), nil)
	cookie := sessionCookie(rr)
	if cookie == nil {
		t.Fatal("register did not set a session cookie")
	}

	withCookie := func(method, path string, body map[string]any) *httptest.ResponseRecorder {
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, path, jsonBody(t, body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: cookie.Value})
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	me := withCookie(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusNotFound, me.Code, "registered but no profile yet")

	created := withCookie(http.MethodPost, "/api/users", map[string]any{
		"name":         "Siti Rahma",
		"gender":       "wanita",
		"address":      "Jl. Kenanga 2",
		"studyProgram": "Ilmu Komputer",
	})
	assert.Equal(t, http.StatusOK, created.Code, created.Body.String())

	me = withCookie(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusOK, me.Code)
}
