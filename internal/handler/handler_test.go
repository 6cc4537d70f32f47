package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nadhifra/portofolio-api/internal/auth"
	"github.com/nadhifra/portofolio-api/internal/handler"
	"github.com/nadhifra/portofolio-api/internal/repository/sqlite"
	"github.com/nadhifra/portofolio-api/internal/service"
	"github.com/nadhifra/portofolio-api/internal/upload"
)

// env is a full handler stack backed by an in-memory database and a
// temp upload directory. Tests drive it through the router, cookie
// auth included, so they cover the same path a browser exercises.
type env struct {
	router    http.Handler
	tokens    *auth.TokenService
	db        *sqlite.DB
	uploadDir string
}

const testSecret = "unit-test-secret-unit-test-secret"

var testIdentity = auth.Identity{Subject: "github:42", Email: "budi@example.com"}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}

	uploadDir := t.TempDir()
	store := upload.NewStore(uploadDir, logger)

	userService := service.NewUserService(db, store, logger)
	portfolioService := service.NewPortfolioService(db, db, logger)

	authHandler := handler.NewAuthHandler(nil, tokens, auth.NewPasswordServiceForTest(4), db, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, logger)
	uploadHandler := handler.NewUploadHandler(store, logger)

	// Same route layout as the real server, minus the OAuth routes
	// (they need a live GitHub app).
	router := chi.NewRouter()
	router.Post("/auth/register", authHandler.HandleRegister)
	router.Post("/auth/login", authHandler.HandleLogin)
	router.Post("/auth/logout", authHandler.HandleLogout)
	router.Get("/api/portfolios", portfolioHandler.HandleList)
	router.Get("/api/portfolios/{id}", portfolioHandler.HandleGet)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(tokens))
		r.Get("/api/me", userHandler.HandleMe)
		r.Post("/api/users", userHandler.HandleCreate)
		r.Put("/api/users/{id}", userHandler.HandleUpdate)
		r.Post("/api/portfolios", portfolioHandler.HandleCreate)
		r.Post("/api/upload", uploadHandler.HandleImage)
		r.Post("/api/upload/document", uploadHandler.HandleDocument)
	})

	return &env{
		router:    router,
		tokens:    tokens,
		db:        db,
		uploadDir: uploadDir,
	}
}

// do performs one request against the router. A non-nil identity is
// turned into a real session cookie, exactly what the middleware will
// see in production.
func (e *env) do(t *testing.T, method, path string, body io.Reader, id *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		tokenStr, err := e.tokens.Generate(*id)
		if err != nil {
			t.Fatalf("generating session token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tokenStr})
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	return bytes.NewBuffer(data)
}

func bytesReader(s string) *bytes.Buffer {
	return bytes.NewBufferString(s)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// sessionCookie digs the session cookie out of a response, or nil.
func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

// createProfile seeds a profile for the identity through the API.
func (e *env) createProfile(t *testing.T, id auth.Identity) map[string]any {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/users", jsonBody(t, map[string]any{
		"name":         "Budi Santoso",
		"gender":       "pria",
		"address":      "Jl. Melati 5",
		"studyProgram": "Teknik Informatika",
	}), &id)
	if rr.Code != http.StatusOK {
		t.Fatalf("seeding profile: status %d, body %s", rr.Code, rr.Body.String())
	}

	var user map[string]any
	decodeBody(t, rr, &user)
	return user
}
