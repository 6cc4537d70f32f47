package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadhifra/portofolio-api/internal/handler"
	"github.com/nadhifra/portofolio-api/internal/model"
)

func TestUserHandler_Create(t *testing.T) {
	t.Run("creates profile for the session identity", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/users", jsonBody(t, map[string]any{
			"name":         "Budi Santoso",
			"gender":       "pria",
			"address":      "Jl. Melati 5",
			"studyProgram": "Teknik Informatika",
		}), &testIdentity)

		assert.Equal(t, http.StatusOK, rr.Code)

		var user model.User
		decodeBody(t, rr, &user)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "github:42", user.SubjectID)
		assert.Equal(t, "budi@example.com", user.Email, "email comes from the identity, not the payload")
		assert.Equal(t, model.DefaultRole, user.Role)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/users", jsonBody(t, map[string]any{}), nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("reports every missing field at once", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/users", jsonBody(t, map[string]any{}), &testIdentity)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		decodeBody(t, rr, &errRes)
		assert.Equal(t, "validation_error", errRes.Error)
		assert.Len(t, errRes.Fields, 4, "name, gender, address, studyProgram")
	})

	t.Run("second create for the same identity conflicts", func(t *testing.T) {
		e := newEnv(t)
		e.createProfile(t, testIdentity)

		rr := e.do(t, http.MethodPost, "/api/users", jsonBody(t, map[string]any{
			"name":         "Budi Again",
			"gender":       "pria",
			"address":      "Jl. Mawar 7",
			"studyProgram": "Sistem Informasi",
		}), &testIdentity)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/users", bytesReader(`{"name":`), &testIdentity)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserHandler_Update(t *testing.T) {
	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		e := newEnv(t)
		user := e.createProfile(t, testIdentity)
		id := user["id"].(string)

		rr := e.do(t, http.MethodPut, "/api/users/"+id, jsonBody(t, map[string]any{
			"name": "Budi S. Updated",
		}), &testIdentity)

		assert.Equal(t, http.StatusOK, rr.Code)

		var updated model.User
		decodeBody(t, rr, &updated)
		assert.Equal(t, "Budi S. Updated", updated.Name)
		assert.Equal(t, "Jl. Melati 5", updated.Address)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPut, "/api/users/nonexistent", jsonBody(t, map[string]any{
			"name": "ghost",
		}), &testIdentity)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("violations come back field by field", func(t *testing.T) {
		e := newEnv(t)
		user := e.createProfile(t, testIdentity)
		id := user["id"].(string)

		rr := e.do(t, http.MethodPut, "/api/users/"+id, jsonBody(t, map[string]any{
			"name":   "ab",
			"email":  "not-an-email",
			"gender": "lainnya",
		}), &testIdentity)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		decodeBody(t, rr, &errRes)
		assert.Len(t, errRes.Fields, 3)
	})
}

func TestUserHandler_Me(t *testing.T) {
	t.Run("404 before the profile exists, 200 after", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodGet, "/api/me", nil, &testIdentity)
		assert.Equal(t, http.StatusNotFound, rr.Code, "logged in but no profile yet")

		e.createProfile(t, testIdentity)

		rr = e.do(t, http.MethodGet, "/api/me", nil, &testIdentity)
		assert.Equal(t, http.StatusOK, rr.Code)

		var user model.User
		decodeBody(t, rr, &user)
		assert.Equal(t, testIdentity.Subject, user.SubjectID)
	})

	t.Run("401 without a session", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodGet, "/api/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
