package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nadhifra/portofolio-api/internal/handler"
	"github.com/nadhifra/portofolio-api/internal/model"
)

func (e *env) createPortfolio(t *testing.T, title, level, category string) model.Portfolio {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/portfolios", jsonBody(t, map[string]any{
		"title":    title,
		"level":    level,
		"category": category,
	}), &testIdentity)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seeding portfolio: status %d, body %s", rr.Code, rr.Body.String())
	}

	var p model.Portfolio
	decodeBody(t, rr, &p)
	return p
}

func TestPortfolioHandler_Create(t *testing.T) {
	t.Run("records an entry for the session's profile", func(t *testing.T) {
		e := newEnv(t)
		user := e.createProfile(t, testIdentity)

		rr := e.do(t, http.MethodPost, "/api/portfolios", jsonBody(t, map[string]any{
			"title":       "Juara 1 Hackathon Regional",
			"level":       "regional",
			"category":    "prestasi",
			"description": "Tim beranggotakan tiga orang",
		}), &testIdentity)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var p model.Portfolio
		decodeBody(t, rr, &p)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, user["id"], p.UserID, "owner comes from the session, not the body")
		assert.False(t, p.Date.IsZero(), "date defaults to now")
	})

	t.Run("identity without a profile gets a 404", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/portfolios", jsonBody(t, map[string]any{
			"title":    "Lomba",
			"level":    "nasional",
			"category": "prestasi",
		}), &testIdentity)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodPost, "/api/portfolios", jsonBody(t, map[string]any{}), nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("enum fields accept no free text", func(t *testing.T) {
		e := newEnv(t)
		e.createProfile(t, testIdentity)

		rr := e.do(t, http.MethodPost, "/api/portfolios", jsonBody(t, map[string]any{
			"title":    "Lomba",
			"level":    "kecamatan",
			"category": "hobi",
		}), &testIdentity)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		decodeBody(t, rr, &errRes)
		assert.Len(t, errRes.Fields, 2)
	})
}

func TestPortfolioHandler_List(t *testing.T) {
	t.Run("public browsing with category filter", func(t *testing.T) {
		e := newEnv(t)
		e.createProfile(t, testIdentity)
		e.createPortfolio(t, "hackathon win", "regional", "prestasi")
		e.createPortfolio(t, "mentoring", "universitas", "kegiatan")
		e.createPortfolio(t, "olympiad finalist", "nasional", "prestasi")

		// No session cookie on any of these requests.
		rr := e.do(t, http.MethodGet, "/api/portfolios", nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var all []model.PortfolioWithOwner
		decodeBody(t, rr, &all)
		assert.Len(t, all, 3)
		assert.Equal(t, "Budi Santoso", all[0].User.Name, "rows carry the owner summary")

		rr = e.do(t, http.MethodGet, "/api/portfolios?category=kegiatan", nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var activities []model.PortfolioWithOwner
		decodeBody(t, rr, &activities)
		assert.Len(t, activities, 1)
		assert.Equal(t, "mentoring", activities[0].Title)
	})

	t.Run("empty store lists as an empty array", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodGet, "/api/portfolios", nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("unknown category value is a 400", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodGet, "/api/portfolios?category=penghargaan", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPortfolioHandler_Get(t *testing.T) {
	t.Run("detail carries the full owner projection", func(t *testing.T) {
		e := newEnv(t)
		e.createProfile(t, testIdentity)
		created := e.createPortfolio(t, "hackathon win", "regional", "prestasi")

		rr := e.do(t, http.MethodGet, "/api/portfolios/"+created.ID, nil, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var detail model.PortfolioDetail
		decodeBody(t, rr, &detail)
		assert.Equal(t, created.ID, detail.ID)
		assert.Equal(t, "budi@example.com", detail.User.Email)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		e := newEnv(t)

		rr := e.do(t, http.MethodGet, "/api/portfolios/nonexistent", nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
