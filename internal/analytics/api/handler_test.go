package analytics_api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-admission/internal/analytics"
	"ms-admission/internal/auth"
	"ms-admission/internal/database/dbtest"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	db := dbtest.New(t)
	dbtest.SeedTicketType(t, db, "org-1", 5, "10")
	log := logger.NewNop()
	verifier := auth.NewVerifier("test-secret")

	r := chi.NewRouter()
	NewHandler(analytics.NewService(db), log).RegisterRoutes(r, auth.Middleware(verifier, log))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := verifier.Sign(models.Principal{ID: "org-1", Role: models.RoleOrganizer}, "", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data models.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Data.TotalTickets)
	assert.Equal(t, 1, body.Data.TotalEvents)
	assert.True(t, body.Data.TotalRevenue.IsZero())
}
