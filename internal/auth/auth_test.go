package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-admission/internal/logger"
	"ms-admission/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Sign(models.Principal{ID: "org-1", Role: models.RoleOrganizer}, "org@example.com", time.Hour)
	require.NoError(t, err)

	p, err := v.Principal(token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{ID: "org-1", Role: models.RoleOrganizer}, p)
}

func TestLegacyRoleClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "7", "email": "ana@example.com", "rol": "organizador",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	p, err := NewVerifier("s3cret").Principal(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, p.Role)
	assert.Equal(t, "7", p.ID)
}

func TestRejectsBadTokens(t *testing.T) {
	v := NewVerifier("s3cret")

	other, err := NewVerifier("other").Sign(models.Principal{ID: "a", Role: models.RoleAdmin}, "", time.Hour)
	require.NoError(t, err)
	_, err = v.Principal(other)
	assert.Error(t, err, "wrong signature")

	expired, err := v.Sign(models.Principal{ID: "a", Role: models.RoleAdmin}, "", -time.Minute)
	require.NoError(t, err)
	_, err = v.Principal(expired)
	assert.Error(t, err, "expired")

	buyer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "b", "rol": "buyer"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = v.Principal(buyer)
	assert.Error(t, err, "unknown role")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "a", "rol": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Principal(none)
	assert.Error(t, err, "alg none")
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractTokenFromRequest(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Token abc")
	_, err = ExtractTokenFromRequest(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier("s3cret")
	var seen models.Principal
	h := Middleware(v, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := v.Sign(models.Principal{ID: "root", Role: models.RoleAdmin}, "", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.Principal{ID: "root", Role: models.RoleAdmin}, seen)
}
