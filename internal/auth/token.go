package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ms-admission/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the tokens issued by the account service: id, email and rol.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"rol"`
	jwt.RegisteredClaims
}

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// Verifier checks HS256 tokens and turns their claims into a Principal.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Principal(tokenString string) (models.Principal, error) {
	if tokenString == "" {
		return models.Principal{}, errors.New("empty token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return models.Principal{}, errors.New("token carries no subject")
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.Principal{}, fmt.Errorf("unsupported role %q", claims.Role)
	}

	return models.Principal{ID: id, Role: role}, nil
}

// Sign mints a token for p. Used by the seed command and tests.
func (v *Verifier) Sign(p models.Principal, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: p.ID,
		Email:  email,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
