package auth

import (
	"context"
	"net/http"

	"ms-admission/internal/logger"
	"ms-admission/internal/models"
	"ms-admission/internal/utils"
)

type contextKey string

const principalKey contextKey = "principal"

// Middleware rejects requests without a valid bearer token and stores the
// caller's Principal in the request context.
func Middleware(v *Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Authorization required", err.Error()))
				return
			}

			principal, err := v.Principal(rawToken)
			if err != nil {
				log.LogSecurity("INVALID_TOKEN", err.Error())
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Invalid token", err.Error()))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal set by Middleware.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}
