package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/shelf/models"
)

type contextKey string

const IdentityKey contextKey = "identity"

// IdentityVerifier turns request credentials into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the verified
// identity in the request context.
func Auth(verifier IdentityVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				unauthorized(w, "invalid authorization format")
				return
			}
			id, err := verifier.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil || id == nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			ctx := WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok && id.Email != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
