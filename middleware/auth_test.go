package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	tokens map[string]models.Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (*models.Identity, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &id, nil
}

func TestAuth(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]models.Identity{
		"good": {Email: "a@x.com", Name: "Ana"},
	}}
	var seen models.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(verifier)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.Identity{}
			req := httptest.NewRequest(http.MethodGet, "/my-library", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "a@x.com", seen.Email)
				assert.Equal(t, "Ana", seen.Name)
			} else {
				assert.Contains(t, rr.Body.String(), "message")
				assert.Empty(t, seen.Email)
			}
		})
	}
}

func TestIdentityFromContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = IdentityFromContext(WithIdentity(context.Background(), models.Identity{}))
	assert.False(t, ok, "identity without email is not usable")

	id, ok := IdentityFromContext(WithIdentity(context.Background(), models.Identity{Email: "b@x.com"}))
	assert.True(t, ok)
	assert.Equal(t, "b@x.com", id.Email)
}
