package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/service"
	"github.com/kevinaaaquil/shelf/store"
)

// TokenIssuer signs identity tokens for registered users.
type TokenIssuer interface {
	Issue(id models.Identity) (string, error)
}

type AuthHandler struct {
	Users  store.Collection
	Tokens TokenIssuer
}

type TokenRequest struct {
	Email string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Token issues a bearer token carrying the stored profile of a registered user.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := service.NormalizeEmail(req.Email)
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}
	var user models.User
	err := h.Users.FindOne(r.Context(), store.Filter{"email": email}, &user)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		storeError(w, "user", err, "Failed to issue token")
		return
	}
	token, err := h.Tokens.Issue(models.Identity{Email: user.Email, Name: user.Name, Photo: user.Photo})
	if err != nil {
		log.Printf("token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
