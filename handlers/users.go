package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/service"
	"github.com/kevinaaaquil/shelf/store"
)

type UsersHandler struct {
	Users store.Collection
	Now   func() time.Time
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Role  string `json:"role"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Role  *string `json:"role"`
}

// UserExistsResponse is the success-shaped answer to a repeated registration.
type UserExistsResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

func roleValid(role string) bool {
	return role == models.RoleUser || role == models.RoleAdmin
}

func (h *UsersHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// Create registers a user once per email. A repeated email is answered with
// 200 and a null insertedId so existing clients can call it on every sign-in.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := service.NormalizeEmail(req.Email)
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}
	role := strings.TrimSpace(strings.ToLower(req.Role))
	if role == "" {
		role = models.RoleUser
	}
	if !roleValid(role) {
		writeMessage(w, http.StatusBadRequest, "invalid role; use user or admin")
		return
	}

	var existing models.User
	err := h.Users.FindOne(r.Context(), store.Filter{"email": email}, &existing)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, UserExistsResponse{Message: "User already exists"})
		return
	case !errors.Is(err, store.ErrNotFound):
		storeError(w, "user", err, "Failed to create user")
		return
	}

	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Photo:     req.Photo,
		Role:      role,
		CreatedAt: h.now(),
	}
	res, err := h.Users.Insert(r.Context(), user)
	if errors.Is(err, store.ErrDuplicate) {
		writeJSON(w, http.StatusOK, UserExistsResponse{Message: "User already exists"})
		return
	}
	if err != nil {
		storeError(w, "user", err, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := queryFilter(r, "email", "role")
	if email, ok := filter["email"].(string); ok {
		filter["email"] = service.NormalizeEmail(email)
	}
	users := []models.User{}
	err := h.Users.FindMany(r.Context(), filter, &store.FindOptions{SortKey: "createdAt"}, &users)
	if err != nil {
		storeError(w, "user", err, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := h.Users.FindByID(r.Context(), pathID(r), &user); err != nil {
		storeError(w, "user", err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update changes name, photo and role. Email is the identity key and cannot be changed.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := store.Fields{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Photo != nil {
		fields["photo"] = *req.Photo
	}
	if req.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*req.Role))
		if !roleValid(role) {
			writeMessage(w, http.StatusBadRequest, "invalid role; use user or admin")
			return
		}
		fields["role"] = role
	}
	res, err := h.Users.UpdateByID(r.Context(), pathID(r), fields)
	if err != nil {
		storeError(w, "user", err, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
