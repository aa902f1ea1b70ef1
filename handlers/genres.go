package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/store"
)

type GenresHandler struct {
	Genres store.Collection
	Now    func() time.Time
}

type CreateGenreRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *GenresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGenreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	res, err := h.Genres.Insert(r.Context(), &models.Genre{
		Name:        name,
		Description: req.Description,
		CreatedAt:   now(),
	})
	if err != nil {
		storeError(w, "genre", err, "Failed to create genre")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *GenresHandler) List(w http.ResponseWriter, r *http.Request) {
	genres := []models.Genre{}
	if err := h.Genres.FindMany(r.Context(), nil, &store.FindOptions{SortKey: "name"}, &genres); err != nil {
		storeError(w, "genre", err, "Failed to fetch genres")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (h *GenresHandler) Get(w http.ResponseWriter, r *http.Request) {
	var genre models.Genre
	if err := h.Genres.FindByID(r.Context(), pathID(r), &genre); err != nil {
		storeError(w, "genre", err, "Failed to fetch genre")
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

func (h *GenresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.Genres.DeleteByID(r.Context(), pathID(r))
	if err != nil {
		storeError(w, "genre", err, "Failed to delete genre")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
