package handlers

import (
	"errors"
	"net/http"

	"github.com/kevinaaaquil/shelf/middleware"
	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/service"
)

type LibraryHandler struct {
	Service *service.LibraryService
}

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// workflowError maps library and review failures onto responses.
func workflowError(w http.ResponseWriter, area string, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEntry):
		writeMessage(w, http.StatusBadRequest, "This book is already in your library!")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidProgress):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		storeError(w, area, err, fallback)
	}
}

func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	var in service.AddEntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Service.AddEntry(r.Context(), who, in)
	if err != nil {
		workflowError(w, "library entry", err, "Failed to add book to library")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	entries, err := h.Service.Entries(r.Context(), who)
	if err != nil {
		workflowError(w, "library entry", err, "Failed to fetch library")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *LibraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	var in service.UpdateEntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Service.UpdateEntry(r.Context(), who, pathID(r), in)
	if err != nil {
		workflowError(w, "library entry", err, "Failed to update library entry")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	res, err := h.Service.RemoveEntry(r.Context(), who, pathID(r))
	if err != nil {
		workflowError(w, "library entry", err, "Failed to remove library entry")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
