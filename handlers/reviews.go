package handlers

import (
	"net/http"
	"strings"

	"github.com/kevinaaaquil/shelf/service"
)

type ReviewsHandler struct {
	Service *service.LibraryService
}

// Create stores a pending review written by the acting user.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	who, ok := identity(w, r)
	if !ok {
		return
	}
	var in service.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Service.SubmitReview(r.Context(), who, in)
	if err != nil {
		workflowError(w, "review", err, "Failed to submit review")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List returns reviews filtered by bookId, userEmail and status when given.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reviews, err := h.Service.ListReviews(r.Context(), service.ReviewFilter{
		BookID:    strings.TrimSpace(q.Get("bookId")),
		UserEmail: strings.TrimSpace(q.Get("userEmail")),
		Status:    strings.TrimSpace(q.Get("status")),
	})
	if err != nil {
		workflowError(w, "review", err, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
