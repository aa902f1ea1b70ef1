package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/shelf/store"
)

// RecentLimit caps the dashboard preview queries.
const RecentLimit = 6

const maxBodyBytes = 1 << 20

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// decodeJSON reads a JSON body into v and answers 400 itself when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// queryFilter builds an exact-match filter from the query parameters that are
// present; absent parameters leave their field unconstrained.
func queryFilter(r *http.Request, keys ...string) store.Filter {
	filter := store.Filter{}
	q := r.URL.Query()
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			filter[k] = v
		}
	}
	return filter
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// storeError maps store failures onto responses. Unknown errors are logged
// under area and answered with the fixed fallback message.
func storeError(w http.ResponseWriter, area string, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "invalid "+area+" id")
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, area+" not found")
	case errors.Is(err, store.ErrEmptyUpdate):
		writeMessage(w, http.StatusBadRequest, "no fields to update")
	default:
		log.Printf("%s: %v", area, err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
