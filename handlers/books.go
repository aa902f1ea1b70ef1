package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/service"
	"github.com/kevinaaaquil/shelf/store"
)

// CoverStore keeps uploaded cover images and tells where they can be fetched.
type CoverStore interface {
	Put(ctx context.Context, filename string, body io.Reader) (string, error)
	URL(key string) string
	Remove(ctx context.Context, key string) error
}

// BookCatalog resolves an ISBN to a prefilled book draft.
type BookCatalog interface {
	LookupISBN(ctx context.Context, isbn string) (*service.CatalogEntry, error)
}

type BooksHandler struct {
	Books    store.Collection
	Covers   CoverStore
	Catalog  BookCatalog
	MaxBytes int64
	Now      func() time.Time
}

type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	TotalPages  int    `json:"totalPages"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Genre       *string `json:"genre"`
	ISBN        *string `json:"isbn"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
	TotalPages  *int    `json:"totalPages"`
}

func (h *BooksHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// Create stores a book with zeroed rating aggregates.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	book := &models.Book{
		Title:         strings.TrimSpace(req.Title),
		Author:        req.Author,
		Genre:         req.Genre,
		ISBN:          strings.TrimSpace(req.ISBN),
		Description:   req.Description,
		CoverImage:    req.CoverImage,
		TotalPages:    req.TotalPages,
		AverageRating: 0,
		TotalReviews:  0,
		CreatedAt:     h.now(),
	}
	res, err := h.Books.Insert(r.Context(), book)
	if err != nil {
		storeError(w, "book", err, "Failed to create book")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List returns books, newest first, optionally narrowed by genre or author.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, queryFilter(r, "genre", "author"), &store.FindOptions{SortKey: "createdAt", Descending: true})
}

func (h *BooksHandler) Recent(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, nil, &store.FindOptions{SortKey: "createdAt", Descending: true, Limit: RecentLimit})
}

func (h *BooksHandler) find(w http.ResponseWriter, r *http.Request, filter store.Filter, opts *store.FindOptions) {
	books := []models.Book{}
	if err := h.Books.FindMany(r.Context(), filter, opts, &books); err != nil {
		storeError(w, "book", err, "Failed to fetch books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := h.Books.FindByID(r.Context(), pathID(r), &book); err != nil {
		storeError(w, "book", err, "Failed to fetch book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Update writes the catalogue fields that were sent. createdAt and the rating
// aggregates are never touched.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := store.Fields{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			writeMessage(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		fields["author"] = *req.Author
	}
	if req.Genre != nil {
		fields["genre"] = *req.Genre
	}
	if req.ISBN != nil {
		fields["isbn"] = strings.TrimSpace(*req.ISBN)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CoverImage != nil {
		fields["coverImage"] = *req.CoverImage
	}
	if req.TotalPages != nil {
		fields["totalPages"] = *req.TotalPages
	}
	res, err := h.Books.UpdateByID(r.Context(), pathID(r), fields)
	if err != nil {
		storeError(w, "book", err, "Failed to update book")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Delete removes the book only. Library entries and reviews that point at it stay.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.Books.DeleteByID(r.Context(), pathID(r))
	if err != nil {
		storeError(w, "book", err, "Failed to delete book")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Lookup answers a book draft for the isbn query parameter. Nothing is stored.
func (h *BooksHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeMessage(w, http.StatusServiceUnavailable, "catalog lookup not configured")
		return
	}
	isbn := strings.TrimSpace(r.URL.Query().Get("isbn"))
	if isbn == "" {
		writeMessage(w, http.StatusBadRequest, "isbn is required")
		return
	}
	entry, err := h.Catalog.LookupISBN(r.Context(), isbn)
	switch {
	case errors.Is(err, service.ErrInvalidISBN):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoVolume):
		writeMessage(w, http.StatusNotFound, "no book found for that isbn")
	case err != nil:
		log.Printf("book lookup: %v", err)
		writeMessage(w, http.StatusBadGateway, "catalog lookup failed")
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}

// UploadCover stores a multipart "cover" image and points the book's
// coverImage at it.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	if h.Covers == nil {
		writeMessage(w, http.StatusServiceUnavailable, "cover upload not configured")
		return
	}
	id := pathID(r)
	var book models.Book
	if err := h.Books.FindByID(r.Context(), id, &book); err != nil {
		storeError(w, "book", err, "Failed to fetch book")
		return
	}

	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing cover file")
		return
	}
	defer file.Close()

	key, err := h.Covers.Put(r.Context(), header.Filename, file)
	if errors.Is(err, service.ErrUnsupportedCover) {
		writeMessage(w, http.StatusBadRequest, service.ErrUnsupportedCover.Error())
		return
	}
	if err != nil {
		log.Printf("book cover: upload: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to upload cover")
		return
	}
	url := h.Covers.URL(key)
	if _, err := h.Books.UpdateByID(r.Context(), id, store.Fields{"coverImage": url}); err != nil {
		if derr := h.Covers.Remove(r.Context(), key); derr != nil {
			log.Printf("book cover: remove orphan %s: %v", key, derr)
		}
		storeError(w, "book", err, "Failed to update book")
		return
	}
	book.CoverImage = url
	writeJSON(w, http.StatusOK, book)
}
