package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrDuplicateEntry  = errors.New("book already in library")
	ErrForbidden       = errors.New("entry belongs to another user")
	ErrInvalidRating   = errors.New("rating must be a number")
	ErrInvalidProgress = errors.New("invalid progress")
)

// ReviewNotifier is told about every review stored in the pending state.
type ReviewNotifier interface {
	ReviewPending(ctx context.Context, review *models.Review) error
}

// LibraryService owns the per-user shelf and review workflow: one library
// entry per (user, book), owner-only edits, and reviews stamped with the
// reviewer's profile at write time.
type LibraryService struct {
	Users    store.Collection
	Library  store.Collection
	Reviews  store.Collection
	Notifier ReviewNotifier
	Now      func() time.Time
}

func NewLibraryService(db *store.DB, notifier ReviewNotifier) *LibraryService {
	return &LibraryService{
		Users:    db.Users(),
		Library:  db.Library(),
		Reviews:  db.Reviews(),
		Notifier: notifier,
		Now:      time.Now,
	}
}

// NormalizeEmail is the form every stored userEmail takes. Verifiers may hand
// over mixed case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *LibraryService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type AddEntryInput struct {
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"coverImage"`
	Shelf      string `json:"shelf"`
	TotalPages int    `json:"totalPages"`
}

// AddEntry puts a book on the acting user's shelf. The existence check keeps
// the common case cheap; the unique index on (userEmail, bookId) settles
// concurrent requests.
func (s *LibraryService) AddEntry(ctx context.Context, who models.Identity, in AddEntryInput) (*store.InsertResult, error) {
	email := NormalizeEmail(who.Email)
	bookID := strings.TrimSpace(in.BookID)
	if email == "" {
		return nil, fmt.Errorf("%w: userEmail", ErrMissingField)
	}
	if bookID == "" {
		return nil, fmt.Errorf("%w: bookId", ErrMissingField)
	}

	var existing models.LibraryEntry
	err := s.Library.FindOne(ctx, store.Filter{"userEmail": email, "bookId": bookID}, &existing)
	switch {
	case err == nil:
		return nil, ErrDuplicateEntry
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	entry := &models.LibraryEntry{
		BookID:        bookID,
		Title:         in.Title,
		Author:        in.Author,
		CoverImage:    in.CoverImage,
		Shelf:         in.Shelf,
		TotalPages:    in.TotalPages,
		ProgressPages: 0,
		UserEmail:     email,
		AddedAt:       s.now(),
	}
	res, err := s.Library.Insert(ctx, entry)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateEntry
	}
	return res, err
}

// Entries lists the acting user's shelf, newest first.
func (s *LibraryService) Entries(ctx context.Context, who models.Identity) ([]models.LibraryEntry, error) {
	entries := []models.LibraryEntry{}
	err := s.Library.FindMany(ctx, store.Filter{"userEmail": NormalizeEmail(who.Email)},
		&store.FindOptions{SortKey: "addedAt", Descending: true}, &entries)
	return entries, err
}

type UpdateEntryInput struct {
	Shelf         *string `json:"shelf"`
	ProgressPages *int    `json:"progressPages"`
}

func (s *LibraryService) UpdateEntry(ctx context.Context, who models.Identity, id string, in UpdateEntryInput) (*store.UpdateResult, error) {
	entry, err := s.ownedEntry(ctx, who, id)
	if err != nil {
		return nil, err
	}
	fields := store.Fields{}
	if in.Shelf != nil {
		fields["shelf"] = *in.Shelf
	}
	if in.ProgressPages != nil {
		p := *in.ProgressPages
		if p < 0 || entry.TotalPages > 0 && p > entry.TotalPages {
			return nil, fmt.Errorf("%w: progressPages must be between 0 and %d", ErrInvalidProgress, entry.TotalPages)
		}
		fields["progressPages"] = p
	}
	return s.Library.UpdateByID(ctx, id, fields)
}

// RemoveEntry deletes one of the acting user's entries. Removing an entry that
// does not exist reports zero deletions.
func (s *LibraryService) RemoveEntry(ctx context.Context, who models.Identity, id string) (*store.DeleteResult, error) {
	_, err := s.ownedEntry(ctx, who, id)
	if errors.Is(err, store.ErrNotFound) {
		return &store.DeleteResult{Acknowledged: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Library.DeleteByID(ctx, id)
}

func (s *LibraryService) ownedEntry(ctx context.Context, who models.Identity, id string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	if err := s.Library.FindByID(ctx, id, &entry); err != nil {
		return nil, err
	}
	if NormalizeEmail(entry.UserEmail) != NormalizeEmail(who.Email) {
		return nil, ErrForbidden
	}
	return &entry, nil
}

type ReviewInput struct {
	BookID     string `json:"bookId"`
	BookTitle  string `json:"bookTitle"`
	Rating     any    `json:"rating"`
	ReviewText string `json:"reviewText"`
}

// SubmitReview stores a pending review. Name and photo come from the stored
// profile when there is one, otherwise from the identity itself.
func (s *LibraryService) SubmitReview(ctx context.Context, who models.Identity, in ReviewInput) (*store.InsertResult, error) {
	email := NormalizeEmail(who.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: userEmail", ErrMissingField)
	}
	if strings.TrimSpace(in.BookID) == "" {
		return nil, fmt.Errorf("%w: bookId", ErrMissingField)
	}
	rating, err := ParseRating(in.Rating)
	if err != nil {
		return nil, err
	}

	name, photo := who.Name, who.Photo
	var profile models.User
	err = s.Users.FindOne(ctx, store.Filter{"email": email}, &profile)
	switch {
	case err == nil:
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.Photo != "" {
			photo = profile.Photo
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	review := &models.Review{
		BookID:     strings.TrimSpace(in.BookID),
		BookTitle:  in.BookTitle,
		UserName:   name,
		UserEmail:  email,
		UserPhoto:  photo,
		Rating:     rating,
		ReviewText: in.ReviewText,
		Status:     models.ReviewPending,
		CreatedAt:  s.now(),
	}
	res, err := s.Reviews.Insert(ctx, review)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		review.ID, _ = primitive.ObjectIDFromHex(res.InsertedID)
		if err := s.Notifier.ReviewPending(ctx, review); err != nil {
			log.Printf("reviews: notify moderator: %v", err)
		}
	}
	return res, nil
}

type ReviewFilter struct {
	BookID    string
	UserEmail string
	Status    string
}

// ListReviews returns matching reviews, newest first.
func (s *LibraryService) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	filter := store.Filter{}
	if f.BookID != "" {
		filter["bookId"] = f.BookID
	}
	if email := NormalizeEmail(f.UserEmail); email != "" {
		filter["userEmail"] = email
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	reviews := []models.Review{}
	err := s.Reviews.FindMany(ctx, filter, &store.FindOptions{SortKey: "createdAt", Descending: true}, &reviews)
	return reviews, err
}

// ParseRating accepts a JSON number or a numeric string.
func ParseRating(v any) (float64, error) {
	var f float64
	switch r := v.(type) {
	case float64:
		f = r
	case json.Number:
		n, err := r.Float64()
		if err != nil {
			return 0, ErrInvalidRating
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0, ErrInvalidRating
		}
		f = n
	default:
		return 0, ErrInvalidRating
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidRating
	}
	return f, nil
}
