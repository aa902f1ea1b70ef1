package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("duplicate document")
	ErrEmptyUpdate = errors.New("no fields to update")
)

// Filter is an exact-match mapping of field to value. A field missing from the
// filter places no constraint on that field.
type Filter = bson.M

// Fields is the set of named fields written by UpdateByID.
type Fields = bson.M

// FindOptions are optional modifiers for FindMany. Limit <= 0 means no limit.
type FindOptions struct {
	SortKey    string
	Descending bool
	Limit      int64
}

type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is the record store contract shared by every resource.
type Collection interface {
	Insert(ctx context.Context, doc any) (*InsertResult, error)
	FindByID(ctx context.Context, id string, out any) error
	FindOne(ctx context.Context, filter Filter, out any) error
	FindMany(ctx context.Context, filter Filter, opts *FindOptions, out any) error
	UpdateByID(ctx context.Context, id string, fields Fields) (*UpdateResult, error)
	DeleteByID(ctx context.Context, id string) (*DeleteResult, error)
	// EnsureUnique installs a uniqueness constraint over the given fields.
	// Inserts that would violate it fail with ErrDuplicate.
	EnsureUnique(ctx context.Context, fields ...string) error
}

// ParseID converts a client supplied id into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
