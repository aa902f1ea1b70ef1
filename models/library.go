package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryEntry is a book on a user's shelf. There is at most one entry per
// (UserEmail, BookID) pair.
type LibraryEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookID        string             `bson:"bookId" json:"bookId"`
	Title         string             `bson:"title" json:"title"`
	Author        string             `bson:"author" json:"author"`
	CoverImage    string             `bson:"coverImage" json:"coverImage"`
	Shelf         string             `bson:"shelf" json:"shelf"`
	TotalPages    int                `bson:"totalPages" json:"totalPages"`
	ProgressPages int                `bson:"progressPages" json:"progressPages"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	AddedAt       time.Time          `bson:"addedAt" json:"addedAt"`
}
