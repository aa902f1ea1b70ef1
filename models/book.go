package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a catalogue entry. AverageRating and TotalReviews start at zero and
// are not recomputed from reviews.
type Book struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title         string             `bson:"title" json:"title"`
	Author        string             `bson:"author" json:"author"`
	Genre         string             `bson:"genre" json:"genre"`
	ISBN          string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Description   string             `bson:"description" json:"description"`
	CoverImage    string             `bson:"coverImage" json:"coverImage"`
	TotalPages    int                `bson:"totalPages" json:"totalPages"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	TotalReviews  int                `bson:"totalReviews" json:"totalReviews"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
