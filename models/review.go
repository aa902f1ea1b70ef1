package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review statuses. Only ReviewPending is ever written here; moderation happens elsewhere.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Review carries a copy of the reviewer's name, email and photo taken at
// submission time.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BookID     string             `bson:"bookId" json:"bookId"`
	BookTitle  string             `bson:"bookTitle" json:"bookTitle"`
	UserName   string             `bson:"userName" json:"userName"`
	UserEmail  string             `bson:"userEmail" json:"userEmail"`
	UserPhoto  string             `bson:"userPhoto" json:"userPhoto"`
	Rating     float64            `bson:"rating" json:"rating"`
	ReviewText string             `bson:"reviewText" json:"reviewText"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
