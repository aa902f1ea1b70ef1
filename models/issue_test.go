package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewIssue(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keeps unknown fields and drops the client id", func(t *testing.T) {
		doc := NewIssue(Issue{
			"_id":          primitive.NewObjectID().Hex(),
			"title":        "Broken lamp",
			"reporterName": "Ann",
			"amount":       " 500 ",
		}, now)
		assert.NotContains(t, doc, "_id")
		assert.Equal(t, "Ann", doc["reporterName"])
		assert.Equal(t, 500.0, doc[IssueAmount])
		assert.Equal(t, now, doc[IssueDate])
	})

	t.Run("date handling", func(t *testing.T) {
		assert.Equal(t, now, NewIssue(Issue{"date": "  "}, now)[IssueDate])
		assert.Equal(t,
			time.Date(2024, 12, 31, 9, 30, 0, 0, time.UTC),
			NewIssue(Issue{"date": "2024-12-31T09:30:00Z"}, now)[IssueDate])
		assert.Equal(t, "last tuesday", NewIssue(Issue{"date": "last tuesday"}, now)[IssueDate])
	})

	t.Run("does not touch the submitted map", func(t *testing.T) {
		submitted := Issue{"_id": "x", "amount": "7"}
		NewIssue(submitted, now)
		assert.Equal(t, Issue{"_id": "x", "amount": "7"}, submitted)
	})
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{"500", 500.0},
		{"12.75", 12.75},
		{42.0, 42.0},
		{"five hundred", "five hundred"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{nil, nil},
		{true, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeAmount(c.in), "%v", c.in)
	}
}
