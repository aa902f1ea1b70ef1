package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Issue is a complaint reported by a user. Issues are schema-less: whatever
// fields the client sends are stored and returned, and only the fields below
// are normalised.
type Issue = bson.M

const (
	IssueTitle       = "title"
	IssueCategory    = "category"
	IssueAmount      = "amount"
	IssueDescription = "description"
	IssueStatus      = "status"
	IssueEmail       = "email"
	IssueDate        = "date"
)

// IssueEditable are the fields an issue update replaces.
var IssueEditable = []string{IssueTitle, IssueCategory, IssueAmount, IssueDescription, IssueStatus}

// NewIssue prepares a submitted document for insertion. A client _id is
// dropped, the amount is normalised and a missing date is stamped with now.
// An RFC 3339 date string is stored as a date so it sorts with the rest.
func NewIssue(submitted Issue, now time.Time) Issue {
	doc := Issue{}
	for k, v := range submitted {
		if k == "_id" {
			continue
		}
		doc[k] = v
	}
	if v, ok := doc[IssueAmount]; ok {
		doc[IssueAmount] = NormalizeAmount(v)
	}
	switch d := doc[IssueDate].(type) {
	case nil:
		doc[IssueDate] = now
	case string:
		if strings.TrimSpace(d) == "" {
			doc[IssueDate] = now
		} else if t, err := time.Parse(time.RFC3339, d); err == nil {
			doc[IssueDate] = t
		}
	}
	return doc
}

// NormalizeAmount turns a numeric string such as "500" into a number. Any
// other value is returned unchanged.
func NormalizeAmount(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return f
}
