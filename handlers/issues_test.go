package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/kevinaaaquil/shelf/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// issueJSON is an issue as a client sees it.
type issueJSON = map[string]any

func createIssue(t *testing.T, s *testServer, title, email string) string {
	t.Helper()
	rec := s.request(t, http.MethodPost, "/all-issues", map[string]any{
		"title":    title,
		"category": "pothole",
		"amount":   120.5,
		"status":   "open",
		"email":    email,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decodeBody[store.InsertResult](t, rec)
	require.True(t, res.Acknowledged)
	return res.InsertedID
}

func issueDate(t *testing.T, issue issueJSON) time.Time {
	t.Helper()
	raw, ok := issue["date"].(string)
	require.True(t, ok, "date is %T", issue["date"])
	d, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	return d
}

func TestIssues_CreateAndGet(t *testing.T) {
	s := setupTestServer(t)
	id := createIssue(t, s, "Broken lamp", "ann@example.com")

	rec := s.request(t, http.MethodGet, "/issues/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[issueJSON](t, rec)
	assert.Equal(t, id, got["_id"])
	assert.Equal(t, "Broken lamp", got["title"])
	assert.Equal(t, 120.5, got["amount"])
	assert.False(t, issueDate(t, got).IsZero(), "date defaults to now")

	rec = s.request(t, http.MethodGet, "/all-issues/"+primitive.NewObjectID().Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(t, http.MethodGet, "/all-issues/12345", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid issue id", messageOf(t, rec))
}

func TestIssues_CreateKeepsSubmittedShape(t *testing.T) {
	s := setupTestServer(t)
	clientID := primitive.NewObjectID().Hex()
	rec := s.request(t, http.MethodPost, "/all-issues", map[string]any{
		"_id":          clientID,
		"title":        "Overflowing bin",
		"amount":       "500",
		"email":        "ann@example.com",
		"reporterName": "Ann",
		"location":     map[string]any{"ward": "7", "lat": 23.8},
		"tags":         []any{"waste", "urgent"},
		"date":         "2025-02-03T10:00:00Z",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[store.InsertResult](t, rec).InsertedID
	assert.NotEqual(t, clientID, id, "client ids are not trusted")

	rec = s.request(t, http.MethodGet, "/all-issues/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[issueJSON](t, rec)
	assert.Equal(t, "Ann", got["reporterName"])
	assert.Equal(t, 500.0, got["amount"])
	assert.Equal(t, map[string]any{"ward": "7", "lat": 23.8}, got["location"])
	assert.Equal(t, []any{"waste", "urgent"}, got["tags"])
	assert.True(t, time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC).Equal(issueDate(t, got)))

	rec = s.request(t, http.MethodGet, "/all-issues", nil, "")
	all := decodeBody[[]issueJSON](t, rec)
	require.Len(t, all, 1)
	assert.Equal(t, "Ann", all[0]["reporterName"])

	t.Run("amount that is not a number is stored as sent", func(t *testing.T) {
		rec := s.request(t, http.MethodPost, "/all-issues", map[string]any{"title": "x", "amount": "about 500"}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decodeBody[store.InsertResult](t, rec).InsertedID

		rec = s.request(t, http.MethodGet, "/issues/"+id, nil, "")
		assert.Equal(t, "about 500", decodeBody[issueJSON](t, rec)["amount"])
	})
}

func TestIssues_ListAndMine(t *testing.T) {
	s := setupTestServer(t)
	createIssue(t, s, "one", "ann@example.com")
	createIssue(t, s, "two", "bob@example.com")
	createIssue(t, s, "three", "ann@example.com")

	rec := s.request(t, http.MethodGet, "/all-issues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]issueJSON](t, rec), 3)

	rec = s.request(t, http.MethodGet, "/my-issues?email=ann@example.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeBody[[]issueJSON](t, rec)
	require.Len(t, mine, 2)
	for _, issue := range mine {
		assert.Equal(t, "ann@example.com", issue["email"])
	}

	rec = s.request(t, http.MethodGet, "/my-issues?email=nobody@example.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestIssues_RecentReturnsNewestSix(t *testing.T) {
	s := setupTestServer(t)
	for _, title := range []string{"i1", "i2", "i3", "i4", "i5", "i6", "i7", "i8"} {
		createIssue(t, s, title, "ann@example.com")
	}

	rec := s.request(t, http.MethodGet, "/recent-issues", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decodeBody[[]issueJSON](t, rec)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, "i8", recent[0]["title"])
	assert.Equal(t, "i3", recent[5]["title"])
	for i := 1; i < len(recent); i++ {
		assert.True(t, issueDate(t, recent[i-1]).After(issueDate(t, recent[i])))
	}
}

func TestIssues_UpdateAndDelete(t *testing.T) {
	s := setupTestServer(t)
	rec := s.request(t, http.MethodPost, "/all-issues", map[string]any{
		"title":        "Broken lamp",
		"description":  "flickers",
		"email":        "ann@example.com",
		"reporterName": "Ann",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[store.InsertResult](t, rec).InsertedID

	rec = s.request(t, http.MethodPut, "/my-issues/"+id, map[string]any{
		"title":    "Broken lamp on 5th",
		"category": "lighting",
		"amount":   "80",
		"status":   "in-progress",
		"email":    "mallory@example.com",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	upd := decodeBody[store.UpdateResult](t, rec)
	assert.Equal(t, int64(1), upd.MatchedCount)
	assert.Equal(t, int64(1), upd.ModifiedCount)

	rec = s.request(t, http.MethodGet, "/issues/"+id, nil, "")
	got := decodeBody[issueJSON](t, rec)
	assert.Equal(t, "Broken lamp on 5th", got["title"])
	assert.Equal(t, 80.0, got["amount"])
	assert.Nil(t, got["description"], "an omitted editable field is cleared")
	assert.Equal(t, "ann@example.com", got["email"], "reporter is not editable")
	assert.Equal(t, "Ann", got["reporterName"])

	rec = s.request(t, http.MethodPut, "/my-issues/"+primitive.NewObjectID().Hex(), map[string]any{"title": "x"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decodeBody[store.UpdateResult](t, rec).MatchedCount)

	rec = s.request(t, http.MethodDelete, "/my-issues/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeBody[store.DeleteResult](t, rec).DeletedCount)

	rec = s.request(t, http.MethodDelete, "/my-issues/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), decodeBody[store.DeleteResult](t, rec).DeletedCount)

	rec = s.request(t, http.MethodDelete, "/my-issues/bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssues_StoredWithoutDateSortLast(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.db.Issues().Insert(context.Background(), map[string]any{"title": "legacy"})
	require.NoError(t, err)
	createIssue(t, s, "fresh", "ann@example.com")

	rec := s.request(t, http.MethodGet, "/recent-issues", nil, "")
	recent := decodeBody[[]issueJSON](t, rec)
	require.Len(t, recent, 2)
	assert.Equal(t, "fresh", recent[0]["title"])
	assert.Equal(t, "legacy", recent[1]["title"])
}
