package handlers

import (
	"net/http"
	"time"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/store"
)

type IssuesHandler struct {
	Issues store.Collection
	Now    func() time.Time
}

func (h *IssuesHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// Create stores the submitted document as is, apart from the normalisation
// done by models.NewIssue.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var submitted models.Issue
	if !decodeJSON(w, r, &submitted) {
		return
	}
	res, err := h.Issues.Insert(r.Context(), models.NewIssue(submitted, h.now()))
	if err != nil {
		storeError(w, "issue", err, "Failed to create issue")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List returns every issue, optionally narrowed by category, status or email.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, queryFilter(r, models.IssueCategory, models.IssueStatus, models.IssueEmail), nil)
}

// Mine returns the issues reported by the email in the query string.
func (h *IssuesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, queryFilter(r, models.IssueEmail), nil)
}

// Recent returns the newest issues for the dashboard.
func (h *IssuesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, nil, &store.FindOptions{SortKey: models.IssueDate, Descending: true, Limit: RecentLimit})
}

func (h *IssuesHandler) find(w http.ResponseWriter, r *http.Request, filter store.Filter, opts *store.FindOptions) {
	issues := []models.Issue{}
	if err := h.Issues.FindMany(r.Context(), filter, opts, &issues); err != nil {
		storeError(w, "issue", err, "Failed to fetch issues")
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	var issue models.Issue
	if err := h.Issues.FindByID(r.Context(), pathID(r), &issue); err != nil {
		storeError(w, "issue", err, "Failed to fetch issue")
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// Update replaces the editable fields of an issue. A field left out of the
// body is written as null. Reporter, date and extra fields stay.
func (h *IssuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.Issue
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := store.Fields{}
	for _, k := range models.IssueEditable {
		fields[k] = req[k]
	}
	fields[models.IssueAmount] = models.NormalizeAmount(fields[models.IssueAmount])
	res, err := h.Issues.UpdateByID(r.Context(), pathID(r), fields)
	if err != nil {
		storeError(w, "issue", err, "Failed to update issue")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.Issues.DeleteByID(r.Context(), pathID(r))
	if err != nil {
		storeError(w, "issue", err, "Failed to delete issue")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
