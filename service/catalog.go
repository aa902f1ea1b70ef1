package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultCatalogURL = "https://www.googleapis.com/books/v1/volumes"

var (
	ErrInvalidISBN = errors.New("isbn must have 10 or 13 digits")
	ErrNoVolume    = errors.New("no volume found for isbn")
)

// CatalogEntry is a book draft prefilled from the public catalogue. Clients
// review it and POST it to /books themselves.
type CatalogEntry struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	TotalPages  int    `json:"totalPages"`
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Subtitle            string   `json:"subtitle"`
			Authors             []string `json:"authors"`
			Description         string   `json:"description"`
			PageCount           int      `json:"pageCount"`
			Categories          []string `json:"categories"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Catalog looks books up in the Google Books volumes API.
type Catalog struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalog(baseURL string) *Catalog {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	// short timeout so a hung upstream doesn't hold the request
	return &Catalog{BaseURL: baseURL, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (c *Catalog) LookupISBN(ctx context.Context, isbn string) (*CatalogEntry, error) {
	isbn = sanitizeISBN(isbn)
	if len(isbn) != 10 && len(isbn) != 13 {
		return nil, ErrInvalidISBN
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}
	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoVolume, isbn)
	}

	vi := data.Items[0].VolumeInfo
	entry := &CatalogEntry{
		ISBN:        isbn,
		Title:       vi.Title,
		Author:      strings.Join(vi.Authors, ", "),
		Description: strings.TrimSpace(vi.Description),
		TotalPages:  vi.PageCount,
	}
	if vi.Subtitle != "" {
		entry.Title += ": " + vi.Subtitle
	}
	if len(vi.Categories) > 0 {
		entry.Genre = vi.Categories[0]
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			entry.ISBN = sanitizeISBN(id.Identifier)
			break
		}
	}
	// Google's own image links often sit behind a captcha; Open Library serves covers by ISBN.
	entry.CoverImage = "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(entry.ISBN) + "-L.jpg"
	return entry, nil
}

// sanitizeISBN keeps the digits of isbn and a trailing ISBN-10 check character X.
func sanitizeISBN(isbn string) string {
	isbn = strings.TrimSpace(isbn)
	var b strings.Builder
	for i, r := range isbn {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case (r == 'X' || r == 'x') && i == len(isbn)-1:
			b.WriteRune('X')
		}
	}
	return b.String()
}
