package handlers

import (
	"net/http"
	"testing"

	"github.com/kevinaaaquil/shelf/models"
	"github.com/kevinaaaquil/shelf/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenres(t *testing.T) {
	s := setupTestServer(t)
	var ids []string
	for _, name := range []string{"Science Fiction", "Fantasy", "Biography"} {
		rec := s.request(t, http.MethodPost, "/genres", CreateGenreRequest{Name: name}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decodeBody[store.InsertResult](t, rec).InsertedID)
	}

	rec := s.request(t, http.MethodGet, "/genres", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	genres := decodeBody[[]models.Genre](t, rec)
	require.Len(t, genres, 3)
	assert.Equal(t, "Biography", genres[0].Name)
	assert.Equal(t, "Science Fiction", genres[2].Name)

	rec = s.request(t, http.MethodGet, "/genres/"+ids[1], nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fantasy", decodeBody[models.Genre](t, rec).Name)

	rec = s.request(t, http.MethodDelete, "/genres/"+ids[1], nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.request(t, http.MethodGet, "/genres/"+ids[1], nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "genre not found", messageOf(t, rec))

	rec = s.request(t, http.MethodPost, "/genres", CreateGenreRequest{Description: "nameless"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", messageOf(t, rec))
}
