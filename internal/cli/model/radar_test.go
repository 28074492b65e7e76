package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummaries_Array(t *testing.T) {
	body := []byte(` [
		{"id": 1, "state": "Open", "title": "a"},
		{"id": 2, "state": "Open", "title": "b"},
		{"id": 3, "state": "Open", "title": "c", "originated": "2013-05-01T10:00:00Z"}
	]`)
	page, err := ParseSummaries(body)
	require.NoError(t, err)
	require.Len(t, page.Summaries, 3)
	assert.Equal(t, int64(3), page.Summaries[2].ID)
	assert.Equal(t, 2013, page.Summaries[2].OriginatedAt.Year())
	assert.False(t, page.HasAdditionalRows())
}

func TestParseSummaries_Page(t *testing.T) {
	page, err := ParseSummaries([]byte(`{"rowStart": 2, "rowsInCache": 5, "summaries": [{"id": 7}, {"id": 8}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, page.RowStart)
	assert.True(t, page.HasAdditionalRows())

	page, err = ParseSummaries([]byte(`{"rowStart": 3, "rowsInCache": 5, "summaries": [{"id": 7}, {"id": 8}]}`))
	require.NoError(t, err)
	assert.False(t, page.HasAdditionalRows())
}

func TestParseSummaries_EmptyCollectionsAreNonNil(t *testing.T) {
	page, err := ParseSummaries([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, page.Summaries)

	page, err = ParseSummaries([]byte(`{"rowStart":0,"rowsInCache":0}`))
	require.NoError(t, err)
	assert.NotNil(t, page.Summaries)
}

func TestParseSummaries_Malformed(t *testing.T) {
	for _, body := range []string{"", "   ", "<html></html>", `{"summaries": 5}`, `[1, 2`, `{"rowStart": -1}`} {
		_, err := ParseSummaries([]byte(body))
		assert.True(t, errors.Is(err, ErrMalformedSummaries), "body %q: %v", body, err)
	}
}
