package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIMDBServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/title/tt0133093":
			_, _ = w.Write([]byte(`{"id":"tt0133093","title":"The Matrix","year":1999,"runtime":"2h16m","genre":["Action","Sci-Fi"],"contentRating":"R","image":"https://img/matrix.jpg?x=1","plot":"A hacker learns."}`))
		case "/title/tt0000000":
			http.NotFound(w, r)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIMDBTitle(t *testing.T) {
	srv := newIMDBServer(t)
	imdb := NewIMDB(srv.URL+"/title", nil)

	m, err := imdb.Title(context.Background(), "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, 1999, m.Year)
	assert.Equal(t, "R | 2h16m | Action, Sci-Fi", m.Annotation(""))

	_, err = imdb.Title(context.Background(), "tt0000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = imdb.Title(context.Background(), "tt9999999")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
