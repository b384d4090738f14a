package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, body string) string {
	name := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(name, []byte(body), 0644))
	return name
}

func TestIMDBLoaderFallsBackToFileName(t *testing.T) {
	srv := newIMDBServer(t)
	list := writeList(t, "id;path\ntt0133093;The_Matrix.mp4\ntt0000000;Lost_Film.mkv\n")

	load := IMDBLoader(list, "https://cdn/movies", NewIMDB(srv.URL+"/title", nil), nil)
	movies, err := load(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, "The Matrix", movies[0].Title)
	assert.Equal(t, 1999, movies[0].Year)
	assert.Equal(t, "https://cdn/movies/The_Matrix.mp4", movies[0].URL)
	assert.Equal(t, "The_Matrix.mp4", movies[0].Path)

	assert.Equal(t, "tt0000000", movies[1].ID)
	assert.Equal(t, "Lost Film", movies[1].Title)
	assert.Equal(t, "https://cdn/movies/Lost_Film.mkv", movies[1].URL)
}

func TestLibraryUpdateAndSearch(t *testing.T) {
	store := &memLibrary{docs: []Movie{{ID: "old", Title: "Matrix Reloaded"}}}
	list := writeList(t, "id;path\nold;Matrix_Reloaded.mp4\nnew;The_Matrix.mp4\nother;Casablanca.mp4\n")
	lib := NewLibrary("movie", store, time.Hour, nil,
		ListLoader(list, "https://cdn"),
		ListLoader(filepath.Join(t.TempDir(), "missing.csv"), "https://cdn"),
	)
	assert.Equal(t, "movie", lib.Name())

	ran, err := lib.Refresher().RunIfStale(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	require.Len(t, store.docs, 3, "existing documents are not replaced")

	all, err := lib.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := lib.Search(context.Background(), "  matrix ")
	require.NoError(t, err)
	ids := make([]string, 0, len(found))
	for _, m := range found {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"old", "new"}, ids)
}

func TestUploadsLoader(t *testing.T) {
	dir := t.TempDir()
	flv := append([]byte{'F', 'L', 'V', 0x01, 0x05, 0, 0, 0, 9}, make([]byte, 300)...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cat_Video.flv"), flv, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0644))

	movies, err := UploadsLoader(dir, "https://cdn/user/")(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, Movie{ID: "Cat_Video.flv", Title: "Cat Video", Path: "Cat_Video.flv", URL: "https://cdn/user/Cat_Video.flv"}, movies[0])

	movies, err = UploadsLoader("", "https://cdn")(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}
