package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// imdbConcurrency bounds parallel IMDB lookups during a refresh
const imdbConcurrency = 8

// Loader produces the documents a library refresh inserts
type Loader func(ctx context.Context) ([]Movie, error)

// Library is a movie-like catalog: movies and user content
type Library struct {
	name      string
	store     LibraryStore
	loaders   []Loader
	refresher *Refresher
}

// NewLibrary creates a library that inserts what loaders produce when it is older than refresh
func NewLibrary(name string, store LibraryStore, refresh time.Duration, logger *slog.Logger, loaders ...Loader) *Library {
	l := &Library{name: name, store: store, loaders: loaders}
	l.refresher = NewRefresher(name, store, refresh, l.Update, logger)
	return l
}

// Name returns the catalog name
func (l *Library) Name() string {
	return l.name
}

// Refresher returns the background refresher of the library
func (l *Library) Refresher() *Refresher {
	return l.refresher
}

// Update runs every loader and inserts documents not stored yet
func (l *Library) Update(ctx context.Context) error {
	var all []Movie
	for _, load := range l.loaders {
		movies, err := load(ctx)
		if err != nil {
			return err
		}
		all = append(all, movies...)
	}
	return l.store.InsertMissing(ctx, all)
}

// All lists the whole library
func (l *Library) All(ctx context.Context) ([]Movie, error) {
	return l.store.Find(ctx, "")
}

// Search lists titles containing keyword, best fuzzy matches first
func (l *Library) Search(ctx context.Context, keyword string) ([]Movie, error) {
	keyword = strings.TrimSpace(keyword)
	movies, err := l.store.Find(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return rank(keyword, movies, func(m Movie) string { return m.Title }, true), nil
}

func readOptionalList(name string) ([]ListEntry, error) {
	if name == "" {
		return nil, nil
	}
	entries, err := ReadListFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return entries, err
}

// ListLoader loads "id;path" entries with titles taken from their file names
func ListLoader(listFile, baseURL string) Loader {
	return func(ctx context.Context) ([]Movie, error) {
		entries, err := readOptionalList(listFile)
		if err != nil {
			return nil, err
		}
		return entriesToMovies(entries, baseURL), nil
	}
}

// UploadsLoader loads the video files found in dir
func UploadsLoader(dir, baseURL string) Loader {
	return func(ctx context.Context) ([]Movie, error) {
		if dir == "" {
			return nil, nil
		}
		entries, err := ScanUploads(dir)
		if err != nil {
			return nil, err
		}
		return entriesToMovies(entries, baseURL), nil
	}
}

// IMDBLoader loads "imdb_id;path" entries and describes each through IMDB.
// Entries whose lookup fails are kept with the title taken from the file name.
func IMDBLoader(listFile, baseURL string, imdb *IMDB, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) ([]Movie, error) {
		entries, err := readOptionalList(listFile)
		if err != nil {
			return nil, err
		}
		movies := entriesToMovies(entries, baseURL)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(imdbConcurrency)
		for i := range movies {
			g.Go(func() error {
				m, err := imdb.Title(gctx, movies[i].ID)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					logger.Warn("imdb lookup failed", "id", movies[i].ID, "error", err)
					return nil
				}
				m.ID = movies[i].ID
				m.Path = movies[i].Path
				m.URL = movies[i].URL
				movies[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return movies, nil
	}
}

func entriesToMovies(entries []ListEntry, baseURL string) []Movie {
	out := make([]Movie, 0, len(entries))
	for _, e := range entries {
		out = append(out, Movie{
			ID:    e.ID,
			Title: TitleFromPath(e.Path),
			Path:  e.Path,
			URL:   JoinURL(baseURL, e.Path),
		})
	}
	return out
}
