package catalog

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memLog struct {
	mu   sync.Mutex
	last time.Time
	ok   bool
	sets int
}

func (m *memLog) LastUpdate(ctx context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.ok, nil
}

func (m *memLog) SetLastUpdate(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last, m.ok = t, true
	m.sets++
	return nil
}

type memTVStore struct {
	memLog
	categories []Category
	languages  []Language
	channels   []Channel
	lastFilter ChannelFilter
}

func (s *memTVStore) UpsertCategories(ctx context.Context, c []Category) error {
	s.categories = c
	return nil
}

func (s *memTVStore) UpsertLanguages(ctx context.Context, l []Language) error {
	s.languages = l
	return nil
}

func (s *memTVStore) UpsertChannels(ctx context.Context, c []Channel) error {
	s.channels = c
	return nil
}

func (s *memTVStore) Categories(ctx context.Context) ([]Category, error) {
	return s.categories, nil
}

func (s *memTVStore) Channels(ctx context.Context, f ChannelFilter) ([]Channel, error) {
	s.lastFilter = f
	var out []Channel
	for _, c := range s.channels {
		playable := false
		for _, st := range c.Streams {
			playable = playable || st.Playable()
		}
		if playable {
			out = append(out, c)
		}
	}
	return out, nil
}

type memLibrary struct {
	memLog
	docs []Movie
}

func (s *memLibrary) InsertMissing(ctx context.Context, movies []Movie) error {
	for _, m := range movies {
		exists := false
		for _, d := range s.docs {
			exists = exists || d.ID == m.ID
		}
		if !exists {
			s.docs = append(s.docs, m)
		}
	}
	return nil
}

func (s *memLibrary) Find(ctx context.Context, title string) ([]Movie, error) {
	var out []Movie
	for _, d := range s.docs {
		if strings.Contains(strings.ToLower(d.Title), strings.ToLower(title)) {
			out = append(out, d)
		}
	}
	return out, nil
}

type memShows struct {
	shows    []Show
	episodes map[string][]Episode // key: show id + "/" + season
}

func (s *memShows) Shows(ctx context.Context, title string) ([]Show, error) {
	var out []Show
	for _, sh := range s.shows {
		if strings.Contains(strings.ToLower(sh.Title), strings.ToLower(title)) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *memShows) Episodes(ctx context.Context, showID, season string) ([]Episode, error) {
	eps, ok := s.episodes[showID+"/"+season]
	if !ok {
		return nil, ErrNotFound
	}
	return eps, nil
}
