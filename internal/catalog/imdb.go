package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// IMDB looks up title metadata from an imdb-api compatible service
type IMDB struct {
	baseURL string
	client  *http.Client
}

// NewIMDB creates a client for the service at baseURL
func NewIMDB(baseURL string, client *http.Client) *IMDB {
	if client == nil {
		client = http.DefaultClient
	}
	return &IMDB{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Title fetches {base}/{id}
func (m *IMDB) Title(ctx context.Context, id string) (Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		return Movie{}, fmt.Errorf("failed to build imdb request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return Movie{}, fmt.Errorf("imdb %s: %w", id, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Movie{}, fmt.Errorf("imdb %s: %w", id, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return Movie{}, fmt.Errorf("imdb %s: unexpected status %s", id, resp.Status)
	}
	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return Movie{}, fmt.Errorf("imdb %s: failed to decode: %w", id, err)
	}
	if movie.ID == "" {
		movie.ID = id
	}
	return movie, nil
}
