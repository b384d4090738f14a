package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// iptv-org API resources
const (
	countriesResource  = "countries.json"
	languagesResource  = "languages.json"
	categoriesResource = "categories.json"
	streamsResource    = "streams.json"
	channelsResource   = "channels.json"
)

// IPTVData is one consistent snapshot of the iptv-org database
type IPTVData struct {
	Languages  []Language
	Categories []Category
	Channels   []Channel
}

type iptvChannel struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Logo       string   `json:"logo"`
	NSFW       bool     `json:"is_nsfw"`
	Country    string   `json:"country"`
	Languages  []string `json:"languages"`
	Categories []string `json:"categories"`
}

// IPTVFetcher downloads and joins the iptv-org API resources
type IPTVFetcher struct {
	baseURL string
	client  *http.Client
}

// NewIPTVFetcher creates a fetcher for the API at baseURL
func NewIPTVFetcher(baseURL string, client *http.Client) *IPTVFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &IPTVFetcher{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Fetch downloads all resources in parallel and joins channels with their
// country, languages, categories and streams
func (f *IPTVFetcher) Fetch(ctx context.Context) (*IPTVData, error) {
	var (
		countries  []Country
		languages  []Language
		categories []Category
		streams    []Stream
		channels   []iptvChannel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.get(gctx, countriesResource, &countries) })
	g.Go(func() error { return f.get(gctx, languagesResource, &languages) })
	g.Go(func() error { return f.get(gctx, categoriesResource, &categories) })
	g.Go(func() error { return f.get(gctx, streamsResource, &streams) })
	g.Go(func() error { return f.get(gctx, channelsResource, &channels) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return joinIPTV(countries, languages, categories, streams, channels), nil
}

func joinIPTV(countries []Country, languages []Language, categories []Category, streams []Stream, raw []iptvChannel) *IPTVData {
	countryByCode := make(map[string]Country, len(countries))
	for _, c := range countries {
		countryByCode[c.Code] = c
	}
	langIndex := make(map[string]int, len(languages))
	for i, l := range languages {
		langIndex[l.Code] = i
	}
	categoryByID := make(map[string]Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}
	streamsByChannel := make(map[string][]Stream)
	for _, s := range streams {
		// Newer API snapshots dropped the status field.
		if s.Status == "" {
			s.Status = StreamOnline
		}
		streamsByChannel[s.Channel] = append(streamsByChannel[s.Channel], s)
	}

	channels := make([]Channel, 0, len(raw))
	for _, rc := range raw {
		ch := Channel{
			ID:         rc.ID,
			Name:       rc.Name,
			Logo:       rc.Logo,
			NSFW:       rc.NSFW,
			Streams:    streamsByChannel[rc.ID],
			Languages:  []Language{},
			Categories: []Category{},
		}
		if ch.Streams == nil {
			ch.Streams = []Stream{}
		}
		if c, ok := countryByCode[rc.Country]; ok {
			ch.Country = &c
		}
		for _, code := range rc.Languages {
			if i, ok := langIndex[code]; ok {
				languages[i].Count++
				ch.Languages = append(ch.Languages, Language{Code: languages[i].Code, Name: languages[i].Name})
			}
		}
		for _, id := range rc.Categories {
			if c, ok := categoryByID[id]; ok {
				ch.Categories = append(ch.Categories, c)
			}
		}
		channels = append(channels, ch)
	}
	return &IPTVData{Languages: languages, Categories: categories, Channels: channels}
}

func (f *IPTVFetcher) get(ctx context.Context, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+resource, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", resource, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", resource, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", resource, err)
	}
	return nil
}
