package model

import (
	"strings"
)

// Video is the playable unit handed to the video player
type Video struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"` // seconds, 0 if unknown
	Live     bool    `json:"live,omitempty"`
}

// HasDuration reports whether the video length is known
func (v Video) HasDuration() bool {
	return v.Duration > 0
}

// Image is a thumbnail reference sized for an in-world grid cell
type Image struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Item is a search or catalog result rendered into a menu list
type Item struct {
	ID          string  `json:"vid"`
	Index       int     `json:"id"`
	Title       string  `json:"title"`
	TitleHeight float64 `json:"height,omitempty"`
	Uploader    string  `json:"uploader,omitempty"`
	Plot        string  `json:"plot,omitempty"`
	PlotHeight  float64 `json:"plot_height,omitempty"`
	Annotation  string  `json:"annotation,omitempty"`
	Duration    int     `json:"duration"` // seconds
	ViewCount   int64   `json:"views,omitempty"`
	Language    string  `json:"language,omitempty"`
	Country     string  `json:"country,omitempty"`
	Image       Image   `json:"img"`
	PageURL     string  `json:"page_url,omitempty"` // where the item lives, e.g. a watch page
	URL         string  `json:"url,omitempty"`      // playable stream, empty until resolved
	Live        bool    `json:"live,omitempty"`
}

// Video converts the item into a playable video using its resolved URL
func (it Item) Video() Video {
	name := it.ID
	if name == "" {
		name = strings.TrimSpace(it.Title)
	}
	return Video{
		Name:     name,
		URL:      it.URL,
		Duration: float64(it.Duration),
		Live:     it.Live,
	}
}

// DurationText returns the duration as hh:mm:ss, or an empty string for live items
func (it Item) DurationText() string {
	if it.Live {
		return ""
	}
	return FormatDuration(it.Duration)
}

// DisplayTitle returns title, page URL, or stream URL in order of preference
func (it Item) DisplayTitle() string {
	if t := strings.TrimSpace(it.Title); t != "" {
		return t
	}
	if it.PageURL != "" {
		return it.PageURL
	}
	return it.URL
}

// Fields returns the template bindings used by list rows
func (it Item) Fields() map[string]any {
	return map[string]any{
		"id":            it.Index,
		"vid":           it.ID,
		"title":         it.Title,
		"height":        it.TitleHeight,
		"uploader":      it.Uploader,
		"plot":          it.Plot,
		"plot_height":   it.PlotHeight,
		"annotation":    it.Annotation,
		"duration_text": it.DurationText(),
		"view_count":    CompactCount(it.ViewCount),
		"language":      it.Language,
		"country":       it.Country,
		"img": map[string]any{
			"url":    it.Image.URL,
			"width":  it.Image.Width,
			"height": it.Image.Height,
		},
	}
}
