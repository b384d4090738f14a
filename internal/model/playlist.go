package model

import (
	"time"
)

// PlaylistStatus represents the current status of an imported playlist
type PlaylistStatus string

const (
	PlaylistStatusParsing PlaylistStatus = "parsing"
	PlaylistStatusReady   PlaylistStatus = "ready"
	PlaylistStatusError   PlaylistStatus = "error"
)

// Playlist represents a YouTube playlist imported into a video list
type Playlist struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Items     []Item         `json:"items"`
	Status    PlaylistStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	now := time.Now()
	return &Playlist{
		URL:       url,
		Status:    PlaylistStatusParsing,
		Items:     make([]Item, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends an item and numbers it by position
func (p *Playlist) AddItem(item Item) {
	item.Index = len(p.Items)
	p.Items = append(p.Items, item)
	p.UpdatedAt = time.Now()
}

// UpdateStatus updates the playlist status
func (p *Playlist) UpdateStatus(status PlaylistStatus) {
	p.Status = status
	p.UpdatedAt = time.Now()
}

// Fail records an error and moves the playlist to the error state
func (p *Playlist) Fail(err error) {
	p.Error = err.Error()
	p.UpdateStatus(PlaylistStatusError)
}

// IsReady reports whether the playlist parsed and holds at least one item
func (p *Playlist) IsReady() bool {
	return p.Status == PlaylistStatusReady && len(p.Items) > 0
}
