package model

// Package model defines domain data structures shared across the kiosk: playable
// videos, catalog items rendered into menus, aspect-ratio presets, pipeline status
// enums and imported playlists. Structures are plain values with explicit state
// transitions so they can be passed between the event loop and worker goroutines.
