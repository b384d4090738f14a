package ui

// UI-wide constants to avoid magic strings scattered across the panels.

// UI events
const (
	EventClick     Event = "click"
	EventSubmitted Event = "submitted"
	EventSelected  Event = "selected"
	EventChecked   Event = "checked"
	EventSet       Event = "set"
	EventButton    Event = "button"
)

// Element identifiers shared by the panel templates
const (
	IDLoading    = "loading"
	IDLogo       = "logo"
	IDSearchText = "search_text"
	IDList       = "list"
	IDVideo      = "video"
	IDPlaylist   = "playlist"
	IDSettings   = "settings"
	IDMain       = "main"
	IDPrev       = "prev"
	IDNext       = "next"
	IDBack       = "back"

	// media menu
	IDTitle        = "title"
	IDUploader     = "uploader"
	IDTime         = "time"
	IDTimeSlider   = "time_slider"
	IDFullscreen   = "fullscreen"
	IDPlay         = "play"
	IDStop         = "stop"
	IDForward      = "forward"
	IDBackward     = "backward"
	IDRolloff      = "rolloff_number"
	IDVolumeButton = "volume_button"
	IDVolumeSlider = "volume_slider"
	IDForcePlay    = "forceplay"
	IDVisualize    = "visualize"
	IDReplay       = "replay"
	IDRatio        = "ratio"
	ID3D           = "3d"

	// settings menu
	IDLock     = "lock"
	IDShutdown = "shutdown"
)

// Grids and the templates mounted into the main container
const (
	IDVideosList       = "videos_list"
	IDAppsList         = "apps_list"
	IDCategoriesList   = "categories_list"
	IDChannelsList     = "channels_list"
	IDCategoryText     = "category_text"
	IDMoviesList       = "movies_list"
	IDUserContentsList = "userContents_list"
	IDShowsList        = "shows_list"
	IDSeasonsList      = "seasons_list"
	IDEpisodesList     = "episodes_list"
	IDShowText         = "show_text"
	IDImage            = "image"
	IDDate             = "date"
	IDPlot             = "plot"
)

// ClassScale marks media menu elements resized with the aspect ratio
const ClassScale = "scale"

// Button assets
const (
	AssetPlay  = "Play"
	AssetPause = "Pause"
)

// Text sizing for FormatText
const (
	DefaultMaxTextHeight = 0.05
	heightToWidth        = 0.8
	textHeightStep       = 0.0005
	textHeightSteps      = 40
	longWordCells        = 16
)
