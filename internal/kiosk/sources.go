package kiosk

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/panel"
	"github.com/ytget/mre-kiosk/internal/pipeline"
	"github.com/ytget/mre-kiosk/internal/platform"
	"github.com/ytget/mre-kiosk/internal/source"
)

const httpTimeout = 30 * time.Second

// Sources are the content collaborators behind the panels. Starter and
// MyChannels may be nil.
type Sources struct {
	Videos      panel.VideoSource
	Starter     pipeline.Starter
	Streams     panel.StreamSource
	Channels    panel.ChannelCatalog
	Movies      panel.MovieCatalog
	UserContent panel.MovieCatalog
	Shows       panel.ShowCatalog

	// MyChannels receives the supplier of the startup channel list and the
	// name of its pseudo-category
	MyChannels func(fn func() []catalog.Channel, name string)

	// Setup holds one-time setup per panel key, run before the panel is
	// installed
	Setup map[string]func(context.Context) error

	closers []func(context.Context) error
}

// OnStop registers fn to run when the kiosk stops
func (s *Sources) OnStop(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

func (s *Sources) close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Sources) setup(key string) func(context.Context) error {
	if s.Setup == nil {
		return nil
	}
	return s.Setup[key]
}

// NewSources builds the production collaborators from cfg. Nothing connects
// until first use; catalog refreshers start when their panel is installed.
func NewSources(ctx context.Context, cfg config.FileConfig, client *http.Client, logger *slog.Logger) *Sources {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	cats := cfg.Catalogs

	ytdlp := platform.NewYTDLPParserService(cfg.YouTube.Binary, platform.NewExecRunner())
	playlists := platform.NewPlaylistParserService(nil)
	mongo := catalog.NewClient(cfg.Mongo.URI())

	tv := catalog.NewTelevision(
		catalog.NewMongoTVStore(mongo, cats.TV.Database),
		catalog.NewIPTVFetcher(cats.IPTVBaseURL, client),
		cats.TV.Refresh, logger)
	movies := catalog.NewLibrary(panel.KeyMovie,
		catalog.NewMongoLibraryStore(mongo, cats.Movie.Database, catalog.MoviesCollection),
		cats.Movie.Refresh, logger,
		catalog.IMDBLoader(cats.Movie.ListFile, cats.Movie.BaseURL, catalog.NewIMDB(cats.IMDBBaseURL, client), logger))
	userContent := catalog.NewLibrary(panel.KeyUser,
		catalog.NewMongoLibraryStore(mongo, cats.UserContent.Database, catalog.UserContentCollection),
		cats.UserContent.Refresh, logger,
		catalog.ListLoader(cats.UserContent.ListFile, cats.UserContent.BaseURL),
		catalog.UploadsLoader(cats.UploadsDir, cats.UserContent.BaseURL))

	s := &Sources{
		Videos:      source.NewYouTube(cfg.YouTube, ytdlp, playlists),
		Streams:     source.NewTwitch(ctx, cfg.Twitch, ytdlp, logger),
		Channels:    tv,
		Movies:      movies,
		UserContent: userContent,
		Shows:       catalog.NewShows(catalog.NewMongoShowStore(mongo, cats.Show.Database)),
		MyChannels:  tv.SetMyChannels,
		Setup: map[string]func(context.Context) error{
			panel.KeyTV:    background(tv.Refresher()),
			panel.KeyMovie: background(movies.Refresher()),
			panel.KeyUser:  background(userContent.Refresher()),
		},
	}
	if cfg.Pipeline.Enabled {
		if err := platform.CreateDirectoryIfNotExists(cfg.Pipeline.HLSDir); err != nil {
			logger.Warn("hls directory unavailable", "dir", cfg.Pipeline.HLSDir, "error", err)
		}
		m := pipeline.NewManager(cfg.Pipeline, nil, logger)
		m.SetUpdateCallback(func(h *pipeline.Handle) {
			logger.Debug("pipeline status", "pipeline", h.ID, "status", h.Status().String())
		})
		s.Starter = m
		s.OnStop(func(context.Context) error {
			m.Shutdown()
			return nil
		})
	}
	s.OnStop(mongo.Close)
	return s
}

// background starts r for the lifetime of the setup context
func background(r *catalog.Refresher) func(context.Context) error {
	return func(ctx context.Context) error {
		go r.Run(ctx)
		return nil
	}
}
