package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-shellwords"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for configurations that cannot run
var ErrInvalid = errors.New("invalid configuration")

// Environment overrides
const (
	EnvMongoHost           = "MONGODB_HOST"
	EnvMongoPort           = "MONGODB_PORT"
	EnvMongoUser           = "MONGODB_USER"
	EnvMongoPassword       = "MONGODB_PASSWORD"
	EnvTVDatabase          = "TV_DATABASE"
	EnvMovieDatabase       = "MOVIE_DATABASE"
	EnvShowDatabase        = "SHOW_DATABASE"
	EnvUserContentDatabase = "USERCONTENT_DATABASE"
	EnvMovieBaseURL        = "MOVIE_BASEURL"
	EnvShowBaseURL         = "SHOW_BASEURL"
	EnvUserContentBaseURL  = "USERCONTENT_BASEURL"
	EnvStreamBaseURL       = "STREAM_BASEURL"
	EnvRTMPBaseURL         = "RTMP_BASEURL"
	EnvHLSBaseDir          = "HLS_BASEDIR"
	EnvTwitchClientID      = "TWITCH_CLIENT_ID"
	EnvTwitchClientSecret  = "TWITCH_CLIENT_SECRET"
	EnvProxyURL            = "PROXY_URL"
)

// Default values
const (
	DefaultListen          = ":3901"
	DefaultScale           = 0.5
	DefaultLanguage        = "system"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultMongoHost       = "127.0.0.1"
	DefaultMongoPort       = 27017
	DefaultMaxStreams      = 5
	DefaultWaitTimeout     = 60 * time.Second
	DefaultYtDlpBinary     = "yt-dlp"
	DefaultSearchCount     = 12
	DefaultTwitchTokenURL  = "https://id.twitch.tv/oauth2/token"
	DefaultTwitchAPIURL    = "https://api.twitch.tv/helix"
	DefaultIPTVBaseURL     = "https://iptv-org.github.io/api"
	DefaultIMDBBaseURL     = "https://imdb-api.tprojects.workers.dev/title"
	DefaultTVRefresh       = 24 * time.Hour
	DefaultCatalogRefresh  = 360 * 24 * time.Hour
	DefaultRequestsPerSec  = 8
	minScale, maxScale     = 0.05, 5.0
	minStreams, maxStreams = 1, 50
	minWait, maxWait       = 5 * time.Second, 10 * time.Minute
)

// Pipeline stage defaults. Placeholders: {id}, {page_url}, {rtmp_url}.
var (
	DefaultRestreamStages = []string{
		"yt-dlp -o - {page_url}",
		"ffmpeg -re -i - -acodec copy -vcodec copy -f flv {rtmp_url}",
	}
	DefaultVisualizeStages = []string{
		"yt-dlp -o - {page_url}",
		"ffmpeg -re -i - -vcodec libx264 -acodec aac -filter_complex '[0:a]showcqt=s=360x360[vfun],[0:v]scale=640:360[v];[v][vfun]hstack[vo]' -map '[vo]' -map 0:a -f flv {rtmp_url}",
	}
)

// LogConfig selects the log handler
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // text or json
}

// MongoConfig locates the document store
type MongoConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
}

// URI returns the connection string
func (m MongoConfig) URI() string {
	u := url.URL{
		Scheme:   "mongodb",
		Host:     net.JoinHostPort(m.Host, strconv.Itoa(m.Port)),
		Path:     "/",
		RawQuery: "writeConcern=majority",
	}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
	}
	return u.String()
}

// CatalogConfig is one document-store catalog
type CatalogConfig struct {
	Database string        `yaml:"database" toml:"database"`
	BaseURL  string        `yaml:"base_url" toml:"base_url"` // prefix of stored media paths
	ListFile string        `yaml:"list_file" toml:"list_file"`
	Refresh  time.Duration `yaml:"refresh" toml:"refresh"`

	// Languages restricts listed TV channels to these codes; empty lists all
	Languages []string `yaml:"languages" toml:"languages"`
}

// CatalogsConfig groups the catalogs
type CatalogsConfig struct {
	TV          CatalogConfig `yaml:"tv" toml:"tv"`
	Movie       CatalogConfig `yaml:"movie" toml:"movie"`
	Show        CatalogConfig `yaml:"show" toml:"show"`
	UserContent CatalogConfig `yaml:"user_content" toml:"user_content"`
	// UploadsDir is scanned for user uploads in addition to the list file
	UploadsDir  string `yaml:"uploads_dir" toml:"uploads_dir"`
	IPTVBaseURL string `yaml:"iptv_base_url" toml:"iptv_base_url"`
	IMDBBaseURL string `yaml:"imdb_base_url" toml:"imdb_base_url"`
}

// PipelineConfig controls restream pipelines
type PipelineConfig struct {
	Enabled         bool          `yaml:"enabled" toml:"enabled"`
	HLSDir          string        `yaml:"hls_dir" toml:"hls_dir"`
	StreamBaseURL   string        `yaml:"stream_base_url" toml:"stream_base_url"`
	RTMPBaseURL     string        `yaml:"rtmp_base_url" toml:"rtmp_base_url"`
	MaxStreams      int           `yaml:"max_streams" toml:"max_streams"`
	WaitTimeout     time.Duration `yaml:"wait_timeout" toml:"wait_timeout"`
	RestreamStages  []string      `yaml:"restream" toml:"restream"`
	VisualizeStages []string      `yaml:"visualize" toml:"visualize"`
}

// TwitchConfig holds Helix credentials
type TwitchConfig struct {
	ClientID       string  `yaml:"client_id" toml:"client_id"`
	ClientSecret   string  `yaml:"client_secret" toml:"client_secret"`
	TokenURL       string  `yaml:"token_url" toml:"token_url"`
	APIBaseURL     string  `yaml:"api_base_url" toml:"api_base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" toml:"requests_per_sec"`
}

// YouTubeConfig controls the yt-dlp resolver
type YouTubeConfig struct {
	Binary      string `yaml:"binary" toml:"binary"`
	SearchCount int    `yaml:"search_count" toml:"search_count"`
	ProxyURL    string `yaml:"proxy_url" toml:"proxy_url"`
}

// FileConfig is the whole kiosk configuration
type FileConfig struct {
	Listen       string         `yaml:"listen" toml:"listen"`
	BaseURL      string         `yaml:"base_url" toml:"base_url"` // menu templates and icons
	Scale        float64        `yaml:"scale" toml:"scale"`
	Language     string         `yaml:"language" toml:"language"`
	LayoutsFile  string         `yaml:"layouts_file" toml:"layouts_file"`
	ChannelsFile string         `yaml:"channels_file" toml:"channels_file"`
	Log          LogConfig      `yaml:"log" toml:"log"`
	Mongo        MongoConfig    `yaml:"mongo" toml:"mongo"`
	Catalogs     CatalogsConfig `yaml:"catalogs" toml:"catalogs"`
	Pipeline     PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Twitch       TwitchConfig   `yaml:"twitch" toml:"twitch"`
	YouTube      YouTubeConfig  `yaml:"youtube" toml:"youtube"`
}

// Default returns the configuration used when nothing is set
func Default() FileConfig {
	return FileConfig{
		Listen:   DefaultListen,
		Scale:    DefaultScale,
		Language: DefaultLanguage,
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Mongo:    MongoConfig{Host: DefaultMongoHost, Port: DefaultMongoPort},
		Catalogs: CatalogsConfig{
			TV:          CatalogConfig{Database: "television", Refresh: DefaultTVRefresh},
			Movie:       CatalogConfig{Database: "movie", Refresh: DefaultCatalogRefresh, ListFile: "public/movie/movies.csv"},
			Show:        CatalogConfig{Database: "show"},
			UserContent: CatalogConfig{Database: "usercontent", Refresh: DefaultCatalogRefresh, ListFile: "public/userContent/userContents.csv"},
			IPTVBaseURL: DefaultIPTVBaseURL,
			IMDBBaseURL: DefaultIMDBBaseURL,
		},
		Pipeline: PipelineConfig{
			MaxStreams:      DefaultMaxStreams,
			WaitTimeout:     DefaultWaitTimeout,
			RestreamStages:  append([]string(nil), DefaultRestreamStages...),
			VisualizeStages: append([]string(nil), DefaultVisualizeStages...),
		},
		Twitch: TwitchConfig{
			TokenURL:       DefaultTwitchTokenURL,
			APIBaseURL:     DefaultTwitchAPIURL,
			RequestsPerSec: DefaultRequestsPerSec,
		},
		YouTube: YouTubeConfig{Binary: DefaultYtDlpBinary, SearchCount: DefaultSearchCount},
	}
}

// Load reads path (if not empty) over the defaults and applies environment
// overrides
func Load(path string) (FileConfig, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup
func LoadWithEnv(path string, lookup func(string) (string, bool)) (FileConfig, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	cfg.SetScale(cfg.Scale)
	cfg.SetMaxStreams(cfg.Pipeline.MaxStreams)
	cfg.SetWaitTimeout(cfg.Pipeline.WaitTimeout)
	return cfg, cfg.Validate()
}

func (c *FileConfig) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *FileConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvMongoHost, &c.Mongo.Host)
	str(EnvMongoUser, &c.Mongo.User)
	str(EnvMongoPassword, &c.Mongo.Password)
	str(EnvTVDatabase, &c.Catalogs.TV.Database)
	str(EnvMovieDatabase, &c.Catalogs.Movie.Database)
	str(EnvShowDatabase, &c.Catalogs.Show.Database)
	str(EnvUserContentDatabase, &c.Catalogs.UserContent.Database)
	str(EnvMovieBaseURL, &c.Catalogs.Movie.BaseURL)
	str(EnvShowBaseURL, &c.Catalogs.Show.BaseURL)
	str(EnvUserContentBaseURL, &c.Catalogs.UserContent.BaseURL)
	str(EnvStreamBaseURL, &c.Pipeline.StreamBaseURL)
	str(EnvRTMPBaseURL, &c.Pipeline.RTMPBaseURL)
	str(EnvTwitchClientID, &c.Twitch.ClientID)
	str(EnvTwitchClientSecret, &c.Twitch.ClientSecret)
	str(EnvProxyURL, &c.YouTube.ProxyURL)
	if v, ok := lookup(EnvHLSBaseDir); ok && v != "" {
		c.Pipeline.HLSDir = v
		c.Pipeline.Enabled = true
	}
	if v, ok := lookup(EnvMongoPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvMongoPort, err)
		}
		c.Mongo.Port = port
	}
	return nil
}

// SetScale sets the global menu and screen scale
func (c *FileConfig) SetScale(scale float64) {
	if scale <= 0 {
		scale = DefaultScale
	}
	c.Scale = min(max(scale, minScale), maxScale)
}

// SetMaxStreams sets how many pipelines may run before requests are queued
func (c *FileConfig) SetMaxStreams(n int) {
	if n < minStreams {
		n = minStreams
	}
	if n > maxStreams {
		n = maxStreams
	}
	c.Pipeline.MaxStreams = n
}

// SetWaitTimeout sets how long to wait for pipeline output
func (c *FileConfig) SetWaitTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultWaitTimeout
	}
	c.Pipeline.WaitTimeout = min(max(d, minWait), maxWait)
}

// Validate reports configuration errors
func (c FileConfig) Validate() error {
	if c.Pipeline.Enabled {
		if c.Pipeline.HLSDir == "" {
			return fmt.Errorf("%w: pipeline enabled without hls_dir", ErrInvalid)
		}
		for name, stages := range map[string][]string{
			"restream":  c.Pipeline.RestreamStages,
			"visualize": c.Pipeline.VisualizeStages,
		} {
			if err := validateStages(stages); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
			}
		}
	}
	if c.Mongo.Port <= 0 || c.Mongo.Port > 65535 {
		return fmt.Errorf("%w: mongo port %d", ErrInvalid, c.Mongo.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func validateStages(stages []string) error {
	if len(stages) == 0 {
		return errors.New("no stages")
	}
	for i, s := range stages {
		args, err := shellwords.Parse(s)
		if err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
		if len(args) == 0 {
			return fmt.Errorf("stage %d is empty", i)
		}
	}
	return nil
}
