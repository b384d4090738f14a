package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ytget/mre-kiosk/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout  = 60 * time.Second
	DefaultSearchTimeout = 90 * time.Second
)

// yt-dlp command line
const (
	DefaultBinary     = "yt-dlp"
	DefaultSearchSize = 12
	SearchPrefix      = "ytsearch%d:%s"
	PrintFlag         = "--print"
	JSONFlag          = "-J"
	ProxyFlag         = "--proxy"
	NoWarningsFlag    = "--no-warnings"

	// One line per video, fields separated by FieldSeparator
	PrintTemplate  = "%(id)s;%(title)s;%(duration)s;%(uploader)s;%(upload_date)s;%(view_count)s;%(thumbnails.36.url)s"
	FieldSeparator = ";"
	NAValue        = "NA"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Thumbnail cell size in the list grid
const (
	ThumbnailWidth  = 0.95
	ThumbnailHeight = 0.57
	MaxUploaderLen  = 72
)

// YouTube progressive formats that carry audio and video in one file
var ProgressiveFormatIDs = []string{"18", "22"}

// Characters stripped from search keywords before they reach yt-dlp
var keywordStripper = regexp.MustCompile(`[&/\\#,+()$~%.'":*?<>{}]`)

// Errors returned while parsing yt-dlp output
var (
	ErrMalformedLine = errors.New("malformed yt-dlp line")
	ErrNoFormat      = errors.New("no matching format")
)

// Format is one downloadable rendition listed by yt-dlp -J
type Format struct {
	ID     string  `json:"format_id"`
	Note   string  `json:"format_note"`
	URL    string  `json:"url"`
	Height int     `json:"height"`
	Ext    string  `json:"ext"`
	TBR    float64 `json:"tbr"`
}

// VideoInfo is the subset of yt-dlp -J output the kiosk reads
type VideoInfo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration float64  `json:"duration"`
	Uploader string   `json:"uploader"`
	IsLive   bool     `json:"is_live"`
	URL      string   `json:"url"`
	Formats  []Format `json:"formats"`
}

// YTDLPParserService wraps the yt-dlp command line
type YTDLPParserService struct {
	binary  string
	proxy   string
	runner  Runner
	timeout time.Duration
}

// NewYTDLPParserService creates a new parser service
func NewYTDLPParserService(binary string, runner Runner) *YTDLPParserService {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &YTDLPParserService{
		binary:  binary,
		runner:  runner,
		timeout: DefaultParseTimeout,
	}
}

// SetTimeout sets the timeout for single-video operations
func (y *YTDLPParserService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// SetProxy routes yt-dlp traffic through the given proxy URL
func (y *YTDLPParserService) SetProxy(proxy string) {
	y.proxy = proxy
}

// Binary returns the yt-dlp executable name
func (y *YTDLPParserService) Binary() string {
	return y.binary
}

// Search runs a keyword search and calls fn for every result as soon as yt-dlp prints it
func (y *YTDLPParserService) Search(ctx context.Context, keyword string, count int, fn func(model.Item)) error {
	keyword = SanitizeKeyword(keyword)
	if keyword == "" {
		return nil
	}
	if count <= 0 {
		count = DefaultSearchSize
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	index := 0
	args := y.args(fmt.Sprintf(SearchPrefix, count, keyword), PrintFlag, PrintTemplate)
	return y.runner.Lines(ctx, func(line string) {
		item, err := ParseSearchLine(line)
		if err != nil {
			return
		}
		item.Index = index
		index++
		fn(item)
	}, y.binary, args...)
}

// Describe prints the metadata of one video
func (y *YTDLPParserService) Describe(ctx context.Context, videoID string) (model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	out, err := y.runner.Output(ctx, y.binary, y.args(WatchURL(videoID), PrintFlag, PrintTemplate)...)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to describe video %s: %w", videoID, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return ParseSearchLine(line)
}

// Info returns the full JSON description of a video or stream
func (y *YTDLPParserService) Info(ctx context.Context, url string) (*VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	out, err := y.runner.Output(ctx, y.binary, y.args(JSONFlag, url)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get info for %s: %w", url, err)
	}
	var info VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp json: %w", err)
	}
	return &info, nil
}

// ProgressiveURL resolves a YouTube video to the direct URL of a progressive format
func (y *YTDLPParserService) ProgressiveURL(ctx context.Context, videoID string) (string, error) {
	info, err := y.Info(ctx, WatchURL(videoID))
	if err != nil {
		return "", err
	}
	return PickProgressive(info.Formats)
}

func (y *YTDLPParserService) args(args ...string) []string {
	out := []string{NoWarningsFlag}
	if y.proxy != "" {
		out = append(out, ProxyFlag, y.proxy)
	}
	return append(out, args...)
}

// WatchURL returns the YouTube watch page of a video
func WatchURL(videoID string) string {
	return fmt.Sprintf(YouTubeVideoURLTemplate, videoID)
}

// SanitizeKeyword removes shell and template metacharacters from a search keyword
func SanitizeKeyword(keyword string) string {
	return strings.TrimSpace(keywordStripper.ReplaceAllString(keyword, ""))
}

// ParseSearchLine converts one PrintTemplate line into a catalog item
func ParseSearchLine(line string) (model.Item, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(strings.TrimPrefix(line, `"`), `"`)
	fields := strings.Split(line, FieldSeparator)
	if len(fields) < 7 || fields[0] == "" {
		return model.Item{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	// Titles may contain the separator; the trailing five fields are fixed.
	n := len(fields)
	id := fields[0]
	title := strings.Join(fields[1:n-5], FieldSeparator)
	duration, _ := strconv.ParseFloat(naToEmpty(fields[n-5]), 64)
	views, _ := strconv.ParseInt(naToEmpty(fields[n-2]), 10, 64)
	thumb, _, _ := strings.Cut(naToEmpty(fields[n-1]), "?")

	return model.Item{
		ID:        id,
		Title:     title,
		Uploader:  truncateRunes(naToEmpty(fields[n-4]), MaxUploaderLen),
		Duration:  int(duration),
		ViewCount: views,
		Image: model.Image{
			URL:    thumb,
			Width:  ThumbnailWidth,
			Height: ThumbnailHeight,
		},
		PageURL: WatchURL(id),
	}, nil
}

// PickProgressive returns the URL of the last progressive format in the list
func PickProgressive(formats []Format) (string, error) {
	url := ""
	for _, f := range formats {
		for _, id := range ProgressiveFormatIDs {
			if f.ID == id && f.URL != "" {
				url = f.URL
			}
		}
	}
	if url == "" {
		return "", ErrNoFormat
	}
	return url, nil
}

// PickQuality returns the first format whose id or note mentions quality,
// falling back to the first format with a URL
func PickQuality(formats []Format, quality string) (string, error) {
	fallback := ""
	for _, f := range formats {
		if f.URL == "" {
			continue
		}
		if strings.Contains(f.ID, quality) || strings.Contains(f.Note, quality) {
			return f.URL, nil
		}
		if fallback == "" {
			fallback = f.URL
		}
	}
	if fallback == "" {
		return "", ErrNoFormat
	}
	return fallback, nil
}

func naToEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == NAValue {
		return ""
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
