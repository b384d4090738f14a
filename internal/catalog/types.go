package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/mre-kiosk/internal/model"
)

// Stream statuses accepted as playable
const (
	StreamOnline  = "online"
	StreamTimeout = "timeout"
)

// MineCategoryID is the pseudo-category listing the channels supplied at startup
const MineCategoryID = "mine"

// DefaultNotRated labels movies without a content rating
const DefaultNotRated = "Not Rated"

// Grid cell sizes for list thumbnails
const (
	logoSize                  = 0.30
	posterWidth, posterHeight = 0.4, 0.55
	showWidth, showHeight     = 0.8, 1.2
	unknownLanguage           = "UN"
)

var runtimeParts = regexp.MustCompile(`(\d+)\s*([hm]?)`)

// StringList decodes from either a JSON string or an array of strings
type StringList []string

// UnmarshalJSON accepts "a, b" as well as ["a","b"]
func (s *StringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = list
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected string or list: %w", err)
	}
	*s = nil
	for _, p := range strings.Split(one, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

// String joins the values the way they are shown in annotations
func (s StringList) String() string {
	return strings.Join(s, ", ")
}

// Category is an iptv-org channel category
type Category struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Language is an iptv-org language with the number of channels using it
type Language struct {
	Code  string `json:"code" bson:"code"`
	Name  string `json:"name" bson:"name"`
	Count int    `json:"count,omitempty" bson:"count,omitempty"`
}

// Country is an iptv-org country
type Country struct {
	Code string `json:"code" bson:"code"`
	Name string `json:"name" bson:"name"`
	Flag string `json:"flag,omitempty" bson:"flag,omitempty"`
}

// Stream is one source URL of a channel
type Stream struct {
	Channel string `json:"channel" bson:"channel"`
	URL     string `json:"url" bson:"url"`
	Status  string `json:"status" bson:"status"`
}

// Playable reports whether the stream status is online or timeout
func (s Stream) Playable() bool {
	return s.Status == StreamOnline || s.Status == StreamTimeout
}

// Channel is a television channel joined with its country, languages, categories and streams
type Channel struct {
	ID         string     `json:"id" bson:"id"`
	Name       string     `json:"name" bson:"name"`
	Logo       string     `json:"logo" bson:"logo"`
	NSFW       bool       `json:"is_nsfw" bson:"is_nsfw"`
	Country    *Country   `json:"country,omitempty" bson:"country,omitempty"`
	Languages  []Language `json:"languages" bson:"languages"`
	Categories []Category `json:"categories" bson:"categories"`
	Streams    []Stream   `json:"_streams" bson:"_streams"`
}

// Item converts the channel into a live list item playing its first stream
func (c Channel) Item() model.Item {
	it := model.Item{
		ID:       c.ID,
		Title:    c.Name,
		Uploader: c.ID,
		Live:     true,
		Image:    model.Image{URL: c.Logo, Width: logoSize, Height: logoSize},
	}
	if c.Country != nil {
		it.Country = c.Country.Name
	}
	if c.Languages != nil {
		it.Language = unknownLanguage
		if len(c.Languages) > 0 {
			it.Language = c.Languages[0].Name
		}
	}
	if len(c.Streams) > 0 {
		it.URL = c.Streams[0].URL
	}
	return it
}

// Movie is a titled video with IMDB metadata. User content uses the same shape.
type Movie struct {
	ID            string     `json:"id" bson:"id"`
	Title         string     `json:"title" bson:"title"`
	Plot          string     `json:"plot" bson:"plot"`
	Image         string     `json:"image" bson:"image"`
	Year          int        `json:"year" bson:"year"`
	ContentRating string     `json:"contentRating" bson:"contentRating"`
	Runtime       string     `json:"runtime" bson:"runtime"`
	Genre         StringList `json:"genre" bson:"genre"`
	Path          string     `json:"path,omitempty" bson:"path,omitempty"`
	URL           string     `json:"url" bson:"url"`
}

// Annotation renders "rating | runtime | genre"
func (m Movie) Annotation(notRated string) string {
	return annotation(m.ContentRating, m.Runtime, m.Genre, notRated)
}

// Item converts the movie into a list item with a known duration
func (m Movie) Item(notRated string) model.Item {
	it := model.Item{
		ID:         m.ID,
		Title:      m.Title,
		Plot:       m.Plot,
		Annotation: m.Annotation(notRated),
		Duration:   ParseRuntime(m.Runtime),
		URL:        m.URL,
		Image:      model.Image{URL: stripQuery(m.Image), Width: posterWidth, Height: posterHeight},
	}
	if m.Year > 0 {
		it.Uploader = strconv.Itoa(m.Year)
	}
	return it
}

// Show is a series summary as listed by the shows aggregate
type Show struct {
	ID       string     `json:"id" bson:"id"`
	Title    string     `json:"title" bson:"title"`
	Plot     string     `json:"plot" bson:"plot"`
	Image    string     `json:"image" bson:"image"`
	Genre    StringList `json:"genre" bson:"genre"`
	BaseURL  string     `json:"baseurl" bson:"baseurl"`
	Seasons  int        `json:"seasons" bson:"seasons"`
	Episodes int        `json:"episodes" bson:"episodes"`
}

// Item converts the show into a poster list item
func (s Show) Item() model.Item {
	return model.Item{
		ID:         s.ID,
		Title:      s.Title,
		Plot:       s.Plot,
		Annotation: s.Genre.String(),
		Image:      model.Image{URL: stripQuery(s.Image), Width: showWidth, Height: showHeight},
	}
}

// SeasonList enumerates the seasons of the show
func (s Show) SeasonList() []Season {
	out := make([]Season, s.Seasons)
	for i := range out {
		out[i] = Season{Index: i, Number: strconv.Itoa(i + 1), Name: fmt.Sprintf("%02d", i+1)}
	}
	return out
}

// Season is one selectable season; Number matches the stored season id
type Season struct {
	Index  int
	Number string
	Name   string
}

// Episode is one episode of a season
type Episode struct {
	Idx           int        `json:"idx" bson:"idx"`
	Title         string     `json:"title" bson:"title"`
	Plot          string     `json:"plot" bson:"plot"`
	Image         string     `json:"image" bson:"image"`
	ImageLarge    string     `json:"image_large" bson:"image_large"`
	PublishedDate string     `json:"publishedDate" bson:"publishedDate"`
	ContentRating string     `json:"contentRating" bson:"contentRating"`
	Runtime       string     `json:"runtime" bson:"runtime"`
	Genre         StringList `json:"genre" bson:"genre"`
	Duration      int        `json:"duration" bson:"duration"`
}

// Name returns the zero-padded episode number used in file names
func (e Episode) Name() string {
	return fmt.Sprintf("%02d", e.Idx)
}

// Item converts the episode into a playable item of the given show and season
func (e Episode) Item(show Show, season Season, notRated string) model.Item {
	return model.Item{
		ID:         fmt.Sprintf("%s-S%sE%s", show.ID, season.Name, e.Name()),
		Title:      e.Title,
		Plot:       e.Plot,
		Annotation: annotation(e.ContentRating, e.Runtime, e.Genre, notRated),
		Uploader:   show.Title,
		Duration:   e.Duration,
		URL:        EpisodeURL(show.BaseURL, season.Name, e.Name()),
		Image:      model.Image{URL: stripQuery(e.Image), Width: posterWidth, Height: posterHeight},
	}
}

// EpisodeURL builds {base}/S{season}E{episode}.mp4
func EpisodeURL(base, season, episode string) string {
	return fmt.Sprintf("%s/S%sE%s.mp4", strings.TrimSuffix(base, "/"), season, episode)
}

// ParseRuntime reads runtimes such as "1h32m" into seconds. A bare number counts as minutes.
func ParseRuntime(runtime string) int {
	total := 0
	for _, m := range runtimeParts.FindAllStringSubmatch(runtime, -1) {
		n, _ := strconv.Atoi(m[1])
		if m[2] == "h" {
			total += n * 3600
		} else {
			total += n * 60
		}
	}
	return total
}

func annotation(rating, runtime string, genre StringList, notRated string) string {
	if rating == "" {
		rating = notRated
	}
	if rating == "" {
		rating = DefaultNotRated
	}
	return fmt.Sprintf("%s | %s | %s", rating, runtime, genre.String())
}

func stripQuery(u string) string {
	u, _, _ = strings.Cut(u, "?")
	return u
}
