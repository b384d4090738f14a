package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
)

// Kind selects the stage templates of a pipeline
type Kind string

const (
	// KindRestream copies the source streams into the HLS output
	KindRestream Kind = "restream"
	// KindVisualize renders a constant-Q spectrum next to the picture
	KindVisualize Kind = "visualize"
)

// Template placeholders, substituted per argument after splitting
const (
	PlaceholderID      = "{id}"
	PlaceholderPageURL = "{page_url}"
	PlaceholderRTMPURL = "{rtmp_url}"
)

// Output naming
const (
	PlaylistSuffix = ".m3u8"
	// ReadySegment is the segment number whose presence means the stream can be played
	ReadySegment   = 3
	PipelinePrefix = "pipeline-"
)

var (
	// ErrTimeout is returned when no output appeared in time
	ErrTimeout = errors.New("pipeline output timeout")
	// ErrQueueFull reports that capacity is exhausted; see Result.Err
	ErrQueueFull = errors.New("too many streams")
	// ErrExited is returned when the pipeline died before producing output
	ErrExited = errors.New("pipeline exited before producing output")
	// ErrDisabled is returned when pipelines are not configured
	ErrDisabled = errors.New("pipelines disabled")
)

// Request describes the stream to publish
type Request struct {
	VideoID string // output name in the HLS directory
	PageURL string // what the first stage downloads
	Kind    Kind
}

// Result is the outcome of Start. Queue is set instead of Handle when
// the pipeline was refused.
type Result struct {
	Queue  int
	Handle *Handle
	URL    string
}

// Queued reports whether the request was refused because of capacity
func (r Result) Queued() bool {
	return r.Queue > 0
}

// Err returns ErrQueueFull with the queue length for a queued result
func (r Result) Err() error {
	if !r.Queued() {
		return nil
	}
	return fmt.Errorf("%w: queue length %d", ErrQueueFull, r.Queue)
}

// ExpandStages splits each template into arguments and substitutes the
// placeholders. Substituted values never split into further arguments.
func ExpandStages(templates []string, values map[string]string) ([][]string, error) {
	if len(templates) == 0 {
		return nil, errors.New("no stages")
	}
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	stages := make([][]string, 0, len(templates))
	for i, tpl := range templates {
		args, err := shellwords.Parse(tpl)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("stage %d is empty", i)
		}
		for j := range args {
			args[j] = r.Replace(args[j])
		}
		stages = append(stages, args)
	}
	return stages, nil
}

// generatePipelineID returns a time-ordered UUID v7 identifier
func generatePipelineID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return PipelinePrefix + uuid.NewString()
	}
	return PipelinePrefix + id.String()
}
