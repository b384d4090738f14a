package kiosk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ytget/mre-kiosk/internal/catalog"
)

const maxChannelList = 4 << 20

// FetchChannels downloads a JSON channel list
func FetchChannels(ctx context.Context, client *http.Client, url string) ([]catalog.Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid channel list url: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch channel list: %s", resp.Status)
	}
	return decodeChannels(io.LimitReader(resp.Body, maxChannelList))
}

// ReadChannels reads a JSON channel list from a file
func ReadChannels(name string) ([]catalog.Channel, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel list: %w", err)
	}
	defer f.Close()
	return decodeChannels(f)
}

func decodeChannels(r io.Reader) ([]catalog.Channel, error) {
	var out []catalog.Channel
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode channel list: %w", err)
	}
	return out, nil
}
