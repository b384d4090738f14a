package kiosk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/panel"
)

func TestNewSources(t *testing.T) {
	tests := []struct {
		name        string
		pipelines   bool
		wantStarter bool
	}{
		{name: "pipelines disabled"},
		{name: "pipelines enabled", pipelines: true, wantStarter: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Pipeline.Enabled = tt.pipelines
			cfg.Pipeline.HLSDir = filepath.Join(t.TempDir(), "hls")

			s := NewSources(context.Background(), cfg, nil, nil)

			assert.NotNil(t, s.Videos)
			assert.NotNil(t, s.Streams)
			assert.IsType(t, &catalog.Television{}, s.Channels)
			assert.IsType(t, &catalog.Library{}, s.Movies)
			assert.IsType(t, &catalog.Library{}, s.UserContent)
			assert.IsType(t, &catalog.Shows{}, s.Shows)
			assert.NotNil(t, s.MyChannels)
			assert.Equal(t, tt.wantStarter, s.Starter != nil)
			if tt.pipelines {
				assert.DirExists(t, cfg.Pipeline.HLSDir)
			} else {
				assert.NoDirExists(t, cfg.Pipeline.HLSDir)
			}
			for _, key := range []string{panel.KeyTV, panel.KeyMovie, panel.KeyUser} {
				assert.NotNil(t, s.setup(key), key)
			}
			assert.Nil(t, s.setup(panel.KeyShow))

			// nothing connected, so closing is clean
			require.NoError(t, s.close(context.Background()))
		})
	}
}

func TestSources_NilSetup(t *testing.T) {
	s := &Sources{}
	assert.Nil(t, s.setup(panel.KeyTV))
	assert.NoError(t, s.close(context.Background()))
}
