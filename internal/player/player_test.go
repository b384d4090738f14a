package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/scene/scenetest"
)

func newPlayer(t *testing.T) (*VideoPlayer, *scenetest.Host, *loop.Manual) {
	t.Helper()
	host := scenetest.NewHost()
	clock := loop.NewManual()
	p := New(Options{Host: host, Layouts: geometry.Defaults().WithScale(0.5), Clock: clock})
	require.NoError(t, p.CreateScreen(geometry.Flat))
	return p, host, clock
}

var vod = model.Video{Name: "x", URL: "u1", Duration: 100}

func TestCreateScreen_OneActorSet(t *testing.T) {
	p, host, _ := newPlayer(t)

	sequence := []string{geometry.CQT, geometry.CQT, geometry.Stereo, "missing", geometry.Flat, geometry.CQT}
	want := map[string]int{
		geometry.Flat:   2,
		geometry.CQT:    2 + 3 + 4,
		geometry.Stereo: 5,
	}
	last := geometry.Flat
	for _, name := range sequence {
		err := p.CreateScreen(name)
		if name == "missing" {
			assert.ErrorIs(t, err, ErrUnknownLayout)
		} else {
			require.NoError(t, err)
			last = name
		}
		assert.Equal(t, last, p.Name())
		assert.Len(t, host.Live(), want[last], "after %s", name)
		assert.Len(t, host.LiveNamed(last), 1)
	}
}

func TestCreateScreen_SameLayoutNoop(t *testing.T) {
	p, host, _ := newPlayer(t)
	created, _ := host.Counts()

	require.NoError(t, p.CreateScreen(geometry.Flat))
	again, destroyed := host.Counts()
	assert.Equal(t, created, again)
	assert.Zero(t, destroyed)
}

func TestCreateScreen_ClickTarget(t *testing.T) {
	p, host, _ := newPlayer(t)
	u := scenetest.NewUser("ann")
	var clicked []string
	p.OnClick(func(u scene.User) { clicked = append(clicked, u.Name()) })

	screen := host.LiveNamed(geometry.Flat)[0]
	assert.True(t, screen.Click(u))

	require.NoError(t, p.CreateScreen(geometry.CQT))
	for _, a := range host.Live() {
		if a.Spec.ResourceID == "artifact:2050034828610372018" {
			assert.True(t, a.Click(u), "display receives clicks")
		}
		if a.Spec.Name == geometry.CQT {
			assert.False(t, a.Clickable(), "screen is not the pointer target")
		}
	}
	assert.Equal(t, []string{"ann", "ann"}, clicked)
}

func TestPlay_Twice(t *testing.T) {
	p, host, clock := newPlayer(t)

	assert.True(t, p.Play(vod))
	assert.False(t, p.Play(model.Video{Name: "y", URL: "u2"}))

	assert.Equal(t, 1, host.StreamsCreated)
	assert.Equal(t, 1, clock.Active())
	v, ok := p.Video()
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	assert.Len(t, host.LiveNamed(geometry.Flat)[0].Media, 1)
}

func TestPlay_ReusesStreamByURL(t *testing.T) {
	p, host, _ := newPlayer(t)

	p.Play(vod)
	p.Stop()
	p.Play(vod)
	p.Stop()
	p.Play(model.Video{Name: "y", URL: "u2"})

	assert.Equal(t, 2, host.StreamsCreated)
}

func TestPlay_MediaOptions(t *testing.T) {
	p, host, _ := newPlayer(t)
	p.SetVolume(50)
	p.SetRolloff(3)
	p.Play(vod)

	m := host.LiveNamed(geometry.Flat)[0].Media[0]
	assert.InDelta(t, 0.5, m.Options.Volume, 1e-9)
	assert.InDelta(t, AudioSpread, m.Options.Spread, 1e-9)
	assert.InDelta(t, 3, m.Options.Rolloff, 1e-9)

	p.SetVolume(150)
	assert.Equal(t, 100.0, p.Volume())
	assert.InDelta(t, 1, m.Volume, 1e-9)
}

func TestForward_ThreeTimes(t *testing.T) {
	p, _, _ := newPlayer(t)
	p.Play(vod)
	p.Forward()
	p.Forward()
	p.Forward()
	assert.Equal(t, 45.0, p.Time())
}

func TestSeek_Half(t *testing.T) {
	p, host, _ := newPlayer(t)
	p.Play(model.Video{Name: "x", URL: "u1", Duration: 200})
	assert.True(t, p.Seek(0.5))
	assert.Equal(t, 100.0, p.Time())

	m := host.LiveNamed(geometry.Flat)[0].Media[0]
	assert.Equal(t, []float64{100}, m.Seeks)
}

func TestSeekClamped(t *testing.T) {
	tests := []struct {
		name string
		ops  func(p *VideoPlayer)
		want float64
	}{
		{name: "forward past end", ops: func(p *VideoPlayer) {
			for i := 0; i < 10; i++ {
				p.Forward()
			}
		}, want: 100},
		{name: "backward past start", ops: func(p *VideoPlayer) {
			p.Forward()
			p.Backward()
			p.Backward()
		}, want: 0},
		{name: "seek above one", ops: func(p *VideoPlayer) { p.Seek(1.5) }, want: 100},
		{name: "seek negative", ops: func(p *VideoPlayer) { p.Seek(-1) }, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newPlayer(t)
			p.Play(vod)
			tt.ops(p)
			assert.Equal(t, tt.want, p.Time())
		})
	}
}

func TestLiveIgnoresSeek(t *testing.T) {
	p, host, clock := newPlayer(t)
	p.Play(model.Video{Name: "live", URL: "u3", Live: true})

	assert.False(t, p.Forward())
	assert.False(t, p.Backward())
	assert.False(t, p.Seek(0.5))
	clock.Tick(5)

	assert.Zero(t, p.Time())
	assert.Empty(t, host.LiveNamed(geometry.Flat)[0].Media[0].Seeks)
}

func TestClock(t *testing.T) {
	p, _, clock := newPlayer(t)
	var ticks []float64
	p.OnTime(func(v float64) { ticks = append(ticks, v) })

	p.Play(vod)
	clock.Tick(3)
	p.Pause()
	clock.Tick(2)
	p.Resume()
	clock.Tick(1)

	assert.Equal(t, 4.0, p.Time())
	assert.Equal(t, []float64{1, 2, 3, 3, 3, 4}, ticks)
}

func TestStop(t *testing.T) {
	p, host, clock := newPlayer(t)
	var notified int
	p.OnTime(func(float64) { notified++ })

	assert.False(t, p.Stop(), "nothing to stop")

	p.Play(vod)
	p.Forward()
	notified = 0

	assert.True(t, p.Stop())
	assert.Zero(t, p.Time())
	assert.Zero(t, notified, "stop is silent")
	assert.False(t, p.Playing())
	assert.False(t, p.Paused())
	assert.False(t, p.Loading())
	assert.Zero(t, clock.Active())
	assert.True(t, host.LiveNamed(geometry.Flat)[0].Media[0].Stopped)

	assert.True(t, p.Play(vod), "play after stop")
}

func TestCreateScreen_ReleasesMedia(t *testing.T) {
	p, host, clock := newPlayer(t)
	require.True(t, p.Play(vod))
	m := host.LiveNamed(geometry.Flat)[0].Media[0]

	require.NoError(t, p.CreateScreen(geometry.Stereo))

	assert.True(t, m.Stopped)
	assert.False(t, p.Playing())
	assert.False(t, p.Paused())
	assert.Zero(t, p.Time())
	assert.Zero(t, clock.Active())
	assert.True(t, p.Play(vod), "play on the new layout")
}

func TestPauseResume(t *testing.T) {
	p, _, _ := newPlayer(t)
	assert.False(t, p.Pause())
	assert.False(t, p.Resume())

	p.Play(vod)
	assert.False(t, p.Resume(), "already playing")
	assert.True(t, p.Pause())
	assert.True(t, p.Paused())
	assert.False(t, p.Pause())
	assert.True(t, p.Resume())
	assert.True(t, p.Playing())

	p.Pause()
	assert.True(t, p.Stop(), "stop from paused")
}

func TestCycleRatio_RoundTrip(t *testing.T) {
	for _, name := range []string{geometry.Flat, geometry.CQT, geometry.Stereo} {
		t.Run(name, func(t *testing.T) {
			p, host, _ := newPlayer(t)
			require.NoError(t, p.CreateScreen(name))

			var target *scenetest.Actor
			for _, a := range host.Live() {
				if name == geometry.Flat && a.Spec.Name == name {
					target = a
				}
				// the display is the only hidden unnamed library actor
				if name != geometry.Flat && a.Spec.ResourceID != "" && a.Spec.Hidden && a.Spec.Name == "" {
					target = a
				}
			}
			require.NotNil(t, target)
			before := target.LocalScale()

			got := []model.Ratio{p.CycleRatio(), p.CycleRatio(), p.CycleRatio()}
			assert.Equal(t, []model.Ratio{model.Ratio21x9, model.Ratio4x3, model.Ratio9x16}, got)
			assert.NotEqual(t, before.Y, target.LocalScale().Y)

			assert.Equal(t, model.Ratio16x9, p.CycleRatio())
			assert.InDelta(t, before.Y, target.LocalScale().Y, 1e-5)
			assert.Equal(t, before.X, target.LocalScale().X)
		})
	}
}

func TestCycleRatio_ResetOnLayoutChange(t *testing.T) {
	p, _, _ := newPlayer(t)
	p.CycleRatio()
	require.NoError(t, p.CreateScreen(geometry.Stereo))
	assert.Equal(t, model.Ratio16x9, p.Ratio())
	assert.Equal(t, model.Ratio21x9, p.CycleRatio())
}

func TestShowHideDisplay(t *testing.T) {
	p, host, _ := newPlayer(t)
	require.NoError(t, p.CreateScreen(geometry.CQT))

	hidden := func() int {
		n := 0
		for _, a := range host.Live() {
			if !a.Enabled() {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 5, hidden())
	p.ShowDisplay()
	assert.Equal(t, 0, hidden())
	p.HideDisplay()
	assert.Equal(t, 5, hidden())
}

func TestRemove(t *testing.T) {
	p, host, clock := newPlayer(t)
	p.Play(vod)
	p.Remove()

	assert.Empty(t, host.Live())
	assert.Zero(t, clock.Active())
	assert.Equal(t, "", p.Name())
	assert.False(t, p.Play(vod), "no screen")
}
