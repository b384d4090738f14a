package player

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/scene"
)

// Playback defaults
const (
	DefaultVolume  = 30
	DefaultRolloff = 1
	AudioSpread    = 0.7
	SeekStep       = 15
	ClockInterval  = time.Second
)

// ErrUnknownLayout is returned by CreateScreen for names not in the layout set
var ErrUnknownLayout = errors.New("unknown screen layout")

// Options configures a VideoPlayer
type Options struct {
	Host    scene.Host
	Layouts geometry.Set // with the global scale already applied
	Clock   loop.Scheduler
	Logger  *slog.Logger
}

// VideoPlayer owns the screen actors of the current layout and the playback
// session shown on them
type VideoPlayer struct {
	host    scene.Host
	layouts geometry.Set
	clock   loop.Scheduler
	log     *slog.Logger

	// screen actors
	layout        *geometry.ScreenLayout
	screenAnchor  scene.Actor
	screen        scene.Actor
	camera        scene.Actor
	displayAnchor scene.Actor
	display       scene.Actor
	accessories   []scene.Actor

	ratio      model.Ratio
	ratioIndex int

	// session
	video     *model.Video
	media     scene.MediaInstance
	playing   bool
	loading   bool
	volume    float64
	rolloff   float64
	elapsed   float64
	stopClock func()

	onClick func(scene.User)
	onTime  func(float64)
}

// New creates a player with no screen
func New(opts Options) *VideoPlayer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	layouts := opts.Layouts
	if layouts == nil {
		layouts = geometry.Defaults()
	}
	return &VideoPlayer{
		host:    opts.Host,
		layouts: layouts,
		clock:   opts.Clock,
		log:     logger.With("component", "player"),
		ratio:   model.DefaultRatio,
		volume:  DefaultVolume,
		rolloff: DefaultRolloff,
	}
}

// OnClick installs the handler for clicks on the picture
func (p *VideoPlayer) OnClick(fn func(scene.User)) { p.onClick = fn }

// OnTime installs the handler called with the elapsed time on every clock
// tick and every seek
func (p *VideoPlayer) OnTime(fn func(float64)) { p.onTime = fn }

// Name returns the active layout name, or an empty string
func (p *VideoPlayer) Name() string {
	if p.layout == nil {
		return ""
	}
	return p.layout.Name
}

// CreateScreen switches to the named layout, replacing the current actor set.
// Requesting the active layout does nothing.
func (p *VideoPlayer) CreateScreen(name string) error {
	if p.layout != nil && p.layout.Name == name {
		return nil
	}
	layout, ok := p.layouts.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	p.log.Debug("create screen", "layout", name)

	// the media lives on the screen being destroyed
	p.release()
	p.removeScreen()
	p.layout = &layout
	p.ratio = layout.DefaultRatio()
	p.ratioIndex = p.ratio.Index()

	p.screenAnchor = p.host.CreateActor(scene.ActorSpec{
		Transform: layout.Anchor.Screen.Resolve(),
	})

	if layout.HasCamera() {
		p.screen = p.host.CreateActor(scene.ActorSpec{
			Name:      layout.Name,
			ParentID:  p.screenAnchor.ID(),
			Transform: layout.Screen.Resolve(),
		})
		p.camera = p.host.CreateActor(scene.ActorSpec{
			ParentID:   p.screenAnchor.ID(),
			ResourceID: layout.Camera.ResourceID,
			Transform:  layout.Camera.Transform.Resolve(),
		})
		p.displayAnchor = p.host.CreateActor(scene.ActorSpec{
			Transform: layout.Anchor.Display.Resolve(),
		})
		p.display = p.host.CreateActor(scene.ActorSpec{
			ParentID:   p.displayAnchor.ID(),
			ResourceID: layout.Display.ResourceID,
			Transform:  layout.Display.Transform.Resolve(),
			Hidden:     true,
		})
		for _, a := range layout.Accessories {
			parent := p.displayAnchor.ID()
			if a.Screen {
				parent = p.screenAnchor.ID()
			}
			p.accessories = append(p.accessories, p.host.CreateActor(scene.ActorSpec{
				Name:       a.Name,
				ParentID:   parent,
				ResourceID: a.ResourceID,
				Transform:  a.Transform.Resolve(),
				Hidden:     true,
			}))
		}
	} else {
		p.screen = p.host.CreateActor(scene.ActorSpec{
			Name:      layout.Name,
			ParentID:  p.screenAnchor.ID(),
			Transform: layout.Screen.Resolve(),
		})
	}

	p.Reattach()
	return nil
}

// Reattach binds the click handler to the primary pointer target again
func (p *VideoPlayer) Reattach() {
	target := p.display
	if target == nil {
		target = p.screen
	}
	if target == nil {
		return
	}
	target.OnClick(func(u scene.User) {
		if p.onClick != nil {
			p.onClick(u)
		}
	})
}

func (p *VideoPlayer) removeScreen() {
	for _, a := range []scene.Actor{p.screen, p.screenAnchor, p.camera, p.display} {
		if a != nil {
			a.Destroy()
		}
	}
	for _, a := range p.accessories {
		a.Destroy()
	}
	if p.displayAnchor != nil {
		p.displayAnchor.Destroy()
	}
	p.screen, p.screenAnchor, p.camera = nil, nil, nil
	p.display, p.displayAnchor = nil, nil
	p.accessories = nil
	p.layout = nil
}

// Play starts v on the current screen. It returns false when the request is
// dropped because another video is loading or playing, or no screen exists.
func (p *VideoPlayer) Play(v model.Video) bool {
	if p.loading || p.playing {
		return false
	}
	if p.screen == nil {
		p.log.Warn("play without screen", "video", v.Name)
		return false
	}
	if p.media != nil {
		// paused session: release it without notifying
		p.release()
	}
	p.video = &v
	p.loading = true

	stream, ok := p.host.FindVideoStream(v.URL)
	if !ok {
		stream = p.host.CreateVideoStream(v.URL, v.URL)
	}
	p.loading = false

	p.playing = true
	p.elapsed = 0
	p.media = p.screen.StartVideoStream(stream, scene.MediaOptions{
		Volume:  p.volume / 100,
		Spread:  AudioSpread,
		Rolloff: p.rolloff,
	})
	if p.clock != nil {
		p.stopClock = p.clock.Every(ClockInterval, p.tick)
	}
	p.log.Debug("play", "video", v.Name, "url", v.URL, "live", v.Live, "layout", p.Name())
	return true
}

func (p *VideoPlayer) tick() {
	if p.media == nil || p.video == nil {
		return
	}
	if !p.video.Live && p.playing {
		p.setTime(p.elapsed + 1)
		return
	}
	p.notifyTime()
}

// setTime clamps t to the video duration and notifies
func (p *VideoPlayer) setTime(t float64) {
	if t < 0 {
		t = 0
	}
	if p.video != nil && p.video.HasDuration() && t > p.video.Duration {
		t = p.video.Duration
	}
	p.elapsed = t
	p.notifyTime()
}

func (p *VideoPlayer) notifyTime() {
	if p.onTime != nil {
		p.onTime(p.elapsed)
	}
}

// Resume continues a paused video
func (p *VideoPlayer) Resume() bool {
	if p.media == nil || p.playing {
		return false
	}
	p.playing = true
	p.media.Resume()
	return true
}

// Pause pauses a playing video
func (p *VideoPlayer) Pause() bool {
	if p.media == nil || !p.playing {
		return false
	}
	p.playing = false
	p.media.Pause()
	return true
}

func (p *VideoPlayer) seekable() bool {
	return p.media != nil && p.video != nil && !p.video.Live
}

// Forward jumps SeekStep seconds ahead
func (p *VideoPlayer) Forward() bool {
	if !p.seekable() {
		return false
	}
	p.setTime(p.elapsed + SeekStep)
	p.media.Seek(p.elapsed)
	return true
}

// Backward jumps SeekStep seconds back
func (p *VideoPlayer) Backward() bool {
	if !p.seekable() {
		return false
	}
	p.setTime(p.elapsed - SeekStep)
	p.media.Seek(p.elapsed)
	return true
}

// Seek moves to percent (0..1) of the known duration
func (p *VideoPlayer) Seek(percent float64) bool {
	if !p.seekable() || !p.video.HasDuration() {
		return false
	}
	percent = min(max(percent, 0), 1)
	p.setTime(p.video.Duration * percent)
	p.media.Seek(p.elapsed)
	return true
}

// Stop ends playback and resets the clock without notifying
func (p *VideoPlayer) Stop() bool {
	if !p.playing && !p.Paused() {
		return false
	}
	p.release()
	p.log.Debug("stop", "layout", p.Name())
	return true
}

func (p *VideoPlayer) release() {
	p.playing = false
	p.loading = false
	if p.media != nil {
		p.media.Stop()
		p.media = nil
	}
	if p.stopClock != nil {
		p.stopClock()
		p.stopClock = nil
	}
	p.elapsed = 0
}

// Remove stops playback and destroys the screen
func (p *VideoPlayer) Remove() {
	p.release()
	p.removeScreen()
	p.video = nil
}

// CycleRatio advances to the next aspect ratio and rescales the picture.
// It returns the new ratio.
func (p *VideoPlayer) CycleRatio() model.Ratio {
	if p.screen == nil {
		return p.ratio
	}
	prev := p.ratio
	p.ratioIndex++
	p.ratio = model.Ratios[p.ratioIndex%len(model.Ratios)]
	sy := float32(model.VerticalScale(prev, p.ratio))

	target := p.screen
	if p.layout.HasCamera() && p.display != nil {
		target = p.display
	}
	s := target.LocalScale()
	target.SetLocalScale(scene.V3(s.X, s.Y*sy, s.Z))
	return p.ratio
}

// ShowDisplay enables the display and accessories of camera layouts
func (p *VideoPlayer) ShowDisplay() { p.setDisplayEnabled(true) }

// HideDisplay disables the display and accessories of camera layouts
func (p *VideoPlayer) HideDisplay() { p.setDisplayEnabled(false) }

func (p *VideoPlayer) setDisplayEnabled(b bool) {
	if p.display != nil {
		p.display.SetEnabled(b)
	}
	for _, a := range p.accessories {
		a.SetEnabled(b)
	}
}

// SetVolume sets the volume, clamped to 0..100
func (p *VideoPlayer) SetVolume(v float64) {
	p.volume = min(max(v, 0), 100)
	if p.media != nil {
		p.media.SetVolume(p.volume / 100)
	}
}

// SetRolloff sets the rolloff start distance, clamped to 0..100
func (p *VideoPlayer) SetRolloff(r float64) {
	p.rolloff = min(max(r, 0), 100)
	if p.media != nil {
		p.media.SetRolloff(p.rolloff)
	}
}

func (p *VideoPlayer) Playing() bool      { return p.playing }
func (p *VideoPlayer) Loading() bool      { return p.loading }
func (p *VideoPlayer) Paused() bool       { return p.media != nil && !p.playing }
func (p *VideoPlayer) Volume() float64    { return p.volume }
func (p *VideoPlayer) Rolloff() float64   { return p.rolloff }
func (p *VideoPlayer) Ratio() model.Ratio { return p.ratio }
func (p *VideoPlayer) Time() float64      { return p.elapsed }

// Video returns the last video handed to Play
func (p *VideoPlayer) Video() (model.Video, bool) {
	if p.video == nil {
		return model.Video{}, false
	}
	return *p.video, true
}
