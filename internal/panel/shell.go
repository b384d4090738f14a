package panel

import (
	"context"
	"strconv"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/pipeline"
	"github.com/ytget/mre-kiosk/internal/player"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Menu placement, before the global scale
const (
	SettingsOffset = 3.8
	MenuDepth      = 0.01
)

// Menu templates, relative to the panel directory
const (
	mainTemplate     = "main.xml"
	mediaTemplate    = "media.xml"
	settingsTemplate = "settings.xml"
)

type textBox struct{ width, height, maxHeight float64 }

var (
	searchBox       = textBox{4, 0.28, 0.15}
	mediaTitleBox   = textBox{4, 0.3, 0.12}
	tileTitleBox    = textBox{1.1, 0.14, 0}
	posterTitleBox  = textBox{1.4, 0.15, 0.07}
	posterPlotBox   = textBox{1.8, 0.3, 0.05}
	showPlotBox     = textBox{1.4, 0.6, 0.09}
	episodeTitleBox = textBox{2, 0.15, 0.07}
	episodePlotBox  = textBox{2.8, 0.6, 0.09}
)

func (b textBox) fit(text string) (string, float64) {
	return ui.FormatText(text, b.width, b.height, b.maxHeight)
}

func setText(el ui.Element, b textBox, text string) {
	t, h := b.fit(text)
	el.SetText(t)
	el.SetTextHeight(h)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// shellOptions describe what differs between video panels
type shellOptions struct {
	name string // template directory
	// fixedMain keeps the main menu moderator-only regardless of the lock
	fixedMain bool
	modOnly   bool
	action    app.ActionFunc
	// buildMain wires the panel-specific part of a new main menu
	buildMain func(m ui.Menu)
	// buildMedia wires extra media menu buttons
	buildMedia func(m ui.Menu)
	// mainShown is called whenever the main menu opens again
	mainShown func()
}

// shell is the part every video panel shares: the main, media and settings
// menus, the player and the pipeline handle of the current stream
type shell struct {
	lifecycle
	opts shellOptions

	player   *player.VideoPlayer
	main     ui.Menu
	media    ui.Menu
	settings ui.Menu

	mediaPending    bool
	settingsPending bool
	modOnly         bool
	busy            bool
	item            model.Item
	hasItem         bool
	source          model.Item // last item played without a pipeline
	handle          *pipeline.Handle
	prevVolume      float64
}

func newShell(d Deps, opts shellOptions) *shell {
	return &shell{
		lifecycle:  newLifecycle(d, opts.name),
		opts:       opts,
		modOnly:    opts.modOnly,
		prevVolume: player.DefaultVolume,
	}
}

func (s *shell) template(name string) string {
	return s.opts.name + "/" + name
}

func (s *shell) mainRoles() []string {
	if s.opts.fixedMain {
		return ui.Roles(true)
	}
	return ui.Roles(s.modOnly)
}

func (s *shell) open() {
	if !s.begin() {
		return
	}
	s.player = player.New(player.Options{
		Host:    s.deps.Host,
		Layouts: s.deps.Layouts,
		Clock:   s.deps.Clock,
		Logger:  s.log,
	})
	s.player.OnClick(s.screenClicked)
	s.player.OnTime(func(float64) { s.updateTime(false) })
	if err := s.player.CreateScreen(geometry.Flat); err != nil {
		s.log.Error("create screen", "layout", geometry.Flat, "error", err)
	}
	newMenu(s.deps, s.sess, ui.MenuOptions{
		Template: s.template(mainTemplate),
		Scale:    s.deps.Scale,
		Roles:    s.mainRoles(),
	}, s.log, s.mountMain)
}

func (s *shell) close() {
	if !s.finish() {
		return
	}
	s.player.Stop()
	s.killHandle()
	for _, m := range []ui.Menu{s.main, s.media, s.settings} {
		if m != nil {
			m.Remove()
		}
	}
	s.main, s.media, s.settings = nil, nil, nil
	s.mediaPending, s.settingsPending = false, false
	s.player.Remove()
	s.player = nil
	s.busy = false
	s.item, s.hasItem = model.Item{}, false
	s.source = model.Item{}
}

func (s *shell) mountMain(m ui.Menu) {
	s.main = m
	m.Element(ui.IDLoading).Disable()

	s.on(m.Element(ui.IDList), ui.EventClick, func(ui.EventParams) {
		if s.media == nil {
			return
		}
		if s.media.Closed() {
			s.media.Open(false)
		}
		if !s.main.Closed() {
			s.main.Close(true)
		}
		s.removeSettings()
	})
	s.on(m.Element(ui.IDSettings), ui.EventClick, func(ui.EventParams) {
		s.toggleSettings()
	})
	if s.opts.buildMain != nil {
		s.opts.buildMain(m)
	}
	// playback started before the menu arrived
	if s.hasItem {
		m.Close(false)
	}
}

// setBusy marks a resolution in flight and shows the loading indicator
func (s *shell) setBusy(b bool) {
	s.busy = b
	if s.main == nil {
		return
	}
	if b {
		s.main.Element(ui.IDLoading).Enable()
	} else {
		s.main.Element(ui.IDLoading).Disable()
	}
}

// resolve runs work off the loop and plays its item on layout. Requests
// made while another is in flight are dropped. A failure is logged and, if
// failText is set, shown to u.
func (s *shell) resolve(u scene.User, layout, failText string, work func(context.Context) (model.Item, error)) {
	if s.busy {
		return
	}
	s.setBusy(true)
	async(s.deps.Loop, s.sess, work, func(item model.Item, err error) {
		s.setBusy(false)
		if err != nil {
			s.log.Warn("resolve failed", "error", err)
			if failText != "" {
				tell(s.deps, u, failText)
			}
			return
		}
		if !s.play(item, layout, nil) {
			tell(s.deps, u, s.deps.Text.Text(ui.KeyBusy))
		}
	})
}

// play stops the current video and plays item on layout, or on the
// current layout if layout is empty. The shell takes ownership of h.
func (s *shell) play(item model.Item, layout string, h *pipeline.Handle) bool {
	if _, ok := s.player.Video(); ok {
		s.player.Stop()
	}
	if s.handle != h {
		s.killHandle()
		s.handle = h
	}
	if layout != "" && s.player.Name() != layout {
		prev := s.player.Ratio()
		if err := s.player.CreateScreen(layout); err != nil {
			s.log.Error("create screen", "layout", layout, "error", err)
		}
		// a new layout starts from its own default ratio
		if cur := s.player.Ratio(); cur != prev {
			s.rescaleMedia(prev, cur)
		}
	}
	if !s.player.Play(item.Video()) {
		s.killHandle()
		return false
	}
	s.log.Info("playing", "title", item.DisplayTitle(), "url", item.URL, "layout", s.player.Name())
	s.item, s.hasItem = item, true
	if h == nil {
		s.source = item
	}
	if s.main != nil {
		s.main.Close(true)
	}
	s.removeSettings()
	s.showMedia()
	return true
}

// stop ends playback. A manual stop also returns to the main menu.
func (s *shell) stop(manual bool) {
	s.player.Stop()
	s.killHandle()
	if !manual {
		return
	}
	if s.media != nil && !s.media.Closed() {
		s.player.HideDisplay()
		s.media.Close(false)
	}
	s.showMain()
}

func (s *shell) killHandle() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Kill(); err != nil {
		s.log.Warn("kill pipeline", "pipeline", s.handle.ID, "error", err)
	}
	s.handle = nil
}

func (s *shell) showMain() {
	if s.main == nil || !s.main.Closed() {
		return
	}
	s.main.Open(true)
	if s.opts.mainShown != nil {
		s.opts.mainShown()
	}
}

// showMedia opens the media menu for the current item, building it first
func (s *shell) showMedia() {
	if s.media == nil {
		if !s.mediaPending {
			s.mediaPending = true
			newMenu(s.deps, s.sess, ui.MenuOptions{
				Template: s.template(mediaTemplate),
				Scale:    s.deps.Scale,
				Roles:    ui.Roles(s.modOnly),
				Offset:   offset(0, geometry.PlayerOffset*s.deps.Scale, MenuDepth*s.deps.Scale),
			}, s.log, s.mountMedia)
		}
		return
	}
	s.updateMediaInfo()
	s.player.ShowDisplay()
	s.media.Open(true)
}

func (s *shell) updateMediaInfo() {
	if s.media == nil || !s.hasItem {
		return
	}
	setText(s.media.Element(ui.IDTitle), mediaTitleBox, s.item.DisplayTitle())
	s.media.Element(ui.IDUploader).SetText(s.item.Uploader)
	s.updateTime(true)
}

// updateTime refreshes the time text and slider. Without manual it does
// nothing while the media menu is closed.
func (s *shell) updateTime(manual bool) {
	if s.media == nil || (!manual && s.media.Closed()) {
		return
	}
	v, ok := s.player.Video()
	if !ok {
		return
	}
	text, slider := s.media.Element(ui.IDTime), s.media.Element(ui.IDTimeSlider)
	if v.Live {
		text.SetText(s.deps.Text.Text(ui.KeyLive))
		slider.SetValue("1")
		return
	}
	elapsed := s.player.Time()
	text.SetText(model.FormatDuration(int(elapsed)) + " / " + model.FormatDuration(int(v.Duration)))
	frac := 0.0
	if v.HasDuration() {
		frac = elapsed / v.Duration
	}
	slider.SetValue(formatFloat(frac))
}

func (s *shell) mountMedia(m ui.Menu) {
	s.media = m
	s.mediaPending = false
	m.Element(ui.IDLoading).Disable()

	s.on(m.Element(ui.IDFullscreen), ui.EventClick, func(ui.EventParams) {
		if !s.media.Closed() {
			s.media.Close(false)
		}
		s.showMain()
	})

	playButton := m.Element(ui.IDPlay)
	s.on(playButton, ui.EventClick, func(ui.EventParams) {
		v, ok := s.player.Video()
		if !ok || v.Live {
			return
		}
		switch {
		case s.player.Paused():
			s.player.Resume()
			playButton.SetAsset(ui.AssetPause)
		case s.player.Playing():
			s.player.Pause()
			playButton.SetAsset(ui.AssetPlay)
		}
	})
	s.on(m.Element(ui.IDStop), ui.EventClick, func(ui.EventParams) { s.stop(true) })
	s.on(m.Element(ui.IDForward), ui.EventClick, func(ui.EventParams) { s.player.Forward() })
	s.on(m.Element(ui.IDBackward), ui.EventClick, func(ui.EventParams) { s.player.Backward() })
	s.on(m.Element(ui.IDTimeSlider), ui.EventClick, func(p ui.EventParams) { s.player.Seek(p.Percent) })

	rolloff := m.Element(ui.IDRolloff)
	rolloff.SetValue(formatFloat(s.player.Rolloff()))
	s.on(rolloff, ui.EventSet, func(ui.EventParams) {
		r, err := strconv.ParseFloat(rolloff.Value(), 64)
		if err != nil {
			rolloff.SetValue(formatFloat(s.player.Rolloff()))
			return
		}
		s.player.SetRolloff(r)
	})

	volume := m.Element(ui.IDVolumeSlider)
	volume.SetValue(formatFloat(s.player.Volume() / 100))
	s.on(m.Element(ui.IDVolumeButton), ui.EventClick, func(ui.EventParams) {
		if s.player.Volume() > 0 {
			s.prevVolume = s.player.Volume()
			s.player.SetVolume(0)
			volume.SetValue("0")
			return
		}
		s.player.SetVolume(s.prevVolume)
		volume.SetValue(formatFloat(s.player.Volume() / 100))
	})
	s.on(volume, ui.EventClick, func(p ui.EventParams) { s.player.SetVolume(100 * p.Percent) })

	s.on(m.Element(ui.IDRatio), ui.EventClick, func(ui.EventParams) {
		prev := s.player.Ratio()
		s.rescaleMedia(prev, s.player.CycleRatio())
	})
	s.rescaleMedia(model.DefaultRatio, s.player.Ratio())

	if s.opts.buildMedia != nil {
		s.opts.buildMedia(m)
	}
	if s.hasItem {
		s.showMedia()
	}
}

// rescaleMedia resizes the picture frame elements of the media menu to
// follow a ratio change
func (s *shell) rescaleMedia(prev, cur model.Ratio) {
	if s.media == nil {
		return
	}
	sy := model.VerticalScale(prev, cur)
	for _, el := range s.media.Class(ui.ClassScale) {
		el.SetHeight(el.Height() * sy)
	}
	s.media.Render()
	s.media.Element(ui.IDRatio).SetText(string(cur))
}

func (s *shell) screenClicked(u scene.User) {
	if s.modOnly && !scene.HasRole(u, scene.RoleModerator) {
		return
	}
	if s.media == nil || s.main == nil || !s.main.Closed() {
		return
	}
	if s.media.Closed() {
		s.media.Open(false)
		s.updateTime(true)
		return
	}
	s.media.Close(false)
}

func (s *shell) removeSettings() {
	if s.settings != nil {
		s.settings.Remove()
		s.settings = nil
	}
}

func (s *shell) toggleSettings() {
	if s.settings != nil {
		s.removeSettings()
		return
	}
	if s.settingsPending {
		return
	}
	s.settingsPending = true
	newMenu(s.deps, s.sess, ui.MenuOptions{
		Template: s.template(settingsTemplate),
		Scale:    s.deps.Scale,
		Roles:    ui.Roles(s.modOnly),
		Animate:  true,
		Offset:   offset(SettingsOffset*s.deps.Scale, 0, MenuDepth),
	}, s.log, s.mountSettings)
}

func (s *shell) mountSettings(m ui.Menu) {
	s.settingsPending = false
	s.settings = m

	lock := m.Element(ui.IDLock)
	lock.SetChecked(s.modOnly)
	s.on(lock, ui.EventChecked, func(p ui.EventParams) {
		s.setModOnly(p.Checked)
	})
	s.on(m.Element(ui.IDShutdown), ui.EventClick, func(p ui.EventParams) {
		if s.opts.action != nil {
			s.opts.action(app.ActionShutdown, p.User, app.Params{})
		}
	})
	s.on(m.Element(ui.IDBack), ui.EventClick, func(ui.EventParams) {
		s.removeSettings()
	})
}

func (s *shell) setModOnly(b bool) {
	s.modOnly = b
	roles := ui.Roles(b)
	for _, m := range []ui.Menu{s.media, s.settings} {
		if m != nil {
			m.SetRoles(roles)
		}
	}
	if s.main != nil && !s.opts.fixedMain {
		s.main.SetRoles(roles)
	}
	s.log.Info("lock changed", "mod_only", b)
}

// replay plays the last direct item again on layout
func (s *shell) replay(layout string) bool {
	if !s.hasItem {
		return false
	}
	return s.play(s.source, layout, nil)
}

// searchSubmitted echoes the search text into the input, wrapped to fit
func searchSubmitted(m ui.Menu, text string) {
	setText(m.Element(ui.IDSearchText), searchBox, text)
	m.Element(ui.IDLogo).Disable()
}
