package feed

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"

	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/media"
	"github.com/glabrego/pixfeed-cli/internal/video"
)

type State int

const (
	Idle State = iota
	LoadingPlaceholder
	PlaceholderVisible
	VideoPreparing
	VideoPlaying
	VideoPlayingCrossfaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingPlaceholder:
		return "loading-placeholder"
	case PlaceholderVisible:
		return "placeholder-visible"
	case VideoPreparing:
		return "video-preparing"
	case VideoPlaying:
		return "video-playing"
	case VideoPlayingCrossfaded:
		return "video-playing-crossfaded"
	default:
		return "unknown"
	}
}

func (s State) videoActive() bool {
	return s >= VideoPreparing
}

// Slot owns the placeholder and the optional video session of one cell.
// All methods must run on the update loop; async work reports back via
// messages routed by the Grid.
type Slot struct {
	cell   int
	cfg    Config
	images ImageLoader
	videos VideoOpener

	item          media.Item
	bound         bool
	state         State
	width, height int

	binding  uint64
	play     uint64
	wantPlay bool
	muted    bool

	placeholder string
	alpha       float64

	cancelLoad  context.CancelFunc
	cancelVideo context.CancelFunc
	session     video.Session
	handle      *video.Handle
	watch       *statusWatch

	fading     bool
	fade       uint64
	fadeVel    float64
	fadeFrames int
	spring     harmonica.Spring

	onLive func()
}

func newSlot(cell int, cfg Config, images ImageLoader, videos VideoOpener) *Slot {
	return &Slot{
		cell:   cell,
		cfg:    cfg,
		images: images,
		videos: videos,
		muted:  cfg.StartMuted,
		alpha:  1,
	}
}

func (s *Slot) State() State              { return s.state }
func (s *Slot) Item() media.Item          { return s.item }
func (s *Slot) Bound() bool               { return s.bound }
func (s *Slot) Placeholder() string       { return s.placeholder }
func (s *Slot) PlaceholderAlpha() float64 { return s.alpha }
func (s *Slot) Muted() bool               { return s.muted }
func (s *Slot) HasSession() bool          { return s.session != nil }

func (s *Slot) token() token {
	return token{cell: s.cell, binding: s.binding, play: s.play}
}

// Bind starts loading item's placeholder, dropping whatever was bound.
func (s *Slot) Bind(item media.Item, width, height int) tea.Cmd {
	s.Unbind()
	s.item = item
	s.bound = true
	s.width, s.height = width, height
	s.binding++
	s.placeholder = ""
	s.alpha = 1

	url := item.PlaceholderURL()
	if url == "" || s.images == nil {
		s.state = PlaceholderVisible
		return nil
	}

	s.state = LoadingPlaceholder
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoad = cancel
	t := s.token()
	images := s.images
	return func() tea.Msg {
		img, err := images.LoadImage(ctx, url, width, height)
		return placeholderLoadedMsg{token: t, image: img, err: err}
	}
}

func (s *Slot) Unbind() {
	if !s.bound && s.state == Idle {
		return
	}
	s.teardownVideo()
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.binding++
	s.bound = false
	s.item = media.Item{}
	s.state = Idle
	s.placeholder = ""
	s.wantPlay = false
}

// Start asks for playback. Photos and disabled video stay on the
// placeholder; a slot still loading starts once the placeholder is in.
func (s *Slot) Start() tea.Cmd {
	if !s.bound {
		return nil
	}
	s.wantPlay = true
	switch s.state {
	case PlaceholderVisible:
		return s.prepareVideo()
	case VideoPlaying, VideoPlayingCrossfaded:
		if s.session != nil {
			if err := s.session.Play(); err != nil {
				log.Debugf("cell %d resume: %v", s.cell, err)
			}
		}
	}
	return nil
}

// Stop drops any video back to the placeholder. It is a no-op when no
// video is active or pending.
func (s *Slot) Stop() {
	if !s.wantPlay && !s.state.videoActive() {
		return
	}
	s.wantPlay = false
	if s.state.videoActive() {
		s.teardownVideo()
		s.state = PlaceholderVisible
	}
}

func (s *Slot) SetMuted(muted bool) {
	s.muted = muted
	if s.session != nil {
		if err := s.session.SetMuted(muted); err != nil {
			log.Debugf("cell %d mute: %v", s.cell, err)
		}
	}
}

func (s *Slot) prepareVideo() tea.Cmd {
	url := s.item.VideoURL()
	if !s.cfg.EnableVideo || url == "" || s.videos == nil {
		return nil
	}

	s.play++
	s.state = VideoPreparing
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelVideo = cancel
	t := s.token()
	videos := s.videos
	opts := video.Options{Muted: s.muted, Loop: true, Title: s.item.Title()}
	return func() tea.Msg {
		session, err := videos.Open(ctx, url, opts)
		return videoOpenedMsg{token: t, session: session, err: err}
	}
}

// teardownVideo releases the session and invalidates pending video work.
func (s *Slot) teardownVideo() {
	s.play++
	if s.cancelVideo != nil {
		s.cancelVideo()
		s.cancelVideo = nil
	}
	if s.watch != nil {
		s.watch.close()
		s.watch = nil
	}
	s.handle.Dispose()
	s.handle = nil
	if s.session != nil {
		session := s.session
		s.session = nil
		_ = session.Pause()
		session.CancelPendingPrerolls()
		if err := session.Close(); err != nil {
			log.Debugf("cell %d close session: %v", s.cell, err)
		}
	}
	s.fade++
	s.fading = false
	s.alpha = 1
}

func (s *Slot) current(t token, withPlay bool) bool {
	if t.binding != s.binding {
		return false
	}
	return !withPlay || t.play == s.play
}

func (s *Slot) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case placeholderLoadedMsg:
		return s.placeholderLoaded(msg)
	case videoOpenedMsg:
		return s.videoOpened(msg)
	case videoStatusMsg:
		return s.statusChanged(msg)
	case fadeFrameMsg:
		return s.fadeFrame(msg)
	}
	return nil
}

func (s *Slot) placeholderLoaded(msg placeholderLoadedMsg) tea.Cmd {
	if !s.current(msg.token, false) || s.state != LoadingPlaceholder {
		log.Debugf("cell %d dropped stale placeholder", s.cell)
		return nil
	}
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	if msg.err != nil {
		log.Debugf("cell %d placeholder %s: %v", s.cell, s.item.ID(), msg.err)
	} else {
		s.placeholder = msg.image
	}
	s.state = PlaceholderVisible
	if s.wantPlay {
		return s.prepareVideo()
	}
	return nil
}

func (s *Slot) videoOpened(msg videoOpenedMsg) tea.Cmd {
	if !s.current(msg.token, true) || s.state != VideoPreparing {
		if msg.session != nil {
			_ = msg.session.Close()
		}
		log.Debugf("cell %d dropped stale video session", s.cell)
		return nil
	}
	if s.cancelVideo != nil {
		s.cancelVideo()
		s.cancelVideo = nil
	}
	if msg.err != nil || msg.session == nil {
		log.Debugf("cell %d video %s unavailable: %v", s.cell, s.item.ID(), msg.err)
		s.state = PlaceholderVisible
		return nil
	}

	s.session = msg.session
	s.watch = newStatusWatch()
	s.handle = video.Subscribe(s.session, s.watch.push)
	if err := s.session.SetMuted(s.muted); err != nil {
		log.Debugf("cell %d mute: %v", s.cell, err)
	}
	t := s.token()
	watch := s.watch
	if err := s.session.Play(); err != nil {
		log.Debugf("cell %d play: %v", s.cell, err)
		s.teardownVideo()
		s.state = PlaceholderVisible
		return nil
	}
	return watch.next(t)
}

func (s *Slot) statusChanged(msg videoStatusMsg) tea.Cmd {
	if !s.current(msg.token, true) || !s.state.videoActive() || s.watch == nil {
		return nil
	}

	var fade tea.Cmd
	switch msg.status {
	case video.StatusPlaying:
		if s.state == VideoPreparing {
			s.state = VideoPlaying
		}
		if s.state == VideoPlaying && !s.fading {
			fade = s.startFade()
		}
	case video.StatusWaiting, video.StatusPaused:
		if s.state == VideoPreparing && msg.status == video.StatusWaiting {
			s.state = VideoPlaying
		}
		// Stalled after the swap: bring the still back.
		if s.state == VideoPlayingCrossfaded || s.fading {
			s.state = VideoPlaying
			s.fade++
			s.fading = false
			s.alpha = 1
		}
	}
	return tea.Batch(s.watch.next(s.token()), fade)
}
