package feed

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

// The placeholder fades out along a critically damped spring, one frame per
// tea.Tick, once the player confirms playback. Each fade has its own
// generation so ticks of an interrupted fade never drive a later one.

func (s *Slot) startFade() tea.Cmd {
	if s.cfg.Crossfade <= 0 {
		s.finishFade()
		return nil
	}
	fps := s.fadeFPS()
	// A critically damped spring settles within 1% after about 6.6/ω.
	omega := 6.6 / s.cfg.Crossfade.Seconds()
	s.spring = harmonica.NewSpring(harmonica.FPS(fps), omega, 1.0)
	s.fade++
	s.fading = true
	s.fadeVel = 0
	s.fadeFrames = int(math.Ceil(s.cfg.Crossfade.Seconds()*float64(fps))) * 2
	return s.fadeTick(fps)
}

func (s *Slot) fadeTick(fps int) tea.Cmd {
	t, fade := s.token(), s.fade
	return tea.Tick(time.Second/time.Duration(fps), func(time.Time) tea.Msg {
		return fadeFrameMsg{token: t, fade: fade}
	})
}

func (s *Slot) fadeFrame(msg fadeFrameMsg) tea.Cmd {
	if !s.current(msg.token, true) || !s.fading || msg.fade != s.fade {
		return nil
	}
	s.alpha, s.fadeVel = s.spring.Update(s.alpha, s.fadeVel, 0)
	s.fadeFrames--
	if s.alpha < 0.01 || s.fadeFrames <= 0 {
		s.finishFade()
		return nil
	}
	return s.fadeTick(s.fadeFPS())
}

func (s *Slot) finishFade() {
	s.fading = false
	s.fadeVel = 0
	s.alpha = 0
	s.state = VideoPlayingCrossfaded
	if s.onLive != nil {
		s.onLive()
	}
}

func (s *Slot) fadeFPS() int {
	if s.cfg.FadeFPS <= 0 {
		return 60
	}
	return s.cfg.FadeFPS
}
