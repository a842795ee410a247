package feed

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/video"
	"github.com/glabrego/pixfeed-cli/internal/video/videotest"
)

func mustRun(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := runCmd(cmd, time.Second)
	if !ok {
		t.Fatal("command blocked")
	}
	return msg
}

// playingSlot returns a slot whose video has been opened and reported
// playing, with the crossfade already complete when crossfade is zero.
func playingSlot(t *testing.T, crossfade time.Duration) (*Slot, *videotest.Opener, tea.Cmd) {
	t.Helper()
	cfg := testConfig()
	cfg.Crossfade = crossfade
	opener := &videotest.Opener{AutoPlay: true}
	s := newSlot(0, cfg, &stubLoader{}, opener)

	s.update(mustRun(t, s.Bind(videoItems(1)[0], 158, 200)))
	if s.State() != PlaceholderVisible {
		t.Fatalf("expected placeholder, got %s", s.State())
	}
	opened := mustRun(t, s.Start())
	if s.State() != VideoPreparing {
		t.Fatalf("expected preparing, got %s", s.State())
	}
	status := mustRun(t, s.update(opened))
	return s, opener, s.update(status)
}

func TestSlot_BindShowsPlaceholder(t *testing.T) {
	loader := &stubLoader{}
	s := newSlot(0, testConfig(), loader, &videotest.Opener{})

	cmd := s.Bind(photoItems(1)[0], 158, 200)
	if s.State() != LoadingPlaceholder {
		t.Fatalf("expected loading, got %s", s.State())
	}
	s.update(mustRun(t, cmd))

	if s.State() != PlaceholderVisible {
		t.Fatalf("expected placeholder visible, got %s", s.State())
	}
	if s.Placeholder() != "img:https://cdn.example.com/0.jpg@158x200" {
		t.Fatalf("unexpected placeholder %q", s.Placeholder())
	}
	if s.PlaceholderAlpha() != 1 {
		t.Fatalf("expected opaque placeholder, got %v", s.PlaceholderAlpha())
	}
}

func TestSlot_PlaceholderErrorStillSettles(t *testing.T) {
	s := newSlot(0, testConfig(), &stubLoader{err: errors.New("boom")}, &videotest.Opener{})
	s.update(mustRun(t, s.Bind(photoItems(1)[0], 10, 10)))

	if s.State() != PlaceholderVisible || s.Placeholder() != "" {
		t.Fatalf("expected blank placeholder, got %s %q", s.State(), s.Placeholder())
	}
}

func TestSlot_RoundTripBind(t *testing.T) {
	items := photoItems(2)
	s := newSlot(0, testConfig(), &stubLoader{}, &videotest.Opener{})

	first := s.Bind(items[0], 158, 200)
	s.Unbind()
	second := s.Bind(items[1], 158, 200)
	third := s.Bind(items[0], 158, 200)

	// Completions from the replaced bindings arrive late and are ignored.
	s.update(mustRun(t, second))
	s.update(mustRun(t, first))
	if s.State() != LoadingPlaceholder {
		t.Fatalf("stale placeholder applied, state %s", s.State())
	}
	s.update(mustRun(t, third))

	if s.Item().ID() != "0" {
		t.Fatalf("expected item 0, got %s", s.Item().ID())
	}
	if s.State() != PlaceholderVisible || s.Placeholder() != "img:https://cdn.example.com/0.jpg@158x200" {
		t.Fatalf("unexpected slot %s %q", s.State(), s.Placeholder())
	}
}

func TestSlot_PhotoNeverPlays(t *testing.T) {
	opener := &videotest.Opener{AutoPlay: true}
	s := newSlot(0, testConfig(), &stubLoader{}, opener)
	s.update(mustRun(t, s.Bind(photoItems(1)[0], 10, 10)))

	if cmd := s.Start(); cmd != nil {
		t.Fatal("photo should not open video")
	}
	if s.State() != PlaceholderVisible || len(opener.Sessions()) != 0 {
		t.Fatalf("photo left placeholder: %s", s.State())
	}
}

func TestSlot_DisabledVideoKeepsPlaceholder(t *testing.T) {
	cfg := testConfig()
	cfg.EnableVideo = false
	opener := &videotest.Opener{AutoPlay: true}
	s := newSlot(0, cfg, &stubLoader{}, opener)
	s.update(mustRun(t, s.Bind(videoItems(1)[0], 10, 10)))

	if cmd := s.Start(); cmd != nil {
		t.Fatal("disabled video should not open")
	}
	if s.State() != PlaceholderVisible || s.PlaceholderAlpha() != 1 {
		t.Fatalf("unexpected slot %s alpha=%v", s.State(), s.PlaceholderAlpha())
	}
	if len(opener.Sessions()) != 0 {
		t.Fatal("no session expected")
	}
}

func TestSlot_StartWhileLoadingWaitsForPlaceholder(t *testing.T) {
	opener := &videotest.Opener{AutoPlay: true}
	s := newSlot(0, testConfig(), &stubLoader{}, opener)
	load := s.Bind(videoItems(1)[0], 10, 10)

	if cmd := s.Start(); cmd != nil {
		t.Fatal("video should wait for the placeholder")
	}
	open := s.update(mustRun(t, load))
	if s.State() != VideoPreparing {
		t.Fatalf("expected preparing, got %s", s.State())
	}
	s.update(mustRun(t, open))
	if len(opener.Sessions()) != 1 {
		t.Fatalf("expected one session, got %d", len(opener.Sessions()))
	}
}

func TestSlot_CrossfadeReachesZero(t *testing.T) {
	var live int
	s, opener, cmd := playingSlot(t, 20*time.Millisecond)
	s.onLive = func() { live++ }

	if s.State() != VideoPlaying {
		t.Fatalf("expected playing, got %s", s.State())
	}
	drain(t, s.update, cmd)

	if s.State() != VideoPlayingCrossfaded {
		t.Fatalf("expected crossfaded, got %s", s.State())
	}
	if s.PlaceholderAlpha() != 0 {
		t.Fatalf("expected hidden placeholder, got %v", s.PlaceholderAlpha())
	}
	if live != 1 {
		t.Fatalf("expected one live notification, got %d", live)
	}
	sess := opener.Sessions()[0]
	if !sess.Options.Loop || !sess.Options.Muted || sess.Plays() != 1 {
		t.Fatalf("unexpected session %+v plays=%d", sess.Options, sess.Plays())
	}
}

func TestSlot_ZeroCrossfadeSwapsImmediately(t *testing.T) {
	s, _, _ := playingSlot(t, 0)

	if s.State() != VideoPlayingCrossfaded || s.PlaceholderAlpha() != 0 {
		t.Fatalf("expected immediate swap, got %s alpha=%v", s.State(), s.PlaceholderAlpha())
	}
}

func TestSlot_StallRestoresPlaceholder(t *testing.T) {
	s, opener, next := playingSlot(t, 0)
	opener.Sessions()[0].Emit(video.StatusWaiting)
	s.update(mustRun(t, next))

	if s.State() != VideoPlaying || s.PlaceholderAlpha() != 1 {
		t.Fatalf("expected restored placeholder, got %s alpha=%v", s.State(), s.PlaceholderAlpha())
	}
}

func TestSlot_StopIsIdempotent(t *testing.T) {
	s, opener, _ := playingSlot(t, 0)
	sess := opener.Sessions()[0]

	s.Stop()
	s.Stop()

	if s.State() != PlaceholderVisible {
		t.Fatalf("expected placeholder after stop, got %s", s.State())
	}
	if sess.Closes() != 1 || sess.Observers() != 0 || sess.Detaches() != 1 {
		t.Fatalf("closes=%d observers=%d detaches=%d", sess.Closes(), sess.Observers(), sess.Detaches())
	}
	if sess.Prerolls() != 1 {
		t.Fatalf("expected prerolls cancelled once, got %d", sess.Prerolls())
	}
}

func TestSlot_StopOnIdleIsNoop(t *testing.T) {
	s := newSlot(0, testConfig(), &stubLoader{}, &videotest.Opener{})
	s.Stop()
	if s.State() != Idle {
		t.Fatalf("expected idle, got %s", s.State())
	}
}

func TestSlot_UnbindReturnsToIdle(t *testing.T) {
	s, opener, _ := playingSlot(t, 0)
	s.Unbind()

	if s.State() != Idle || s.Bound() || !s.Item().IsZero() {
		t.Fatalf("expected idle slot, got %s", s.State())
	}
	if opener.Sessions()[0].Closes() != 1 {
		t.Fatal("expected session closed")
	}
}

func TestSlot_LateSessionIsClosed(t *testing.T) {
	opener := &videotest.Opener{AutoPlay: true}
	s := newSlot(0, testConfig(), &stubLoader{}, opener)
	s.update(mustRun(t, s.Bind(videoItems(2)[0], 10, 10)))

	open := s.Start()
	s.Stop()
	s.update(mustRun(t, s.Bind(videoItems(2)[1], 10, 10)))

	msg := mustRun(t, open).(videoOpenedMsg)
	if msg.err == nil {
		t.Fatal("expected the abandoned open to be cancelled")
	}
	// Model a player that finished starting anyway.
	late := &videotest.Session{}
	msg.session, msg.err = late, nil
	s.update(msg)

	if late.Closes() != 1 {
		t.Fatal("stale session should be closed exactly once")
	}
	if s.HasSession() || s.State() != PlaceholderVisible {
		t.Fatalf("stale session attached, state %s", s.State())
	}
}

func TestSlot_RecycleMidCrossfadeClosesOnce(t *testing.T) {
	s, opener, cmd := playingSlot(t, 20*time.Millisecond)
	sess := opener.Sessions()[0]

	cell := newCell(0, s, testConfig())
	cell.position = 0
	cell.Bind(1, photoItems(2)[1], Size{Width: 10, Height: 10})

	// Frames of the abandoned fade are dropped.
	drain(t, s.update, cmd)
	cell.PrepareForReuse()

	if sess.Closes() != 1 {
		t.Fatalf("expected one close, got %d", sess.Closes())
	}
	if s.State() != Idle || s.PlaceholderAlpha() != 1 {
		t.Fatalf("unexpected slot %s alpha=%v", s.State(), s.PlaceholderAlpha())
	}
}

func TestSlot_MuteReachesSession(t *testing.T) {
	s, opener, _ := playingSlot(t, 0)
	s.SetMuted(false)
	if opener.Sessions()[0].Muted() {
		t.Fatal("expected session unmuted")
	}
}

func TestSlot_OpenFailureFallsBack(t *testing.T) {
	opener := &videotest.Opener{Err: errors.New("no player")}
	s := newSlot(0, testConfig(), &stubLoader{}, opener)
	s.update(mustRun(t, s.Bind(videoItems(1)[0], 10, 10)))
	s.update(mustRun(t, s.Start()))

	if s.State() != PlaceholderVisible || s.HasSession() {
		t.Fatalf("expected placeholder fallback, got %s", s.State())
	}
}

func TestSlot_InterruptedFadeTicksAreDropped(t *testing.T) {
	s, _, _ := playingSlot(t, 20*time.Millisecond)
	if !s.fading {
		t.Fatalf("expected a fade in progress, state %s", s.State())
	}
	old := fadeFrameMsg{token: s.token(), fade: s.fade}

	s.update(videoStatusMsg{token: s.token(), status: video.StatusWaiting})
	if s.fading || s.PlaceholderAlpha() != 1 {
		t.Fatalf("stall should cancel the fade, alpha=%v", s.PlaceholderAlpha())
	}
	s.update(videoStatusMsg{token: s.token(), status: video.StatusPlaying})
	if !s.fading {
		t.Fatal("expected a new fade after recovery")
	}
	frames := s.fadeFrames

	if cmd := s.update(old); cmd != nil {
		t.Fatal("tick of the interrupted fade started another frame chain")
	}
	if s.fadeFrames != frames || s.PlaceholderAlpha() != 1 {
		t.Fatalf("interrupted fade advanced the new one: frames %d→%d alpha=%v", frames, s.fadeFrames, s.PlaceholderAlpha())
	}

	if cmd := s.update(fadeFrameMsg{token: s.token(), fade: s.fade}); cmd == nil {
		t.Fatal("current fade should schedule its next frame")
	}
	if s.fadeFrames != frames-1 || s.PlaceholderAlpha() >= 1 {
		t.Fatalf("current fade did not advance: frames=%d alpha=%v", s.fadeFrames, s.PlaceholderAlpha())
	}
}
