// Package videotest provides in-memory video sessions for tests.
package videotest

import (
	"context"
	"sync"

	"github.com/glabrego/pixfeed-cli/internal/video"
)

// Session records every call made on it. With AutoPlay set, Play reports
// waiting then playing to its observers.
type Session struct {
	URL      string
	Options  video.Options
	AutoPlay bool

	mu        sync.Mutex
	observers map[int]func(video.Status)
	nextID    int
	plays     int
	pauses    int
	prerolls  int
	closes    int
	detaches  int
	muted     bool
}

func (s *Session) Play() error {
	s.mu.Lock()
	s.plays++
	auto := s.AutoPlay
	s.mu.Unlock()
	if auto {
		s.Emit(video.StatusWaiting)
		s.Emit(video.StatusPlaying)
	}
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
	return nil
}

func (s *Session) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	return nil
}

func (s *Session) CancelPendingPrerolls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prerolls++
}

func (s *Session) Observe(fn func(video.Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == nil {
		s.observers = make(map[int]func(video.Status))
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		s.detaches++
	}
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// Emit delivers status to current observers on the calling goroutine.
func (s *Session) Emit(status video.Status) {
	s.mu.Lock()
	fns := make([]func(video.Status), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(status)
	}
}

func (s *Session) Plays() int     { s.mu.Lock(); defer s.mu.Unlock(); return s.plays }
func (s *Session) Pauses() int    { s.mu.Lock(); defer s.mu.Unlock(); return s.pauses }
func (s *Session) Prerolls() int  { s.mu.Lock(); defer s.mu.Unlock(); return s.prerolls }
func (s *Session) Closes() int    { s.mu.Lock(); defer s.mu.Unlock(); return s.closes }
func (s *Session) Detaches() int  { s.mu.Lock(); defer s.mu.Unlock(); return s.detaches }
func (s *Session) Muted() bool    { s.mu.Lock(); defer s.mu.Unlock(); return s.muted }
func (s *Session) Observers() int { s.mu.Lock(); defer s.mu.Unlock(); return len(s.observers) }

// Opener hands out Sessions, or Err when set.
type Opener struct {
	Err      error
	AutoPlay bool

	mu       sync.Mutex
	sessions []*Session
}

func (o *Opener) Open(ctx context.Context, url string, opts video.Options) (video.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.Err != nil {
		return nil, o.Err
	}
	s := &Session{URL: url, Options: opts, AutoPlay: o.AutoPlay, muted: opts.Muted}
	o.mu.Lock()
	o.sessions = append(o.sessions, s)
	o.mu.Unlock()
	return s, nil
}

func (o *Opener) Sessions() []*Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Session(nil), o.sessions...)
}

// Playing counts sessions that were played more often than paused.
func (o *Opener) Playing() int {
	n := 0
	for _, s := range o.Sessions() {
		if s.Closes() == 0 && s.Plays() > s.Pauses() {
			n++
		}
	}
	return n
}
