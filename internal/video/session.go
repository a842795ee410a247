// Package video defines playback sessions and their status observation.
package video

import (
	"context"
	"sync"
)

// Status mirrors a player's time-control state.
type Status int

const (
	StatusPaused Status = iota
	StatusWaiting
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusPaused:
		return "paused"
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Session is one looping playback of a single URL. Methods may be called
// from the owning UI context only; Observe callbacks may fire on any
// goroutine.
type Session interface {
	Play() error
	Pause() error
	SetMuted(muted bool) error
	CancelPendingPrerolls()
	// Observe registers fn for status changes and returns a detach func.
	Observe(fn func(Status)) (detach func())
	Close() error
}

type Options struct {
	Muted bool
	Loop  bool
	Title string
}

type Opener interface {
	Open(ctx context.Context, url string, opts Options) (Session, error)
}

// Handle is a cancellable status subscription. Dispose is safe to call
// any number of times, including on a nil Handle.
type Handle struct {
	once   sync.Once
	detach func()
}

func Subscribe(s Session, fn func(Status)) *Handle {
	return &Handle{detach: s.Observe(fn)}
}

func (h *Handle) Dispose() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.detach != nil {
			h.detach()
		}
	})
}
