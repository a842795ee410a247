package feed

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/video"
)

// token ties an async completion to the binding (and, for video work, the
// play request) that issued it.
type token struct {
	cell    int
	binding uint64
	play    uint64
}

type placeholderLoadedMsg struct {
	token
	image string
	err   error
}

type videoOpenedMsg struct {
	token
	session video.Session
	err     error
}

type videoStatusMsg struct {
	token
	status video.Status
}

type fadeFrameMsg struct {
	token
	fade uint64
}

type autoplayMsg struct {
	grid *Grid
}

// statusWatch carries status callbacks from the session's goroutine onto
// the update loop. Only the latest status is kept.
type statusWatch struct {
	ch   chan video.Status
	done chan struct{}
	once sync.Once
}

func newStatusWatch() *statusWatch {
	return &statusWatch{
		ch:   make(chan video.Status, 1),
		done: make(chan struct{}),
	}
}

func (w *statusWatch) push(st video.Status) {
	select {
	case <-w.done:
		return
	default:
	}
	for {
		select {
		case w.ch <- st:
			return
		default:
		}
		select {
		case <-w.ch:
		default:
		}
	}
}

func (w *statusWatch) close() {
	w.once.Do(func() { close(w.done) })
}

func (w *statusWatch) next(t token) tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-w.ch:
			return videoStatusMsg{token: t, status: st}
		case <-w.done:
			return nil
		}
	}
}
