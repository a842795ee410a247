package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

type stubLoader struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (l *stubLoader) LoadImage(_ context.Context, url string, width, height int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, url)
	if l.err != nil {
		return "", l.err
	}
	return fmt.Sprintf("img:%s@%dx%d", url, width, height), nil
}

func (l *stubLoader) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingDelegate struct {
	NopDelegate
	clicked []string
	buttons []string
	setups  int
}

func (d *recordingDelegate) SetupCell(*Cell, media.Item) { d.setups++ }
func (d *recordingDelegate) OnPhotoClicked(item media.Item) {
	d.clicked = append(d.clicked, item.ID())
}
func (d *recordingDelegate) OnPhotoButtonClicked(item media.Item) {
	d.buttons = append(d.buttons, item.ID())
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Crossfade = 20 * time.Millisecond
	cfg.FadeFPS = 200
	cfg.AutoplayDelay = time.Millisecond
	return cfg
}

func photoItems(n int) []media.Item {
	items := make([]media.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, media.NewItem(fmt.Sprint(i), map[media.Quality]string{
			media.QualityMedium: fmt.Sprintf("https://cdn.example.com/%d.jpg", i),
		}, media.Attributes{Title: fmt.Sprintf("Photo %d", i)}))
	}
	return items
}

func videoItems(n int) []media.Item {
	items := make([]media.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, media.NewItem(fmt.Sprint(i), map[media.Quality]string{
			media.QualityMedium: fmt.Sprintf("https://cdn.example.com/%d.jpg", i),
			media.QualityVideo:  fmt.Sprintf("https://cdn.example.com/%d.mp4", i),
		}, media.Attributes{Title: fmt.Sprintf("Clip %d", i), IsVideo: true}))
	}
	return items
}

// runCmd runs cmd on its own goroutine. Commands still blocked after timeout
// are treated as waiting on an event that never comes.
func runCmd(cmd tea.Cmd, timeout time.Duration) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(timeout):
		return nil, false
	}
}

// drain feeds every message produced by cmd, and by the commands those
// messages return, back into update until nothing is left.
func drain(t *testing.T, update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 5000 {
			t.Fatal("commands did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := runCmd(next, 50*time.Millisecond)
		if !ok || msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		queue = append(queue, update(msg))
	}
}
