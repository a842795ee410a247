package feed

import (
	"context"
	"time"

	"github.com/glabrego/pixfeed-cli/internal/media"
	"github.com/glabrego/pixfeed-cli/internal/video"
)

// ImageLoader renders a placeholder for url sized to a cell.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string, width, height int) (string, error)
}

type VideoOpener interface {
	Open(ctx context.Context, url string, opts video.Options) (video.Session, error)
}

// Delegate is the host's hook into the grid. Embed NopDelegate to pick up
// the neutral default for any callback left out.
type Delegate interface {
	// CellHeight and CellPadding are queried on every layout pass.
	CellHeight() float64
	CellPadding() float64
	// SetupCell runs after a cell is bound to an item.
	SetupCell(cell *Cell, item media.Item)
	OnPhotoClicked(item media.Item)
	OnPhotoButtonClicked(item media.Item)
}

const (
	DefaultCellHeight  = 200
	DefaultCellPadding = 4
)

// NopDelegate reports a 200 high cell with 4 of padding and ignores every
// notification.
type NopDelegate struct{}

func (NopDelegate) CellHeight() float64             { return DefaultCellHeight }
func (NopDelegate) CellPadding() float64            { return DefaultCellPadding }
func (NopDelegate) SetupCell(*Cell, media.Item)     {}
func (NopDelegate) OnPhotoClicked(media.Item)       {}
func (NopDelegate) OnPhotoButtonClicked(media.Item) {}

type Config struct {
	EnableVideo  bool
	StartMuted   bool
	FocusedAlpha float64
	DormantAlpha float64
	// Crossfade is how long the placeholder takes to fade out once video
	// is confirmed playing. Zero swaps immediately.
	Crossfade time.Duration
	FadeFPS   int
	// AutoplayDelay postpones the first focus decision after Init so the
	// first placeholders can settle.
	AutoplayDelay time.Duration
	// PrefetchRows is how many rows past the viewport count as reached
	// for pagination.
	PrefetchRows int
	Growth       GrowthPolicy
}

func DefaultConfig() Config {
	return Config{
		EnableVideo:   true,
		StartMuted:    true,
		FocusedAlpha:  1,
		DormantAlpha:  0.5,
		Crossfade:     300 * time.Millisecond,
		FadeFPS:       60,
		AutoplayDelay: 500 * time.Millisecond,
		PrefetchRows:  2,
	}
}
