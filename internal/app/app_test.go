package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/glabrego/pixfeed-cli/internal/album"
	"github.com/glabrego/pixfeed-cli/internal/media"
)

type fakeLister struct {
	mu    sync.Mutex
	pages map[int][]album.Photo
	err   error
	calls []int
}

func (f *fakeLister) ListPhotos(_ context.Context, _ int64, page, _ int) ([]album.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

func ids(items []media.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func TestService_Load_ConcatenatesPagesInOrder(t *testing.T) {
	client := &fakeLister{pages: map[int][]album.Photo{
		1: {{ID: "a"}, {ID: "b"}},
		2: {{ID: "c"}},
		3: {{ID: "b"}, {ID: "d"}},
	}}
	svc := NewService(client, afero.NewMemMapFs(), Source{AlbumID: 1, Pages: 3, PerPage: 2})

	items, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got, want := ids(items), []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected ids %v, want %v", got, want)
	}
	if len(client.calls) != 3 {
		t.Fatalf("expected 3 page requests, got %v", client.calls)
	}
}

func TestService_Load_PropagatesFetchError(t *testing.T) {
	svc := NewService(&fakeLister{err: errors.New("boom")}, nil, Source{AlbumID: 1, Pages: 2})

	_, err := svc.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestService_Load_ReadsManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/feed.json", []byte(`[{"id":"x","content_type":"video","medium_url":"https://cdn.example.com/x.jpg","video_url":"https://cdn.example.com/x.mp4"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	client := &fakeLister{}
	svc := NewService(client, fs, Source{AlbumID: 1, File: "/feed.json"})

	items, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(items) != 1 || !items[0].IsVideo() {
		t.Fatalf("unexpected items: %v", ids(items))
	}
	if len(client.calls) != 0 {
		t.Fatal("manifest should win over the remote album")
	}
}

func TestService_Load_ReadsWrappedManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/feed.json", []byte(`{"data":[{"id":"y"},{"id":"z"}]}`), 0o644)

	items, err := NewService(nil, fs, Source{File: "/feed.json"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := ids(items); !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Fatalf("unexpected ids %v", got)
	}
}

func TestService_Load_ReportsBadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/feed.json", []byte(`nope`), 0o644)

	if _, err := NewService(nil, fs, Source{File: "/feed.json"}).Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := NewService(nil, fs, Source{File: "/missing.json"}).Load(context.Background()); err == nil {
		t.Fatal("expected read error")
	}
}

func TestService_Load_RequiresSource(t *testing.T) {
	_, err := NewService(nil, nil, Source{}).Load(context.Background())
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}
