package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type fixture struct {
	loader *ChafaLoader
	url    string
	hits   int32

	mu    sync.Mutex
	calls [][]string
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	f := &fixture{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.hits, 1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	f.url = ts.URL + "/a.jpg"
	f.loader = NewChafaLoader("chafa", ts.Client())
	f.loader.render = func(_ context.Context, image []byte, args []string) ([]byte, error) {
		f.mu.Lock()
		f.calls = append(f.calls, args)
		f.mu.Unlock()
		return []byte("[" + string(image) + "]\n"), nil
	}
	return f
}

func TestLoadImage_RendersAndMemoizes(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})

	out, err := f.loader.LoadImage(context.Background(), f.url, 20, 6)
	if err != nil {
		t.Fatalf("LoadImage returned error: %v", err)
	}
	if out != "[jpeg]" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := f.loader.LoadImage(context.Background(), f.url, 20, 6); err != nil {
		t.Fatalf("second LoadImage returned error: %v", err)
	}
	if got := atomic.LoadInt32(&f.hits); got != 1 {
		t.Fatalf("expected one download, got %d", got)
	}

	args := strings.Join(f.calls[0], " ")
	for _, want := range []string{"--size 20x6", "--view-size 20x6", "--format symbols"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in args %q", want, args)
		}
	}
}

func TestLoadImage_SizeIsPartOfKey(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})

	_, _ = f.loader.LoadImage(context.Background(), f.url, 20, 6)
	_, _ = f.loader.LoadImage(context.Background(), f.url, 30, 8)
	if got := atomic.LoadInt32(&f.hits); got != 2 {
		t.Fatalf("expected a download per size, got %d", got)
	}
}

func TestLoadImage_ConcurrentCallsShareDownload(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("jpeg"))
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.loader.LoadImage(context.Background(), f.url, 10, 4); err != nil {
				t.Errorf("LoadImage returned error: %v", err)
			}
		}()
	}
	for atomic.LoadInt32(&f.hits) == 0 {
		// wait for the first request to arrive
	}
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&f.hits); got > 4 || got < 1 {
		t.Fatalf("unexpected download count %d", got)
	}
}

func TestLoadImage_CancelledCallerLeavesDownloadRunning(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 1)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte("jpeg"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	recycled := make(chan error, 1)
	go func() {
		_, err := f.loader.LoadImage(ctx, f.url, 10, 4)
		recycled <- err
	}()
	<-arrived

	type result struct {
		out string
		err error
	}
	waiting := make(chan result, 1)
	go func() {
		out, err := f.loader.LoadImage(context.Background(), f.url, 10, 4)
		waiting <- result{out, err}
	}()

	cancel()
	if err := <-recycled; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to return context.Canceled, got %v", err)
	}
	close(release)

	res := <-waiting
	if res.err != nil || res.out != "[jpeg]" {
		t.Fatalf("other caller should still get the image, got %q %v", res.out, res.err)
	}
	if got := atomic.LoadInt32(&f.hits); got != 1 {
		t.Fatalf("expected one shared download, got %d", got)
	}
}

func TestLoadImage_RejectsOversizedImage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte{'x'}, maxImageBytes+1))
	})

	_, err := f.loader.LoadImage(context.Background(), f.url, 10, 4)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatal("oversized image should not reach the renderer")
	}
}

func TestLoadImage_PropagatesHTTPStatus(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := f.loader.LoadImage(context.Background(), f.url, 10, 4)
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoadImage_RenderErrorIsNotCached(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})
	fail := true
	f.loader.render = func(_ context.Context, image []byte, _ []string) ([]byte, error) {
		if fail {
			return nil, errors.New("chafa exploded")
		}
		return image, nil
	}

	if _, err := f.loader.LoadImage(context.Background(), f.url, 10, 4); err == nil {
		t.Fatal("expected render error")
	}
	fail = false
	out, err := f.loader.LoadImage(context.Background(), f.url, 10, 4)
	if err != nil || out != "jpeg" {
		t.Fatalf("expected retry to succeed, got %q %v", out, err)
	}
}

func TestLoadImage_RejectsEmptyOutputAndSize(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})
	f.loader.render = func(context.Context, []byte, []string) ([]byte, error) {
		return []byte("  \n"), nil
	}

	if _, err := f.loader.LoadImage(context.Background(), f.url, 10, 4); err == nil {
		t.Fatal("expected empty output error")
	}
	if _, err := f.loader.LoadImage(context.Background(), f.url, 0, 4); err == nil {
		t.Fatal("expected size error")
	}
}

func TestRunChafa_MissingBinary(t *testing.T) {
	l := NewChafaLoader("pixfeed-definitely-missing-chafa", nil)
	_, err := l.runChafa(context.Background(), []byte("x"), chafaArgs(1, 1))
	if err == nil || !strings.Contains(err.Error(), "is not installed") {
		t.Fatalf("expected missing binary error, got %v", err)
	}
}
