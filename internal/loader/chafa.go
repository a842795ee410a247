// Package loader turns image URLs into terminal renderings sized to a cell.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glabrego/pixfeed-cli/internal/log"
)

const (
	maxImageBytes = 5 * 1024 * 1024
	maxCached     = 256
	loadTimeout   = 20 * time.Second
)

// ErrImageTooLarge is returned for images over the download limit.
var ErrImageTooLarge = errors.New("image too large")

type renderFunc func(ctx context.Context, image []byte, args []string) ([]byte, error)

// ChafaLoader downloads images and renders them as text with chafa.
// Results are memoized per URL and size; concurrent requests for the same
// rendering share one download, which outlives any single caller.
type ChafaLoader struct {
	binary string
	http   *http.Client
	render renderFunc

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]string
}

func NewChafaLoader(binary string, httpClient *http.Client) *ChafaLoader {
	if binary == "" {
		binary = "chafa"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	l := &ChafaLoader{
		binary: binary,
		http:   httpClient,
		cache:  make(map[string]string),
	}
	l.render = l.runChafa
	return l
}

func (l *ChafaLoader) LoadImage(ctx context.Context, imageURL string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid image size %dx%d", width, height)
	}
	key := fmt.Sprintf("%dx%d|%s", width, height, imageURL)

	l.mu.Lock()
	if out, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	ch := l.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return l.load(shared, key, imageURL, width, height)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			log.Debugf("load image %s: %v", imageURL, res.Err)
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (l *ChafaLoader) load(ctx context.Context, key, imageURL string, width, height int) (string, error) {
	data, err := l.download(ctx, imageURL)
	if err != nil {
		return "", err
	}
	out, err := l.render(ctx, data, chafaArgs(width, height))
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(string(out), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("render image: empty output")
	}
	l.store(key, text)
	return text, nil
}

func (l *ChafaLoader) store(key, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.cache) >= maxCached {
		l.cache = make(map[string]string)
	}
	l.cache[key] = text
}

func (l *ChafaLoader) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, maxImageBytes)
	}
	return data, nil
}

func chafaArgs(width, height int) []string {
	size := fmt.Sprintf("%dx%d", width, height)
	return []string{
		"--size", size,
		"--view-size", size,
		"--align", "mid,center",
		"--format", "symbols",
		"--animate", "off",
		"-",
	}
}

func (l *ChafaLoader) runChafa(ctx context.Context, image []byte, args []string) ([]byte, error) {
	path, err := exec.LookPath(l.binary)
	if err != nil {
		return nil, fmt.Errorf("%s is not installed", l.binary)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(image)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("render image via %s: %w", l.binary, err)
	}
	return out, nil
}
