// Package analytics reports feed interactions to a JSON events endpoint.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

// Platform is reported with every event.
const Platform = "terminal"

type Event interface {
	Name() string
	Params() map[string]any
}

// OpenedLightbox is sent when the user opens a photo from the feed.
type OpenedLightbox struct {
	Item     media.Item
	RegionID int
	UID      string
}

func (OpenedLightbox) Name() string { return "openedLightbox" }

func (e OpenedLightbox) Params() map[string]any {
	params := map[string]any{
		"album_photo_id": e.Item.AlbumPhotoID(),
		"album_id":       e.Item.AlbumID(),
		"platform":       Platform,
		"uid":            e.UID,
	}
	if e.RegionID != 0 {
		params["region_id"] = strconv.Itoa(e.RegionID)
	}
	return params
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *Client) Track(ctx context.Context, ev Event) error {
	body := lo.Assign(ev.Params(), map[string]any{"event": ev.Name()})
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Name(), err)
	}

	endpoint := c.baseURL + "/events"
	if c.apiKey != "" {
		endpoint += "?" + url.Values{"api_key": {c.apiKey}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("track %s request failed: %w", ev.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("track %s failed with status %d: %s", ev.Name(), resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// DeviceID returns the install id stored at path, creating it on first use.
func DeviceID(fs afero.Fs, path string) (string, error) {
	raw, err := afero.ReadFile(fs, path)
	if err == nil {
		if id, err := uuid.ParseBytes(bytes.TrimSpace(raw)); err == nil {
			return id.String(), nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.New().String()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create device id dir: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write device id: %w", err)
	}
	return id, nil
}
