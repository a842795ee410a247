package album

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

// Photo is the subset of album photo fields required by the feed.
type Photo struct {
	ID           string `json:"id"`
	AlbumPhotoID string `json:"album_photo_id"`
	AlbumID      int64  `json:"album_id"`
	Title        string `json:"title"`
	Caption      string `json:"caption"`
	ContentType  string `json:"content_type"`
	ActionLink   string `json:"action_link"`
	ThumbnailURL string `json:"thumbnail_url"`
	MediumURL    string `json:"medium_url"`
	BigURL       string `json:"big_url"`
	VideoURL     string `json:"video_url"`
}

func (p Photo) IsVideo() bool {
	return strings.EqualFold(strings.TrimSpace(p.ContentType), "video")
}

// Item converts p to a feed item. The caption stands in for a missing title.
func (p Photo) Item() media.Item {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = strings.TrimSpace(p.AlbumPhotoID)
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = PlainText(p.Caption)
	}
	return media.NewItem(id, map[media.Quality]string{
		media.QualityThumbnail: p.ThumbnailURL,
		media.QualityMedium:    p.MediumURL,
		media.QualityBig:       p.BigURL,
		media.QualityVideo:     p.VideoURL,
	}, media.Attributes{
		AlbumID:      p.AlbumID,
		AlbumPhotoID: p.AlbumPhotoID,
		Title:        title,
		Link:         strings.TrimSpace(p.ActionLink),
		IsVideo:      p.IsVideo(),
	})
}

type photosResponse struct {
	Data []Photo `json:"data"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *Client) ListPhotos(ctx context.Context, albumID int64, page, perPage int) ([]Photo, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := make(url.Values)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}

	path := fmt.Sprintf("/albums/%d/photos.json?%s", albumID, q.Encode())
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list photos request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("list photos failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload photosResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode photos response: %w", err)
	}
	for i := range payload.Data {
		if payload.Data[i].AlbumID == 0 {
			payload.Data[i].AlbumID = albumID
		}
	}
	return payload.Data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
