package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/glabrego/pixfeed-cli/internal/album"
	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/media"
)

type PhotoLister interface {
	ListPhotos(ctx context.Context, albumID int64, page, perPage int) ([]album.Photo, error)
}

// Source says where the feed comes from: a local manifest when File is
// set, otherwise Pages pages of the remote album.
type Source struct {
	AlbumID int64
	Pages   int
	PerPage int
	File    string
}

var ErrNoSource = errors.New("no album id or source file configured")

const maxConcurrentPages = 4

type Service struct {
	client PhotoLister
	fs     afero.Fs
	src    Source
}

func NewService(client PhotoLister, fs afero.Fs, src Source) *Service {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Service{client: client, fs: fs, src: src}
}

// Load returns the base sequence for the feed, in album order and without
// duplicate ids.
func (s *Service) Load(ctx context.Context) ([]media.Item, error) {
	var (
		photos []album.Photo
		err    error
	)
	switch {
	case s.src.File != "":
		photos, err = s.readManifest(s.src.File)
	case s.src.AlbumID != 0 && s.client != nil:
		photos, err = s.fetchPages(ctx)
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, err
	}

	items := lo.Map(photos, func(p album.Photo, _ int) media.Item { return p.Item() })
	items = lo.UniqBy(items, func(it media.Item) string { return it.ID() })
	log.Infof("loaded %d items", len(items))
	return items, nil
}

func (s *Service) fetchPages(ctx context.Context) ([]album.Photo, error) {
	pages := max(1, s.src.Pages)
	results := make([][]album.Photo, pages)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for i := 0; i < pages; i++ {
		page := i + 1
		g.Go(func() error {
			photos, err := s.client.ListPhotos(ctx, s.src.AlbumID, page, s.src.PerPage)
			if err != nil {
				return fmt.Errorf("fetch album page %d: %w", page, err)
			}
			results[page-1] = photos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(results), nil
}

type manifest struct {
	Data []album.Photo `json:"data"`
}

// readManifest accepts either a bare photo array or the album response
// shape saved to disk.
func (s *Service) readManifest(path string) ([]album.Photo, error) {
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	var photos []album.Photo
	if err := json.Unmarshal(raw, &photos); err == nil {
		return photos, nil
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode source file %s: %w", path, err)
	}
	return m.Data, nil
}
