package media

import "strings"

// Quality names one of the resolvable renditions of an item.
type Quality string

const (
	QualityThumbnail Quality = "thumbnail"
	QualityMedium    Quality = "medium"
	QualityBig       Quality = "big"
	QualityVideo     Quality = "video"
)

// Item is one feed entry. It is immutable once constructed; copies share
// nothing mutable with the caller.
type Item struct {
	id           string
	albumID      int64
	albumPhotoID string
	title        string
	link         string
	isVideo      bool
	urls         map[Quality]string
}

type Attributes struct {
	AlbumID      int64
	AlbumPhotoID string
	Title        string
	Link         string
	IsVideo      bool
}

func NewItem(id string, urls map[Quality]string, attrs Attributes) Item {
	copied := make(map[Quality]string, len(urls))
	for q, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		copied[q] = u
	}
	return Item{
		id:           id,
		albumID:      attrs.AlbumID,
		albumPhotoID: attrs.AlbumPhotoID,
		title:        attrs.Title,
		link:         attrs.Link,
		isVideo:      attrs.IsVideo,
		urls:         copied,
	}
}

func (i Item) ID() string           { return i.id }
func (i Item) AlbumID() int64       { return i.albumID }
func (i Item) AlbumPhotoID() string { return i.albumPhotoID }
func (i Item) Title() string        { return i.title }
func (i Item) Link() string         { return i.link }
func (i Item) IsVideo() bool        { return i.isVideo }

func (i Item) URL(q Quality) (string, bool) {
	u, ok := i.urls[q]
	return u, ok
}

// PlaceholderURL is the still shown before (or instead of) video.
func (i Item) PlaceholderURL() string {
	for _, q := range []Quality{QualityMedium, QualityBig, QualityThumbnail} {
		if u, ok := i.urls[q]; ok {
			return u
		}
	}
	return ""
}

func (i Item) VideoURL() string {
	if !i.isVideo {
		return ""
	}
	return i.urls[QualityVideo]
}

func (i Item) IsZero() bool {
	return i.id == "" && len(i.urls) == 0
}
