package config

import (
	"fmt"
	"strings"
	"time"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that overrides this field.
func (f Field) Env() string {
	return EnvPrefix + "_" + strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
}

func (f Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case int64:
		return "int64"
	case bool:
		return "bool"
	case float64:
		return "float"
	case time.Duration:
		return "duration"
	default:
		return fmt.Sprintf("%T", f.Value)
	}
}

// Fields lists every configuration key in display order.
var Fields []Field

// Default indexes Fields by key.
var Default = make(map[string]Field)

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		Fields = append(Fields, f)
	}

	register(AlbumID, int64(0), "Album to show in the feed")
	register(AlbumBaseURL, "https://distillery.pixlee.co/api/v2", "Album API base URL, without a trailing slash")
	register(AlbumAPIKey, "", "API key sent with album requests")
	register(AlbumSourceFile, "", "Read photos from this JSON file instead of the album API")
	register(AlbumPerPage, 30, "Photos requested per album page (1-100)")
	register(AlbumPages, 1, "Album pages fetched on load")
	register(FeedCellHeight, 12, "Cell height in terminal rows")
	register(FeedCellPadding, 2, "Gap between cells, in columns and rows")
	register(FeedEnableVideo, true, "Play videos of focused cells")
	register(FeedStartMuted, true, "Start video sessions muted")
	register(FeedFocusedAlpha, 1.0, "Opacity of focused cells (0-1)")
	register(FeedDormantAlpha, 0.5, "Opacity of cells out of focus (0-1)")
	register(FeedCrossfade, 300*time.Millisecond, "Placeholder fade-out once video plays. 0 swaps at once")
	register(FeedAutoplayDelay, 500*time.Millisecond, "Delay before the first autoplay decision")
	register(FeedPrefetchRows, 2, "Rows past the viewport that count as reaching the end")
	register(FeedMaxPasses, 0, "How many times the album may repeat. 0 means endless")
	register(PlayerBinary, "mpv", "Video player binary (mpv-compatible JSON IPC)")
	register(ImageBinary, "chafa", "Terminal image renderer binary")
	register(AnalyticsEnabled, false, "Send an event when a photo is opened")
	register(AnalyticsBaseURL, "", "Analytics endpoint base URL")
	register(AnalyticsAPIKey, "", "API key sent with analytics events")
	register(AnalyticsRegionID, 0, "Region id attached to events. 0 omits it")
	register(LogsWrite, false, "Write logs")
	register(LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(LogsJSON, false, "Use json format for logs")
	register(LogsDir, "", "Log directory. Empty uses the user cache directory")
}
