package config

// Album source.
const (
	AlbumID         = "album.id"
	AlbumBaseURL    = "album.base_url"
	AlbumAPIKey     = "album.api_key"
	AlbumSourceFile = "album.source_file"
	AlbumPerPage    = "album.per_page"
	AlbumPages      = "album.pages"
)

// Feed layout and playback.
const (
	FeedCellHeight    = "feed.cell_height"
	FeedCellPadding   = "feed.cell_padding"
	FeedEnableVideo   = "feed.enable_video"
	FeedStartMuted    = "feed.start_muted"
	FeedFocusedAlpha  = "feed.focused_alpha"
	FeedDormantAlpha  = "feed.dormant_alpha"
	FeedCrossfade     = "feed.crossfade"
	FeedAutoplayDelay = "feed.autoplay_delay"
	FeedPrefetchRows  = "feed.prefetch_rows"
	FeedMaxPasses     = "feed.max_passes"
)

const (
	PlayerBinary = "player.binary"
	ImageBinary  = "image.binary"
)

const (
	AnalyticsEnabled  = "analytics.enabled"
	AnalyticsBaseURL  = "analytics.base_url"
	AnalyticsAPIKey   = "analytics.api_key"
	AnalyticsRegionID = "analytics.region_id"
)

const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJSON  = "logs.json"
	LogsDir   = "logs.dir"
)
