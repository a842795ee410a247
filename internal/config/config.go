package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/glabrego/pixfeed-cli/internal/feed"
	"github.com/glabrego/pixfeed-cli/internal/log"
)

const (
	AppName   = "pixfeed"
	EnvPrefix = "PIXFEED"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Config holds runtime settings for the CLI app.
type Config struct {
	Album     Album
	Feed      Feed
	Player    string
	Image     string
	Analytics Analytics
	Logs      log.Options
}

type Album struct {
	ID         int64
	BaseURL    string
	APIKey     string
	SourceFile string
	PerPage    int
	Pages      int
}

type Feed struct {
	CellHeight    int
	CellPadding   int
	EnableVideo   bool
	StartMuted    bool
	FocusedAlpha  float64
	DormantAlpha  float64
	Crossfade     time.Duration
	AutoplayDelay time.Duration
	PrefetchRows  int
	MaxPasses     int
}

type Analytics struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	RegionID int
}

// Load reads defaults, the TOML config file, PIXFEED_* environment
// variables and bound flags, in increasing priority. An explicit file must
// exist; the default one is optional.
func Load(fs afero.Fs, file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("toml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(AppName)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for _, f := range Fields {
		v.SetDefault(f.Key, f.Value)
	}

	if flags != nil {
		for key, name := range FlagBindings {
			if fl := flags.Lookup(name); fl != nil {
				if err := v.BindPFlag(key, fl); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if cfg.Logs.Dir == "" {
		cfg.Logs.Dir = defaultLogDir()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FlagBindings maps config keys to the CLI flags that override them.
var FlagBindings = map[string]string{
	AlbumID:         "album",
	AlbumSourceFile: "source-file",
	FeedMaxPasses:   "max-passes",
	LogsLevel:       "log-level",
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Album: Album{
			ID:         v.GetInt64(AlbumID),
			BaseURL:    v.GetString(AlbumBaseURL),
			APIKey:     v.GetString(AlbumAPIKey),
			SourceFile: v.GetString(AlbumSourceFile),
			PerPage:    v.GetInt(AlbumPerPage),
			Pages:      v.GetInt(AlbumPages),
		},
		Feed: Feed{
			CellHeight:    v.GetInt(FeedCellHeight),
			CellPadding:   v.GetInt(FeedCellPadding),
			EnableVideo:   v.GetBool(FeedEnableVideo),
			StartMuted:    v.GetBool(FeedStartMuted),
			FocusedAlpha:  v.GetFloat64(FeedFocusedAlpha),
			DormantAlpha:  v.GetFloat64(FeedDormantAlpha),
			Crossfade:     v.GetDuration(FeedCrossfade),
			AutoplayDelay: v.GetDuration(FeedAutoplayDelay),
			PrefetchRows:  v.GetInt(FeedPrefetchRows),
			MaxPasses:     v.GetInt(FeedMaxPasses),
		},
		Player: v.GetString(PlayerBinary),
		Image:  v.GetString(ImageBinary),
		Analytics: Analytics{
			Enabled:  v.GetBool(AnalyticsEnabled),
			BaseURL:  v.GetString(AnalyticsBaseURL),
			APIKey:   v.GetString(AnalyticsAPIKey),
			RegionID: v.GetInt(AnalyticsRegionID),
		},
		Logs: log.Options{
			Write: v.GetBool(LogsWrite),
			Level: v.GetString(LogsLevel),
			JSON:  v.GetBool(LogsJSON),
			Dir:   v.GetString(LogsDir),
		},
	}
}

func defaultLogDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return filepath.Join(base, AppName, "logs")
}

func (c Config) Validate() error {
	if c.Album.ID == 0 && c.Album.SourceFile == "" {
		return errors.New("album.id or album.source_file is required")
	}
	if c.Album.SourceFile == "" {
		if c.Album.BaseURL == "" {
			return errors.New("album.base_url is required")
		}
		if strings.HasSuffix(c.Album.BaseURL, "/") {
			return fmt.Errorf("album.base_url must not end with '/': %s", c.Album.BaseURL)
		}
	}
	if c.Album.PerPage < 1 || c.Album.PerPage > 100 {
		return fmt.Errorf("album.per_page must be between 1 and 100: %d", c.Album.PerPage)
	}
	if c.Album.Pages < 1 {
		return fmt.Errorf("album.pages must be at least 1: %d", c.Album.Pages)
	}
	if c.Feed.CellHeight <= 0 {
		return fmt.Errorf("feed.cell_height must be positive: %d", c.Feed.CellHeight)
	}
	if c.Feed.CellPadding < 0 {
		return fmt.Errorf("feed.cell_padding must not be negative: %d", c.Feed.CellPadding)
	}
	for key, alpha := range map[string]float64{FeedFocusedAlpha: c.Feed.FocusedAlpha, FeedDormantAlpha: c.Feed.DormantAlpha} {
		if alpha < 0 || alpha > 1 {
			return fmt.Errorf("%s must be between 0 and 1: %v", key, alpha)
		}
	}
	if c.Feed.Crossfade < 0 || c.Feed.AutoplayDelay < 0 {
		return errors.New("feed durations must not be negative")
	}
	if c.Feed.PrefetchRows < 0 || c.Feed.MaxPasses < 0 {
		return errors.New("feed.prefetch_rows and feed.max_passes must not be negative")
	}
	if c.Analytics.Enabled && c.Analytics.BaseURL == "" {
		return errors.New("analytics.base_url is required when analytics is enabled")
	}
	if _, err := logrus.ParseLevel(c.Logs.Level); err != nil {
		return fmt.Errorf("logs.level: %w", err)
	}
	return nil
}

// FeedConfig converts the feed section to the grid's settings.
func (c Config) FeedConfig() feed.Config {
	cfg := feed.DefaultConfig()
	cfg.EnableVideo = c.Feed.EnableVideo
	cfg.StartMuted = c.Feed.StartMuted
	cfg.FocusedAlpha = c.Feed.FocusedAlpha
	cfg.DormantAlpha = c.Feed.DormantAlpha
	cfg.Crossfade = c.Feed.Crossfade
	cfg.AutoplayDelay = c.Feed.AutoplayDelay
	cfg.PrefetchRows = c.Feed.PrefetchRows
	cfg.Growth = feed.GrowthPolicy{MaxPasses: c.Feed.MaxPasses}
	return cfg
}
