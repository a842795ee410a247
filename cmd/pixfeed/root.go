package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/glabrego/pixfeed-cli/internal/album"
	"github.com/glabrego/pixfeed-cli/internal/analytics"
	"github.com/glabrego/pixfeed-cli/internal/app"
	"github.com/glabrego/pixfeed-cli/internal/config"
	"github.com/glabrego/pixfeed-cli/internal/loader"
	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/tui"
	"github.com/glabrego/pixfeed-cli/internal/video"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a TOML config file")
	rootCmd.Flags().Int64P("album", "a", 0, "Album id to show")
	rootCmd.Flags().String("source-file", "", "Read photos from a local JSON manifest instead of the album API")
	rootCmd.Flags().Bool("no-video", false, "Never start video playback")
	rootCmd.Flags().Bool("unmuted", false, "Start videos with sound")
	rootCmd.Flags().Int("max-passes", 0, "Stop repeating the album after this many passes (0 repeats forever)")
	rootCmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	lo.Must0(rootCmd.MarkFlagFilename("source-file", "json"))
}

var rootCmd = &cobra.Command{
	Use:           config.AppName,
	Short:         "Browse a photo and video album as an autoplaying two-column feed",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func run(cmd *cobra.Command, _ []string) error {
	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if lo.Must(cmd.Flags().GetBool("no-video")) {
		cfg.Feed.EnableVideo = false
	}
	if lo.Must(cmd.Flags().GetBool("unmuted")) {
		cfg.Feed.StartMuted = false
	}

	if err := log.Setup(fs, cfg.Logs); err != nil {
		return fmt.Errorf("setup logs: %w", err)
	}
	defer log.Close()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	videos := &video.MPVOpener{Binary: cfg.Player}
	defer shutdownPlayers(videos)

	client := album.NewClient(cfg.Album.BaseURL, cfg.Album.APIKey, httpClient)
	service := app.NewService(client, fs, app.Source{
		AlbumID: cfg.Album.ID,
		Pages:   cfg.Album.Pages,
		PerPage: cfg.Album.PerPage,
		File:    cfg.Album.SourceFile,
	})

	opts := tui.Options{
		Title:       title(cfg),
		Feed:        cfg.FeedConfig(),
		CellHeight:  cfg.Feed.CellHeight,
		CellPadding: cfg.Feed.CellPadding,
		Images:      loader.NewChafaLoader(cfg.Image, httpClient),
		Videos:      videos,
	}
	if cfg.Analytics.Enabled {
		uid, err := analytics.DeviceID(fs, deviceIDPath())
		if err != nil {
			log.Warnf("device id: %v", err)
		}
		opts.Tracker = analytics.NewClient(cfg.Analytics.BaseURL, cfg.Analytics.APIKey, httpClient)
		opts.RegionID = cfg.Analytics.RegionID
		opts.DeviceID = uid
	}

	log.WithField("album", cfg.Album.ID).Info("starting feed")
	program := tea.NewProgram(tui.NewModel(service, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// shutdownPlayers stops every video player before the process exits.
func shutdownPlayers(videos *video.MPVOpener) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := videos.Shutdown(ctx); err != nil {
		log.Warnf("stop players: %v", err)
	}
}

func title(cfg config.Config) string {
	if cfg.Album.SourceFile != "" {
		return "Pixfeed · " + filepath.Base(cfg.Album.SourceFile)
	}
	return fmt.Sprintf("Pixfeed · album %d", cfg.Album.ID)
}

func deviceIDPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, config.AppName, "device_id")
}
