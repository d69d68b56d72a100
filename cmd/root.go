// Package cmd contains all CLI commands for headlines.
package cmd

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bryan-buckman/headlines/internal/config"
	"github.com/bryan-buckman/headlines/internal/database"
	"github.com/bryan-buckman/headlines/internal/logging"
	"github.com/bryan-buckman/headlines/internal/prefs"
	"github.com/bryan-buckman/headlines/internal/reader"
	"github.com/bryan-buckman/headlines/internal/rss"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *logrus.Logger
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Read one news feed and keep favorites",
	Long: `headlines follows a single RSS feed, lets you search its articles by
title, and keeps a local list of favorite articles.

Example usage:
  headlines serve                      # Start the HTTP API
  headlines fetch --query storm        # Print matching headlines
  headlines favorites list             # Show saved articles
  headlines prefs set app_language fr  # Switch notices to French`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./headlines.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger = logging.New(cfg.Log, verbose)
	logger.WithFields(logrus.Fields{
		"feed":     cfg.Feed.URL,
		"database": cfg.Database.Driver,
	}).Debug("Configuration loaded")
	return nil
}

// app bundles what a command needs to talk to the feed and the store.
type app struct {
	store  database.Store
	reader *reader.Reader
}

func openApp() (*app, error) {
	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	p, err := prefs.Load(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	ingestor := rss.NewIngestor(
		rss.WithHTTPClient(&http.Client{Timeout: cfg.Feed.Timeout}),
		rss.WithUserAgent(cfg.Feed.UserAgent),
		rss.WithLogger(logger),
	)
	return &app{
		store:  store,
		reader: reader.New(ingestor, store, p, cfg.Feed.URL, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
