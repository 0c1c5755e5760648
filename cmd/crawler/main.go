package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thesmileydroid/wikigraph/internal/config"
	"github.com/thesmileydroid/wikigraph/internal/crawler"
	"github.com/thesmileydroid/wikigraph/internal/metrics"
	"github.com/thesmileydroid/wikigraph/internal/storage"
	"github.com/thesmileydroid/wikigraph/internal/version"
	"github.com/thesmileydroid/wikigraph/internal/wiki"
)

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("wikigraph crawler v%s starting...", version.Version)

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.SeedTitles) == 0 {
		logrus.Fatal("No seed_titles configured, nothing to crawl")
	}

	logrus.Infof("Configuration loaded: seeds=%d, depth=%d, source=%s, lang=%s",
		len(cfg.SeedTitles), cfg.MaxDepth, cfg.PageSource, cfg.WikiLanguage)

	// Cancel the crawl on SIGINT/SIGTERM; the run loop checks between fetches
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize graph store
	store, err := storage.NewClient(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		logrus.Fatalf("Failed to create graph store client: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		logrus.Fatalf("Graph store not reachable: %v", err)
	}

	if err := store.EnsureConstraints(ctx); err != nil {
		logrus.Fatalf("Failed to ensure constraints: %v", err)
	}

	logrus.Infof("Graph store ready: %s", cfg.Neo4jURI)

	// Select page source
	var source wiki.Source
	if cfg.PageSource == "scrape" {
		source = wiki.NewScrapeSource(cfg.WikiLanguage, cfg.WikiUserAgent)
	} else {
		source = wiki.NewAPISource(cfg.WikiLanguage, cfg.WikiUserAgent)
	}

	tracker := metrics.NewTracker()
	c := crawler.New(source, store, time.Duration(cfg.FetchDelayMs)*time.Millisecond, tracker)

	// Start progress logger
	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	// Run the crawl
	runErr := c.Run(ctx, cfg.SeedTitles, cfg.MaxDepth)
	close(stopProgress)

	terminationReason := "frontier_empty"
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			terminationReason = "signal"
			logrus.Warn("Crawl interrupted by signal")
		} else {
			terminationReason = "error"
			logrus.Errorf("Crawl failed: %v", runErr)
		}
	}

	logrus.Info("Final stats: " + tracker.LogProgress())

	if err := tracker.WriteToFile(cfg.MetricsPath, terminationReason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	if terminationReason == "error" {
		os.Exit(1)
	}
}
