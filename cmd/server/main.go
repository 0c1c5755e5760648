package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/thesmileydroid/wikigraph/internal/api"
	"github.com/thesmileydroid/wikigraph/internal/config"
	"github.com/thesmileydroid/wikigraph/internal/storage"
	"github.com/thesmileydroid/wikigraph/internal/version"
)

func main() {
	// Configure logging
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logrus.Infof("wikigraph server v%s starting...", version.Version)

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to the graph store. A failed verification is logged but not
	// fatal: the server still comes up and reports store status via
	// /api/health, answering data requests with 503 until it recovers.
	ctx := context.Background()
	store, err := storage.NewClient(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		logrus.Fatalf("Failed to create graph store client: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		logrus.Warnf("Graph store not reachable at startup: %v", err)
	} else {
		logrus.Infof("Graph store ready: %s", cfg.Neo4jURI)
	}

	router := api.NewRouter(store)

	logrus.Infof("Listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
