package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all runtime configuration parameters
type Config struct {
	Neo4jURI      string   `json:"neo4j_uri"`
	Neo4jUser     string   `json:"neo4j_user"`
	Neo4jPassword string   `json:"neo4j_password"`
	WikiLanguage  string   `json:"wiki_language"`
	WikiUserAgent string   `json:"wiki_user_agent"`
	PageSource    string   `json:"page_source"`
	SeedTitles    []string `json:"seed_titles"`
	MaxDepth      int      `json:"max_depth"`
	FetchDelayMs  int      `json:"fetch_delay_ms"`
	ListenAddr    string   `json:"listen_addr"`
	MetricsPath   string   `json:"metrics_path"`
}

// LoadConfig reads and validates configuration from a JSON file.
// Store endpoint and credentials may be overridden via the NEO4J_URI,
// NEO4J_USER and NEO4J_PASSWORD environment variables so deployments
// never need credentials on disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides replaces store connection settings with environment values
func applyEnvOverrides(cfg *Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4jURI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Neo4jUser = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Neo4jPassword = password
	}
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.Neo4jURI == "" {
		cfg.Neo4jURI = "bolt://localhost:7687"
	}
	if cfg.Neo4jUser == "" {
		cfg.Neo4jUser = "neo4j"
	}
	if cfg.WikiLanguage == "" {
		cfg.WikiLanguage = "en"
	}
	if cfg.WikiUserAgent == "" {
		cfg.WikiUserAgent = "wikigraph/0.3.0 (https://github.com/thesmileydroid/wikigraph)"
	}
	if cfg.PageSource == "" {
		cfg.PageSource = "api"
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 2
	}
	if cfg.FetchDelayMs == 0 {
		cfg.FetchDelayMs = 1000
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.log"
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.Neo4jPassword == "" {
		return fmt.Errorf("neo4j_password is required (config or NEO4J_PASSWORD)")
	}
	if cfg.PageSource != "api" && cfg.PageSource != "scrape" {
		return fmt.Errorf("page_source must be \"api\" or \"scrape\"")
	}
	if cfg.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be >= 1")
	}
	if cfg.FetchDelayMs < 100 {
		return fmt.Errorf("fetch_delay_ms must be >= 100")
	}
	return nil
}
