package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Error taxonomy surfaced to callers. Handlers map these to HTTP statuses,
// the crawler treats none of them as fatal.
var (
	// ErrNotFound indicates the requested entity is absent from the store
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the store connection is down
	ErrUnavailable = errors.New("graph store unavailable")

	// ErrUnsafeQuery indicates a pass-through query was rejected before execution
	ErrUnsafeQuery = errors.New("query rejected: not read-only")
)

// Client wraps the Neo4j driver with an explicit lifecycle: construct at
// startup, one session per operation, Close at shutdown.
type Client struct {
	driver neo4j.DriverWithContext
}

// NewClient creates a graph store client. Connectivity is not verified
// here: a down store must not be startup-fatal, callers probe it with
// Ping when they need it.
func NewClient(uri, user, password string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return &Client{driver: driver}, nil
}

// Ping verifies the store is reachable. Called before request-time
// operations so a dead connection surfaces as ErrUnavailable, never as a
// process crash.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the underlying driver
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// EnsureConstraints establishes the title uniqueness constraint on Page
// nodes. Runs before any crawl; idempotent.
func (c *Client) EnsureConstraints(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Page) REQUIRE p.title IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("failed to create title constraint: %w", err)
	}
	return nil
}

// MergePage upserts a page node by title, setting summary and URL.
// Merging the same title twice yields one node.
func (c *Client) MergePage(ctx context.Context, title, summary, url string) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MERGE (p:Page {title: $title}) SET p.summary = $summary, p.url = $url",
		map[string]any{
			"title":   title,
			"summary": summary,
			"url":     url,
		})
	if err != nil {
		return fmt.Errorf("failed to merge page %q: %w", title, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to merge page %q: %w", title, err)
	}
	return nil
}

// MergeLink upserts a LINKS_TO edge from source to target, creating the
// target as a pending page (no URL) when it does not exist yet
func (c *Client) MergeLink(ctx context.Context, sourceTitle, targetTitle string) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Page {title: $source_title})
		MERGE (b:Page {title: $target_title})
		MERGE (a)-[:LINKS_TO]->(b)`,
		map[string]any{
			"source_title": sourceTitle,
			"target_title": targetTitle,
		})
	if err != nil {
		return fmt.Errorf("failed to merge link %q -> %q: %w", sourceTitle, targetTitle, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to merge link %q -> %q: %w", sourceTitle, targetTitle, err)
	}
	return nil
}

// MergeAlias upserts an ALIAS edge from a requested title to the canonical
// title it resolved to. ALIAS edges are not traversed by link queries.
func (c *Client) MergeAlias(ctx context.Context, sourceTitle, targetTitle string) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Page {title: $source_title})
		MERGE (b:Page {title: $target_title})
		MERGE (a)-[:ALIAS]->(b)`,
		map[string]any{
			"source_title": sourceTitle,
			"target_title": targetTitle,
		})
	if err != nil {
		return fmt.Errorf("failed to merge alias %q -> %q: %w", sourceTitle, targetTitle, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to merge alias %q -> %q: %w", sourceTitle, targetTitle, err)
	}
	return nil
}

// ResolvedTitles returns the titles of all pages already fetched (URL set).
// Used to seed the crawler's visited set when resuming.
func (c *Client) ResolvedTitles(ctx context.Context) ([]string, error) {
	return c.titlesWhere(ctx, "n.url IS NOT NULL")
}

// PendingTitles returns the titles of pages discovered via links but never
// fetched (URL unset). Used to re-seed the crawl frontier when resuming.
func (c *Client) PendingTitles(ctx context.Context) ([]string, error) {
	return c.titlesWhere(ctx, "n.url IS NULL")
}

func (c *Client) titlesWhere(ctx context.Context, condition string) ([]string, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH (n:Page) WHERE "+condition+" RETURN n.title AS title", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query page titles: %w", err)
	}

	var titles []string
	for result.Next(ctx) {
		titles = append(titles, recordString(result.Record(), "title"))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read page titles: %w", err)
	}
	return titles, nil
}

// recordString extracts a string value from a record, tolerating missing
// or null fields
func recordString(record *neo4j.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

// recordInt extracts an integer value from a record
func recordInt(record *neo4j.Record, key string) int64 {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return 0
	}
	n, _ := value.(int64)
	return n
}
