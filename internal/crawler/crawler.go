package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thesmileydroid/wikigraph/internal/metrics"
	"github.com/thesmileydroid/wikigraph/internal/wiki"
)

const (
	// summaryMaxLen caps stored page summaries, in runes
	summaryMaxLen = 500

	// pendingResumeDepth is the depth assigned to pages found in the
	// store without a URL when a crawl resumes. They were discovered in
	// an earlier run and need a fetch now, regardless of how deep they
	// originally sat.
	pendingResumeDepth = 2
)

// GraphWriter is the store surface the crawler writes through. All merges
// are idempotent upserts keyed on title.
type GraphWriter interface {
	MergePage(ctx context.Context, title, summary, url string) error
	MergeLink(ctx context.Context, sourceTitle, targetTitle string) error
	MergeAlias(ctx context.Context, sourceTitle, targetTitle string) error
	ResolvedTitles(ctx context.Context) ([]string, error)
	PendingTitles(ctx context.Context) ([]string, error)
}

// Crawler drives a breadth-first traversal over a page source, writing
// merged pages, links and aliases into the graph store. Strictly
// sequential: one fetch-then-write cycle at a time, paced by a fixed
// delay between fetches.
type Crawler struct {
	source  wiki.Source
	store   GraphWriter
	delay   time.Duration
	tracker *metrics.Tracker
}

// New creates a crawler. tracker may be nil when no metrics are wanted.
func New(source wiki.Source, store GraphWriter, delay time.Duration, tracker *metrics.Tracker) *Crawler {
	if tracker == nil {
		tracker = metrics.NewTracker()
	}
	return &Crawler{
		source:  source,
		store:   store,
		delay:   delay,
		tracker: tracker,
	}
}

// Tracker exposes the crawl metrics tracker
func (c *Crawler) Tracker() *metrics.Tracker {
	return c.tracker
}

// Run crawls from the seed titles down to maxDepth. Safe to re-run:
// resolved pages in the store seed the visited set and pending pages
// rejoin the frontier, so an interrupted crawl picks up where it left
// off without re-fetching anything. Individual fetch or merge failures
// are logged and skipped; only context cancellation or a failed resume
// query ends a run early.
func (c *Crawler) Run(ctx context.Context, seedTitles []string, maxDepth int) error {
	frontier := NewFrontier()
	for _, title := range seedTitles {
		frontier.Enqueue(title, 0)
	}

	if err := c.resume(ctx, frontier); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, ok := frontier.Pop()
		if !ok {
			break
		}

		if frontier.Visited(entry.Title) || entry.Depth > maxDepth {
			continue
		}

		page, err := c.source.Fetch(ctx, entry.Title)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, wiki.ErrPageMissing) {
				logrus.Warnf("Page %q not found, skipping", entry.Title)
			} else {
				logrus.Warnf("Fetch failed for %q, skipping: %v", entry.Title, err)
			}
			c.tracker.IncrementPagesFailed()
			continue
		}

		// The canonical title is the dedup key, so a redirect chain
		// resolving to an already-crawled page is not fetched again.
		frontier.MarkVisited(page.Title)

		logrus.Infof("Processing %q at depth %d (%d links)", page.Title, entry.Depth, len(page.Links))
		c.persist(ctx, entry.Title, page, entry.Depth, frontier)
		c.tracker.IncrementPagesFetched()

		if err := c.pause(ctx); err != nil {
			return err
		}
	}

	logrus.Infof("Crawl complete: %d pages visited", frontier.VisitedCount())
	return nil
}

// resume seeds the visited set from resolved pages and re-enqueues
// pending pages left behind by an earlier run
func (c *Crawler) resume(ctx context.Context, frontier *Frontier) error {
	resolved, err := c.store.ResolvedTitles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load resolved titles: %w", err)
	}
	for _, title := range resolved {
		frontier.MarkVisited(title)
	}
	logrus.Infof("Resume: %d resolved pages already visited", len(resolved))

	pending, err := c.store.PendingTitles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending titles: %w", err)
	}
	for _, title := range pending {
		frontier.Enqueue(title, pendingResumeDepth)
	}
	logrus.Infof("Resume: %d pending pages re-queued", len(pending))

	return nil
}

// persist merges the fetched page, its alias when the requested title
// differs from the canonical one, and a link edge per outgoing link.
// Store failures are logged and skipped so a single bad write never
// aborts the run.
func (c *Crawler) persist(ctx context.Context, requestedTitle string, page *wiki.Page, depth int, frontier *Frontier) {
	summary := truncateSummary(page.Summary, summaryMaxLen)

	if err := c.store.MergePage(ctx, page.Title, summary, page.URL); err != nil {
		logrus.Errorf("Failed to merge page %q: %v", page.Title, err)
		return
	}

	if requestedTitle != page.Title {
		// Keep the requested surface form resolvable: merge a node
		// for it and an alias edge to the canonical page.
		if err := c.store.MergePage(ctx, requestedTitle, summary, page.URL); err != nil {
			logrus.Errorf("Failed to merge alias page %q: %v", requestedTitle, err)
		} else if err := c.store.MergeAlias(ctx, requestedTitle, page.Title); err != nil {
			logrus.Errorf("Failed to merge alias edge %q -> %q: %v", requestedTitle, page.Title, err)
		} else {
			c.tracker.IncrementAliasesMerged()
		}
	}

	for _, link := range page.Links {
		if !frontier.Visited(link) {
			frontier.Enqueue(link, depth+1)
			c.tracker.IncrementPagesDiscovered()
		}

		// The edge is merged regardless of frontier admission: link
		// structure is recorded even past the depth bound.
		if err := c.store.MergeLink(ctx, page.Title, link); err != nil {
			logrus.Errorf("Failed to merge link %q -> %q: %v", page.Title, link, err)
			continue
		}
		c.tracker.IncrementLinksMerged()
	}
}

// pause applies the inter-fetch delay, respecting cancellation
func (c *Crawler) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// truncateSummary caps a summary at maxRunes without splitting a rune
func truncateSummary(summary string, maxRunes int) string {
	runes := []rune(summary)
	if len(runes) <= maxRunes {
		return summary
	}
	return string(runes[:maxRunes])
}
