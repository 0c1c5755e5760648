// Package wiki provides page sources for the crawler: a structured
// MediaWiki API client and an HTML-scraping fallback. Both resolve a
// requested title to the canonical page and its outgoing links.
package wiki

import (
	"context"
	"errors"
)

// ErrPageMissing signals that a requested title does not exist.
// The crawler logs and skips these, it never aborts a run on them.
var ErrPageMissing = errors.New("page does not exist")

// Page is the result of fetching one encyclopedia article
type Page struct {
	// Title is the canonical title the source resolved the request to,
	// which may differ from the requested title (redirects, case variants)
	Title string

	// Summary is the plain-text intro extract
	Summary string

	// URL is the canonical page URL
	URL string

	// Links are the outgoing link titles. Completeness varies by source:
	// the scraping source only harvests links inside body paragraphs.
	Links []string
}

// Source fetches pages by title
type Source interface {
	Fetch(ctx context.Context, title string) (*Page, error)
}
