package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
)

// ScrapeSource fetches pages by rendering article HTML and harvesting only
// the links that appear inside body paragraphs. Used when the structured
// API is unavailable; link sets are narrower than the API's by design of
// the markup, not a bug.
type ScrapeSource struct {
	BaseURL   string
	UserAgent string
}

// NewScrapeSource creates a scraping source for the given wiki language
func NewScrapeSource(language, userAgent string) *ScrapeSource {
	return &ScrapeSource{
		BaseURL:   fmt.Sprintf("https://%s.wikipedia.org", language),
		UserAgent: userAgent,
	}
}

// Fetch renders the article page and extracts title, summary, canonical
// URL and body-paragraph links
func (s *ScrapeSource) Fetch(ctx context.Context, title string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := &Page{}
	seen := make(map[string]bool)
	var missing bool
	var fetchErr error

	collector := colly.NewCollector(colly.UserAgent(s.UserAgent))

	collector.OnHTML("h1#firstHeading", func(e *colly.HTMLElement) {
		page.Title = strings.TrimSpace(e.Text)
	})

	collector.OnHTML("link[rel=canonical]", func(e *colly.HTMLElement) {
		page.URL = e.Attr("href")
	})

	collector.OnHTML("div.mw-parser-output > p", func(e *colly.HTMLElement) {
		if page.Summary != "" {
			return
		}
		text := strings.TrimSpace(e.Text)
		if text != "" {
			page.Summary = text
		}
	})

	collector.OnHTML("div.mw-parser-output p a[href]", func(e *colly.HTMLElement) {
		linkTitle, ok := articleTitle(e.Attr("href"))
		if !ok || seen[linkTitle] {
			return
		}
		seen[linkTitle] = true
		page.Links = append(page.Links, linkTitle)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode == http.StatusNotFound {
			missing = true
			return
		}
		fetchErr = err
	})

	if err := collector.Visit(s.pageURL(title)); err != nil && fetchErr == nil && !missing {
		fetchErr = err
	}
	collector.Wait()

	if missing {
		return nil, fmt.Errorf("%q: %w", title, ErrPageMissing)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to scrape %q: %w", title, fetchErr)
	}
	if page.Title == "" {
		return nil, fmt.Errorf("%q: %w", title, ErrPageMissing)
	}
	if page.URL == "" {
		page.URL = s.pageURL(title)
	}

	return page, nil
}

func (s *ScrapeSource) pageURL(title string) string {
	slug := strings.ReplaceAll(title, " ", "_")
	return s.BaseURL + "/wiki/" + url.PathEscape(slug)
}

// articleTitle converts a /wiki/ href into an article title, rejecting
// fragments, namespaced pages and anything outside article space
func articleTitle(href string) (string, bool) {
	if !strings.HasPrefix(href, "/wiki/") {
		return "", false
	}
	slug := strings.TrimPrefix(href, "/wiki/")
	if slug == "" || strings.Contains(slug, ":") || strings.Contains(slug, "#") {
		return "", false
	}
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		return "", false
	}
	return strings.ReplaceAll(decoded, "_", " "), true
}
