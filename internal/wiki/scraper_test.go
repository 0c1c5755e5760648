package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><link rel="canonical" href="https://en.wikipedia.org/wiki/Graph_database"/></head>
<body>
<h1 id="firstHeading">Graph database</h1>
<div class="mw-parser-output">
	<p>A <b>graph database</b> uses <a href="/wiki/Graph_theory">graph structures</a>
	and relates to <a href="/wiki/NoSQL">NoSQL</a> stores.</p>
	<p>See also <a href="/wiki/Neo4j">Neo4j</a>,
	<a href="/wiki/Category:Databases">categories</a> and
	<a href="/wiki/Graph_theory#History">fragments</a>.</p>
	<ul><li><a href="/wiki/Sidebar_Link">sidebar link outside paragraphs</a></li></ul>
</div>
<div class="navbox"><p><a href="/wiki/Elsewhere">outside parser output</a></p></div>
</body>
</html>`

func newScrapeSourceForTest(t *testing.T, handler http.Handler) *ScrapeSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &ScrapeSource{
		BaseURL:   server.URL,
		UserAgent: "wikigraph-test",
	}
}

func TestScrapeSource_HarvestsParagraphLinksOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/Graph_database", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	})
	source := newScrapeSourceForTest(t, mux)

	page, err := source.Fetch(context.Background(), "Graph database")
	require.NoError(t, err)

	assert.Equal(t, "Graph database", page.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Graph_database", page.URL)
	assert.Contains(t, page.Summary, "graph database")

	// Links only from body paragraphs, article namespace, no fragments.
	assert.Equal(t, []string{"Graph theory", "NoSQL", "Neo4j"}, page.Links)
}

func TestScrapeSource_MissingPage(t *testing.T) {
	source := newScrapeSourceForTest(t, http.NotFoundHandler())

	_, err := source.Fetch(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestScrapeSource_CancelledContext(t *testing.T) {
	source := newScrapeSourceForTest(t, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Fetch(ctx, "Anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArticleTitle(t *testing.T) {
	cases := []struct {
		href  string
		title string
		ok    bool
	}{
		{"/wiki/Graph_theory", "Graph theory", true},
		{"/wiki/Neo4j", "Neo4j", true},
		{"/wiki/Category:Databases", "", false},
		{"/wiki/Graph_theory#History", "", false},
		{"/wiki/", "", false},
		{"https://example.com/wiki/X", "", false},
		{"/w/index.php?title=X", "", false},
	}

	for _, tc := range cases {
		title, ok := articleTitle(tc.href)
		assert.Equal(t, tc.ok, ok, tc.href)
		assert.Equal(t, tc.title, title, tc.href)
	}
}
