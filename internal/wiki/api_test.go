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

func newAPISourceForTest(t *testing.T, handler http.HandlerFunc) *APISource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &APISource{
		BaseURL:   server.URL,
		UserAgent: "wikigraph-test",
		Client:    server.Client(),
	}
}

func TestAPISource_FetchResolvedPage(t *testing.T) {
	source := newAPISourceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wikigraph-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Graph database", r.URL.Query().Get("titles"))
		fmt.Fprint(w, `{
			"query": {"pages": [{
				"title": "Graph database",
				"extract": "A graph database is a database.",
				"fullurl": "https://en.wikipedia.org/wiki/Graph_database",
				"links": [
					{"ns": 0, "title": "Neo4j"},
					{"ns": 0, "title": "NoSQL"},
					{"ns": 14, "title": "Category:Databases"}
				]
			}]}
		}`)
	})

	page, err := source.Fetch(context.Background(), "Graph database")
	require.NoError(t, err)

	assert.Equal(t, "Graph database", page.Title)
	assert.Equal(t, "A graph database is a database.", page.Summary)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Graph_database", page.URL)
	// Category link (ns 14) excluded from the article graph.
	assert.Equal(t, []string{"Neo4j", "NoSQL"}, page.Links)
}

func TestAPISource_MissingPage(t *testing.T) {
	source := newAPISourceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query": {"pages": [{"title": "Nope", "missing": true}]}}`)
	})

	_, err := source.Fetch(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrPageMissing)
}

func TestAPISource_LinkContinuation(t *testing.T) {
	source := newAPISourceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("plcontinue") == "" {
			fmt.Fprint(w, `{
				"continue": {"plcontinue": "1|0|NoSQL"},
				"query": {"pages": [{
					"title": "Graph database",
					"extract": "summary",
					"fullurl": "https://en.wikipedia.org/wiki/Graph_database",
					"links": [{"ns": 0, "title": "Neo4j"}]
				}]}
			}`)
			return
		}
		fmt.Fprint(w, `{
			"query": {"pages": [{
				"title": "Graph database",
				"links": [{"ns": 0, "title": "NoSQL"}, {"ns": 0, "title": "Neo4j"}]
			}]}
		}`)
	})

	page, err := source.Fetch(context.Background(), "Graph database")
	require.NoError(t, err)

	// Links from both batches, deduplicated, first batch metadata kept.
	assert.Equal(t, []string{"Neo4j", "NoSQL"}, page.Links)
	assert.Equal(t, "summary", page.Summary)
}

func TestAPISource_RedirectReturnsCanonicalTitle(t *testing.T) {
	source := newAPISourceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"query": {
				"redirects": [{"from": "graph database", "to": "Graph database"}],
				"pages": [{
					"title": "Graph database",
					"extract": "summary",
					"fullurl": "https://en.wikipedia.org/wiki/Graph_database"
				}]
			}
		}`)
	})

	page, err := source.Fetch(context.Background(), "graph database")
	require.NoError(t, err)
	assert.Equal(t, "Graph database", page.Title)
}

func TestAPISource_ServerError(t *testing.T) {
	source := newAPISourceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := source.Fetch(context.Background(), "Anything")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPageMissing)
}
