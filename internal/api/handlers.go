package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/thesmileydroid/wikigraph/internal/storage"
	"github.com/thesmileydroid/wikigraph/internal/version"
	"github.com/thesmileydroid/wikigraph/internal/viz"
)

const (
	defaultGraphLimit = 100
	defaultRankLimit  = 10
	maxRankLimit      = 100
)

// Store is the read surface the handlers query
type Store interface {
	Ping(ctx context.Context) error
	SearchPages(ctx context.Context, query string) ([]storage.SearchHit, error)
	PageDetail(ctx context.Context, title string) (*storage.Page, error)
	Neighborhood(ctx context.Context, title string, outgoingBudget, incomingBudget int) (*storage.Neighborhood, error)
	ShortestPath(ctx context.Context, from, to string, directed bool) ([]storage.PageRef, error)
	MostReferenced(ctx context.Context, n int) ([]storage.RankedPage, error)
	TopHubs(ctx context.Context, n int) ([]storage.RankedPage, error)
	MutualLinks(ctx context.Context, n int) ([]storage.PagePair, error)
	Triangles(ctx context.Context, n int) ([]storage.Triangle, error)
	ExpandNeighborhood(ctx context.Context, title string, hops, n int) ([]storage.PageRef, error)
	ReadQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// abortWithError maps the storage error taxonomy onto HTTP statuses
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "graph store unavailable"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrUnsafeQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logrus.Errorf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// HealthCheck reports liveness and store connectivity. Always 200 so the
// process can report health even with the store down.
func HealthCheck(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeStatus := "up"
		if err := store.Ping(c.Request.Context()); err != nil {
			storeStatus = "down"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version.Version,
			"store":   storeStatus,
		})
	}
}

// SearchPages handles GET /api/search?q=
func SearchPages(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: q"})
			return
		}

		hits, err := store.SearchPages(c.Request.Context(), query)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if hits == nil {
			hits = []storage.SearchHit{}
		}
		c.JSON(http.StatusOK, hits)
	}
}

// PageDetail handles GET /api/pages/:title
func PageDetail(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("title")
		page, err := store.PageDetail(c.Request.Context(), title)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GraphData handles GET /api/graph?page=&limit= and returns a bounded
// visualization graph around the page
func GraphData(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := c.Query("page")
		if page == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: page"})
			return
		}

		limit, ok := intQuery(c, "limit", defaultGraphLimit)
		if !ok {
			return
		}
		limit = viz.ClampLimit(limit)
		outgoingBudget, incomingBudget := viz.Budgets(limit)

		neighborhood, err := store.Neighborhood(c.Request.Context(), page, outgoingBudget, incomingBudget)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, viz.Assemble(neighborhood, limit))
	}
}

// ShortestPath handles GET /api/path?from=&to=&directed=
func ShortestPath(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")
		if from == "" || to == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: from, to"})
			return
		}

		directed := true
		if raw := c.Query("directed"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameter: directed"})
				return
			}
			directed = parsed
		}

		steps, err := store.ShortestPath(c.Request.Context(), from, to, directed)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, viz.AssemblePath(steps))
	}
}

// MostReferenced handles GET /api/analytics/most-referenced?n=
func MostReferenced(store Store) gin.HandlerFunc {
	return rankingHandler(func(c *gin.Context, n int) (any, error) {
		return store.MostReferenced(c.Request.Context(), n)
	})
}

// TopHubs handles GET /api/analytics/hubs?n=
func TopHubs(store Store) gin.HandlerFunc {
	return rankingHandler(func(c *gin.Context, n int) (any, error) {
		return store.TopHubs(c.Request.Context(), n)
	})
}

// MutualLinks handles GET /api/analytics/mutual?n=
func MutualLinks(store Store) gin.HandlerFunc {
	return rankingHandler(func(c *gin.Context, n int) (any, error) {
		return store.MutualLinks(c.Request.Context(), n)
	})
}

// Triangles handles GET /api/analytics/triangles?n=
func Triangles(store Store) gin.HandlerFunc {
	return rankingHandler(func(c *gin.Context, n int) (any, error) {
		return store.Triangles(c.Request.Context(), n)
	})
}

func rankingHandler(run func(c *gin.Context, n int) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, ok := intQuery(c, "n", defaultRankLimit)
		if !ok {
			return
		}
		if n < 1 {
			n = 1
		}
		if n > maxRankLimit {
			n = maxRankLimit
		}

		result, err := run(c, n)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ExpandNeighborhood handles GET /api/neighborhood?page=&hops=&n=
func ExpandNeighborhood(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := c.Query("page")
		if page == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: page"})
			return
		}

		hops, ok := intQuery(c, "hops", 1)
		if !ok {
			return
		}
		n, ok := intQuery(c, "n", defaultGraphLimit)
		if !ok {
			return
		}
		if n < 1 {
			n = 1
		}
		if n > viz.MaxLimit {
			n = viz.MaxLimit
		}

		pages, err := store.ExpandNeighborhood(c.Request.Context(), page, hops, n)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if pages == nil {
			pages = []storage.PageRef{}
		}
		c.JSON(http.StatusOK, pages)
	}
}

type readQueryRequest struct {
	Query string `json:"query"`
}

// ReadQuery handles POST /api/query, the guarded read-only pass-through
func ReadQuery(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req readQueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field: query"})
			return
		}

		rows, err := store.ReadQuery(c.Request.Context(), req.Query)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		c.JSON(http.StatusOK, rows)
	}
}

// intQuery parses an optional integer query parameter, responding 400 on
// malformed input
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameter: " + name})
		return 0, false
	}
	return value, true
}
