package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thesmileydroid/wikigraph/internal/storage"
)

// NewRouter builds the API router: health, search, graph, path, analytics
// and the guarded pass-through, all read-only over the store
func NewRouter(store Store) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	group := router.Group("/api")
	group.GET("/health", HealthCheck(store))

	data := group.Group("")
	data.Use(requireStore(store))
	data.GET("/search", SearchPages(store))
	data.GET("/pages/:title", PageDetail(store))
	data.GET("/graph", GraphData(store))
	data.GET("/path", ShortestPath(store))
	data.GET("/neighborhood", ExpandNeighborhood(store))
	data.GET("/analytics/most-referenced", MostReferenced(store))
	data.GET("/analytics/hubs", TopHubs(store))
	data.GET("/analytics/mutual", MutualLinks(store))
	data.GET("/analytics/triangles", Triangles(store))
	data.POST("/query", ReadQuery(store))

	return router
}

// requireStore rejects data requests with 503 when the store is down,
// before any query work happens
func requireStore(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": storage.ErrUnavailable.Error()})
			return
		}
		c.Next()
	}
}

// corsMiddleware allows any origin so the visualization frontend can be
// served from anywhere during development
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
