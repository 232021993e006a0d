package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concerto/internal/providers"
	"concerto/internal/songlinks"
)

// NewRouter wires all routes onto a gin engine.
func NewRouter(service *songlinks.Service, lyrics providers.LyricsService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", Health)

	songLinksHandler := NewSongLinksHandler(service)
	lyricsHandler := NewLyricsHandler(lyrics)

	api := router.Group("/api/v1")
	{
		api.GET("/links", songLinksHandler.GetLinks)
		api.GET("/lyrics", lyricsHandler.GetLyricsURL)
		api.GET("/admin/cache", songLinksHandler.GetCacheStats)
	}

	return router
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
