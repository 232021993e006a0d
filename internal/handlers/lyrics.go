package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"concerto/internal/providers"
)

// LyricsHandler serves the standalone lyrics existence probe. It answers
// with a search URL or null; it has no error state beyond a missing query.
type LyricsHandler struct {
	lyrics providers.LyricsService
}

// NewLyricsHandler creates a new lyrics handler.
func NewLyricsHandler(lyrics providers.LyricsService) *LyricsHandler {
	return &LyricsHandler{lyrics: lyrics}
}

// GetLyricsURL handles GET /api/v1/lyrics?artist=...&title=...
func (h *LyricsHandler) GetLyricsURL(c *gin.Context) {
	artist := strings.TrimSpace(c.Query("artist"))
	title := strings.TrimSpace(c.Query("title"))

	if artist == "" || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing artist or title"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"lyricsUrl": nullable(h.lyrics.LyricsURL(c.Request.Context(), artist, title)),
	})
}
