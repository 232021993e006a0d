package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concerto/internal/links"
	"concerto/internal/resolve"
	"concerto/internal/songlinks"
)

// LinkResponse is the wire shape of a link record. URL fields are pointers
// so a missing link serializes as null; the client disables the matching
// control on null.
type LinkResponse struct {
	SpotifyURL    *string      `json:"spotifyUrl"`
	AppleMusicURL *string      `json:"appleMusicUrl"`
	LyricsURL     *string      `json:"lyricsUrl"`
	FetchedAt     time.Time    `json:"fetchedAt"`
	Status        links.Status `json:"status"`
}

// SongLinksHandler serves the link resolution façade over HTTP.
type SongLinksHandler struct {
	service *songlinks.Service
}

// NewSongLinksHandler creates a new song links handler.
func NewSongLinksHandler(service *songlinks.Service) *SongLinksHandler {
	return &SongLinksHandler{service: service}
}

// GetLinks handles GET /api/v1/links?artist=...&title=...
func (h *SongLinksHandler) GetLinks(c *gin.Context) {
	artist := c.Query("artist")
	title := c.Query("title")

	record, err := h.service.GetLinksFor(c.Request.Context(), artist, title)
	if err != nil {
		if errors.Is(err, resolve.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing artist or title"})
			return
		}
		slog.Error("Failed to resolve links", "artist", artist, "title", title, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Song resolution failed"})
		return
	}

	// Link availability is a moving target; the UI re-asks us, we own the cache.
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, toLinkResponse(record))
}

// GetCacheStats handles GET /api/v1/admin/cache
func (h *SongLinksHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

func toLinkResponse(record *links.Record) LinkResponse {
	return LinkResponse{
		SpotifyURL:    nullable(record.SpotifyURL),
		AppleMusicURL: nullable(record.AppleMusicURL),
		LyricsURL:     nullable(record.LyricsURL),
		FetchedAt:     record.FetchedAt,
		Status:        record.Status,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
