package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	lyricsOvhAPIURL     = "https://api.lyrics.ovh/v1"
	googleSearchBaseURL = "https://www.google.com/search"
)

// lyricsOvhService implements LyricsService against lyrics.ovh. The API
// returns full lyrics text, but only the existence signal is used: when
// lyrics exist the adapter hands back a search-engine query URL, never the
// text itself.
type lyricsOvhService struct {
	client *resty.Client
}

type lyricsOvhResponse struct {
	Lyrics string `json:"lyrics"`
}

// NewLyricsOvhService creates a lyrics availability adapter backed by
// lyrics.ovh.
func NewLyricsOvhService(timeout time.Duration) LyricsService {
	return newLyricsOvhService(lyricsOvhAPIURL, timeout)
}

func newLyricsOvhService(baseURL string, timeout time.Duration) LyricsService {
	return &lyricsOvhService{client: newRestyClient(baseURL, timeout)}
}

// LyricsURL probes for lyrics existence. Every failure mode (timeout,
// network error, non-2xx, empty payload) degrades to "": lyric links are
// strictly best-effort and must never block resolution.
func (s *lyricsOvhService) LyricsURL(ctx context.Context, artist, title string) string {
	var result lyricsOvhResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/%s/%s", url.PathEscape(artist), url.PathEscape(title)))

	if err != nil {
		slog.Debug("lyrics lookup failed", "artist", artist, "title", title, "error", err)
		return ""
	}

	if resp.StatusCode() != http.StatusOK || result.Lyrics == "" {
		return ""
	}

	return GoogleLyricsSearchURL(artist, title)
}

// GoogleLyricsSearchURL builds the search-engine URL handed to the UI when
// lyrics exist for a song.
func GoogleLyricsSearchURL(artist, title string) string {
	return googleSearchBaseURL + "?q=" + escapeQuery(title+" "+artist+" lyrics")
}
