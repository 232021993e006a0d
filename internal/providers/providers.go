// Package providers holds the adapters for the external lookup services:
// catalog track search, cross-platform link resolution, and lyrics
// availability. Every adapter is independently fallible and independently
// timed out; callers decide what a failure degrades to.
package providers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"concerto/internal/normalize"
)

// ErrNoResult signals a well-formed "nothing found" from a provider. It is
// not an error condition in the operational sense and must not be logged as
// one.
var ErrNoResult = errors.New("provider returned no result")

// Default client timeout applied to every adapter unless configured
// otherwise. Individual calls are additionally bounded by the caller's
// context.
const DefaultTimeout = 6 * time.Second

// newRestyClient builds the HTTP client every adapter shares: a hard
// per-request timeout plus a short bounded retry for transient transport
// failures.
func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)
}

// TrackMatch is the outcome of a catalog search: one canonical track URL
// plus the catalog's own naming for match diagnostics.
type TrackMatch struct {
	Provider   string `json:"provider"`
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
	URL        string `json:"url"`
}

// PlatformLinks is the per-platform URL mapping produced by cross-platform
// resolution. A platform absent from the upstream response stays empty.
type PlatformLinks struct {
	SpotifyURL    string `json:"spotify_url,omitempty"`
	AppleMusicURL string `json:"apple_music_url,omitempty"`
}

// TrackSearchService finds one canonical track reference for an
// (artist, title) pair. Implementations return ErrNoResult when the catalog
// has no candidates, and *ProviderError for transport or API failures.
type TrackSearchService interface {
	ProviderName() string
	FindTrack(ctx context.Context, artist, title string) (*TrackMatch, error)
}

// LinkResolutionService translates one canonical track URL into equivalent
// URLs on other streaming platforms.
type LinkResolutionService interface {
	ResolveLinks(ctx context.Context, trackURL string) (*PlatformLinks, error)
}

// LyricsService checks whether lyrics exist for a song and, when they do,
// returns a search-engine URL pointing at them. It never fails: every
// transport error, timeout, or non-2xx degrades to "".
type LyricsService interface {
	LyricsURL(ctx context.Context, artist, title string) string
}

// ProviderError is a structured failure from one provider operation.
type ProviderError struct {
	Provider  string
	Operation string
	Message   string
	Err       error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " " + e.Operation + " failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// selectCandidate applies the shared best-match rule over a ranked candidate
// list: prefer the first candidate whose catalog artist contains the
// normalized query artist AND whose catalog track contains the normalized
// query title; otherwise fall back to the top-ranked candidate.
func selectCandidate[T any](candidates []T, artist, title string, fields func(T) (artistName, trackName string)) (T, bool) {
	var zero T
	if len(candidates) == 0 {
		return zero, false
	}

	wantArtist := normalize.Normalize(artist)
	wantTitle := normalize.Normalize(title)

	for _, c := range candidates {
		artistName, trackName := fields(c)
		if strings.Contains(normalize.Normalize(artistName), wantArtist) &&
			strings.Contains(normalize.Normalize(trackName), wantTitle) {
			return c, true
		}
	}

	return candidates[0], true
}

// escapeQuery percent-encodes a query value the way browsers do, with %20
// for spaces rather than +.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
