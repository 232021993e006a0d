// Package resolve sequences the provider adapters into one link
// resolution: catalog search first, then cross-platform resolution and the
// lyrics probe in parallel, merged under a soft deadline.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"concerto/internal/links"
	"concerto/internal/providers"
)

// ErrEmptyQuery is the only error Resolve raises: the caller violated the
// contract by supplying neither artist nor title.
var ErrEmptyQuery = errors.New("artist and title are both empty")

// DefaultCeiling bounds steps after the catalog search. Waiting stops when
// it fires; partial results beat blocking the caller.
const DefaultCeiling = 8 * time.Second

// Resolver orchestrates the provider adapters into one Record per song.
// Adapter failures never escape: each degrades to an empty field.
type Resolver struct {
	search  providers.TrackSearchService
	links   providers.LinkResolutionService
	lyrics  providers.LyricsService
	ceiling time.Duration
}

// NewResolver creates a resolver over the three provider capabilities.
// ceiling <= 0 selects DefaultCeiling.
func NewResolver(search providers.TrackSearchService, linkResolver providers.LinkResolutionService, lyrics providers.LyricsService, ceiling time.Duration) *Resolver {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Resolver{
		search:  search,
		links:   linkResolver,
		lyrics:  lyrics,
		ceiling: ceiling,
	}
}

type platformResult struct {
	links *providers.PlatformLinks
	err   error
}

// Resolve produces the link record for one (artist, title) pair. The
// catalog search runs first; no candidate short-circuits to an unresolved
// record with no further calls. Cross-platform resolution and the lyrics
// probe then run concurrently, so total latency is bounded by the slowest
// single provider plus the search, never their sum.
func (r *Resolver) Resolve(ctx context.Context, artist, title string) (*links.Record, error) {
	if strings.TrimSpace(artist) == "" && strings.TrimSpace(title) == "" {
		return nil, ErrEmptyQuery
	}

	match, err := r.search.FindTrack(ctx, artist, title)
	if err != nil {
		if errors.Is(err, providers.ErrNoResult) {
			slog.Debug("No catalog match", "artist", artist, "title", title)
		} else {
			slog.Warn("Catalog search failed", "artist", artist, "title", title, "error", err)
		}
		return links.Unresolved(), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.ceiling)
	defer cancel()

	// Buffered channels let stragglers finish after the ceiling without
	// leaking goroutines; their sends land in the buffer and are discarded.
	platformCh := make(chan platformResult, 1)
	lyricsCh := make(chan string, 1)

	go func() {
		platformLinks, err := r.links.ResolveLinks(callCtx, match.URL)
		platformCh <- platformResult{links: platformLinks, err: err}
	}()
	go func() {
		lyricsCh <- r.lyrics.LyricsURL(callCtx, artist, title)
	}()

	var spotifyURL, appleMusicURL, lyricsURL string

	deadline := time.NewTimer(r.ceiling)
	defer deadline.Stop()

	for pending := 2; pending > 0; {
		select {
		case res := <-platformCh:
			pending--
			if res.err != nil {
				slog.Warn("Cross-platform resolution failed", "url", match.URL, "error", res.err)
				continue
			}
			spotifyURL = res.links.SpotifyURL
			appleMusicURL = res.links.AppleMusicURL
		case url := <-lyricsCh:
			pending--
			lyricsURL = url
		case <-deadline.C:
			// Soft ceiling: stop waiting, keep what was merged so far.
			slog.Warn("Resolution ceiling reached, returning partial record",
				"artist", artist, "title", title, "pending", pending)
			pending = 0
		case <-ctx.Done():
			pending = 0
		}
	}

	record := links.NewRecord(spotifyURL, appleMusicURL, lyricsURL)
	slog.Info("Resolved song links",
		"artist", artist,
		"title", title,
		"provider", match.Provider,
		"status", record.Status)
	return record, nil
}
