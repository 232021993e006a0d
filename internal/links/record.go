package links

import (
	"time"
)

// CacheVersion names the persisted cache payload. Bumping the suffix
// invalidates every previously persisted record without a migration.
const CacheVersion = "concerto:songlinks:v1"

// Status describes how much of a record resolution produced.
type Status string

const (
	// StatusResolved means at least one streaming link was found.
	StatusResolved Status = "resolved"
	// StatusPartiallyResolved means something was found, but no streaming link.
	StatusPartiallyResolved Status = "partially_resolved"
	// StatusUnresolved means no provider returned anything usable.
	StatusUnresolved Status = "unresolved"
)

// Record is the resolved link state for one song. Empty URL fields mean
// "no link known"; they serialize as null on the HTTP surface.
type Record struct {
	SpotifyURL    string    `json:"spotify_url,omitempty"`
	AppleMusicURL string    `json:"apple_music_url,omitempty"`
	LyricsURL     string    `json:"lyrics_url,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
	Status        Status    `json:"status"`
}

// NewRecord builds a record from the merged provider output, deriving
// Status and stamping FetchedAt.
func NewRecord(spotifyURL, appleMusicURL, lyricsURL string) *Record {
	r := &Record{
		SpotifyURL:    spotifyURL,
		AppleMusicURL: appleMusicURL,
		LyricsURL:     lyricsURL,
		FetchedAt:     time.Now(),
	}
	r.Status = deriveStatus(r)
	return r
}

// Unresolved builds an all-empty record, stamped now so repeat misses can
// be rate limited by age.
func Unresolved() *Record {
	return &Record{
		FetchedAt: time.Now(),
		Status:    StatusUnresolved,
	}
}

// deriveStatus follows the record's derivation rule: a streaming link makes
// the record resolved, anything at all makes it partially resolved, and a
// fully empty record is unresolved.
func deriveStatus(r *Record) Status {
	switch {
	case r.SpotifyURL != "" || r.AppleMusicURL != "":
		return StatusResolved
	case r.LyricsURL != "":
		return StatusPartiallyResolved
	default:
		return StatusUnresolved
	}
}

// HasAnyLink reports whether the record carries at least one usable URL.
func (r *Record) HasAnyLink() bool {
	return r.SpotifyURL != "" || r.AppleMusicURL != "" || r.LyricsURL != ""
}
