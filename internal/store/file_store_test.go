package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concerto/internal/links"
)

func TestFileStore_PutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	record := links.NewRecord(
		"https://open.spotify.com/track/x",
		"",
		"https://www.google.com/search?q=x",
	)

	require.NoError(t, s.Put(context.Background(), "queen::bohemian rhapsody", record))

	got, ok := s.Get("queen::bohemian rhapsody")
	require.True(t, ok)
	assert.Equal(t, record.SpotifyURL, got.SpotifyURL)
	assert.Equal(t, record.AppleMusicURL, got.AppleMusicURL)
	assert.Equal(t, record.LyricsURL, got.LyricsURL)
	assert.Equal(t, record.Status, got.Status)
}

func TestFileStore_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	first := links.NewRecord("https://open.spotify.com/track/a", "", "")
	second := links.NewRecord("", "https://music.apple.com/us/album/b/1?i=2", "")
	require.NoError(t, s.Put(context.Background(), "k1", first))
	require.NoError(t, s.Put(context.Background(), "k2", second))

	// A fresh store over the same file sees both records: one Put must not
	// lose unrelated keys.
	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	got, ok := reloaded.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "https://open.spotify.com/track/a", got.SpotifyURL)

	got, ok = reloaded.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "https://music.apple.com/us/album/b/1?i=2", got.AppleMusicURL)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err, "corruption must never be fatal")
	assert.Equal(t, 0, s.Len())

	// Subsequent writes succeed and persist correctly.
	require.NoError(t, s.Put(context.Background(), "k", links.Unresolved()))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestFileStore_NullPayloadStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"concerto:songlinks:v1":null}`), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	// A null map under the version key must not poison the store.
	require.NoError(t, s.Put(context.Background(), "k", links.Unresolved()))

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "cache.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestFileStore_OldVersionPayloadStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"concerto:songlinks:v0":{"k":{"status":"resolved"}}}`), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len(), "a version bump invalidates the old cache")
}

func TestFileStore_EmptyPathRejected(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestMemoryStore_Basics(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, "memory", s.Backend())
	assert.Equal(t, 0, s.Len())

	record := links.NewRecord("https://open.spotify.com/track/x", "", "")
	require.NoError(t, s.Put(context.Background(), "k", record))

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, record, got)
	assert.Equal(t, 1, s.Len())
	assert.NoError(t, s.Close())
}
