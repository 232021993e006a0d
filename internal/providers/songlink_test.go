package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonglinkService_ResolveLinks_BothPlatforms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://music.apple.com/us/album/bo/3?i=4", r.URL.Query().Get("url"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"linksByPlatform": {
				"spotify": {"url": "https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh"},
				"appleMusic": {"url": "https://music.apple.com/us/album/bo/3?i=4"},
				"tidal": {"url": "https://tidal.com/track/123"}
			}
		}`))
	}))
	defer server.Close()

	service := newSonglinkService(server.URL, time.Second)

	links, err := service.ResolveLinks(context.Background(), "https://music.apple.com/us/album/bo/3?i=4")
	require.NoError(t, err)
	assert.Equal(t, "https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh", links.SpotifyURL)
	assert.Equal(t, "https://music.apple.com/us/album/bo/3?i=4", links.AppleMusicURL)
}

func TestSonglinkService_ResolveLinks_MissingPlatformIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"linksByPlatform": {
				"spotify": {"url": "https://open.spotify.com/track/x"}
			}
		}`))
	}))
	defer server.Close()

	service := newSonglinkService(server.URL, time.Second)

	links, err := service.ResolveLinks(context.Background(), "https://music.apple.com/us/album/a/1?i=2")
	require.NoError(t, err)
	assert.Equal(t, "https://open.spotify.com/track/x", links.SpotifyURL)
	assert.Empty(t, links.AppleMusicURL, "absent platform is empty, not an error")
}

func TestSonglinkService_ResolveLinks_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	service := newSonglinkService(server.URL, time.Second)

	links, err := service.ResolveLinks(context.Background(), "https://music.apple.com/us/album/a/1?i=2")
	require.NoError(t, err)
	assert.Empty(t, links.SpotifyURL)
	assert.Empty(t, links.AppleMusicURL)
}

func TestSonglinkService_ResolveLinks_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := newSonglinkService(server.URL, time.Second)

	_, err := service.ResolveLinks(context.Background(), "https://music.apple.com/us/album/a/1?i=2")
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "songlink", provErr.Provider)
}
