package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifyAPIURL    = "https://api.spotify.com/v1"
	spotifySearchMax = 5
)

// spotifySearchService implements TrackSearchService against the Spotify
// Web API using the client-credentials flow. It is an alternative catalog
// source for deployments that hold Spotify credentials.
type spotifySearchService struct {
	client      *resty.Client
	tokenConfig *clientcredentials.Config
	accessToken string
	tokenExpiry time.Time
	mu          sync.RWMutex
}

type spotifySearchResult struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// NewSpotifySearchService creates a track search adapter backed by the
// Spotify Web API.
func NewSpotifySearchService(clientID, clientSecret string, timeout time.Duration) TrackSearchService {
	return newSpotifySearchService(spotifyAPIURL, spotifyTokenURL, clientID, clientSecret, timeout)
}

func newSpotifySearchService(baseURL, tokenURL, clientID, clientSecret string, timeout time.Duration) TrackSearchService {
	return &spotifySearchService{
		client: newRestyClient(baseURL, timeout),
		tokenConfig: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
	}
}

// ProviderName returns the catalog name.
func (s *spotifySearchService) ProviderName() string {
	return "spotify"
}

// FindTrack searches the Spotify catalog and selects the best match from
// the ranked candidates.
func (s *spotifySearchService) FindTrack(ctx context.Context, artist, title string) (*TrackMatch, error) {
	if err := s.ensureValidToken(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	var result spotifySearchResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     fmt.Sprintf("track:%s artist:%s", title, artist),
			"type":  "track",
			"limit": strconv.Itoa(spotifySearchMax),
		}).
		SetResult(&result).
		Get("/search")

	if err != nil {
		return nil, &ProviderError{
			Provider:  "spotify",
			Operation: "search",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &ProviderError{
			Provider:  "spotify",
			Operation: "search",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	best, ok := selectCandidate(result.Tracks.Items, artist, title, func(t spotifyTrack) (string, string) {
		name := ""
		if len(t.Artists) > 0 {
			name = t.Artists[0].Name
		}
		return name, t.Name
	})
	if !ok || best.ExternalURLs.Spotify == "" {
		return nil, ErrNoResult
	}

	artistName := ""
	if len(best.Artists) > 0 {
		artistName = best.Artists[0].Name
	}

	return &TrackMatch{
		Provider:   "spotify",
		TrackName:  best.Name,
		ArtistName: artistName,
		URL:        best.ExternalURLs.Spotify,
	}, nil
}

// ensureValidToken refreshes the cached client-credentials token when it is
// missing or expired.
func (s *spotifySearchService) ensureValidToken(ctx context.Context) error {
	s.mu.RLock()
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return nil
	}

	token, err := s.tokenConfig.Token(ctx)
	if err != nil {
		return &ProviderError{
			Provider:  "spotify",
			Operation: "auth",
			Message:   "failed to get access token",
			Err:       err,
		}
	}

	s.accessToken = token.AccessToken
	s.tokenExpiry = token.Expiry

	slog.Info("Spotify access token refreshed", "expires_at", token.Expiry)

	return nil
}
