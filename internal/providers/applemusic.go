package providers

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	appleMusicAPIURL    = "https://api.music.apple.com/v1"
	appleMusicSearchMax = 5
	appleMusicTokenTTL  = 12 * time.Hour
)

// appleMusicSearchService implements TrackSearchService against the Apple
// Music catalog API, authenticated with an ES256 developer token minted
// from a MusicKit private key.
type appleMusicSearchService struct {
	client      *resty.Client
	keyID       string
	teamID      string
	privateKey  *ecdsa.PrivateKey
	jwtToken    string
	tokenExpiry time.Time
	mu          sync.RWMutex
}

type appleMusicSearchResult struct {
	Results struct {
		Songs struct {
			Data []appleMusicSong `json:"data"`
		} `json:"songs"`
	} `json:"results"`
}

type appleMusicSong struct {
	Attributes struct {
		Name       string `json:"name"`
		ArtistName string `json:"artistName"`
		URL        string `json:"url"`
	} `json:"attributes"`
}

// NewAppleMusicSearchService creates a track search adapter backed by the
// Apple Music catalog API. keyFile is the path to the MusicKit .p8 key.
func NewAppleMusicSearchService(keyID, teamID, keyFile string, timeout time.Duration) (TrackSearchService, error) {
	key, err := loadECDSAKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load Apple Music private key: %w", err)
	}
	return newAppleMusicSearchService(appleMusicAPIURL, keyID, teamID, key, timeout), nil
}

func newAppleMusicSearchService(baseURL, keyID, teamID string, key *ecdsa.PrivateKey, timeout time.Duration) TrackSearchService {
	return &appleMusicSearchService{
		client:     newRestyClient(baseURL, timeout),
		keyID:      keyID,
		teamID:     teamID,
		privateKey: key,
	}
}

// ProviderName returns the catalog name.
func (s *appleMusicSearchService) ProviderName() string {
	return "apple_music"
}

// FindTrack searches the Apple Music catalog and selects the best match
// from the ranked candidates.
func (s *appleMusicSearchService) FindTrack(ctx context.Context, artist, title string) (*TrackMatch, error) {
	if err := s.ensureValidToken(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	token := s.jwtToken
	s.mu.RUnlock()

	var result appleMusicSearchResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"term":  title + " " + artist,
			"types": "songs",
			"limit": strconv.Itoa(appleMusicSearchMax),
		}).
		SetResult(&result).
		Get("/catalog/us/search")

	if err != nil {
		return nil, &ProviderError{
			Provider:  "apple_music",
			Operation: "search",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &ProviderError{
			Provider:  "apple_music",
			Operation: "search",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	best, ok := selectCandidate(result.Results.Songs.Data, artist, title, func(t appleMusicSong) (string, string) {
		return t.Attributes.ArtistName, t.Attributes.Name
	})
	if !ok || best.Attributes.URL == "" {
		return nil, ErrNoResult
	}

	return &TrackMatch{
		Provider:   "apple_music",
		TrackName:  best.Attributes.Name,
		ArtistName: best.Attributes.ArtistName,
		URL:        best.Attributes.URL,
	}, nil
}

// ensureValidToken mints a fresh developer token when the cached one is
// missing or near expiry.
func (s *appleMusicSearchService) ensureValidToken() error {
	s.mu.RLock()
	if s.jwtToken != "" && time.Now().Before(s.tokenExpiry) {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.jwtToken != "" && time.Now().Before(s.tokenExpiry) {
		return nil
	}

	now := time.Now()
	expiry := now.Add(appleMusicTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": s.teamID,
		"iat": now.Unix(),
		"exp": expiry.Unix(),
	})
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return &ProviderError{
			Provider:  "apple_music",
			Operation: "auth",
			Message:   "failed to sign developer token",
			Err:       err,
		}
	}

	s.jwtToken = signed
	// Refresh a little before the token actually expires.
	s.tokenExpiry = expiry.Add(-5 * time.Minute)

	return nil
}

// loadECDSAKey reads a PKCS#8 PEM file and returns its ECDSA private key.
func loadECDSAKey(keyFile string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", keyFile)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key in %s is not an ECDSA private key", keyFile)
	}

	return key, nil
}
