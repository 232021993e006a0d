package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	itunesSearchURL   = "https://itunes.apple.com/search"
	itunesSearchLimit = 5
)

// itunesSearchService implements TrackSearchService against the iTunes
// Search API. It needs no credentials, which makes it the default catalog
// source.
type itunesSearchService struct {
	client *resty.Client
}

// iTunes Search API response shapes (only the fields we read).
type itunesSearchResult struct {
	ResultCount int           `json:"resultCount"`
	Results     []itunesTrack `json:"results"`
}

type itunesTrack struct {
	ArtistName   string `json:"artistName"`
	TrackName    string `json:"trackName"`
	TrackViewURL string `json:"trackViewUrl"`
}

// NewITunesSearchService creates a track search adapter backed by the
// iTunes Search API.
func NewITunesSearchService(timeout time.Duration) TrackSearchService {
	return newITunesSearchService(itunesSearchURL, timeout)
}

func newITunesSearchService(baseURL string, timeout time.Duration) TrackSearchService {
	return &itunesSearchService{client: newRestyClient(baseURL, timeout)}
}

// ProviderName returns the catalog name.
func (s *itunesSearchService) ProviderName() string {
	return "itunes"
}

// FindTrack searches the iTunes catalog with a composed "<title> <artist>"
// term and selects the best match from the ranked candidates.
func (s *itunesSearchService) FindTrack(ctx context.Context, artist, title string) (*TrackMatch, error) {
	var result itunesSearchResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":   title + " " + artist,
			"entity": "song",
			"limit":  strconv.Itoa(itunesSearchLimit),
		}).
		SetResult(&result).
		Get("")

	if err != nil {
		return nil, &ProviderError{
			Provider:  "itunes",
			Operation: "search",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &ProviderError{
			Provider:  "itunes",
			Operation: "search",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	best, ok := selectCandidate(result.Results, artist, title, func(t itunesTrack) (string, string) {
		return t.ArtistName, t.TrackName
	})
	if !ok || best.TrackViewURL == "" {
		return nil, ErrNoResult
	}

	return &TrackMatch{
		Provider:   "itunes",
		TrackName:  best.TrackName,
		ArtistName: best.ArtistName,
		URL:        best.TrackViewURL,
	}, nil
}
