package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const songlinkAPIURL = "https://api.song.link/v1-alpha.1/links"

// songlinkService implements LinkResolutionService against the song.link
// (Odesli) aggregation API: one canonical track URL in, per-platform URLs
// out.
type songlinkService struct {
	client *resty.Client
}

type songlinkResponse struct {
	LinksByPlatform map[string]songlinkPlatformLink `json:"linksByPlatform"`
}

type songlinkPlatformLink struct {
	URL string `json:"url"`
}

// NewSonglinkService creates a cross-platform link resolution adapter
// backed by song.link.
func NewSonglinkService(timeout time.Duration) LinkResolutionService {
	return newSonglinkService(songlinkAPIURL, timeout)
}

func newSonglinkService(baseURL string, timeout time.Duration) LinkResolutionService {
	return &songlinkService{client: newRestyClient(baseURL, timeout)}
}

// ResolveLinks queries song.link by canonical track URL. A platform missing
// from linksByPlatform stays empty; that is normal, not a failure.
func (s *songlinkService) ResolveLinks(ctx context.Context, trackURL string) (*PlatformLinks, error) {
	var result songlinkResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("url", trackURL).
		SetResult(&result).
		Get("")

	if err != nil {
		return nil, &ProviderError{
			Provider:  "songlink",
			Operation: "resolve",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &ProviderError{
			Provider:  "songlink",
			Operation: "resolve",
			Message:   fmt.Sprintf("API returned status %d", resp.StatusCode()),
		}
	}

	links := &PlatformLinks{}
	if p, ok := result.LinksByPlatform["spotify"]; ok {
		links.SpotifyURL = p.URL
	}
	if p, ok := result.LinksByPlatform["appleMusic"]; ok {
		links.AppleMusicURL = p.URL
	}

	return links, nil
}
