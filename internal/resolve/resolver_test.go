package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"concerto/internal/links"
	"concerto/internal/providers"
	"concerto/internal/testutil"
)

func queenMatch() *providers.TrackMatch {
	return &providers.TrackMatch{
		Provider:   "itunes",
		TrackName:  "Bohemian Rhapsody",
		ArtistName: "Queen",
		URL:        "https://music.apple.com/us/album/bo/3?i=4",
	}
}

func TestResolver_Resolve_MergesParallelResults(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").Return(queenMatch(), nil)
	linkResolver.On("ResolveLinks", mock.Anything, queenMatch().URL).Return(&providers.PlatformLinks{
		SpotifyURL: "https://open.spotify.com/track/x",
	}, nil)
	lyrics.On("LyricsURL", mock.Anything, "Queen", "Bohemian Rhapsody").
		Return("https://www.google.com/search?q=Bohemian%20Rhapsody%20Queen%20lyrics")

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)

	assert.Equal(t, "https://open.spotify.com/track/x", record.SpotifyURL)
	assert.Empty(t, record.AppleMusicURL, "platform absent upstream stays empty")
	assert.Equal(t, "https://www.google.com/search?q=Bohemian%20Rhapsody%20Queen%20lyrics", record.LyricsURL)
	assert.Equal(t, links.StatusResolved, record.Status)
	assert.False(t, record.FetchedAt.IsZero())

	search.AssertExpectations(t)
	linkResolver.AssertExpectations(t)
	lyrics.AssertExpectations(t)
}

func TestResolver_Resolve_NoCatalogMatchShortCircuits(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Nobody", "Nothing").Return(nil, providers.ErrNoResult)

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "Nobody", "Nothing")
	require.NoError(t, err)

	assert.Equal(t, links.StatusUnresolved, record.Status)
	assert.False(t, record.HasAnyLink())

	// Neither downstream provider may be called after a search miss.
	linkResolver.AssertNotCalled(t, "ResolveLinks", mock.Anything, mock.Anything)
	lyrics.AssertNotCalled(t, "LyricsURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_Resolve_SearchFailureDegradesToUnresolved(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").
		Return(nil, &providers.ProviderError{Provider: "itunes", Operation: "search", Message: "boom"})

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err, "adapter failures never escape Resolve")
	assert.Equal(t, links.StatusUnresolved, record.Status)
}

func TestResolver_Resolve_LinkResolutionFailureKeepsLyrics(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").Return(queenMatch(), nil)
	linkResolver.On("ResolveLinks", mock.Anything, queenMatch().URL).
		Return(nil, &providers.ProviderError{Provider: "songlink", Operation: "resolve", Message: "boom"})
	lyrics.On("LyricsURL", mock.Anything, "Queen", "Bohemian Rhapsody").
		Return("https://www.google.com/search?q=x")

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)

	assert.Empty(t, record.SpotifyURL)
	assert.Empty(t, record.AppleMusicURL)
	assert.Equal(t, "https://www.google.com/search?q=x", record.LyricsURL)
	assert.Equal(t, links.StatusPartiallyResolved, record.Status)
}

// stallLinkResolver never answers within the test's ceiling.
type stallLinkResolver struct {
	delay time.Duration
}

func (s *stallLinkResolver) ResolveLinks(ctx context.Context, trackURL string) (*providers.PlatformLinks, error) {
	time.Sleep(s.delay)
	return &providers.PlatformLinks{SpotifyURL: "https://open.spotify.com/track/too-late"}, nil
}

func TestResolver_Resolve_CeilingDiscardsStragglers(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").Return(queenMatch(), nil)
	lyrics.On("LyricsURL", mock.Anything, "Queen", "Bohemian Rhapsody").
		Return("https://www.google.com/search?q=x")

	resolver := NewResolver(search, &stallLinkResolver{delay: 2 * time.Second}, lyrics, 100*time.Millisecond)

	start := time.Now()
	record, err := resolver.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second, "ceiling must bound the wait")
	assert.Empty(t, record.SpotifyURL, "results landing after the ceiling are discarded")
	assert.Empty(t, record.AppleMusicURL)
	assert.Equal(t, "https://www.google.com/search?q=x", record.LyricsURL)
	assert.Equal(t, links.StatusPartiallyResolved, record.Status)
}

func TestResolver_Resolve_EmptyQueryRejected(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	resolver := NewResolver(search, &testutil.MockLinkResolutionService{}, &testutil.MockLyricsService{}, time.Second)

	_, err := resolver.Resolve(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = resolver.Resolve(context.Background(), "   ", " ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	search.AssertNotCalled(t, "FindTrack", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_Resolve_TitleOnlyIsAccepted(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "", "Bohemian Rhapsody").Return(nil, providers.ErrNoResult)

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "", "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.Equal(t, links.StatusUnresolved, record.Status)
}

func TestResolver_Resolve_BothLinksYieldResolved(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	linkResolver := &testutil.MockLinkResolutionService{}
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").Return(queenMatch(), nil)
	linkResolver.On("ResolveLinks", mock.Anything, queenMatch().URL).Return(&providers.PlatformLinks{
		SpotifyURL:    "https://open.spotify.com/track/x",
		AppleMusicURL: "https://music.apple.com/us/album/bo/3?i=4",
	}, nil)
	lyrics.On("LyricsURL", mock.Anything, "Queen", "Bohemian Rhapsody").Return("")

	resolver := NewResolver(search, linkResolver, lyrics, time.Second)

	record, err := resolver.Resolve(context.Background(), "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)

	assert.Equal(t, links.StatusResolved, record.Status)
	assert.Empty(t, record.LyricsURL)
}

func TestResolver_Resolve_ContextCancellation(t *testing.T) {
	search := testutil.NewMockTrackSearchService("itunes")
	lyrics := &testutil.MockLyricsService{}

	search.On("FindTrack", mock.Anything, "Queen", "Bohemian Rhapsody").Return(queenMatch(), nil)
	lyrics.On("LyricsURL", mock.Anything, "Queen", "Bohemian Rhapsody").Return("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := NewResolver(search, &stallLinkResolver{delay: time.Second}, lyrics, 5*time.Second)

	record, err := resolver.Resolve(ctx, "Queen", "Bohemian Rhapsody")
	require.NoError(t, err)
	assert.NotNil(t, record)
}

func TestResolver_Resolve_SearchErrorIsNotErrNoResult(t *testing.T) {
	err := &providers.ProviderError{Provider: "itunes", Operation: "search"}
	assert.False(t, errors.Is(err, providers.ErrNoResult))
}
