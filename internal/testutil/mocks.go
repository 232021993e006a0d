package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"concerto/internal/links"
	"concerto/internal/providers"
)

// MockTrackSearchService is a mock implementation of
// providers.TrackSearchService for testing.
type MockTrackSearchService struct {
	mock.Mock
	name string
}

func NewMockTrackSearchService(name string) *MockTrackSearchService {
	return &MockTrackSearchService{name: name}
}

func (m *MockTrackSearchService) ProviderName() string {
	return m.name
}

func (m *MockTrackSearchService) FindTrack(ctx context.Context, artist, title string) (*providers.TrackMatch, error) {
	args := m.Called(ctx, artist, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.TrackMatch), args.Error(1)
}

// MockLinkResolutionService is a mock implementation of
// providers.LinkResolutionService for testing.
type MockLinkResolutionService struct {
	mock.Mock
}

func (m *MockLinkResolutionService) ResolveLinks(ctx context.Context, trackURL string) (*providers.PlatformLinks, error) {
	args := m.Called(ctx, trackURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PlatformLinks), args.Error(1)
}

// MockLyricsService is a mock implementation of providers.LyricsService
// for testing.
type MockLyricsService struct {
	mock.Mock
}

func (m *MockLyricsService) LyricsURL(ctx context.Context, artist, title string) string {
	args := m.Called(ctx, artist, title)
	return args.String(0)
}

// MockStore is a mock implementation of store.Store for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(key string) (*links.Record, bool) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*links.Record), args.Bool(1)
}

func (m *MockStore) Put(ctx context.Context, key string, record *links.Record) error {
	args := m.Called(ctx, key, record)
	return args.Error(0)
}

func (m *MockStore) Len() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockStore) Backend() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
