package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"concerto/internal/config"
	"concerto/internal/handlers"
	"concerto/internal/providers"
	"concerto/internal/resolve"
	"concerto/internal/songlinks"
	"concerto/internal/store"
)

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	// Initialize the cache store
	cacheStore, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize cache store", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer cacheStore.Close()

	slog.Info("Cache store ready",
		"backend", cacheStore.Backend(),
		"entries", cacheStore.Len())

	// Initialize provider adapters
	search, err := newTrackSearch(cfg)
	if err != nil {
		slog.Error("Failed to initialize track search provider", "provider", cfg.TrackSearchProvider, "error", err)
		os.Exit(1)
	}
	linkResolver := providers.NewSonglinkService(cfg.ProviderTimeout)
	lyrics := providers.NewLyricsOvhService(cfg.ProviderTimeout)

	// Wire orchestration and the lifecycle façade
	resolver := resolve.NewResolver(search, linkResolver, lyrics, cfg.ResolveCeiling)
	service := songlinks.NewService(cacheStore, resolver, cfg.UnresolvedRetryCooldown)

	router := handlers.NewRouter(service, lyrics)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Starting server",
			"port", cfg.Port,
			"track_search_provider", search.ProviderName())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

// newStore builds the configured cache store backend.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.CacheBackend {
	case config.BackendValkey:
		return store.NewValkeyStore(cfg.ValkeyURL)
	case config.BackendMongo:
		return store.NewMongoStore(context.Background(), cfg.MongodbURL, cfg.MongodbDatabase)
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewFileStore(cfg.CacheFile)
	}
}

// newTrackSearch builds the configured catalog search provider.
func newTrackSearch(cfg *config.Config) (providers.TrackSearchService, error) {
	switch cfg.TrackSearchProvider {
	case config.ProviderSpotify:
		return providers.NewSpotifySearchService(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.ProviderTimeout), nil
	case config.ProviderAppleMusic:
		return providers.NewAppleMusicSearchService(cfg.AppleMusicKeyID, cfg.AppleMusicTeamID, cfg.AppleMusicKeyFile, cfg.ProviderTimeout)
	default:
		return providers.NewITunesSearchService(cfg.ProviderTimeout), nil
	}
}
