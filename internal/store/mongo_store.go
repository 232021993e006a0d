package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"concerto/internal/links"
)

// MongoStore persists one document per cache key in a collection whose name
// carries the cache version, the document-store analog of the single
// versioned key: bumping the version simply targets a fresh collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	records    map[string]*links.Record
	mu         sync.RWMutex
}

type linkDocument struct {
	Key           string       `bson:"_id"`
	SpotifyURL    string       `bson:"spotify_url,omitempty"`
	AppleMusicURL string       `bson:"apple_music_url,omitempty"`
	LyricsURL     string       `bson:"lyrics_url,omitempty"`
	FetchedAt     time.Time    `bson:"fetched_at"`
	Status        links.Status `bson:"status"`
}

// NewMongoStore connects to MongoDB and loads every persisted record into
// memory. Individual documents that fail to decode are skipped and logged,
// never fatal.
func NewMongoStore(ctx context.Context, mongoURL, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	collectionName := "song_links_" + versionSuffix()

	s := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collectionName),
		records:    make(map[string]*links.Record),
	}

	s.load(ctx)
	return s, nil
}

// versionSuffix derives the collection suffix from the cache version name.
func versionSuffix() string {
	parts := strings.Split(links.CacheVersion, ":")
	return parts[len(parts)-1]
}

func (s *MongoStore) load(ctx context.Context) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		slog.Warn("Failed to load cache from MongoDB, starting empty", "error", err)
		return
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc linkDocument
		if err := cursor.Decode(&doc); err != nil {
			slog.Warn("Skipping undecodable cache document", "error", err)
			continue
		}
		s.records[doc.Key] = &links.Record{
			SpotifyURL:    doc.SpotifyURL,
			AppleMusicURL: doc.AppleMusicURL,
			LyricsURL:     doc.LyricsURL,
			FetchedAt:     doc.FetchedAt,
			Status:        doc.Status,
		}
	}

	if err := cursor.Err(); err != nil {
		slog.Warn("Cache load from MongoDB ended early", "error", err)
	}
}

// Get retrieves a record from the in-memory map.
func (s *MongoStore) Get(key string) (*links.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok
}

// Put stores a record and upserts its document before returning. Unrelated
// keys live in their own documents, so they cannot be lost by this write.
func (s *MongoStore) Put(ctx context.Context, key string, record *links.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = record

	doc := linkDocument{
		Key:           key,
		SpotifyURL:    record.SpotifyURL,
		AppleMusicURL: record.AppleMusicURL,
		LyricsURL:     record.LyricsURL,
		FetchedAt:     record.FetchedAt,
		Status:        record.Status,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}

	return nil
}

// Len returns the number of cached records.
func (s *MongoStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Backend names the persistence medium.
func (s *MongoStore) Backend() string {
	return "mongodb"
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
