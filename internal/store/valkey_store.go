package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"concerto/internal/links"
)

// ValkeyStore persists the whole record map as one JSON value under the
// versioned cache key. Shared-cache backend for multi-instance deployments;
// concurrent writers from outside this process get last-write-wins.
type ValkeyStore struct {
	client  valkey.Client
	records map[string]*links.Record
	mu      sync.RWMutex
}

// NewValkeyStore connects to Valkey and loads the persisted map. An
// unreadable or corrupt payload yields an empty cache; a dead server is an
// error, since the backend was explicitly requested.
func NewValkeyStore(valkeyURL string) (*ValkeyStore, error) {
	addr, password, err := parseValkeyURL(valkeyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Valkey URL: %w", err)
	}

	clientOption := valkey.ClientOption{
		InitAddress: []string{addr},
	}
	if password != "" {
		clientOption.Password = password
	}

	client, err := valkey.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	s := &ValkeyStore{
		client:  client,
		records: make(map[string]*links.Record),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	s.load(ctx)
	return s, nil
}

func (s *ValkeyStore) ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) load(ctx context.Context) {
	cmd := s.client.B().Get().Key(links.CacheVersion).Build()
	result := s.client.Do(ctx, cmd)

	if result.Error() != nil {
		if !valkey.IsValkeyNil(result.Error()) {
			slog.Warn("Failed to load cache from Valkey, starting empty", "error", result.Error())
		}
		return
	}

	data, err := result.AsBytes()
	if err != nil {
		slog.Warn("Failed to read cache payload from Valkey, starting empty", "error", err)
		return
	}

	var records map[string]*links.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Cache payload in Valkey is corrupt, starting empty", "error", err)
		return
	}
	if records == nil {
		// A literal null payload decodes without error; keep the empty
		// map so later puts succeed.
		return
	}

	s.records = records
}

// Get retrieves a record from the in-memory map.
func (s *ValkeyStore) Get(key string) (*links.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	return record, ok
}

// Put stores a record and writes the whole map back under the versioned
// key before returning.
func (s *ValkeyStore) Put(ctx context.Context, key string, record *links.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = record

	data, err := json.Marshal(s.records)
	if err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}

	cmd := s.client.B().Set().Key(links.CacheVersion).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &StoreError{Operation: "put", Key: key, Err: err}
	}

	return nil
}

// Len returns the number of cached records.
func (s *ValkeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Backend names the persistence medium.
func (s *ValkeyStore) Backend() string {
	return "valkey"
}

// Close closes the Valkey connection.
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

// parseValkeyURL extracts connection details from a Valkey URL.
func parseValkeyURL(valkeyURL string) (address, password string, err error) {
	u, err := url.Parse(valkeyURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Host == "" {
		return "", "", fmt.Errorf("missing host in URL")
	}
	address = u.Host

	if u.User != nil {
		password, _ = u.User.Password()
	}

	return address, password, nil
}
