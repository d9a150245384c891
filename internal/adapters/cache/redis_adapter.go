package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	redisclient "github.com/sinai-nexus/scheduling/internal/infrastructure/clients/redis"
)

// keyValue is the subset of go-redis used by the journal store.
type keyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisJournalStore keeps the override journal as one JSON value under a
// single key. SET replaces the value atomically.
type RedisJournalStore struct {
	kv  keyValue
	key string
}

// NewRedisJournalStore creates a journal store under key.
func NewRedisJournalStore(client *redisclient.Client, key string) *RedisJournalStore {
	return &RedisJournalStore{kv: client.Client(), key: key}
}

// Load returns the stored journal; a missing key yields an empty journal.
func (s *RedisJournalStore) Load(ctx context.Context) (*entities.JournalState, error) {
	data, err := s.kv.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.NewJournalState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal %s: %w", s.key, err)
	}

	state := entities.NewJournalState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse journal %s: %w", s.key, err)
	}
	if state.DisabledExams == nil {
		state.DisabledExams = []entities.DisabledExam{}
	}
	if state.LocationNotes == nil {
		state.LocationNotes = []entities.LocationNote{}
	}
	return state, nil
}

// Save serializes the whole journal and stores it without expiration.
func (s *RedisJournalStore) Save(ctx context.Context, state *entities.JournalState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set journal %s: %w", s.key, err)
	}
	return nil
}
