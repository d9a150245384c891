//go:build integration

package events

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/clients/redis"
	"github.com/sinai-nexus/scheduling/pkg/config"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	port, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if err != nil {
		port = 6379
	}
	client, err := redis.NewClient(context.Background(), &config.RedisConfig{
		Host:     os.Getenv("TEST_REDIS_HOST"),
		Port:     port,
		Password: os.Getenv("TEST_REDIS_PASSWORD"),
	})
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisJournalEventsIntegration(t *testing.T) {
	client := newTestRedisClient(t)
	channel := "scheduling:journal:events:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)

	writer := NewRedisJournalEvents(client, channel)
	reader := NewRedisJournalEvents(client, channel)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notices, err := reader.Watch(ctx)
	require.NoError(t, err)

	_, err = reader.Watch(ctx)
	assert.ErrorIs(t, err, ErrAlreadyWatching)

	event := &entities.JournalEvent{ID: "evt-1", Operation: "disable_exam", Origin: "writer", UpdatedAt: time.Now().UTC()}
	require.NoError(t, writer.Announce(context.Background(), event))

	select {
	case got := <-notices:
		require.NotNil(t, got)
		assert.Equal(t, "disable_exam", got.Operation)
		assert.Equal(t, "writer", got.Origin)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for journal event")
	}

	cancel()
	select {
	case _, open := <-notices:
		assert.False(t, open, "feed closes after cancel")
	case <-time.After(time.Second):
		t.Fatal("feed not closed after cancel")
	}
}
