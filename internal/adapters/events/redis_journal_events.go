// Package events carries override journal change notices over Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	redisclient "github.com/sinai-nexus/scheduling/internal/infrastructure/clients/redis"
)

// ErrAlreadyWatching is returned when a second Watch is started on one feed.
var ErrAlreadyWatching = errors.New("journal feed is already being watched")

// RedisJournalEvents publishes and watches journal changes on one channel.
// A feed serves a single watcher; the journal it belongs to is the only
// consumer.
type RedisJournalEvents struct {
	client  *redisclient.Client
	channel string

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisJournalEvents creates a feed on channel.
func NewRedisJournalEvents(client *redisclient.Client, channel string) *RedisJournalEvents {
	return &RedisJournalEvents{client: client, channel: channel}
}

// Announce publishes event to every process watching the channel.
func (f *RedisJournalEvents) Announce(ctx context.Context, event *entities.JournalEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}
	if err := f.client.Client().Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish journal event: %w", err)
	}

	log.Debug().Str("channel", f.channel).Str("operation", event.Operation).Msg("announced journal change")
	return nil
}

// Watch subscribes to the channel and returns once the subscription is
// confirmed, so announcements made after Watch returns are not missed.
func (f *RedisJournalEvents) Watch(ctx context.Context) (<-chan *entities.JournalEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubsub != nil {
		return nil, ErrAlreadyWatching
	}

	pubsub := f.client.Client().Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}
	f.pubsub = pubsub

	// one slot: a queued notice already means "reload", later ones add nothing
	out := make(chan *entities.JournalEvent, 1)
	go f.forward(ctx, pubsub, out)
	return out, nil
}

func (f *RedisJournalEvents) forward(ctx context.Context, pubsub *redis.PubSub, out chan<- *entities.JournalEvent) {
	defer close(out)
	defer f.release(pubsub)

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event entities.JournalEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", f.channel).Msg("dropping malformed journal event")
				continue
			}
			select {
			case out <- &event:
			default:
				log.Debug().Str("operation", event.Operation).Msg("journal reload already pending")
			}
		}
	}
}

func (f *RedisJournalEvents) release(pubsub *redis.PubSub) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubsub == pubsub {
		_ = pubsub.Close()
		f.pubsub = nil
	}
}

// Close ends any active watch. Announce keeps working afterwards.
func (f *RedisJournalEvents) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubsub == nil {
		return nil
	}
	err := f.pubsub.Close()
	f.pubsub = nil
	if err != nil {
		return fmt.Errorf("failed to close journal subscription: %w", err)
	}
	return nil
}
