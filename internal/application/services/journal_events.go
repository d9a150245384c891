package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/domain/providers"
)

// PublishTo makes every successful mutation announce itself on feed so
// other processes sharing the journal store can reload. Call before the
// journal is used concurrently.
func (j *OverrideJournal) PublishTo(feed providers.JournalEvents) {
	j.events = feed
}

// Follow reloads the journal whenever another instance announces a change.
// It blocks until ctx is done or the subscription closes.
func (j *OverrideJournal) Follow(ctx context.Context) error {
	if j.events == nil {
		return nil
	}
	notices, err := j.events.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-notices:
			if !ok {
				return nil
			}
			if ev.Origin == j.origin {
				continue
			}
			if err := j.Refresh(ctx); err != nil {
				log.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to reload journal after remote change")
				continue
			}
			log.Info().Str("operation", ev.Operation).Str("origin", ev.Origin).Msg("journal reloaded after remote change")
		}
	}
}

// announce is best effort: the mutation is already persisted.
func (j *OverrideJournal) announce(ctx context.Context, op string, at time.Time) {
	if j.events == nil {
		return
	}
	ev := &entities.JournalEvent{
		ID:        j.newID(),
		Operation: op,
		Origin:    j.origin,
		UpdatedAt: at,
	}
	if err := j.events.Announce(ctx, ev); err != nil {
		log.Warn().Err(err).Str("operation", op).Msg("failed to announce journal change")
	}
}
