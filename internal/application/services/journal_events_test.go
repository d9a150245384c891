package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/catalog/catalogtest"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// memFeed is an in-process JournalEvents shared by several journals.
type memFeed struct {
	mu          sync.Mutex
	watchers    []chan *entities.JournalEvent
	announced   []*entities.JournalEvent
	announceErr error
}

func (f *memFeed) Announce(ctx context.Context, event *entities.JournalEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.announceErr != nil {
		return f.announceErr
	}
	f.announced = append(f.announced, event)
	for _, ch := range f.watchers {
		ch <- event
	}
	return nil
}

func (f *memFeed) Watch(ctx context.Context) (<-chan *entities.JournalEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan *entities.JournalEvent, 16)
	f.watchers = append(f.watchers, ch)
	return ch, nil
}

func (f *memFeed) Close() error { return nil }

func (f *memFeed) watching() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

func (f *memFeed) events() []*entities.JournalEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entities.JournalEvent(nil), f.announced...)
}

func TestOverrideJournal_FollowReloadsRemoteChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := &memJournalStore{}
	feed := &memFeed{}
	resolver := NewResolver(nil, DefaultResolverConfig(), nil)

	writer, err := NewOverrideJournal(ctx, shared, catalogtest.Store(t), resolver, nil)
	require.NoError(t, err)
	writer.PublishTo(feed)

	reader, err := NewOverrideJournal(ctx, shared, catalogtest.Store(t), resolver, nil)
	require.NoError(t, err)
	reader.PublishTo(feed)

	done := make(chan error, 1)
	go func() { done <- reader.Follow(ctx) }()
	require.Eventually(t, func() bool { return feed.watching() == 1 }, time.Second, 5*time.Millisecond)

	_, err = writer.DisableExam(ctx, catalogtest.CTHead, catalogtest.MSMCT, "tech out")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := reader.DisabledEntry(catalogtest.CTHead, catalogtest.MSMCT)
		return ok
	}, time.Second, 5*time.Millisecond)

	events := feed.events()
	require.Len(t, events, 1)
	assert.Equal(t, "disable_exam", events[0].Operation)
	assert.Equal(t, writer.origin, events[0].Origin)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestOverrideJournal_PublishFailureKeepsMutation(t *testing.T) {
	env := newTestEnv(t)
	feed := &memFeed{}
	feed.announceErr = errors.New("connection refused")
	env.journal.PublishTo(feed)

	_, err := env.journal.DisableExam(context.Background(), catalogtest.CTHead, catalogtest.FifthAveCT, "x")
	require.NoError(t, err)

	_, ok := env.journal.DisabledEntry(catalogtest.CTHead, catalogtest.FifthAveCT)
	assert.True(t, ok)
}

func TestOverrideJournal_FollowWithoutBus(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.journal.Follow(context.Background()))
}
