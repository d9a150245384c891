package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/catalog/catalogtest"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

type memJournalStore struct {
	mu      sync.Mutex
	state   *entities.JournalState
	saves   int
	saveErr error
	loadErr error
}

func (m *memJournalStore) Load(ctx context.Context) (*entities.JournalState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.state == nil {
		return entities.NewJournalState(), nil
	}
	return m.state.Clone(), nil
}

func (m *memJournalStore) Save(ctx context.Context, state *entities.JournalState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state.Clone()
	m.saves++
	return nil
}

func (m *memJournalStore) stored() *entities.JournalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

type testEnv struct {
	catalog    *catalog.Store
	resolver   *Resolver
	journal    *OverrideJournal
	mem        *memJournalStore
	dispatcher *Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := catalogtest.Store(t)
	resolver := NewResolver(nil, DefaultResolverConfig(), nil)
	mem := &memJournalStore{}

	journal, err := NewOverrideJournal(context.Background(), mem, store, resolver, nil)
	require.NoError(t, err)

	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	journal.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &testEnv{
		catalog:    store,
		resolver:   resolver,
		journal:    journal,
		mem:        mem,
		dispatcher: NewDispatcher(store, resolver, journal, nil),
	}
}

func (e *testEnv) ask(t *testing.T, intent entities.Intent, exam, site string) *Reply {
	t.Helper()
	reply, err := e.dispatcher.Answer(context.Background(), entities.IntentRecord{Intent: intent, Exam: exam, Site: site})
	require.NoError(t, err)
	return reply
}
