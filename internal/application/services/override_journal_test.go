package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/catalog/catalogtest"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

func TestOverrideJournal_DisableAndEnable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	entry, err := env.journal.DisableExam(ctx, catalogtest.CTHead, catalogtest.FifthAveCT, "scanner down")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())

	got, ok := env.journal.DisabledEntry("ct head wo iv contrast", "1176 5th ave rad ct")
	require.True(t, ok, "lookups are case-insensitive")
	assert.Equal(t, "scanner down", got.Reason)
	assert.Len(t, env.mem.stored().DisabledExams, 1, "mutation is persisted before returning")

	removed, err := env.journal.EnableExam(ctx, "CT Head WO IV Contrast", catalogtest.FifthAveCT)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok = env.journal.DisabledEntry(catalogtest.CTHead, catalogtest.FifthAveCT)
	assert.False(t, ok)
	assert.Empty(t, env.mem.stored().DisabledExams)
}

func TestOverrideJournal_DisableTwiceUpdatesReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.journal.DisableExam(ctx, catalogtest.CTHead, catalogtest.FifthAveCT, "")
	require.NoError(t, err)
	assert.Equal(t, "unspecified", first.Reason)

	second, err := env.journal.DisableExam(ctx, catalogtest.CTHead, catalogtest.FifthAveCT, "service visit")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "service visit", second.Reason)
	assert.Len(t, env.journal.State().DisabledExams, 1)
}

func TestOverrideJournal_EnableUnknownPair(t *testing.T) {
	env := newTestEnv(t)

	removed, err := env.journal.EnableExam(context.Background(), catalogtest.CTHead, catalogtest.MSMCT)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestOverrideJournal_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.journal.DisableExam(ctx, " ", catalogtest.FifthAveCT, "x")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = env.journal.EnableExam(ctx, catalogtest.CTHead, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = env.journal.AddLocationNote(ctx, "   ")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Zero(t, env.mem.saves)
}

func TestOverrideJournal_AddLocationNoteResolvesPrefix(t *testing.T) {
	env := newTestEnv(t)

	note, err := env.journal.AddLocationNote(context.Background(), "HESS MRI 2 down for service until Friday")
	require.NoError(t, err)
	assert.Equal(t, catalogtest.Madison, note.Location)
	assert.Equal(t, "HESS MRI 2 down for service until Friday", note.Note)

	notes := env.journal.NotesFor(catalogtest.Madison)
	require.Len(t, notes, 1)
	assert.Equal(t, note, notes[0])
	assert.Empty(t, env.journal.NotesFor(catalogtest.FifthAve))
}

func TestOverrideJournal_UnresolvedNoteIsRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.journal.AddLocationNote(context.Background(), "totally unrelated nonsense")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Empty(t, env.journal.State().LocationNotes)
	assert.Zero(t, env.mem.saves)
}

func TestOverrideJournal_PersistFailureDoesNotPublish(t *testing.T) {
	env := newTestEnv(t)
	env.mem.saveErr = errors.New("disk full")

	_, err := env.journal.DisableExam(context.Background(), catalogtest.CTHead, catalogtest.FifthAveCT, "scanner down")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))

	_, ok := env.journal.DisabledEntry(catalogtest.CTHead, catalogtest.FifthAveCT)
	assert.False(t, ok)
}

func TestOverrideJournal_ConcurrentMutationsAreNotLost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := env.journal.AddLocationNote(ctx, fmt.Sprintf("Hess note %d", i))
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := env.journal.DisableExam(ctx, fmt.Sprintf("EXAM %d", i), catalogtest.MadisonCT, "test")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state := env.journal.State()
	assert.Len(t, state.LocationNotes, n)
	assert.Len(t, state.DisabledExams, n)

	stored := env.mem.stored()
	assert.Len(t, stored.LocationNotes, n)
	assert.Len(t, stored.DisabledExams, n)
	assert.Equal(t, 2*n, env.mem.saves)
}

func TestOverrideJournal_LoadsExistingStateAndRefreshes(t *testing.T) {
	mem := &memJournalStore{state: &entities.JournalState{
		DisabledExams: []entities.DisabledExam{{Exam: catalogtest.XRChest, Site: catalogtest.MadisonXR, Reason: "tech out"}},
		LocationNotes: []entities.LocationNote{{Location: catalogtest.Morningside, Note: "parking closed"}},
	}}
	store := catalogtest.Store(t)
	resolver := NewResolver(nil, DefaultResolverConfig(), nil)

	journal, err := NewOverrideJournal(context.Background(), mem, store, resolver, nil)
	require.NoError(t, err)

	_, ok := journal.DisabledEntry(catalogtest.XRChest, catalogtest.MadisonXR)
	assert.True(t, ok)
	assert.Len(t, journal.NotesFor(catalogtest.Morningside), 1)

	mem.state = entities.NewJournalState()
	require.NoError(t, journal.Refresh(context.Background()))
	_, ok = journal.DisabledEntry(catalogtest.XRChest, catalogtest.MadisonXR)
	assert.False(t, ok)
}

func TestOverrideJournal_LoadFailure(t *testing.T) {
	mem := &memJournalStore{loadErr: errors.New("permission denied")}

	_, err := NewOverrideJournal(context.Background(), mem, catalogtest.Store(t), NewResolver(nil, DefaultResolverConfig(), nil), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestOverrideJournal_StateIsACopy(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.journal.DisableExam(context.Background(), catalogtest.CTHead, catalogtest.MSMCT, "x")
	require.NoError(t, err)

	state := env.journal.State()
	state.DisabledExams[0].Reason = "changed"

	d, ok := env.journal.DisabledEntry(catalogtest.CTHead, catalogtest.MSMCT)
	require.True(t, ok)
	assert.Equal(t, "x", d.Reason)
}
