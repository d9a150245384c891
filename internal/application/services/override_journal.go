package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/domain/providers"
	"github.com/sinai-nexus/scheduling/internal/domain/repositories"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

const defaultDisableReason = "unspecified"

// OverrideJournal records temporary exam disablements and location notes on
// top of the static catalog. Writers are serialized; readers see the last
// successfully persisted state without locking.
type OverrideJournal struct {
	store    repositories.JournalStore
	catalog  *catalog.Store
	resolver *Resolver
	metrics  *observability.Metrics

	mu    sync.Mutex
	state atomic.Pointer[entities.JournalState]

	// set by PublishTo; nil means mutations stay local
	events providers.JournalEvents
	origin string

	now   func() time.Time
	newID func() string
}

// NewOverrideJournal loads the journal from store. An empty store yields an
// empty journal.
func NewOverrideJournal(ctx context.Context, store repositories.JournalStore, catalogStore *catalog.Store, resolver *Resolver, metrics *observability.Metrics) (*OverrideJournal, error) {
	j := &OverrideJournal{
		store:    store,
		catalog:  catalogStore,
		resolver: resolver,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
		origin:   uuid.New().String(),
	}
	if err := j.Refresh(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

// Refresh replaces the in-memory journal with the stored one.
func (j *OverrideJournal) Refresh(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.store.Load(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load override journal", err)
	}
	if state == nil {
		state = entities.NewJournalState()
	}
	j.state.Store(state)

	log.Debug().
		Int("disabled_exams", len(state.DisabledExams)).
		Int("location_notes", len(state.LocationNotes)).
		Msg("override journal loaded")
	return nil
}

// State returns a copy of the current journal.
func (j *OverrideJournal) State() *entities.JournalState {
	return j.state.Load().Clone()
}

// DisableExam marks exam as unavailable at site. Both are canonical names;
// disabling a pair that is already disabled updates its reason.
func (j *OverrideJournal) DisableExam(ctx context.Context, exam, site, reason string) (entities.DisabledExam, error) {
	exam, site = strings.TrimSpace(exam), strings.TrimSpace(site)
	if exam == "" || site == "" {
		return entities.DisabledExam{}, apperrors.NewValidationError("exam and site are required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultDisableReason
	}

	var entry entities.DisabledExam
	err := j.mutate(ctx, "disable_exam", func(next *entities.JournalState) error {
		for i := range next.DisabledExams {
			if next.DisabledExams[i].Matches(exam, site) {
				next.DisabledExams[i].Reason = reason
				next.DisabledExams[i].Timestamp = next.UpdatedAt
				entry = next.DisabledExams[i]
				return nil
			}
		}
		entry = entities.DisabledExam{
			ID:        j.newID(),
			Exam:      exam,
			Site:      site,
			Reason:    reason,
			Timestamp: next.UpdatedAt,
		}
		next.DisabledExams = append(next.DisabledExams, entry)
		return nil
	})
	if err != nil {
		return entities.DisabledExam{}, err
	}

	log.Info().Str("exam", exam).Str("site", site).Str("reason", reason).Msg("exam disabled")
	return entry, nil
}

// EnableExam removes every disablement of exam at site and reports how many
// were removed.
func (j *OverrideJournal) EnableExam(ctx context.Context, exam, site string) (int, error) {
	exam, site = strings.TrimSpace(exam), strings.TrimSpace(site)
	if exam == "" || site == "" {
		return 0, apperrors.NewValidationError("exam and site are required")
	}

	removed := 0
	err := j.mutate(ctx, "enable_exam", func(next *entities.JournalState) error {
		kept := next.DisabledExams[:0]
		for _, d := range next.DisabledExams {
			if d.Matches(exam, site) {
				removed++
				continue
			}
			kept = append(kept, d)
		}
		next.DisabledExams = kept
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("exam", exam).Str("site", site).Int("removed", removed).Msg("exam enabled")
	return removed, nil
}

// AddLocationNote resolves the location mentioned in text and stores text
// under that location's prefix. Notes naming no recognizable location are
// rejected.
func (j *OverrideJournal) AddLocationNote(ctx context.Context, text string) (entities.LocationNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entities.LocationNote{}, apperrors.NewValidationError("note text is required")
	}

	site, ok := j.resolver.ResolveSite(ctx, j.catalog.Snapshot(), text)
	if !ok {
		observability.RecordJournalMutation(ctx, j.metrics, "add_location_note", apperrors.NewValidationError("unresolved"))
		return entities.LocationNote{}, apperrors.NewValidationError("could not recognize a location in the note")
	}

	var note entities.LocationNote
	err := j.mutate(ctx, "add_location_note", func(next *entities.JournalState) error {
		note = entities.LocationNote{
			ID:        j.newID(),
			Location:  site.Prefix,
			Note:      text,
			Timestamp: next.UpdatedAt,
		}
		next.LocationNotes = append(next.LocationNotes, note)
		return nil
	})
	if err != nil {
		return entities.LocationNote{}, err
	}

	log.Info().Str("prefix", site.Prefix).Float64("score", site.Score).Msg("location note added")
	return note, nil
}

// DisabledEntry returns the disablement of exam at site, if any.
func (j *OverrideJournal) DisabledEntry(exam, site string) (entities.DisabledExam, bool) {
	for _, d := range j.state.Load().DisabledExams {
		if d.Matches(exam, site) {
			return d, true
		}
	}
	return entities.DisabledExam{}, false
}

// NotesFor returns the notes stored under prefix, oldest first.
func (j *OverrideJournal) NotesFor(prefix string) []entities.LocationNote {
	var out []entities.LocationNote
	for _, n := range j.state.Load().LocationNotes {
		if n.Location == prefix {
			out = append(out, n)
		}
	}
	return out
}

// mutate applies fn to a copy of the journal, persists the copy and only
// then publishes it.
func (j *OverrideJournal) mutate(ctx context.Context, op string, fn func(next *entities.JournalState) error) (err error) {
	ctx, span := observability.StartSpan(ctx, "journal."+op)
	defer func() {
		observability.RecordError(span, err)
		observability.RecordJournalMutation(ctx, j.metrics, op, err)
		span.End()
	}()

	j.mu.Lock()
	defer j.mu.Unlock()

	next := j.state.Load().Clone()
	next.UpdatedAt = j.now()
	if err := fn(next); err != nil {
		return err
	}

	if err := j.store.Save(ctx, next); err != nil {
		return apperrors.NewInternalError("failed to persist override journal", err)
	}
	j.state.Store(next)
	j.announce(ctx, op, next.UpdatedAt)
	return nil
}
