package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/domain/repositories"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// Snapshot is one consistent view of the catalog: the index and every
// structure derived from it. Snapshots are immutable once published.
type Snapshot struct {
	Index           *Index
	Hierarchy       *Hierarchy
	LocationToSites LocationToSites
	Rooms           *RoomAttribution
	Warnings        []string
	Source          string
	LoadedAt        time.Time
}

// NewSnapshot builds the derived structures for rows under cfg.
func NewSnapshot(rows []entities.CatalogRow, cfg *entities.HierarchyConfig) (*Snapshot, error) {
	h, err := NewHierarchy(cfg)
	if err != nil {
		return nil, err
	}
	rooms, err := NewRoomAttribution(h)
	if err != nil {
		return nil, err
	}

	idx := NewIndex(rows)
	l2s, drift := BuildLocationToSites(h, idx)

	return &Snapshot{
		Index:           idx,
		Hierarchy:       h,
		LocationToSites: l2s,
		Rooms:           rooms,
		Warnings:        append(h.Warnings(), drift...),
		LoadedAt:        time.Now().UTC(),
	}, nil
}

// Store publishes catalog snapshots. Readers call Snapshot and keep the
// returned pointer for the duration of one question.
type Store struct {
	catalog   repositories.CatalogSource
	hierarchy repositories.HierarchySource
	metrics   *observability.Metrics

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewStore creates an empty store. Call Reload before serving.
func NewStore(catalog repositories.CatalogSource, hierarchy repositories.HierarchySource, metrics *observability.Metrics) *Store {
	return &Store{
		catalog:   catalog,
		hierarchy: hierarchy,
		metrics:   metrics,
	}
}

// NewStaticStore wraps an already built snapshot; Reload is unsupported.
func NewStaticStore(snap *Snapshot) *Store {
	s := &Store{}
	s.current.Store(snap)
	return s
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload reads both sources and swaps in a new snapshot. On failure the
// previous snapshot stays published.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	if s.catalog == nil || s.hierarchy == nil {
		return nil, apperrors.NewConfigurationError("catalog store has no sources", nil)
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ctx, span := observability.StartSpan(ctx, "catalog.Reload")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.source", s.catalog.Name()))

	snap, err := s.load(ctx)
	observability.RecordCatalogReload(ctx, s.metrics, s.catalog.Name(), err)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	for _, w := range snap.Warnings {
		log.Warn().Str("source", snap.Source).Msg(w)
	}
	span.SetAttributes(
		attribute.Int("catalog.rows", snap.Index.Len()),
		attribute.Int("catalog.sites", len(snap.Index.Sites())),
		attribute.Int("catalog.warnings", len(snap.Warnings)),
	)

	s.current.Store(snap)
	log.Info().
		Str("source", snap.Source).
		Int("rows", snap.Index.Len()).
		Int("exams", len(snap.Index.Exams())).
		Int("sites", len(snap.Index.Sites())).
		Msg("catalog snapshot published")

	return snap, nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.catalog.LoadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog rows from %s: %w", s.catalog.Name(), err)
	}
	cfg, err := s.hierarchy.LoadHierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load location hierarchy: %w", err)
	}

	snap, err := NewSnapshot(rows, cfg)
	if err != nil {
		return nil, err
	}
	snap.Source = s.catalog.Name()
	return snap, nil
}
