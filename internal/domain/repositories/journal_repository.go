package repositories

import (
	"context"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// JournalStore persists the override journal as one record.
type JournalStore interface {
	// Load returns the stored journal, or an empty one when nothing was stored yet
	Load(ctx context.Context) (*entities.JournalState, error)

	// Save replaces the stored journal with state
	Save(ctx context.Context, state *entities.JournalState) error
}
