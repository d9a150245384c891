package providers

import (
	"context"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// JournalEvents carries override journal change notices between processes
// that share one journal store.
type JournalEvents interface {
	// Announce tells other processes the stored journal changed.
	Announce(ctx context.Context, event *entities.JournalEvent) error

	// Watch delivers change notices until ctx is done or the feed is closed.
	// Notices may be merged: one delivered notice can stand for several.
	Watch(ctx context.Context) (<-chan *entities.JournalEvent, error)

	Close() error
}
