package repositories

import (
	"context"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// CatalogSource loads the flat scheduling table.
type CatalogSource interface {
	// LoadRows returns every catalog row verbatim, in source order
	LoadRows(ctx context.Context) ([]entities.CatalogRow, error)

	// Name identifies the source in logs
	Name() string
}

// HierarchySource loads the static location prefix configuration.
type HierarchySource interface {
	LoadHierarchy(ctx context.Context) (*entities.HierarchyConfig, error)
}
