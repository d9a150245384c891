package evaluation

import (
	"context"

	"github.com/sinai-nexus/scheduling/internal/application/services"
	"github.com/sinai-nexus/scheduling/internal/catalog"
)

// FromResolver ranks golden queries with the production resolver against
// a fixed snapshot. The best match comes first, followed by its alternatives.
func FromResolver(r *services.Resolver, snap *catalog.Snapshot) ResolveFunc {
	return func(ctx context.Context, kind Kind, query string) ([]string, float64) {
		switch kind {
		case KindExam:
			res, ok := r.ResolveExam(ctx, snap, query)
			if !ok {
				return nil, 0
			}
			return append([]string{res.Exam}, res.Alternatives...), res.Score
		case KindSite:
			res, ok := r.ResolveSite(ctx, snap, query)
			if !ok {
				return nil, 0
			}
			return append([]string{res.Prefix}, res.Alternatives...), res.Score
		}
		return nil, 0
	}
}
