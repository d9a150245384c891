package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/catalog/catalogtest"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

func TestResolveExam_SelfMatch(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	for _, exam := range snap.Index.Exams() {
		res, ok := r.ResolveExam(context.Background(), snap, exam)
		require.True(t, ok, exam)
		assert.Equal(t, exam, res.Exam)
		assert.Equal(t, 100.0, res.Score)
	}
}

func TestResolveExam_AbbreviationsAndWordOrder(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	tests := []struct {
		query string
		want  string
	}{
		{"ct head without contrast", catalogtest.CTHead},
		{"CT head w/o IV contrast", catalogtest.CTHead},
		{"head ct", catalogtest.CTHead},
		{"chest xr", catalogtest.XRChest},
		{"abdomen us complete study", catalogtest.USAbdomen},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, ok := r.ResolveExam(context.Background(), snap, tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Exam)
		})
	}
}

func TestResolveExam_NoMatch(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	for _, q := range []string{"", "   ", "exam", "zzz qqq"} {
		_, ok := r.ResolveExam(context.Background(), snap, q)
		assert.False(t, ok, q)
	}
}

func TestResolveExam_TiesAreDeterministic(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	// both keys contain every query token; the closer one by edit distance wins
	res, ok := r.ResolveExam(context.Background(), snap, "contrast")
	require.True(t, ok)
	assert.Equal(t, catalogtest.MRIBrain, res.Exam)
	assert.Equal(t, []string{catalogtest.CTHead}, res.Alternatives)
}

func TestResolveExam_CollisionsPickLexicographicallyFirst(t *testing.T) {
	snap, err := catalog.NewSnapshot([]entities.CatalogRow{
		{Exam: "CT HEAD EXAM", Site: "MSM RAD CT", Room: "MSM CT 1", Duration: "20"},
		{Exam: "CT HEAD", Site: "MSM RAD CT", Room: "MSM CT 1", Duration: "20"},
	}, catalogtest.Hierarchy())
	require.NoError(t, err)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	for _, q := range []string{"CT HEAD EXAM", "CT HEAD", "head ct"} {
		res, ok := r.ResolveExam(context.Background(), snap, q)
		require.True(t, ok)
		assert.Equal(t, "CT HEAD", res.Exam)
		assert.Equal(t, []string{"CT HEAD EXAM"}, res.Collapsed)
	}
}

func TestResolveSite_OrdinalsAndAliases(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	tests := []struct {
		query string
		want  string
	}{
		{"1176 fifth ave", catalogtest.FifthAve},
		{"1176 5th Ave", catalogtest.FifthAve},
		{"hess", catalogtest.Madison},
		{"the Hess Center", catalogtest.Madison},
		{"morningside", catalogtest.Morningside},
		{"Union Square", catalogtest.UnionSq},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, ok := r.ResolveSite(context.Background(), snap, tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Prefix)
			assert.Equal(t, snap.LocationToSites.Sites(tt.want), res.Sites)
		})
	}
}

func TestResolveSite_AliasAndPrefixExpandIdentically(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	for _, loc := range snap.Hierarchy.Locations() {
		if !snap.LocationToSites.Resolvable(loc.Prefix) {
			continue
		}
		byPrefix, ok := r.ResolveSite(context.Background(), snap, loc.Prefix)
		require.True(t, ok, loc.Prefix)

		for _, alias := range loc.Aliases {
			byAlias, ok := r.ResolveSite(context.Background(), snap, alias)
			require.True(t, ok, alias)
			assert.Equal(t, byPrefix.Prefix, byAlias.Prefix, alias)
			assert.ElementsMatch(t, byPrefix.Sites, byAlias.Sites, alias)
		}
	}
}

func TestResolveSite_NoMatch(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)

	for _, q := range []string{"totally unrelated nonsense", "", "queens", "brooklyn"} {
		_, ok := r.ResolveSite(context.Background(), snap, q)
		assert.False(t, ok, q)
	}
}

func TestResolveSite_ThresholdIsConfigurable(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	// "madison avenue" scores about 73 against "1470 madison ave"
	strict := NewResolver(nil, ResolverConfig{ExamThreshold: 55, SiteThreshold: 90, TopK: 3}, nil)
	_, ok := strict.ResolveSite(context.Background(), snap, "madison avenue")
	assert.False(t, ok)

	loose := NewResolver(nil, ResolverConfig{ExamThreshold: 55, SiteThreshold: 60, TopK: 3}, nil)
	res, ok := loose.ResolveSite(context.Background(), snap, "madison avenue")
	require.True(t, ok)
	assert.Equal(t, catalogtest.Madison, res.Prefix)
}

func TestResolver_RebuildsSearchSpaceOnNewSnapshot(t *testing.T) {
	r := NewResolver(nil, DefaultResolverConfig(), nil)
	first := catalogtest.Snapshot(t)

	_, ok := r.ResolveExam(context.Background(), first, "pet ct skull base")
	require.False(t, ok)

	rows := append(catalogtest.Rows(), entities.CatalogRow{
		Exam: "PET CT SKULL BASE TO MID THIGH", Site: catalogtest.MadisonCT, Room: "HESS PET 1", Duration: "90",
	})
	second, err := catalog.NewSnapshot(rows, catalogtest.Hierarchy())
	require.NoError(t, err)

	res, ok := r.ResolveExam(context.Background(), second, "pet ct skull base")
	require.True(t, ok)
	assert.Equal(t, "PET CT SKULL BASE TO MID THIGH", res.Exam)
}

func TestResolveOverrideTarget(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	r := NewResolver(nil, DefaultResolverConfig(), nil)
	ctx := context.Background()

	exam, site, err := r.ResolveOverrideTarget(ctx, snap, "ct head without contrast", "1470 madison ave rad ct")
	require.NoError(t, err)
	assert.Equal(t, catalogtest.CTHead, exam)
	assert.Equal(t, catalogtest.MadisonCT, site)

	exam, site, err = r.ResolveOverrideTarget(ctx, snap, "head ct", "1470 madison avenue")
	require.NoError(t, err)
	assert.Equal(t, catalogtest.CTHead, exam)
	assert.Equal(t, catalogtest.Madison, site)

	_, _, err = r.ResolveOverrideTarget(ctx, snap, "zzz qqq", "1470 madison ave")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), `exam "zzz qqq" not recognized`)

	_, _, err = r.ResolveOverrideTarget(ctx, snap, "ct head", "totally unrelated nonsense")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "not recognized")
}
