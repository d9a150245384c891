package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/pkg/config"
)

func sampleConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CATALOG_CSV_PATH", filepath.Join("..", "..", "data", "scheduling_clean.csv"))
	t.Setenv("LOCATION_PREFIXES_PATH", filepath.Join("..", "..", "config", "location_prefixes.json"))
	t.Setenv("JOURNAL_PATH", filepath.Join(t.TempDir(), "updates.json"))
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNew_FileBackends(t *testing.T) {
	app, err := New(context.Background(), sampleConfig(t))
	require.NoError(t, err)
	defer app.Close()

	snap := app.Catalog.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 24, snap.Index.Len())

	reply, err := app.Dispatcher.Answer(context.Background(), entities.IntentRecord{
		Intent: entities.IntentLocationsForExam,
		Exam:   "mammo screening bilateral",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10 UNION SQ E RAD MAMMO", "MSB RAD MAMMO"}, reply.Answer.Items)
}

func TestNew_MissingHierarchy(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Hierarchy.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNormalizers(t *testing.T) {
	set, err := Normalizers(config.MatchingConfig{})
	require.NoError(t, err)
	assert.Equal(t, "1176 5th ave", set.Location.Normalize("1176 Fifth Ave"))

	_, err = Normalizers(config.MatchingConfig{NormalizationRules: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestResolverConfig(t *testing.T) {
	rc := ResolverConfig(config.MatchingConfig{ExamThreshold: 50, SiteThreshold: 70, TopK: 4})
	assert.Equal(t, 50.0, rc.ExamThreshold)
	assert.Equal(t, 70.0, rc.SiteThreshold)
	assert.Equal(t, 4, rc.TopK)
}
