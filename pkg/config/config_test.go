package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Catalog.Source)
	assert.Equal(t, "file", cfg.Journal.Backend)
	assert.Equal(t, "data/updates.json", cfg.Journal.Path)
	assert.Equal(t, 55.0, cfg.Matching.ExamThreshold)
	assert.Equal(t, 60.0, cfg.Matching.SiteThreshold)
	assert.Equal(t, 3, cfg.Matching.TopK)
}

func TestLoad_MatchingThresholdsFromEnv(t *testing.T) {
	t.Setenv("MATCH_EXAM_THRESHOLD", "70")
	t.Setenv("MATCH_SITE_THRESHOLD", "82.5")
	t.Setenv("MATCH_TOP_K", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 70.0, cfg.Matching.ExamThreshold)
	assert.Equal(t, 82.5, cfg.Matching.SiteThreshold)
	assert.Equal(t, 5, cfg.Matching.TopK)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("MATCH_SITE_THRESHOLD", "140")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownBackends(t *testing.T) {
	t.Setenv("JOURNAL_BACKEND", "s3")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JOURNAL_BACKEND", "redis")
	t.Setenv("CATALOG_SOURCE", "parquet")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_PostgresCatalog(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "POSTGRES")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.Contains(t, cfg.Database.DatabaseDSN(), "host=db.internal port=6543")
}

func TestRedisAddr(t *testing.T) {
	rc := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", rc.RedisAddr())
}
