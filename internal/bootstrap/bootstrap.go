// Package bootstrap wires configuration into a ready-to-use engine.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/adapters/cache"
	"github.com/sinai-nexus/scheduling/internal/adapters/database"
	"github.com/sinai-nexus/scheduling/internal/adapters/events"
	"github.com/sinai-nexus/scheduling/internal/adapters/file"
	"github.com/sinai-nexus/scheduling/internal/application/services"
	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/domain/repositories"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/clients/postgres"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/clients/redis"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	"github.com/sinai-nexus/scheduling/pkg/config"
	"github.com/sinai-nexus/scheduling/pkg/textnorm"
)

// App holds the wired engine.
type App struct {
	Config     *config.Config
	Metrics    *observability.Metrics
	Catalog    *catalog.Store
	Resolver   *services.Resolver
	Journal    *services.OverrideJournal
	Dispatcher *services.Dispatcher

	closers []func() error
}

// New connects the configured backends, loads the first catalog snapshot and
// the journal. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) wire(ctx context.Context) error {
	cfg := app.Config

	var err error
	app.Metrics, err = observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	norms, err := Normalizers(cfg.Matching)
	if err != nil {
		return err
	}

	catalogSource, err := app.catalogSource(ctx)
	if err != nil {
		return err
	}
	app.Catalog = catalog.NewStore(catalogSource, file.NewJSONHierarchySource(cfg.Hierarchy.Path), app.Metrics)
	if _, err = app.Catalog.Reload(ctx); err != nil {
		return err
	}

	app.Resolver = services.NewResolver(norms, ResolverConfig(cfg.Matching), app.Metrics)

	journalStore, redisClient, err := app.journalStore(ctx)
	if err != nil {
		return err
	}
	app.Journal, err = services.NewOverrideJournal(ctx, journalStore, app.Catalog, app.Resolver, app.Metrics)
	if err != nil {
		return err
	}
	if redisClient != nil && cfg.Journal.EventsChannel != "" {
		app.followJournal(redisClient, cfg.Journal.EventsChannel)
	}

	app.Dispatcher = services.NewDispatcher(app.Catalog, app.Resolver, app.Journal, app.Metrics)
	return nil
}

// Close releases backend connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i]())
	}
	app.closers = nil
	return errors.Join(errs...)
}

// ResolverConfig maps matching settings onto the resolver.
func ResolverConfig(m config.MatchingConfig) services.ResolverConfig {
	return services.ResolverConfig{
		ExamThreshold: m.ExamThreshold,
		SiteThreshold: m.SiteThreshold,
		TopK:          m.TopK,
	}
}

// Normalizers compiles the built-in rules, or the rules file when one is set.
func Normalizers(m config.MatchingConfig) (*textnorm.Set, error) {
	if m.NormalizationRules == "" {
		return textnorm.DefaultSet(), nil
	}
	rules, err := textnorm.LoadRules(m.NormalizationRules)
	if err != nil {
		return nil, err
	}
	set, err := textnorm.NewSet(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid normalization rules %s: %w", m.NormalizationRules, err)
	}
	return set, nil
}

func (app *App) catalogSource(ctx context.Context) (repositories.CatalogSource, error) {
	if app.Config.Catalog.Source != "postgres" {
		return file.NewCSVCatalogSource(app.Config.Catalog.CSVPath), nil
	}

	pgClient, err := postgres.NewClient(ctx, &app.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}
	app.closers = append(app.closers, pgClient.Close)
	log.Info().Str("table", app.Config.Catalog.Table).Msg("catalog source: postgres")
	return database.NewCatalogAdapter(pgClient, app.Config.Catalog.Table), nil
}

func (app *App) journalStore(ctx context.Context) (repositories.JournalStore, *redis.Client, error) {
	if app.Config.Journal.Backend != "redis" {
		return file.NewJSONJournalStore(app.Config.Journal.Path), nil, nil
	}

	redisClient, err := redis.NewClient(ctx, &app.Config.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	app.closers = append(app.closers, redisClient.Close)
	log.Info().Str("key", app.Config.Journal.RedisKey).Msg("journal store: redis")
	return cache.NewRedisJournalStore(redisClient, app.Config.Journal.RedisKey), redisClient, nil
}

// followJournal publishes local journal changes and reloads on remote ones
// until the App is closed.
func (app *App) followJournal(client *redis.Client, channel string) {
	feed := events.NewRedisJournalEvents(client, channel)
	app.Journal.PublishTo(feed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.Journal.Follow(ctx); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("journal follower stopped")
		}
	}()

	app.closers = append(app.closers, func() error {
		cancel()
		err := feed.Close()
		<-done
		return err
	})
}
