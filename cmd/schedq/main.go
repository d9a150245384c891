package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sinai-nexus/scheduling/internal/bootstrap"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	"github.com/sinai-nexus/scheduling/pkg/config"
)

func main() {
	if err := execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and reports a failure on its error stream.
func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// cli carries per-invocation state shared by the subcommands.
type cli struct {
	jsonOut  bool
	cfg      *config.Config
	app      *bootstrap.App
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "schedq",
		Short:         "Answer and maintain radiology scheduling questions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}
	rootCmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print structured JSON instead of text")

	rootCmd.AddCommand(c.askCmd())
	rootCmd.AddCommand(c.disableCmd())
	rootCmd.AddCommand(c.enableCmd())
	rootCmd.AddCommand(c.noteCmd())
	rootCmd.AddCommand(c.journalCmd())
	rootCmd.AddCommand(c.catalogCmd())

	return rootCmd
}

func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, cfg.App.LogLevel)

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		c.shutdown, err = observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		}
	}

	c.app, err = bootstrap.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		return err
	}
	return nil
}

func (c *cli) teardown() error {
	var err error
	if c.app != nil {
		err = c.app.Close()
		c.app = nil
	}
	if c.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := c.shutdown(ctx); serr != nil {
			log.Warn().Err(serr).Msg("error shutting down OpenTelemetry")
		}
		c.shutdown = nil
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
