package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sinai-nexus/scheduling/internal/application/services"
	"github.com/sinai-nexus/scheduling/internal/bootstrap"
	"github.com/sinai-nexus/scheduling/internal/evaluation"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	"github.com/sinai-nexus/scheduling/pkg/config"
)

func main() {
	var (
		goldenPath  string
		thresholds  string
		minAccuracy float64
		maxWrong    float64
	)

	rootCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure exam and location resolution accuracy against golden queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			sweep, err := parseThresholds(thresholds)
			if err != nil {
				return err
			}
			return run(cmd.Context(), goldenPath, sweep, evaluation.GuardrailConfig{
				MinAccuracy:       minAccuracy,
				MaxWrongMatchRate: maxWrong,
			})
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&goldenPath, "golden", "config/golden_queries.json", "golden query file")
	rootCmd.Flags().StringVar(&thresholds, "sweep", "", "comma-separated thresholds to sweep, e.g. 45,55,65")
	rootCmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "fail when accuracy at the configured thresholds is lower")
	rootCmd.Flags().Float64Var(&maxWrong, "max-wrong-rate", 0.05, "fail when the wrong match rate is higher")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type report struct {
	Summary *evaluation.EvalSummary      `json:"summary"`
	Sweep   []evaluation.ThresholdResult `json:"sweep,omitempty"`
	Best    *float64                     `json:"best_threshold,omitempty"`
}

func run(ctx context.Context, goldenPath string, sweep []float64, guard evaluation.GuardrailConfig) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	observability.InitLogger("scheduling-evaluate", cfg.App.Env, cfg.App.LogLevel)

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	snap := app.Catalog.Snapshot()
	if err := evaluation.CheckExpected(queries, snap); err != nil {
		return fmt.Errorf("golden set does not match the catalog: %w", err)
	}
	summary, err := evaluation.NewRunner(evaluation.FromResolver(app.Resolver, snap)).Run(ctx, queries)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	out := report{Summary: summary}

	if len(sweep) > 0 {
		norms := app.Resolver.Normalizers()
		out.Sweep, err = evaluation.Sweep(ctx, queries, sweep, func(th float64) evaluation.ResolveFunc {
			rc := bootstrap.ResolverConfig(cfg.Matching)
			rc.ExamThreshold, rc.SiteThreshold = th, th
			return evaluation.FromResolver(services.NewResolver(norms, rc, nil), snap)
		})
		if err != nil {
			return fmt.Errorf("threshold sweep failed: %w", err)
		}
		if best, ok := evaluation.BestThreshold(out.Sweep); ok {
			out.Best = &best.Threshold
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if violations := evaluation.NewGuardrails(guard).Check(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Error().Msg(v)
		}
		return fmt.Errorf("%d guardrail violation(s)", len(violations))
	}
	return nil
}

func parseThresholds(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 || v > 100 {
			return nil, fmt.Errorf("invalid threshold %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}
