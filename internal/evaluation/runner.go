package evaluation

import (
	"context"
	"sort"
	"time"
)

// ResolveFunc resolves a phrase of the given kind and returns the ranked
// canonical names (best first) with the score of the best one. An empty
// slice means the phrase did not clear the threshold.
type ResolveFunc func(ctx context.Context, kind Kind, query string) (ranked []string, score float64)

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	resolve ResolveFunc
}

func NewRunner(resolve ResolveFunc) *Runner {
	return &Runner{resolve: resolve}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByKind:       make(map[Kind]*KindSummary),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		ranked, score := r.resolve(ctx, gq.Kind, gq.Query)
		duration := time.Since(start)

		result := EvalResult{
			QueryID:  gq.ID,
			Query:    gq.Query,
			Kind:     gq.Kind,
			Expected: gq.Expected,
			Score:    score,
			Correct:  IsCorrect(gq.Expected, ranked),
			MRRAt3:   MRRAtK(gq.Expected, ranked, 3),
			Latency:  duration,
		}
		if len(ranked) > 0 {
			result.Got = ranked[0]
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgMRRAt3 += res.MRRAt3
	s.AvgLatency += res.Latency

	if _, ok := s.ByKind[res.Kind]; !ok {
		s.ByKind[res.Kind] = &KindSummary{}
	}
	ks := s.ByKind[res.Kind]
	ks.Count++

	if res.Correct {
		s.Accuracy++
		ks.Accuracy++
		return
	}

	if res.Got == "" {
		s.Misses++
	} else {
		s.WrongMatches++
	}
	s.Failures = append(s.Failures, res)
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.Accuracy /= n
		s.AvgMRRAt3 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			ks.Accuracy /= float64(ks.Count)
		}
	}
}

// ThresholdResult is one point of a threshold sweep.
type ThresholdResult struct {
	Threshold float64      `json:"threshold"`
	Summary   *EvalSummary `json:"summary"`
}

// Sweep evaluates the queries once per threshold. build returns the
// resolver configured with that threshold. Results come back in ascending
// threshold order.
func Sweep(ctx context.Context, queries []GoldenQuery, thresholds []float64, build func(threshold float64) ResolveFunc) ([]ThresholdResult, error) {
	sorted := append([]float64(nil), thresholds...)
	sort.Float64s(sorted)

	out := make([]ThresholdResult, 0, len(sorted))
	for _, th := range sorted {
		summary, err := NewRunner(build(th)).Run(ctx, queries)
		if err != nil {
			return nil, err
		}
		out = append(out, ThresholdResult{Threshold: th, Summary: summary})
	}
	return out, nil
}

// BestThreshold picks the sweep point with the highest accuracy, preferring
// fewer wrong matches and then the lower threshold on ties.
func BestThreshold(results []ThresholdResult) (ThresholdResult, bool) {
	if len(results) == 0 {
		return ThresholdResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		switch {
		case r.Summary.Accuracy > best.Summary.Accuracy:
			best = r
		case r.Summary.Accuracy == best.Summary.Accuracy && r.Summary.WrongMatches < best.Summary.WrongMatches:
			best = r
		}
	}
	return best, true
}
