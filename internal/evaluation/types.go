package evaluation

import "time"

// GoldenQuery is a labeled phrase with the canonical name it must resolve to.
// An empty Expected means the phrase must not resolve at all.
type GoldenQuery struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	Kind       Kind   `json:"kind"`
	Expected   string `json:"expected"`
	Difficulty string `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID  string        `json:"query_id"`
	Query    string        `json:"query"`
	Kind     Kind          `json:"kind"`
	Expected string        `json:"expected"`
	Got      string        `json:"got"`
	Score    float64       `json:"score"`
	Correct  bool          `json:"correct"`
	MRRAt3   float64       `json:"mrr_at_3"`
	Latency  time.Duration `json:"latency"`
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries int                   `json:"total_queries"`
	Accuracy     float64               `json:"accuracy"`
	AvgMRRAt3    float64               `json:"avg_mrr_at_3"`
	WrongMatches int                   `json:"wrong_matches"` // wrong name, or a match where none was expected
	Misses       int                   `json:"misses"`        // expected a name, got no match
	AvgLatency   time.Duration         `json:"avg_latency"`
	ByKind       map[Kind]*KindSummary `json:"by_kind"`
	Failures     []EvalResult          `json:"failures,omitempty"`
}

// KindSummary holds metrics grouped by kind.
type KindSummary struct {
	Count    int     `json:"count"`
	Accuracy float64 `json:"accuracy"`
}

// WrongMatchRate is the share of queries that resolved to a wrong name.
func (s *EvalSummary) WrongMatchRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.WrongMatches) / float64(s.TotalQueries)
}
