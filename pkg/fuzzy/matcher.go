package fuzzy

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Match is a scored candidate.
type Match struct {
	Candidate string
	Score     float64
	// Distance is the Levenshtein distance to the query; it only breaks score ties.
	Distance int
}

// Matcher ranks candidates for a query with a Scorer.
//
// Ranking is total and independent of candidate order: higher score first,
// then smaller edit distance to the query, then lexicographic order.
type Matcher struct {
	scorer Scorer
}

// NewMatcher creates a matcher. A nil scorer defaults to TokenSetRatio.
func NewMatcher(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = TokenSetRatio
	}
	return &Matcher{scorer: scorer}
}

// Best returns the top candidate scoring at least threshold.
func (m *Matcher) Best(query string, candidates []string, threshold float64) (Match, bool) {
	ranked := m.Top(query, candidates, 1, threshold)
	if len(ranked) == 0 {
		return Match{}, false
	}
	return ranked[0], true
}

// Top returns up to k candidates scoring at least threshold, best first.
// A non-positive k returns every qualifying candidate.
func (m *Matcher) Top(query string, candidates []string, k int, threshold float64) []Match {
	if query == "" || len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		score := m.scorer(query, c)
		if score < threshold {
			continue
		}
		matches = append(matches, Match{Candidate: c, Score: score})
	}
	if len(matches) == 0 {
		return nil
	}

	for i := range matches {
		matches[i].Distance = levenshtein.ComputeDistance(query, matches[i].Candidate)
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Candidate < b.Candidate
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
