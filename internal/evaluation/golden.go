package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/sinai-nexus/scheduling/internal/catalog"
)

// Kind is the entity a golden query resolves to.
type Kind string

const (
	KindExam Kind = "exam" // e.g., "ct head w/o" -> "CT HEAD WO IV CONTRAST"
	KindSite Kind = "site" // e.g., "hess" -> "1470 MADISON AVE"
)

// ValidKinds returns all valid kind values.
func ValidKinds() []Kind {
	return []Kind{KindExam, KindSite}
}

// IsValid checks if the kind value is one of the defined constants.
func (k Kind) IsValid() bool {
	return slices.Contains(ValidKinds(), k)
}

// Targets lists the canonical names a query of this kind can resolve to:
// distinct exams for exam queries, location prefixes with at least one
// catalog site for site queries.
func (k Kind) Targets(snap *catalog.Snapshot) []string {
	switch k {
	case KindExam:
		return snap.Index.Exams()
	case KindSite:
		var prefixes []string
		for _, p := range snap.Hierarchy.Prefixes() {
			if snap.LocationToSites.Resolvable(p) {
				prefixes = append(prefixes, p)
			}
		}
		return prefixes
	}
	return nil
}

var difficulties = []string{"easy", "medium", "hard"}

// Validate checks the fields of a single query.
func (q GoldenQuery) Validate() error {
	switch {
	case q.Query == "":
		return fmt.Errorf("query %q: missing query text", q.ID)
	case !q.Kind.IsValid():
		return fmt.Errorf("query %q: invalid kind %q (must be exam/site)", q.ID, q.Kind)
	case !slices.Contains(difficulties, q.Difficulty):
		return fmt.Errorf("query %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
	}
	return nil
}

// LoadGoldenQueries reads a golden set and validates it. Unknown fields are
// rejected so a set written for another format fails loudly.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	var queries []GoldenQuery
	if err := dec.Decode(&queries); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries %s: %w", path, err)
	}
	if err := ValidateGoldenQueries(queries); err != nil {
		return nil, fmt.Errorf("invalid golden queries %s: %w", path, err)
	}
	return queries, nil
}

// ValidateGoldenQueries reports every malformed or duplicate query at once.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	var errs []error
	seen := make(map[string]struct{}, len(queries))
	for i, q := range queries {
		if q.ID == "" {
			errs = append(errs, fmt.Errorf("query at index %d: missing id", i))
			continue
		}
		if _, dup := seen[q.ID]; dup {
			errs = append(errs, fmt.Errorf("query at index %d: duplicate id %q", i, q.ID))
		}
		seen[q.ID] = struct{}{}
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CheckExpected reports queries whose expected name the catalog can never
// produce, which happens when the catalog or hierarchy drifts away from the
// golden set.
func CheckExpected(queries []GoldenQuery, snap *catalog.Snapshot) error {
	targets := make(map[Kind][]string, len(ValidKinds()))
	for _, k := range ValidKinds() {
		targets[k] = k.Targets(snap)
	}

	var errs []error
	for _, q := range queries {
		if q.Expected == "" || slices.Contains(targets[q.Kind], q.Expected) {
			continue
		}
		errs = append(errs, fmt.Errorf("query %q: expected %s %q is not in the catalog", q.ID, q.Kind, q.Expected))
	}
	return errors.Join(errs...)
}
