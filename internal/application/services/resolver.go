package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
	"github.com/sinai-nexus/scheduling/pkg/fuzzy"
	"github.com/sinai-nexus/scheduling/pkg/textnorm"
)

// ResolverConfig holds the match thresholds (0-100) and how many close
// candidates are reported back as alternatives.
type ResolverConfig struct {
	ExamThreshold float64
	SiteThreshold float64
	TopK          int
}

// DefaultResolverConfig returns the tuned thresholds.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{ExamThreshold: 55, SiteThreshold: 60, TopK: 3}
}

// ExamResolution is a canonical exam name chosen for a free-text phrase.
type ExamResolution struct {
	Exam  string  `json:"exam"`
	Score float64 `json:"score"`
	// Collapsed lists other canonical names that normalize to the same key.
	Collapsed    []string `json:"collapsed,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// SiteResolution is a location prefix and its concrete catalog sites.
type SiteResolution struct {
	Prefix       string   `json:"prefix"`
	Sites        []string `json:"sites"`
	Score        float64  `json:"score"`
	MatchedText  string   `json:"matched_text"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// searchSpaces are the normalized lookup keys derived from one snapshot.
type searchSpaces struct {
	snap      *catalog.Snapshot
	examKeys  []string
	examByKey map[string][]string // sorted canonical names
	siteKeys  []string
	siteByKey map[string]string // normalized prefix or alias -> prefix
}

// Resolver turns free text into canonical exam names and location prefixes.
type Resolver struct {
	norms   *textnorm.Set
	matcher *fuzzy.Matcher
	cfg     ResolverConfig
	metrics *observability.Metrics

	spaces atomic.Pointer[searchSpaces]
}

// NewResolver creates a resolver. A nil norms uses the default rules.
func NewResolver(norms *textnorm.Set, cfg ResolverConfig, metrics *observability.Metrics) *Resolver {
	if norms == nil {
		norms = textnorm.DefaultSet()
	}
	if cfg.TopK < 1 {
		cfg.TopK = 1
	}
	return &Resolver{
		norms:   norms,
		matcher: fuzzy.NewMatcher(fuzzy.TokenSetRatio),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Normalizers returns the normalizer set the resolver matches with.
func (r *Resolver) Normalizers() *textnorm.Set {
	return r.norms
}

// ResolveExam matches raw against every distinct exam in snap. Blank input
// and scores below the exam threshold resolve to nothing.
func (r *Resolver) ResolveExam(ctx context.Context, snap *catalog.Snapshot, raw string) (*ExamResolution, bool) {
	query := r.norms.Exam.Normalize(raw)
	if query == "" || snap == nil {
		observability.RecordResolution(ctx, r.metrics, "exam", false)
		return nil, false
	}
	spaces := r.spacesFor(snap)

	ranked := r.matcher.Top(query, spaces.examKeys, r.cfg.TopK, r.cfg.ExamThreshold)
	observability.RecordResolution(ctx, r.metrics, "exam", len(ranked) > 0)
	if len(ranked) == 0 {
		log.Debug().Str("query", query).Msg("exam not recognized")
		return nil, false
	}

	names := spaces.examByKey[ranked[0].Candidate]
	res := &ExamResolution{
		Exam:      names[0],
		Score:     ranked[0].Score,
		Collapsed: append([]string(nil), names[1:]...),
	}
	for _, m := range ranked[1:] {
		res.Alternatives = append(res.Alternatives, spaces.examByKey[m.Candidate][0])
	}
	return res, true
}

// ResolveSite matches raw against the prefixes and aliases of every
// location that expands to at least one catalog site.
func (r *Resolver) ResolveSite(ctx context.Context, snap *catalog.Snapshot, raw string) (*SiteResolution, bool) {
	query := r.norms.Location.Normalize(raw)
	if query == "" || snap == nil {
		observability.RecordResolution(ctx, r.metrics, "site", false)
		return nil, false
	}
	spaces := r.spacesFor(snap)

	// several keys can point at one prefix; rank keys, then keep the first hit per prefix
	ranked := r.matcher.Top(query, spaces.siteKeys, 0, r.cfg.SiteThreshold)
	var prefixes []string
	var best fuzzy.Match
	seen := make(map[string]struct{})
	for _, m := range ranked {
		prefix := spaces.siteByKey[m.Candidate]
		if _, dup := seen[prefix]; dup {
			continue
		}
		if len(prefixes) == 0 {
			best = m
		}
		seen[prefix] = struct{}{}
		prefixes = append(prefixes, prefix)
		if len(prefixes) == r.cfg.TopK {
			break
		}
	}

	if len(prefixes) == 0 {
		observability.RecordResolution(ctx, r.metrics, "site", false)
		log.Debug().Str("query", query).Msg("location not recognized")
		return nil, false
	}

	sites := snap.LocationToSites.Sites(prefixes[0])
	if len(sites) == 0 {
		observability.RecordResolution(ctx, r.metrics, "site", false)
		return nil, false
	}
	observability.RecordResolution(ctx, r.metrics, "site", true)

	return &SiteResolution{
		Prefix:       prefixes[0],
		Sites:        append([]string(nil), sites...),
		Score:        best.Score,
		MatchedText:  best.Candidate,
		Alternatives: prefixes[1:],
	}, true
}

// ResolveOverrideTarget maps operator text onto the canonical exam and the
// site a disablement applies to. A concrete catalog site name (any case) is
// kept as that site; anything else resolves to a location prefix.
func (r *Resolver) ResolveOverrideTarget(ctx context.Context, snap *catalog.Snapshot, examText, siteText string) (exam, site string, err error) {
	examRes, ok := r.ResolveExam(ctx, snap, examText)
	if !ok {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("exam %q not recognized", examText))
	}

	if snap != nil {
		want := strings.TrimSpace(siteText)
		for _, s := range snap.Index.Sites() {
			if strings.EqualFold(s, want) {
				return examRes.Exam, s, nil
			}
		}
	}

	siteRes, ok := r.ResolveSite(ctx, snap, siteText)
	if !ok {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("location %q not recognized", siteText))
	}
	return examRes.Exam, siteRes.Prefix, nil
}

func (r *Resolver) spacesFor(snap *catalog.Snapshot) *searchSpaces {
	if cur := r.spaces.Load(); cur != nil && cur.snap == snap {
		return cur
	}
	built := r.buildSpaces(snap)
	r.spaces.Store(built)
	return built
}

func (r *Resolver) buildSpaces(snap *catalog.Snapshot) *searchSpaces {
	s := &searchSpaces{
		snap:      snap,
		examByKey: make(map[string][]string),
		siteByKey: make(map[string]string),
	}

	for _, exam := range snap.Index.Exams() {
		key := r.norms.Exam.Normalize(exam)
		if key == "" {
			continue
		}
		if _, ok := s.examByKey[key]; !ok {
			s.examKeys = append(s.examKeys, key)
		}
		s.examByKey[key] = append(s.examByKey[key], exam)
	}
	for key, names := range s.examByKey {
		if len(names) > 1 {
			sort.Strings(names)
			log.Debug().Str("key", key).Strs("exams", names).Msg("exam names collapse to one key")
		}
	}

	for _, loc := range snap.Hierarchy.Locations() {
		if !snap.LocationToSites.Resolvable(loc.Prefix) {
			continue
		}
		for _, text := range append([]string{loc.Prefix}, loc.Aliases...) {
			key := r.norms.Location.Normalize(text)
			if key == "" {
				continue
			}
			if owner, taken := s.siteByKey[key]; taken {
				if owner != loc.Prefix {
					log.Warn().Str("alias", text).Str("kept", owner).Str("dropped", loc.Prefix).Msg("alias shared by two locations")
				}
				continue
			}
			s.siteByKey[key] = loc.Prefix
			s.siteKeys = append(s.siteKeys, key)
		}
	}

	return s
}
