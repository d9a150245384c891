package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// Hierarchy is the validated static location configuration: prefixes in
// configuration order, their aliases, and room-naming prefixes.
type Hierarchy struct {
	locations []entities.LocationPrefix
	byPrefix  map[string]int
	warnings  []string
}

// NewHierarchy validates cfg. Empty and duplicate prefixes are errors.
// Extra aliases pointing at an undeclared prefix are dropped and reported
// through Warnings.
func NewHierarchy(cfg *entities.HierarchyConfig) (*Hierarchy, error) {
	if cfg == nil {
		return nil, apperrors.NewValidationError("location hierarchy is nil")
	}

	h := &Hierarchy{byPrefix: make(map[string]int, len(cfg.Locations))}
	for _, loc := range cfg.Locations {
		if strings.TrimSpace(loc.Prefix) == "" {
			return nil, apperrors.NewValidationError("location prefix must not be empty")
		}
		if _, dup := h.byPrefix[loc.Prefix]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate location prefix %q", loc.Prefix))
		}
		h.byPrefix[loc.Prefix] = len(h.locations)
		h.locations = append(h.locations, entities.LocationPrefix{
			Prefix:       loc.Prefix,
			Aliases:      append([]string(nil), loc.Aliases...),
			RoomPrefixes: append([]string(nil), loc.RoomPrefixes...),
		})
	}

	// map iteration order is random; sort so warnings and alias order are stable
	extra := make([]string, 0, len(cfg.ExtraAliases))
	for alias := range cfg.ExtraAliases {
		extra = append(extra, alias)
	}
	sort.Strings(extra)
	for _, alias := range extra {
		prefix := cfg.ExtraAliases[alias]
		pos, ok := h.byPrefix[prefix]
		if !ok {
			h.warnings = append(h.warnings, fmt.Sprintf("alias %q points at unknown prefix %q", alias, prefix))
			continue
		}
		h.locations[pos].Aliases = append(h.locations[pos].Aliases, alias)
	}

	return h, nil
}

// Prefixes returns the configured prefixes in configuration order.
func (h *Hierarchy) Prefixes() []string {
	out := make([]string, len(h.locations))
	for i, loc := range h.locations {
		out[i] = loc.Prefix
	}
	return out
}

// Locations returns a copy of the configured locations.
func (h *Hierarchy) Locations() []entities.LocationPrefix {
	out := make([]entities.LocationPrefix, len(h.locations))
	copy(out, h.locations)
	return out
}

// Location looks up a configured prefix.
func (h *Hierarchy) Location(prefix string) (entities.LocationPrefix, bool) {
	pos, ok := h.byPrefix[prefix]
	if !ok {
		return entities.LocationPrefix{}, false
	}
	return h.locations[pos], true
}

// Warnings returns configuration drift found while building the hierarchy.
func (h *Hierarchy) Warnings() []string {
	return append([]string(nil), h.warnings...)
}

// LocationToSites maps each configured prefix to the catalog sites it covers.
type LocationToSites map[string][]string

// Sites returns the expansion of prefix; nil when unknown or empty.
func (m LocationToSites) Sites(prefix string) []string {
	return m[prefix]
}

// Resolvable reports whether prefix expands to at least one site.
func (m LocationToSites) Resolvable(prefix string) bool {
	return len(m[prefix]) > 0
}

// BuildLocationToSites tests every distinct catalog site against every
// configured prefix. Every prefix gets an entry; prefixes that cover no site
// are reported as warnings.
func BuildLocationToSites(h *Hierarchy, idx *Index) (LocationToSites, []string) {
	out := make(LocationToSites, len(h.locations))
	var warnings []string
	for _, loc := range h.locations {
		sites := idx.SitesWithPrefix(loc.Prefix)
		out[loc.Prefix] = sites
		if len(sites) == 0 {
			warnings = append(warnings, fmt.Sprintf("prefix %q matches no catalog site", loc.Prefix))
		}
	}
	return out, warnings
}
