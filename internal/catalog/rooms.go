package catalog

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// RoomAttribution assigns rooms to locations by room-name prefix. A room
// belongs to the location owning the longest room prefix it starts with;
// validation guarantees at most one location can own any room.
type RoomAttribution struct {
	owners   map[string]string   // room prefix -> location prefix
	byOwner  map[string][]string // location prefix -> room prefixes
	prefixes []string            // longest first
}

// NewRoomAttribution validates the room prefixes of h. An empty room prefix,
// or two prefixes of different locations where one starts with the other,
// is a validation error.
func NewRoomAttribution(h *Hierarchy) (*RoomAttribution, error) {
	ra := &RoomAttribution{
		owners:  make(map[string]string),
		byOwner: make(map[string][]string),
	}
	for _, loc := range h.locations {
		for _, rp := range loc.RoomPrefixes {
			if strings.TrimSpace(rp) == "" {
				return nil, apperrors.NewValidationError(fmt.Sprintf("empty room prefix for location %q", loc.Prefix))
			}
			if owner, ok := ra.owners[rp]; ok {
				if owner == loc.Prefix {
					continue
				}
				return nil, apperrors.NewValidationError(fmt.Sprintf("room prefix %q claimed by %q and %q", rp, owner, loc.Prefix))
			}
			ra.owners[rp] = loc.Prefix
			ra.byOwner[loc.Prefix] = append(ra.byOwner[loc.Prefix], rp)
			ra.prefixes = append(ra.prefixes, rp)
		}
	}

	for i, a := range ra.prefixes {
		for _, b := range ra.prefixes[i+1:] {
			if ra.owners[a] == ra.owners[b] {
				continue
			}
			if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
				return nil, apperrors.NewValidationError(fmt.Sprintf(
					"room prefixes %q (%s) and %q (%s) overlap", a, ra.owners[a], b, ra.owners[b]))
			}
		}
	}

	sort.SliceStable(ra.prefixes, func(i, j int) bool {
		return len(ra.prefixes[i]) > len(ra.prefixes[j])
	})
	return ra, nil
}

// Owner returns the location prefix a room belongs to.
func (r *RoomAttribution) Owner(room string) (string, bool) {
	for _, rp := range r.prefixes {
		if strings.HasPrefix(room, rp) {
			return r.owners[rp], true
		}
	}
	return "", false
}

// BelongsTo reports whether room is attributed to location.
func (r *RoomAttribution) BelongsTo(room, location string) bool {
	owner, ok := r.Owner(room)
	return ok && owner == location
}

// PrefixesFor returns the room prefixes owned by location.
func (r *RoomAttribution) PrefixesFor(location string) []string {
	return append([]string(nil), r.byOwner[location]...)
}
