package entities

// CatalogRow is one (exam, site, room, duration) fact from the scheduling
// dataset. Fields hold the source text verbatim; rows are not unique.
type CatalogRow struct {
	Exam     string `json:"exam" db:"exam_name"`
	Site     string `json:"site" db:"site_name"`
	Room     string `json:"room" db:"room_name"`
	Duration string `json:"duration" db:"visit_duration"` // minutes as found in the source, number or text
}

// LocationPrefix names a physical location. Prefix is a case-sensitive
// leading substring of the catalog site names hosted there.
type LocationPrefix struct {
	Prefix       string   `json:"prefix"`
	Aliases      []string `json:"aliases"`
	RoomPrefixes []string `json:"room_prefixes"` // room names starting with one of these belong here
}

// HierarchyConfig is the static location configuration. ExtraAliases maps
// an alias to a prefix declared elsewhere; entries naming an unknown prefix
// are dropped with a warning.
type HierarchyConfig struct {
	Locations    []LocationPrefix  `json:"locations"`
	ExtraAliases map[string]string `json:"extra_aliases,omitempty"`
}
