// Package catalogtest provides a small radiology catalog for tests.
package catalogtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// Canonical names used by the fixture.
const (
	CTHead      = "CT HEAD WO IV CONTRAST"
	MRIBrain    = "MRI BRAIN W WO CONTRAST"
	XRChest     = "XR CHEST 2 VIEWS"
	USAbdomen   = "US ABDOMEN COMPLETE"
	FifthAve    = "1176 5TH AVE"
	Madison     = "1470 MADISON AVE"
	UnionSq     = "10 UNION SQ E"
	Morningside = "MSM"
	Queens      = "MSQ OP RAD"

	FifthAveCT  = "1176 5TH AVE RAD CT"
	FifthAveMRI = "1176 5TH AVE RAD MRI"
	FifthAveUS  = "1176 5TH AVE RAD US"
	MadisonCT   = "1470 MADISON AVE RAD CT"
	MadisonMRI  = "1470 MADISON AVE RAD MRI"
	MadisonXR   = "1470 MADISON AVE RAD XRAY"
	UnionSqMRI  = "10 UNION SQ E RAD MRI"
	MSMCT       = "MSM RAD CT"
)

// Rows returns the fixture catalog. CT HEAD at Madison appears in two rooms
// and one row is repeated verbatim.
func Rows() []entities.CatalogRow {
	return []entities.CatalogRow{
		{Exam: CTHead, Site: FifthAveCT, Room: "RA CT 1", Duration: "20"},
		{Exam: CTHead, Site: MadisonCT, Room: "HESS CT ROOM 6", Duration: "20"},
		{Exam: CTHead, Site: MadisonCT, Room: "HESS CT ROOM 7", Duration: "20"},
		{Exam: CTHead, Site: MSMCT, Room: "MSM CT 1", Duration: "30"},
		{Exam: MRIBrain, Site: MadisonMRI, Room: "HESS MRI 2", Duration: "45"},
		{Exam: MRIBrain, Site: UnionSqMRI, Room: "MSDUS MRI 1", Duration: "45"},
		{Exam: MRIBrain, Site: FifthAveMRI, Room: "RA MRI 1", Duration: "60"},
		{Exam: XRChest, Site: MadisonXR, Room: "HESS XR 1", Duration: "10"},
		{Exam: XRChest, Site: MadisonXR, Room: "HESS XR 1", Duration: "10"},
		{Exam: USAbdomen, Site: FifthAveUS, Room: "RA US 3", Duration: "30"},
	}
}

// Hierarchy returns the fixture location configuration. MSQ OP RAD has no
// catalog sites and one extra alias points at an unknown prefix.
func Hierarchy() *entities.HierarchyConfig {
	return &entities.HierarchyConfig{
		Locations: []entities.LocationPrefix{
			{Prefix: UnionSq, Aliases: []string{"union square", "union sq", "10 union sq", "10 union square"}, RoomPrefixes: []string{"MSDUS"}},
			{Prefix: FifthAve, Aliases: []string{"ra", "radiology associates"}, RoomPrefixes: []string{"RA "}},
			{Prefix: Madison, Aliases: []string{"Hess"}, RoomPrefixes: []string{"HESS"}},
			{Prefix: Morningside, Aliases: []string{"Morningside", "Mount Sinai Morningside"}, RoomPrefixes: []string{"MSM"}},
			{Prefix: Queens, Aliases: []string{"Mt Sinai Queens", "Queens"}},
		},
		ExtraAliases: map[string]string{
			"hess center": Madison,
			"brooklyn":    "300 CADMAN PLAZA",
		},
	}
}

// Snapshot builds a snapshot from Rows and Hierarchy.
func Snapshot(t testing.TB) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.NewSnapshot(Rows(), Hierarchy())
	require.NoError(t, err)
	snap.Source = "fixture"
	return snap
}

// Store wraps Snapshot in a static store.
func Store(t testing.TB) *catalog.Store {
	t.Helper()
	return catalog.NewStaticStore(Snapshot(t))
}
