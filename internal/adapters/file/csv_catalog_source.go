package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// headerAliases maps accepted column headers to catalog fields. The second
// set is the export format of the scheduling system.
var headerAliases = map[string]string{
	"exam":              "exam",
	"exam_name":         "exam",
	"eap name":          "exam",
	"site":              "site",
	"site_name":         "site",
	"dep name":          "site",
	"room":              "room",
	"room_name":         "room",
	"room name":         "room",
	"duration":          "duration",
	"visit_duration":    "duration",
	"visit type length": "duration",
}

// CSVCatalogSource reads catalog rows from a CSV file with a header row.
type CSVCatalogSource struct {
	path string
}

// NewCSVCatalogSource creates a source for the CSV file at path.
func NewCSVCatalogSource(path string) *CSVCatalogSource {
	return &CSVCatalogSource{path: path}
}

// Name identifies the source in logs.
func (s *CSVCatalogSource) Name() string {
	return "csv:" + s.path
}

// LoadRows reads every data row verbatim.
func (s *CSVCatalogSource) LoadRows(ctx context.Context) ([]entities.CatalogRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("failed to open catalog %s", s.path), err)
	}
	defer f.Close()

	return ReadCatalogCSV(ctx, f)
}

// ReadCatalogCSV parses catalog rows from r. Field values are not trimmed or
// rewritten; only header names are matched case-insensitively.
func ReadCatalogCSV(ctx context.Context, r io.Reader) ([]entities.CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewValidationError("catalog CSV is empty")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	columns := make(map[string]int, 4)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := headerAliases[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	for _, required := range []string{"exam", "site", "room", "duration"} {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("catalog CSV is missing a %s column", required))
		}
	}

	cell := func(record []string, field string) string {
		i := columns[field]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []entities.CatalogRow
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}
		rows = append(rows, entities.CatalogRow{
			Exam:     cell(record, "exam"),
			Site:     cell(record, "site"),
			Room:     cell(record, "room"),
			Duration: cell(record, "duration"),
		})
	}
	return rows, nil
}
