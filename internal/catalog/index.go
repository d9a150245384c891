// Package catalog holds the in-memory scheduling catalog and the static
// location hierarchy layered on top of it.
package catalog

import (
	"sort"
	"strings"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// Index is a read-only multiset of catalog rows, queryable by exact equality
// on the canonical exam and site fields.
type Index struct {
	rows   []entities.CatalogRow
	byExam map[string][]int
	bySite map[string][]int
	exams  []string
	sites  []string
}

// NewIndex copies rows and indexes them. Row order is preserved.
func NewIndex(rows []entities.CatalogRow) *Index {
	idx := &Index{
		rows:   make([]entities.CatalogRow, len(rows)),
		byExam: make(map[string][]int),
		bySite: make(map[string][]int),
	}
	copy(idx.rows, rows)

	for i, row := range idx.rows {
		if row.Exam != "" {
			if _, seen := idx.byExam[row.Exam]; !seen {
				idx.exams = append(idx.exams, row.Exam)
			}
			idx.byExam[row.Exam] = append(idx.byExam[row.Exam], i)
		}
		if row.Site != "" {
			if _, seen := idx.bySite[row.Site]; !seen {
				idx.sites = append(idx.sites, row.Site)
			}
			idx.bySite[row.Site] = append(idx.bySite[row.Site], i)
		}
	}
	return idx
}

// Len returns the number of rows, duplicates included.
func (i *Index) Len() int {
	return len(i.rows)
}

// Exams returns distinct non-empty exam names in first-seen order.
func (i *Index) Exams() []string {
	return append([]string(nil), i.exams...)
}

// Sites returns distinct non-empty site names in first-seen order.
func (i *Index) Sites() []string {
	return append([]string(nil), i.sites...)
}

// HasExam reports whether exam appears verbatim in the catalog.
func (i *Index) HasExam(exam string) bool {
	_, ok := i.byExam[exam]
	return ok
}

// RowsForExam returns the rows whose exam equals exam.
func (i *Index) RowsForExam(exam string) []entities.CatalogRow {
	return i.collect(i.byExam[exam])
}

// RowsForSites returns the rows whose site is one of sites, in source order.
func (i *Index) RowsForSites(sites []string) []entities.CatalogRow {
	var positions []int
	seen := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		positions = append(positions, i.bySite[s]...)
	}
	sort.Ints(positions)
	return i.collect(positions)
}

// RowsFor returns the rows for exam whose site is one of sites.
func (i *Index) RowsFor(exam string, sites []string) []entities.CatalogRow {
	allowed := make(map[string]struct{}, len(sites))
	for _, s := range sites {
		allowed[s] = struct{}{}
	}
	var out []entities.CatalogRow
	for _, pos := range i.byExam[exam] {
		if _, ok := allowed[i.rows[pos].Site]; ok {
			out = append(out, i.rows[pos])
		}
	}
	return out
}

// SitesWithPrefix returns the distinct site names beginning with prefix
// (case-sensitive), in first-seen order.
func (i *Index) SitesWithPrefix(prefix string) []string {
	if prefix == "" {
		return nil
	}
	var out []string
	for _, s := range i.sites {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}

func (i *Index) collect(positions []int) []entities.CatalogRow {
	if len(positions) == 0 {
		return nil
	}
	out := make([]entities.CatalogRow, 0, len(positions))
	for _, pos := range positions {
		out = append(out, i.rows[pos])
	}
	return out
}

// Distinct projects rows through field and drops empty and repeated values,
// keeping first-seen order.
func Distinct(rows []entities.CatalogRow, field func(entities.CatalogRow) string) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, row := range rows {
		v := field(row)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Field selectors for Distinct.
func ExamOf(r entities.CatalogRow) string     { return r.Exam }
func SiteOf(r entities.CatalogRow) string     { return r.Site }
func RoomOf(r entities.CatalogRow) string     { return r.Room }
func DurationOf(r entities.CatalogRow) string { return strings.TrimSpace(r.Duration) }
