package services

import (
	"sort"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// JournalReader is the read side of the override journal used by handlers.
type JournalReader interface {
	DisabledEntry(exam, site string) (entities.DisabledExam, bool)
	NotesFor(prefix string) []entities.LocationNote
}

// QueryHandlers answers the six question types from already resolved
// canonical names. Handlers never see user text.
type QueryHandlers struct {
	journal JournalReader
}

// NewQueryHandlers creates the handlers over journal.
func NewQueryHandlers(journal JournalReader) *QueryHandlers {
	return &QueryHandlers{journal: journal}
}

// ExamAtSite reports whether exam is offered at any site of the location.
// A site counts only when neither the site nor the location prefix is
// disabled for exam. A disabled pair is unavailable whether or not the
// catalog lists it.
func (h *QueryHandlers) ExamAtSite(snap *catalog.Snapshot, exam string, site *SiteResolution) *entities.Answer {
	ans := siteAnswer(entities.IntentExamAtSite, exam, site)
	ans.Notes = h.journal.NotesFor(site.Prefix)

	rows := snap.Index.RowsFor(exam, site.Sites)
	if len(rows) == 0 {
		seen := make(map[string]struct{})
		for _, s := range site.Sites {
			d, off := h.disabled(exam, s, site.Prefix)
			if _, dup := seen[d.Site]; !off || dup {
				continue
			}
			seen[d.Site] = struct{}{}
			ans.Disabled = append(ans.Disabled, d)
		}
		if len(ans.Disabled) == 0 {
			ans.Status = entities.StatusNoData
			return ans
		}
		ans.Status = entities.StatusAnswered
		return ans
	}

	for _, s := range catalog.Distinct(rows, catalog.SiteOf) {
		if d, off := h.disabled(exam, s, site.Prefix); off {
			ans.Disabled = append(ans.Disabled, d)
			continue
		}
		ans.Items = append(ans.Items, s)
	}
	ans.Available = len(ans.Items) > 0
	ans.Status = entities.StatusAnswered
	return ans
}

// LocationsForExam lists the sites performing exam. Disabled sites stay in
// the list and are reported in Disabled.
func (h *QueryHandlers) LocationsForExam(snap *catalog.Snapshot, exam string) *entities.Answer {
	ans := examAnswer(entities.IntentLocationsForExam, exam)
	ans.Items = catalog.Distinct(snap.Index.RowsForExam(exam), catalog.SiteOf)
	for _, s := range ans.Items {
		if d, off := h.journal.DisabledEntry(exam, s); off {
			ans.Disabled = append(ans.Disabled, d)
		}
	}
	return finish(ans)
}

// ExamsAtSite lists the exams performed at any site of the location.
func (h *QueryHandlers) ExamsAtSite(snap *catalog.Snapshot, site *SiteResolution) *entities.Answer {
	ans := siteAnswer(entities.IntentExamsAtSite, "", site)
	ans.Notes = h.journal.NotesFor(site.Prefix)
	ans.Items = catalog.Distinct(snap.Index.RowsForSites(site.Sites), catalog.ExamOf)
	return finish(ans)
}

// ExamDuration lists the distinct scheduled durations of exam.
func (h *QueryHandlers) ExamDuration(snap *catalog.Snapshot, exam string) *entities.Answer {
	ans := examAnswer(entities.IntentExamDuration, exam)
	ans.Items = catalog.Distinct(snap.Index.RowsForExam(exam), catalog.DurationOf)
	return finish(ans)
}

// RoomsForExamAtSite lists, sorted, the rooms performing exam that the room
// naming rule attributes to the location.
func (h *QueryHandlers) RoomsForExamAtSite(snap *catalog.Snapshot, exam string, site *SiteResolution) *entities.Answer {
	ans := siteAnswer(entities.IntentRoomsForExamAtSite, exam, site)
	ans.Notes = h.journal.NotesFor(site.Prefix)

	var rooms []string
	for _, room := range catalog.Distinct(snap.Index.RowsForExam(exam), catalog.RoomOf) {
		if snap.Rooms.BelongsTo(room, site.Prefix) {
			rooms = append(rooms, room)
		}
	}
	sort.Strings(rooms)
	ans.Items = rooms
	return finish(ans)
}

// RoomsForExam lists, sorted, every room performing exam.
func (h *QueryHandlers) RoomsForExam(snap *catalog.Snapshot, exam string) *entities.Answer {
	ans := examAnswer(entities.IntentRoomsForExam, exam)
	rooms := catalog.Distinct(snap.Index.RowsForExam(exam), catalog.RoomOf)
	sort.Strings(rooms)
	ans.Items = rooms
	return finish(ans)
}

func (h *QueryHandlers) disabled(exam, site, prefix string) (entities.DisabledExam, bool) {
	if d, ok := h.journal.DisabledEntry(exam, site); ok {
		return d, true
	}
	return h.journal.DisabledEntry(exam, prefix)
}

func examAnswer(intent entities.Intent, exam string) *entities.Answer {
	return &entities.Answer{Intent: intent, Exam: exam}
}

func siteAnswer(intent entities.Intent, exam string, site *SiteResolution) *entities.Answer {
	return &entities.Answer{
		Intent:   intent,
		Exam:     exam,
		Location: site.Prefix,
		Sites:    append([]string(nil), site.Sites...),
	}
}

func finish(ans *entities.Answer) *entities.Answer {
	if len(ans.Items) == 0 {
		ans.Status = entities.StatusNoData
	} else {
		ans.Status = entities.StatusAnswered
	}
	return ans
}
