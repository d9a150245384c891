package entities

import (
	"strings"
	"time"
)

// DisabledExam marks an (exam, site) pair as temporarily unavailable.
type DisabledExam struct {
	ID        string    `json:"id,omitempty"`
	Exam      string    `json:"exam"`
	Site      string    `json:"site"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Matches reports a case-insensitive exact hit on both fields.
func (d DisabledExam) Matches(exam, site string) bool {
	return strings.EqualFold(d.Exam, exam) && strings.EqualFold(d.Site, site)
}

// LocationNote is an operational note attached to a resolved location prefix.
type LocationNote struct {
	ID        string    `json:"id,omitempty"`
	Location  string    `json:"location"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalState is the full override journal as persisted.
type JournalState struct {
	DisabledExams []DisabledExam `json:"disabled_exams"`
	LocationNotes []LocationNote `json:"location_notes"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// NewJournalState returns an empty journal.
func NewJournalState() *JournalState {
	return &JournalState{
		DisabledExams: []DisabledExam{},
		LocationNotes: []LocationNote{},
	}
}

// Clone returns a deep copy safe to mutate.
func (s *JournalState) Clone() *JournalState {
	if s == nil {
		return NewJournalState()
	}
	out := &JournalState{
		DisabledExams: make([]DisabledExam, len(s.DisabledExams)),
		LocationNotes: make([]LocationNote, len(s.LocationNotes)),
		UpdatedAt:     s.UpdatedAt,
	}
	copy(out.DisabledExams, s.DisabledExams)
	copy(out.LocationNotes, s.LocationNotes)
	return out
}
