package entities

// AnswerStatus classifies how a question was answered.
type AnswerStatus string

const (
	StatusAnswered          AnswerStatus = "answered"
	StatusNoData            AnswerStatus = "no_data" // entities resolved, catalog has no matching rows
	StatusExamNotRecognized AnswerStatus = "exam_not_recognized"
	StatusSiteNotRecognized AnswerStatus = "site_not_recognized"
	StatusMissingExam       AnswerStatus = "missing_exam"
	StatusMissingSite       AnswerStatus = "missing_site"
	StatusUnsupported       AnswerStatus = "unsupported_intent"
)

// Answer is the structured result of a query handler. Exam and Location
// carry the canonical names actually used so callers can echo them back.
type Answer struct {
	Intent Intent       `json:"intent"`
	Status AnswerStatus `json:"status"`

	ExamQuery string `json:"exam_query,omitempty"`
	SiteQuery string `json:"site_query,omitempty"`

	Exam     string   `json:"exam,omitempty"`
	Location string   `json:"location,omitempty"`
	Sites    []string `json:"sites,omitempty"`

	Available bool     `json:"available"`
	Items     []string `json:"items,omitempty"`

	Disabled []DisabledExam `json:"disabled,omitempty"`
	Notes    []LocationNote `json:"notes,omitempty"`

	ExamAlternatives     []string `json:"exam_alternatives,omitempty"`
	LocationAlternatives []string `json:"location_alternatives,omitempty"`
	CollapsedExams       []string `json:"collapsed_exams,omitempty"`
}

// Resolved reports whether every entity the intent needs was recognized.
func (a *Answer) Resolved() bool {
	return a.Status == StatusAnswered || a.Status == StatusNoData
}
