package entities

// Intent is a question type produced by the external intent classifier.
type Intent string

const (
	IntentExamAtSite         Intent = "exam_at_site"           // "Is CT head done at 1176 5th Ave?"
	IntentLocationsForExam   Intent = "locations_for_exam"     // "Where is MRI brain done?"
	IntentExamsAtSite        Intent = "exams_at_site"          // "What exams does Hess do?"
	IntentExamDuration       Intent = "exam_duration"          // "How long is a CT head?"
	IntentRoomsForExamAtSite Intent = "rooms_for_exam_at_site" // "Which rooms at Hess do CT head?"
	IntentRoomsForExam       Intent = "rooms_for_exam"         // "Which rooms do CT head?"
)

// ValidIntents returns all supported intents.
func ValidIntents() []Intent {
	return []Intent{
		IntentExamAtSite,
		IntentLocationsForExam,
		IntentExamsAtSite,
		IntentExamDuration,
		IntentRoomsForExamAtSite,
		IntentRoomsForExam,
	}
}

// IsValid checks if the intent value is one of the defined constants.
func (i Intent) IsValid() bool {
	for _, v := range ValidIntents() {
		if i == v {
			return true
		}
	}
	return false
}

// NeedsExam reports whether answering the intent requires an exam.
func (i Intent) NeedsExam() bool {
	return i != IntentExamsAtSite
}

// NeedsSite reports whether answering the intent requires a site.
func (i Intent) NeedsSite() bool {
	switch i {
	case IntentExamAtSite, IntentExamsAtSite, IntentRoomsForExamAtSite:
		return true
	}
	return false
}

// IntentRecord is the classifier output consumed by the dispatcher.
// Empty Exam or Site means "not provided".
type IntentRecord struct {
	Intent Intent `json:"intent"`
	Exam   string `json:"exam,omitempty"`
	Site   string `json:"site,omitempty"`
}
