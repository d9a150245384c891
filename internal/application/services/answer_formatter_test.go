package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

func TestFormatAnswer_Headlines(t *testing.T) {
	const (
		exam = "CT HEAD WO IV CONTRAST"
		loc  = "1470 MADISON AVE"
	)
	answered := func(intent entities.Intent, items ...string) *entities.Answer {
		return &entities.Answer{Intent: intent, Status: entities.StatusAnswered, Exam: exam, Location: loc, Available: true, Items: items}
	}
	empty := func(intent entities.Intent) *entities.Answer {
		return &entities.Answer{Intent: intent, Status: entities.StatusNoData, Exam: exam, Location: loc}
	}

	tests := []struct {
		name   string
		answer *entities.Answer
		want   string
	}{
		{"exam at site yes", answered(entities.IntentExamAtSite, "1470 MADISON AVE RAD CT"), "✅ Yes, CT HEAD WO IV CONTRAST is performed at 1470 MADISON AVE."},
		{"exam at site no", empty(entities.IntentExamAtSite), "❌ No, CT HEAD WO IV CONTRAST is not listed at 1470 MADISON AVE."},
		{"locations", answered(entities.IntentLocationsForExam, "A", "B"), "CT HEAD WO IV CONTRAST is performed at:\n• A\n• B"},
		{"locations empty", empty(entities.IntentLocationsForExam), "Sorry, I couldn’t find any locations for CT HEAD WO IV CONTRAST."},
		{"exams at site", answered(entities.IntentExamsAtSite, "X"), "Exams offered at 1470 MADISON AVE:\n• X"},
		{"exams at site empty", empty(entities.IntentExamsAtSite), "No exams found for 1470 MADISON AVE."},
		{"duration", answered(entities.IntentExamDuration, "20"), "The visit length for CT HEAD WO IV CONTRAST is 20 minutes."},
		{"duration empty", empty(entities.IntentExamDuration), "Sorry, I couldn’t find a visit duration for CT HEAD WO IV CONTRAST."},
		{"rooms at site", answered(entities.IntentRoomsForExamAtSite, "HESS CT ROOM 6"), "Rooms at 1470 MADISON AVE performing CT HEAD WO IV CONTRAST:\n• HESS CT ROOM 6"},
		{"rooms at site empty", empty(entities.IntentRoomsForExamAtSite), "No matching rooms found for CT HEAD WO IV CONTRAST at 1470 MADISON AVE."},
		{"rooms", answered(entities.IntentRoomsForExam, "MSM CT 1"), "Rooms performing CT HEAD WO IV CONTRAST:\n• MSM CT 1"},
		{"rooms empty", empty(entities.IntentRoomsForExam), "No matching rooms found for CT HEAD WO IV CONTRAST."},
		{"unsupported", &entities.Answer{Status: entities.StatusUnsupported}, "Sorry, I couldn’t understand that scheduling question."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := FormatAnswer(tt.answer)
			assert.Truef(t, strings.HasPrefix(text, tt.want), "got %q", text)
		})
	}
}

func TestFormatAnswer_NotesAndFooterFollowBody(t *testing.T) {
	ans := &entities.Answer{
		Intent:   entities.IntentExamsAtSite,
		Status:   entities.StatusAnswered,
		Location: "1470 MADISON AVE",
		Items:    []string{"MRI BRAIN WO IV CONTRAST"},
		Notes:    []entities.LocationNote{{Note: "HESS MRI 2 down"}},
	}

	assert.Equal(t, "Exams offered at 1470 MADISON AVE:\n• MRI BRAIN WO IV CONTRAST"+
		"\n\nLOCATION NOTES (1470 MADISON AVE):\n• HESS MRI 2 down"+
		"\n\nI matched your question to location \"1470 MADISON AVE\". If that's not what you meant, please rephrase.",
		FormatAnswer(ans))
}
