package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sinai-nexus/scheduling/internal/domain/entities"
)

// FormatAnswer renders an answer as the multi-line text shown to users.
// Downstream consumers display it verbatim.
func FormatAnswer(ans *entities.Answer) string {
	var b strings.Builder

	writeBody(&b, ans)

	if len(ans.Notes) > 0 {
		fmt.Fprintf(&b, "\n\nLOCATION NOTES (%s):", ans.Location)
		for _, n := range ans.Notes {
			fmt.Fprintf(&b, "\n• %s", n.Note)
		}
	}

	if ans.Resolved() {
		writeFooter(&b, ans)
	}
	return b.String()
}

func writeBody(b *strings.Builder, ans *entities.Answer) {
	switch ans.Status {
	case entities.StatusUnsupported:
		b.WriteString("Sorry, I couldn’t understand that scheduling question.")
		return
	case entities.StatusMissingExam:
		b.WriteString("Which exam are you asking about? Please include the exam name.")
		return
	case entities.StatusMissingSite:
		b.WriteString("Which location are you asking about? Please include the site or address.")
		return
	case entities.StatusExamNotRecognized:
		fmt.Fprintf(b, "Sorry, I couldn't recognize the exam %q. Please check the exam name and try again.", ans.ExamQuery)
		return
	case entities.StatusSiteNotRecognized:
		fmt.Fprintf(b, "Sorry, I couldn't recognize the location %q. Please check the site name and try again.", ans.SiteQuery)
		return
	}

	noData := ans.Status == entities.StatusNoData
	switch ans.Intent {
	case entities.IntentExamAtSite:
		switch {
		case noData:
			fmt.Fprintf(b, "❌ No, %s is not listed at %s.", ans.Exam, ans.Location)
		case ans.Available:
			fmt.Fprintf(b, "✅ Yes, %s is performed at %s.", ans.Exam, ans.Location)
			bullets(b, ans.Items)
		default:
			fmt.Fprintf(b, "❌ No, %s is temporarily unavailable at %s.", ans.Exam, ans.Location)
			for _, d := range ans.Disabled {
				fmt.Fprintf(b, "\n• %s: %s", d.Site, d.Reason)
			}
		}

	case entities.IntentLocationsForExam:
		if noData {
			fmt.Fprintf(b, "Sorry, I couldn’t find any locations for %s.", ans.Exam)
			return
		}
		fmt.Fprintf(b, "%s is performed at:", ans.Exam)
		for _, site := range ans.Items {
			fmt.Fprintf(b, "\n• %s", site)
			for _, d := range ans.Disabled {
				if d.Site == site {
					fmt.Fprintf(b, " (temporarily unavailable: %s)", d.Reason)
					break
				}
			}
		}

	case entities.IntentExamsAtSite:
		if noData {
			fmt.Fprintf(b, "No exams found for %s.", ans.Location)
			return
		}
		fmt.Fprintf(b, "Exams offered at %s:", ans.Location)
		bullets(b, ans.Items)

	case entities.IntentExamDuration:
		switch {
		case noData:
			fmt.Fprintf(b, "Sorry, I couldn’t find a visit duration for %s.", ans.Exam)
		case len(ans.Items) == 1:
			fmt.Fprintf(b, "The visit length for %s is %s.", ans.Exam, minutes(ans.Items[0]))
		default:
			fmt.Fprintf(b, "The visit length for %s depends on the site:", ans.Exam)
			for _, d := range ans.Items {
				fmt.Fprintf(b, "\n• %s", minutes(d))
			}
		}

	case entities.IntentRoomsForExamAtSite:
		if noData {
			fmt.Fprintf(b, "No matching rooms found for %s at %s.", ans.Exam, ans.Location)
			return
		}
		fmt.Fprintf(b, "Rooms at %s performing %s:", ans.Location, ans.Exam)
		bullets(b, ans.Items)

	case entities.IntentRoomsForExam:
		if noData {
			fmt.Fprintf(b, "No matching rooms found for %s.", ans.Exam)
			return
		}
		fmt.Fprintf(b, "Rooms performing %s:", ans.Exam)
		bullets(b, ans.Items)
	}
}

func writeFooter(b *strings.Builder, ans *entities.Answer) {
	var matched []string
	if ans.Exam != "" {
		matched = append(matched, fmt.Sprintf("exam %q", ans.Exam))
	}
	if ans.Location != "" {
		matched = append(matched, fmt.Sprintf("location %q", ans.Location))
	}
	if len(matched) == 0 {
		return
	}

	fmt.Fprintf(b, "\n\nI matched your question to %s. If that's not what you meant, please rephrase.", strings.Join(matched, " and "))
	if len(ans.CollapsedExams) > 0 {
		fmt.Fprintf(b, "\nThese catalog names were treated as the same exam: %s.", strings.Join(ans.CollapsedExams, "; "))
	}
	if len(ans.ExamAlternatives) > 0 {
		fmt.Fprintf(b, "\nOther close exam matches: %s.", strings.Join(ans.ExamAlternatives, "; "))
	}
	if len(ans.LocationAlternatives) > 0 {
		fmt.Fprintf(b, "\nOther close location matches: %s.", strings.Join(ans.LocationAlternatives, "; "))
	}
}

func bullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "\n• %s", item)
	}
}

// minutes appends the unit to plain numbers and leaves other text alone.
func minutes(d string) string {
	if _, err := strconv.ParseFloat(d, 64); err == nil {
		return d + " minutes"
	}
	return d
}
