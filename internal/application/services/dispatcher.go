package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sinai-nexus/scheduling/internal/catalog"
	"github.com/sinai-nexus/scheduling/internal/domain/entities"
	"github.com/sinai-nexus/scheduling/internal/infrastructure/observability"
	apperrors "github.com/sinai-nexus/scheduling/pkg/errors"
)

// Reply is a dispatched answer and its rendered text.
type Reply struct {
	Text   string           `json:"text"`
	Answer *entities.Answer `json:"answer"`
}

// Dispatcher routes classified questions to the query handlers, resolving
// entities on demand against one catalog snapshot per question.
type Dispatcher struct {
	catalog  *catalog.Store
	resolver *Resolver
	handlers *QueryHandlers
	metrics  *observability.Metrics
}

// NewDispatcher wires the dispatcher.
func NewDispatcher(catalogStore *catalog.Store, resolver *Resolver, journal JournalReader, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		catalog:  catalogStore,
		resolver: resolver,
		handlers: NewQueryHandlers(journal),
		metrics:  metrics,
	}
}

// Answer resolves the entities rec needs and runs the matching handler.
// Unrecognized input is reported in the answer status; an error is returned
// only when no catalog is loaded.
func (d *Dispatcher) Answer(ctx context.Context, rec entities.IntentRecord) (*Reply, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "dispatcher.Answer")
	defer span.End()
	span.SetAttributes(attribute.String("intent", string(rec.Intent)))

	snap := d.catalog.Snapshot()
	if snap == nil {
		err := apperrors.NewConfigurationError("catalog is not loaded", nil)
		observability.RecordError(span, err)
		return nil, err
	}

	ans := d.answer(ctx, snap, rec)
	ans.ExamQuery = rec.Exam
	ans.SiteQuery = rec.Site

	span.SetAttributes(
		attribute.String("status", string(ans.Status)),
		attribute.String("exam", ans.Exam),
		attribute.String("location", ans.Location),
	)
	observability.RecordAnswer(ctx, d.metrics, string(rec.Intent), string(ans.Status), time.Since(start))
	observability.LoggerFromContext(ctx).Debug().
		Str("intent", string(rec.Intent)).
		Str("status", string(ans.Status)).
		Str("exam", ans.Exam).
		Str("prefix", ans.Location).
		Msg("question answered")

	return &Reply{Text: FormatAnswer(ans), Answer: ans}, nil
}

func (d *Dispatcher) answer(ctx context.Context, snap *catalog.Snapshot, rec entities.IntentRecord) *entities.Answer {
	intent := rec.Intent
	if !intent.IsValid() {
		return &entities.Answer{Intent: intent, Status: entities.StatusUnsupported}
	}

	general := d.resolver.Normalizers().General
	if intent.NeedsExam() && general.Normalize(rec.Exam) == "" {
		return &entities.Answer{Intent: intent, Status: entities.StatusMissingExam}
	}
	if intent.NeedsSite() && general.Normalize(rec.Site) == "" {
		return &entities.Answer{Intent: intent, Status: entities.StatusMissingSite}
	}

	var exam *ExamResolution
	if intent.NeedsExam() {
		var ok bool
		if exam, ok = d.resolver.ResolveExam(ctx, snap, rec.Exam); !ok {
			return &entities.Answer{Intent: intent, Status: entities.StatusExamNotRecognized}
		}
	}
	var site *SiteResolution
	if intent.NeedsSite() {
		var ok bool
		if site, ok = d.resolver.ResolveSite(ctx, snap, rec.Site); !ok {
			ans := &entities.Answer{Intent: intent, Status: entities.StatusSiteNotRecognized}
			if exam != nil {
				ans.Exam = exam.Exam
			}
			return ans
		}
	}

	var ans *entities.Answer
	switch intent {
	case entities.IntentExamAtSite:
		ans = d.handlers.ExamAtSite(snap, exam.Exam, site)
	case entities.IntentLocationsForExam:
		ans = d.handlers.LocationsForExam(snap, exam.Exam)
	case entities.IntentExamsAtSite:
		ans = d.handlers.ExamsAtSite(snap, site)
	case entities.IntentExamDuration:
		ans = d.handlers.ExamDuration(snap, exam.Exam)
	case entities.IntentRoomsForExamAtSite:
		ans = d.handlers.RoomsForExamAtSite(snap, exam.Exam, site)
	case entities.IntentRoomsForExam:
		ans = d.handlers.RoomsForExam(snap, exam.Exam)
	}

	if exam != nil {
		ans.ExamAlternatives = exam.Alternatives
		ans.CollapsedExams = exam.Collapsed
	}
	if site != nil {
		ans.LocationAlternatives = site.Alternatives
	}
	return ans
}
