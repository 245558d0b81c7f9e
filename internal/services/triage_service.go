package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/triage"
)

type TriageService struct {
	base
	cases *CaseService
}

type TriageInput struct {
	CaseID string
	Vitals triage.Vitals
	Notes  string
}

// Record updates the case's latest triage record, or inserts the first one.
func (s *TriageService) Record(ctx context.Context, actor Actor, in TriageInput) (_ *models.TriageRecord, err error) {
	ctx, span := startSpan(ctx, "TriageService.Record", attribute.String("case.id", in.CaseID))
	defer func() { endSpan(span, err) }()

	if !actor.Is(models.RoleNurse, models.RoleDoctor) {
		return nil, ErrForbidden
	}
	if fields := triage.Validate(in.Vitals); len(fields) > 0 {
		return nil, invalid(fields...)
	}
	if _, err := s.cases.loadActive(ctx, actor, in.CaseID); err != nil {
		return nil, err
	}

	rec, err := optional(s.store.Triage.LatestByCase(ctx, in.CaseID))
	if err != nil {
		return nil, err
	}
	previous := triage.PriorityLow
	if rec == nil {
		rec = &models.TriageRecord{CaseID: in.CaseID}
	} else {
		previous = rec.Priority
	}
	rec.NurseID = actor.UserID
	rec.Notes = strings.TrimSpace(in.Notes)
	rec.ApplyVitals(in.Vitals)

	if err := s.store.Triage.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving triage: %w", err)
	}

	s.metrics.IncTriage(string(rec.Priority))
	if rec.Priority.Rank() > previous.Rank() {
		s.log.Warn("triage priority raised",
			zap.String("case_id", in.CaseID),
			zap.String("triage_id", rec.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(rec.Priority)),
		)
	}
	span.SetAttributes(attribute.String("triage.priority", string(rec.Priority)))
	return rec, nil
}

func (s *TriageService) Latest(ctx context.Context, actor Actor, caseID string) (*models.TriageRecord, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Triage.LatestByCase(ctx, caseID)
}

func (s *TriageService) History(ctx context.Context, actor Actor, caseID string) ([]models.TriageRecord, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Triage.ListByCase(ctx, caseID)
}
