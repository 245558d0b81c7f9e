package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"neuroclinic-server/internal/models"
)

type LabService struct {
	base
	cases *CaseService
}

type LabInput struct {
	CaseID      string
	Type        string
	Description string
	Results     map[string]any
	ResultText  string
	AnalyzedAt  *time.Time
}

func (s *LabService) Create(ctx context.Context, actor Actor, in LabInput) (*models.LabResult, error) {
	if !actor.Is(models.RoleDoctor, models.RoleNurse) {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, invalid("type is required")
	}
	if len(in.Results) == 0 && strings.TrimSpace(in.ResultText) == "" && strings.TrimSpace(in.Description) == "" {
		return nil, invalid("results, resultText or description is required")
	}
	if _, err := s.cases.loadActive(ctx, actor, in.CaseID); err != nil {
		return nil, err
	}

	lab := &models.LabResult{
		CaseID:      in.CaseID,
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		ResultText:  strings.TrimSpace(in.ResultText),
		AnalyzedAt:  in.AnalyzedAt,
		RecordedBy:  actor.UserID,
	}
	if len(in.Results) > 0 {
		lab.ResultsJSON = datatypes.JSONMap(in.Results)
	}
	if err := s.store.Labs.Create(ctx, lab); err != nil {
		return nil, fmt.Errorf("creating lab result: %w", err)
	}
	return lab, nil
}

// ListByCase returns the case's lab results, newest first.
func (s *LabService) ListByCase(ctx context.Context, actor Actor, caseID string) ([]models.LabResult, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Labs.ListByCase(ctx, caseID)
}
