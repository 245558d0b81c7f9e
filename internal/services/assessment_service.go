package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"neuroclinic-server/internal/assessment"
	"neuroclinic-server/internal/models"
)

type AssessmentService struct {
	base
	cases *CaseService
}

// AssessmentInput is a doctor's scored visit. Lenient clamps out-of-range
// items instead of rejecting them, matching the paper forms.
type AssessmentInput struct {
	CaseID        string
	HasChorea     bool
	Items         assessment.Sheet
	Lenient       bool
	ClinicalNotes string
	Diagnosis     string
}

// ScoredAssessment pairs the stored row with the per-instrument breakdown.
type ScoredAssessment struct {
	Assessment *models.NeurologyAssessment                 `json:"assessment"`
	Results    map[assessment.Instrument]assessment.Result `json:"results"`
}

func (s *AssessmentService) Submit(ctx context.Context, actor Actor, in AssessmentInput) (_ *ScoredAssessment, err error) {
	ctx, span := startSpan(ctx, "AssessmentService.Submit", attribute.String("case.id", in.CaseID))
	defer func() { endSpan(span, err) }()

	if actor.Role != models.RoleDoctor {
		return nil, ErrForbidden
	}
	if len(in.Items) == 0 {
		return nil, invalid("at least one instrument must be scored")
	}

	sheet := in.Items
	if in.Lenient {
		sheet = make(assessment.Sheet, len(in.Items))
		for inst, scores := range in.Items {
			if _, err := assessment.Items(inst); err != nil {
				return nil, invalid(err.Error())
			}
			sheet[inst] = assessment.Clamp(inst, scores)
		}
	}

	results, err := assessment.ScoreSheet(sheet)
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownInstrument) ||
			errors.Is(err, assessment.ErrUnknownItem) ||
			errors.Is(err, assessment.ErrOutOfRange) {
			return nil, invalid(err.Error())
		}
		return nil, err
	}

	if _, err := s.cases.loadActive(ctx, actor, in.CaseID); err != nil {
		return nil, err
	}

	row := &models.NeurologyAssessment{
		CaseID:        in.CaseID,
		DoctorID:      actor.UserID,
		HasChorea:     in.HasChorea,
		Items:         datatypes.NewJSONType(sheet),
		ClinicalNotes: strings.TrimSpace(in.ClinicalNotes),
		Diagnosis:     strings.TrimSpace(in.Diagnosis),
	}
	for inst, res := range results {
		row.SetScore(inst, res.Total)
		s.metrics.IncAssessment(string(inst))
	}

	if err := s.store.Assessments.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("saving assessment: %w", err)
	}
	return &ScoredAssessment{Assessment: row, Results: results}, nil
}

func (s *AssessmentService) Latest(ctx context.Context, actor Actor, caseID string) (*models.NeurologyAssessment, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Assessments.LatestByCase(ctx, caseID)
}

func (s *AssessmentService) History(ctx context.Context, actor Actor, caseID string) ([]models.NeurologyAssessment, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Assessments.ListByCase(ctx, caseID)
}

// Instrument describes one scale for form rendering.
type Instrument struct {
	Key   assessment.Instrument `json:"key"`
	Max   int                   `json:"max"`
	Items []assessment.Item     `json:"items"`
}

// Catalog lists every supported instrument with its items.
func (s *AssessmentService) Catalog() []Instrument {
	var out []Instrument
	for _, inst := range assessment.Instruments() {
		items, _ := assessment.Items(inst)
		out = append(out, Instrument{Key: inst, Max: assessment.MaxScore(inst), Items: items})
	}
	return out
}
