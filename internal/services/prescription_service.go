package services

import (
	"context"
	"fmt"
	"strings"

	"neuroclinic-server/internal/models"
)

type PrescriptionService struct {
	base
	cases *CaseService
}

type PrescriptionItemInput struct {
	Medication   string
	Dose         string
	Frequency    string
	Duration     string
	Instructions string
}

type PrescriptionInput struct {
	CaseID string
	Notes  string
	Items  []PrescriptionItemInput
}

// Create issues a prescription with at least one medication line.
func (s *PrescriptionService) Create(ctx context.Context, actor Actor, in PrescriptionInput) (*models.Prescription, error) {
	if actor.Role != models.RoleDoctor {
		return nil, ErrForbidden
	}
	if len(in.Items) == 0 {
		return nil, invalid("at least one item is required")
	}
	var fields []string
	items := make([]models.PrescriptionItem, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.Medication) == "" {
			fields = append(fields, fmt.Sprintf("items[%d].medication is required", i))
			continue
		}
		items = append(items, models.PrescriptionItem{
			Medication:   strings.TrimSpace(it.Medication),
			Dose:         strings.TrimSpace(it.Dose),
			Frequency:    strings.TrimSpace(it.Frequency),
			Duration:     strings.TrimSpace(it.Duration),
			Instructions: strings.TrimSpace(it.Instructions),
		})
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	c, err := s.cases.loadActive(ctx, actor, in.CaseID)
	if err != nil {
		return nil, err
	}

	p := &models.Prescription{
		CaseID:    c.ID,
		DoctorID:  actor.UserID,
		PatientID: c.PatientID,
		Notes:     strings.TrimSpace(in.Notes),
		Items:     items,
	}
	if err := s.store.Prescriptions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating prescription: %w", err)
	}
	s.metrics.IncPrescription()
	return p, nil
}

func (s *PrescriptionService) ListByCase(ctx context.Context, actor Actor, caseID string) ([]models.Prescription, error) {
	if _, err := s.cases.load(ctx, actor, caseID); err != nil {
		return nil, err
	}
	return s.store.Prescriptions.ListByCase(ctx, caseID)
}

func (s *PrescriptionService) ListForPatient(ctx context.Context, actor Actor, patientID string) ([]models.Prescription, error) {
	if !actor.CanSeePatient(patientID) {
		return nil, ErrForbidden
	}
	return s.store.Prescriptions.ListByPatient(ctx, patientID)
}
