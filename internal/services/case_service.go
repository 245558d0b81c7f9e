package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

type CaseService struct {
	base
}

// load fetches a case the actor may see.
func (s *CaseService) load(ctx context.Context, actor Actor, caseID string) (*models.ClinicalCase, error) {
	c, err := s.store.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeePatient(c.PatientID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// loadActive is load plus a check that the case still accepts entries.
func (s *CaseService) loadActive(ctx context.Context, actor Actor, caseID string) (*models.ClinicalCase, error) {
	c, err := s.load(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive || c.Status == models.CaseClosed {
		return nil, ErrCaseInactive
	}
	return c, nil
}

// newCode builds a case code when the front desk leaves it blank.
func (s *CaseService) newCode() string {
	return "HC-" + s.now().In(s.loc).Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:6])
}

func (s *CaseService) newCase(patientID, code string) *models.ClinicalCase {
	code = strings.TrimSpace(code)
	if code == "" {
		code = s.newCode()
	}
	return &models.ClinicalCase{
		PatientID: patientID,
		CodeCase:  code,
		Status:    models.CaseOpen,
		IsActive:  true,
		StartDate: s.now(),
	}
}

func (s *CaseService) requirePatient(ctx context.Context, patientID string) (*models.User, error) {
	p, err := s.store.Users.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RolePatient {
		return nil, invalid("user is not a patient")
	}
	return p, nil
}

// Create opens a new case for a patient.
func (s *CaseService) Create(ctx context.Context, patientID, code string) (*models.ClinicalCase, error) {
	if _, err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	c := s.newCase(patientID, code)
	if err := s.store.Cases.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCaseCodeTaken
		}
		return nil, fmt.Errorf("creating case: %w", err)
	}
	return c, nil
}

// ListForPatient returns active cases first, newest first.
func (s *CaseService) ListForPatient(ctx context.Context, actor Actor, patientID string) ([]models.ClinicalCase, error) {
	if !actor.CanSeePatient(patientID) {
		return nil, ErrForbidden
	}
	return s.store.Cases.ListByPatient(ctx, patientID)
}

func (s *CaseService) Get(ctx context.Context, actor Actor, caseID string) (*models.ClinicalCase, error) {
	return s.load(ctx, actor, caseID)
}

// CaseDetail is everything the doctor's case screen shows.
type CaseDetail struct {
	Case             models.ClinicalCase         `json:"case"`
	Patient          *models.UserSanitized       `json:"patient,omitempty"`
	MedicalHistory   *models.MedicalHistory      `json:"medicalHistory,omitempty"`
	LatestTriage     *models.TriageRecord        `json:"latestTriage,omitempty"`
	Anamnesis        *models.Anamnesis           `json:"anamnesis,omitempty"`
	LabResults       []models.LabResult          `json:"labResults"`
	LatestAssessment *models.NeurologyAssessment `json:"latestAssessment,omitempty"`
	Prescriptions    []models.Prescription       `json:"prescriptions"`
	Appointments     []models.Appointment        `json:"appointments"`
}

func (s *CaseService) Detail(ctx context.Context, actor Actor, caseID string) (_ *CaseDetail, err error) {
	ctx, span := startSpan(ctx, "CaseService.Detail")
	defer func() { endSpan(span, err) }()

	c, err := s.load(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}

	d := &CaseDetail{}
	if c.Patient != nil {
		p := c.Patient.Sanitize()
		d.Patient = &p
	}
	c.Patient = nil
	d.Case = *c

	if d.MedicalHistory, err = optional(s.store.Histories.GetByPatient(ctx, c.PatientID)); err != nil {
		return nil, err
	}
	if d.LatestTriage, err = optional(s.store.Triage.LatestByCase(ctx, caseID)); err != nil {
		return nil, err
	}
	if d.Anamnesis, err = optional(s.store.Cases.GetAnamnesis(ctx, caseID)); err != nil {
		return nil, err
	}
	if d.LabResults, err = s.store.Labs.ListByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if d.LatestAssessment, err = optional(s.store.Assessments.LatestByCase(ctx, caseID)); err != nil {
		return nil, err
	}
	if d.Prescriptions, err = s.store.Prescriptions.ListByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if d.Appointments, err = s.store.Appointments.List(ctx, repository.AppointmentFilter{CaseID: caseID}); err != nil {
		return nil, err
	}
	return d, nil
}

// AnamnesisInput is the doctor's narrative history for a case.
type AnamnesisInput struct {
	CurrentIllness  string
	FamilyHistory   string
	PersonalHistory string
}

// SaveAnamnesis creates or replaces the case's anamnesis.
func (s *CaseService) SaveAnamnesis(ctx context.Context, actor Actor, caseID string, in AnamnesisInput) (*models.Anamnesis, error) {
	if _, err := s.loadActive(ctx, actor, caseID); err != nil {
		return nil, err
	}
	a := &models.Anamnesis{
		CaseID:          caseID,
		CurrentIllness:  strings.TrimSpace(in.CurrentIllness),
		FamilyHistory:   strings.TrimSpace(in.FamilyHistory),
		PersonalHistory: strings.TrimSpace(in.PersonalHistory),
		RecordedBy:      actor.UserID,
	}
	if err := s.store.Cases.SaveAnamnesis(ctx, a); err != nil {
		return nil, fmt.Errorf("saving anamnesis: %w", err)
	}
	return a, nil
}

// SetStatus moves a case through open → in_treatment → closed. Closing
// deactivates the case.
func (s *CaseService) SetStatus(ctx context.Context, actor Actor, caseID string, status models.CaseStatus) (*models.ClinicalCase, error) {
	c, err := s.loadActive(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}
	switch status {
	case models.CaseOpen, models.CaseInTreatment:
		c.Status = status
	case models.CaseClosed:
		now := s.now()
		c.Status = models.CaseClosed
		c.IsActive = false
		c.ClosedAt = &now
	default:
		return nil, invalid(fmt.Sprintf("status %q is not valid", status))
	}
	c.Patient = nil
	if err := s.store.Cases.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating case: %w", err)
	}
	return c, nil
}
