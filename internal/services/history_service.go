package services

import (
	"context"
	"fmt"
	"strings"

	"neuroclinic-server/internal/models"
)

type HistoryService struct {
	base
}

// HistoryInput takes allergies and chronic conditions as comma-separated text.
type HistoryInput struct {
	PatientID         string
	BloodType         string
	Allergies         string
	ChronicConditions string
}

var bloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// Save upserts the patient's single history row.
func (s *HistoryService) Save(ctx context.Context, actor Actor, in HistoryInput) (*models.MedicalHistory, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	bt := strings.ToUpper(strings.TrimSpace(in.BloodType))
	if bt != "" && !bloodTypes[bt] {
		return nil, invalid(fmt.Sprintf("bloodType %q is not valid", in.BloodType))
	}
	patient, err := s.store.Users.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient.Role != models.RolePatient {
		return nil, invalid("user is not a patient")
	}

	h := &models.MedicalHistory{
		PatientID:         in.PatientID,
		BloodType:         bt,
		Allergies:         models.SplitList(in.Allergies),
		ChronicConditions: models.SplitList(in.ChronicConditions),
		UpdatedBy:         actor.UserID,
	}
	if err := s.store.Histories.Upsert(ctx, h); err != nil {
		return nil, fmt.Errorf("saving medical history: %w", err)
	}
	return h, nil
}

func (s *HistoryService) Get(ctx context.Context, actor Actor, patientID string) (*models.MedicalHistory, error) {
	if !actor.CanSeePatient(patientID) {
		return nil, ErrForbidden
	}
	return s.store.Histories.GetByPatient(ctx, patientID)
}
