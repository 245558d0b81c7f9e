package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neuroclinic-server/internal/models"
)

type triageRepo struct {
	db *gorm.DB
}

func (r *triageRepo) LatestByCase(ctx context.Context, caseID string) (*models.TriageRecord, error) {
	var t models.TriageRecord
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at DESC").First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *triageRepo) ListByCase(ctx context.Context, caseID string) ([]models.TriageRecord, error) {
	var out []models.TriageRecord
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *triageRepo) Save(ctx context.Context, t *models.TriageRecord) error {
	if t.ID == "" {
		return r.db.WithContext(ctx).Create(t).Error
	}
	return r.db.WithContext(ctx).Save(t).Error
}

type historyRepo struct {
	db *gorm.DB
}

func (r *historyRepo) GetByPatient(ctx context.Context, patientID string) (*models.MedicalHistory, error) {
	var h models.MedicalHistory
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *historyRepo) Upsert(ctx context.Context, h *models.MedicalHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MedicalHistory
		err := tx.Where("patient_id = ?", h.PatientID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(h).Error
		case err != nil:
			return err
		}
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
		return tx.Save(h).Error
	})
}

type labRepo struct {
	db *gorm.DB
}

func (r *labRepo) Create(ctx context.Context, l *models.LabResult) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *labRepo) ListByCase(ctx context.Context, caseID string) ([]models.LabResult, error) {
	var out []models.LabResult
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at DESC").Find(&out).Error
	return out, err
}

type assessmentRepo struct {
	db *gorm.DB
}

func (r *assessmentRepo) Create(ctx context.Context, a *models.NeurologyAssessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assessmentRepo) LatestByCase(ctx context.Context, caseID string) (*models.NeurologyAssessment, error) {
	var a models.NeurologyAssessment
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at DESC").First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *assessmentRepo) ListByCase(ctx context.Context, caseID string) ([]models.NeurologyAssessment, error) {
	var out []models.NeurologyAssessment
	err := r.db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at DESC").Find(&out).Error
	return out, err
}

type prescriptionRepo struct {
	db *gorm.DB
}

// Create relies on gorm saving the Items association in the same transaction.
func (r *prescriptionRepo) Create(ctx context.Context, p *models.Prescription) error {
	return r.db.WithContext(ctx).Omit("Doctor").Create(p).Error
}

func (r *prescriptionRepo) list(ctx context.Context, column, id string) ([]models.Prescription, error) {
	var out []models.Prescription
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Doctor").
		Where(column+" = ?", id).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *prescriptionRepo) ListByCase(ctx context.Context, caseID string) ([]models.Prescription, error) {
	return r.list(ctx, "case_id", caseID)
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Prescription, error) {
	return r.list(ctx, "patient_id", patientID)
}
