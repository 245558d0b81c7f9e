package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neuroclinic-server/internal/models"
)

type caseRepo struct {
	db *gorm.DB
}

func (r *caseRepo) Create(ctx context.Context, c *models.ClinicalCase) error {
	return translate(r.db.WithContext(ctx).Omit("Patient").Create(c).Error)
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (*models.ClinicalCase, error) {
	var c models.ClinicalCase
	if err := r.db.WithContext(ctx).Preload("Patient").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *caseRepo) ListByPatient(ctx context.Context, patientID string) ([]models.ClinicalCase, error) {
	var out []models.ClinicalCase
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("is_active DESC, start_date DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *caseRepo) Update(ctx context.Context, c *models.ClinicalCase) error {
	return translate(r.db.WithContext(ctx).Omit("Patient").Save(c).Error)
}

func (r *caseRepo) GetAnamnesis(ctx context.Context, caseID string) (*models.Anamnesis, error) {
	var a models.Anamnesis
	if err := r.db.WithContext(ctx).Where("case_id = ?", caseID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *caseRepo) SaveAnamnesis(ctx context.Context, a *models.Anamnesis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Anamnesis
		err := tx.Where("case_id = ?", a.CaseID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(a).Error
		case err != nil:
			return err
		}
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
		return tx.Save(a).Error
	})
}
