package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neuroclinic-server/internal/models"
)

type directoryRepo struct {
	db *gorm.DB
}

func (r *directoryRepo) ListSpecialties(ctx context.Context, activeOnly bool) ([]models.Specialty, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.Specialty
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (r *directoryRepo) CreateSpecialty(ctx context.Context, s *models.Specialty) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *directoryRepo) GetSpecialty(ctx context.Context, id string) (*models.Specialty, error) {
	var s models.Specialty
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *directoryRepo) ListDoctors(ctx context.Context, specialtyID, name string) ([]models.DoctorDetail, error) {
	q := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Specialty").
		Joins("JOIN users ON users.id = doctor_details.profile_id").
		Where("users.role = ?", models.RoleDoctor)
	if specialtyID != "" {
		q = q.Where("doctor_details.specialty_id = ?", specialtyID)
	}
	if name != "" {
		like := likeTerm(name)
		q = q.Where("LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?", like, like)
	}
	var out []models.DoctorDetail
	err := q.Order("users.last_name, users.first_name").Find(&out).Error
	return out, err
}

func (r *directoryRepo) GetDoctorDetail(ctx context.Context, profileID string) (*models.DoctorDetail, error) {
	var d models.DoctorDetail
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Specialty").
		Where("profile_id = ?", profileID).
		First(&d).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *directoryRepo) SaveDoctorDetail(ctx context.Context, d *models.DoctorDetail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DoctorDetail
		err := tx.Where("profile_id = ?", d.ProfileID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return translate(tx.Omit("Profile", "Specialty").Create(d).Error)
		case err != nil:
			return err
		}
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
		return translate(tx.Omit("Profile", "Specialty").Save(d).Error)
	})
}
