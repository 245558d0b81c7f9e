package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neuroclinic-server/internal/models"
)

type appointmentRepo struct {
	db *gorm.DB
}

func (r *appointmentRepo) Book(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a := b.Appointment
		a.ScheduledAt = a.ScheduledAt.UTC()

		// Lock order is doctor profile, then patient. Every booking takes
		// both, so two bookings sharing either party run one after the other.
		var detail models.DoctorDetail
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("profile_id = ?", a.DoctorID).
			First(&detail).Error; err != nil {
			return translate(err)
		}
		var patient models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", a.PatientID).
			First(&patient).Error; err != nil {
			return translate(err)
		}

		if b.NewCase != nil {
			if err := tx.Omit("Patient").Create(b.NewCase).Error; err != nil {
				return translate(err)
			}
			a.CaseID = b.NewCase.ID
		}

		var taken int64
		err := tx.Model(&models.Appointment{}).
			Where("(doctor_id = ? OR patient_id = ?) AND scheduled_at = ? AND status <> ?",
				a.DoctorID, a.PatientID, a.ScheduledAt, models.StatusCancelled).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		var prior int64
		err = tx.Model(&models.Appointment{}).
			Where("case_id = ? AND status <> ?", a.CaseID, models.StatusCancelled).
			Count(&prior).Error
		if err != nil {
			return err
		}
		a.Type = models.TypeFirstVisit
		if prior > 0 {
			a.Type = models.TypeFollowUp
		}

		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return translate(err)
		}
		if b.Notification != nil {
			if err := tx.Create(b.Notification).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Preload("Case").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appointmentRepo) filtered(ctx context.Context, f AppointmentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.CaseID != "" {
		q = q.Where("case_id = ?", f.CaseID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("scheduled_at < ?", f.To.UTC())
	}
	return q
}

func (r *appointmentRepo) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	q := r.filtered(ctx, f).
		Preload("Doctor").
		Preload("Patient").
		Preload("Case").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "scheduled_at"}, Desc: f.Descending})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Appointment
	err := q.Find(&out).Error
	return out, err
}

func (r *appointmentRepo) Count(ctx context.Context, f AppointmentFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

func (r *appointmentRepo) BookedTimes(ctx context.Context, doctorID string, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status <> ?",
			doctorID, from.UTC(), to.UTC(), models.StatusCancelled).
		Pluck("scheduled_at", &times).Error
	return times, err
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, a *models.Appointment) error {
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{"status": a.Status, "notes": a.Notes})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
