// Package repository defines the persistence ports of the clinic and their
// gorm implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"neuroclinic-server/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrConflict  = errors.New("time slot is already booked")
	// ErrReference covers both a missing parent on insert and live
	// children on delete.
	ErrReference = errors.New("foreign key constraint violated")
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReference
	}
	return err
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Role   models.Role
	Search string
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	// Delete removes the user with their sessions, notifications and doctor
	// profile. It returns ErrReference while clinical records point at them.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)

	// SearchPatients matches first name, last name or DNI, case-insensitively.
	SearchPatients(ctx context.Context, term string, limit int) ([]models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	// FindActive returns an unrevoked, unexpired token owned by userID.
	FindActive(ctx context.Context, token, userID string, now time.Time) (*models.RefreshToken, error)
	// Revoke marks the token revoked and reports whether this call did it.
	// Unknown or already revoked tokens report false without an error.
	Revoke(ctx context.Context, token string, at time.Time) (bool, error)
}

type DirectoryRepository interface {
	ListSpecialties(ctx context.Context, activeOnly bool) ([]models.Specialty, error)
	CreateSpecialty(ctx context.Context, s *models.Specialty) error
	GetSpecialty(ctx context.Context, id string) (*models.Specialty, error)
	// ListDoctors returns doctor details with profile and specialty loaded.
	ListDoctors(ctx context.Context, specialtyID, name string) ([]models.DoctorDetail, error)
	GetDoctorDetail(ctx context.Context, profileID string) (*models.DoctorDetail, error)
	// SaveDoctorDetail inserts or updates by profile ID.
	SaveDoctorDetail(ctx context.Context, d *models.DoctorDetail) error
}

type CaseRepository interface {
	Create(ctx context.Context, c *models.ClinicalCase) error
	GetByID(ctx context.Context, id string) (*models.ClinicalCase, error)
	// ListByPatient orders active cases first, then newest first.
	ListByPatient(ctx context.Context, patientID string) ([]models.ClinicalCase, error)
	Update(ctx context.Context, c *models.ClinicalCase) error

	GetAnamnesis(ctx context.Context, caseID string) (*models.Anamnesis, error)
	SaveAnamnesis(ctx context.Context, a *models.Anamnesis) error
}

// AppointmentFilter narrows an appointment listing. Zero fields are ignored.
type AppointmentFilter struct {
	DoctorID   string
	PatientID  string
	CaseID     string
	Statuses   []models.AppointmentStatus
	From       *time.Time
	To         *time.Time
	Descending bool
	Limit      int
}

// Booking is the unit written by AppointmentRepository.Book.
type Booking struct {
	// NewCase is created first when set, and the appointment is attached to it.
	NewCase      *models.ClinicalCase
	Appointment  *models.Appointment
	Notification *models.Notification
}

type AppointmentRepository interface {
	// Book writes the booking atomically while holding locks on the doctor's
	// profile and the patient. It returns ErrConflict when either already
	// holds a live appointment at that instant, and sets the appointment type
	// from the case's earlier visits.
	Book(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	Count(ctx context.Context, f AppointmentFilter) (int64, error)
	// BookedTimes returns start instants of non-cancelled appointments in [from, to).
	BookedTimes(ctx context.Context, doctorID string, from, to time.Time) ([]time.Time, error)
	UpdateStatus(ctx context.Context, a *models.Appointment) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	// MarkRead returns ErrNotFound when the notification does not belong to userID.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

type TriageRepository interface {
	LatestByCase(ctx context.Context, caseID string) (*models.TriageRecord, error)
	ListByCase(ctx context.Context, caseID string) ([]models.TriageRecord, error)
	// Save updates the record when it has an ID and inserts it otherwise.
	Save(ctx context.Context, t *models.TriageRecord) error
}

type HistoryRepository interface {
	GetByPatient(ctx context.Context, patientID string) (*models.MedicalHistory, error)
	// Upsert keeps one history row per patient.
	Upsert(ctx context.Context, h *models.MedicalHistory) error
}

type LabRepository interface {
	Create(ctx context.Context, l *models.LabResult) error
	// ListByCase returns newest first.
	ListByCase(ctx context.Context, caseID string) ([]models.LabResult, error)
}

type AssessmentRepository interface {
	Create(ctx context.Context, a *models.NeurologyAssessment) error
	LatestByCase(ctx context.Context, caseID string) (*models.NeurologyAssessment, error)
	ListByCase(ctx context.Context, caseID string) ([]models.NeurologyAssessment, error)
}

type PrescriptionRepository interface {
	// Create writes the prescription and its items together.
	Create(ctx context.Context, p *models.Prescription) error
	ListByCase(ctx context.Context, caseID string) ([]models.Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Prescription, error)
}

// Store bundles every repository the services need.
type Store struct {
	Users         UserRepository
	RefreshTokens RefreshTokenRepository
	Directory     DirectoryRepository
	Cases         CaseRepository
	Appointments  AppointmentRepository
	Notifications NotificationRepository
	Triage        TriageRepository
	Histories     HistoryRepository
	Labs          LabRepository
	Assessments   AssessmentRepository
	Prescriptions PrescriptionRepository
}

// NewGormStore wires every repository to db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:         &userRepo{db: db},
		RefreshTokens: &refreshTokenRepo{db: db},
		Directory:     &directoryRepo{db: db},
		Cases:         &caseRepo{db: db},
		Appointments:  &appointmentRepo{db: db},
		Notifications: &notificationRepo{db: db},
		Triage:        &triageRepo{db: db},
		Histories:     &historyRepo{db: db},
		Labs:          &labRepo{db: db},
		Assessments:   &assessmentRepo{db: db},
		Prescriptions: &prescriptionRepo{db: db},
	}
}
