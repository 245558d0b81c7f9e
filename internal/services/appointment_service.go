package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

type AppointmentService struct {
	base
	cases *CaseService
}

// BookingInput is what the front desk submits. Exactly one of CaseID and
// NewCase must be set; NewCaseCode may be blank to get a generated code.
type BookingInput struct {
	DoctorID    string
	PatientID   string
	ScheduledAt time.Time
	CaseID      string
	NewCase     bool
	NewCaseCode string
	Notes       string
}

func (in BookingInput) validate() error {
	var fields []string
	if in.DoctorID == "" {
		fields = append(fields, "doctorId is required")
	}
	if in.PatientID == "" {
		fields = append(fields, "patientId is required")
	}
	if in.ScheduledAt.IsZero() {
		fields = append(fields, "scheduledAt is required")
	}
	if in.CaseID != "" && in.NewCase {
		fields = append(fields, "use either caseId or newCase, not both")
	}
	if in.CaseID == "" && !in.NewCase {
		fields = append(fields, "caseId or newCase is required")
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

// Book reserves a slot. The optional case creation, the appointment and the
// patient's notification are written in one transaction.
func (s *AppointmentService) Book(ctx context.Context, in BookingInput) (_ *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Book",
		attribute.String("doctor.id", in.DoctorID),
		attribute.String("patient.id", in.PatientID),
	)
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	doctor, err := s.store.Users.GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}
	if doctor.Role != models.RoleDoctor {
		return nil, invalid("doctorId does not belong to a doctor")
	}
	if _, err := s.cases.requirePatient(ctx, in.PatientID); err != nil {
		return nil, fmt.Errorf("patient: %w", err)
	}

	at := in.ScheduledAt.In(s.loc)
	if at.Before(s.now()) {
		s.metrics.IncBookingRejected("past")
		return nil, ErrSlotInPast
	}

	detail, err := optional(s.store.Directory.GetDoctorDetail(ctx, in.DoctorID))
	if err != nil {
		return nil, err
	}
	if detail == nil || len(detail.Availability()) == 0 {
		s.metrics.IncBookingRejected("no_availability")
		return nil, ErrNoAvailability
	}
	if !detail.Availability().Covers(at, s.loc) {
		s.metrics.IncBookingRejected("outside_availability")
		return nil, ErrSlotUnavailable
	}

	message := fmt.Sprintf("Tiene una cita con Dr(a). %s el %s a las %s.",
		doctor.FullName(), at.Format("02/01/2006"), at.Format("15:04"))
	booking := &repository.Booking{
		Appointment: &models.Appointment{
			DoctorID:     in.DoctorID,
			PatientID:    in.PatientID,
			CaseID:       in.CaseID,
			ScheduledAt:  at,
			DurationMins: models.DefaultDurationMins,
			Status:       models.StatusScheduled,
			Notes:        strings.TrimSpace(in.Notes),
		},
		Notification: &models.Notification{
			UserID:  in.PatientID,
			Title:   "Cita programada",
			Message: message,
		},
	}

	if in.NewCase {
		booking.NewCase = s.cases.newCase(in.PatientID, in.NewCaseCode)
	} else {
		c, err := s.store.Cases.GetByID(ctx, in.CaseID)
		if err != nil {
			return nil, fmt.Errorf("case: %w", err)
		}
		if c.PatientID != in.PatientID {
			return nil, ErrCaseMismatch
		}
		if !c.IsActive || c.Status == models.CaseClosed {
			return nil, ErrCaseInactive
		}
	}

	if err := s.store.Appointments.Book(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			s.metrics.IncBookingRejected("taken")
			return nil, ErrSlotTaken
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrCaseCodeTaken
		}
		s.log.Error("booking appointment", zap.String("doctor_id", in.DoctorID), zap.Time("at", at), zap.Error(err))
		return nil, fmt.Errorf("booking appointment: %w", err)
	}

	s.metrics.IncBooked()
	s.log.Info("appointment booked",
		zap.String("appointment_id", booking.Appointment.ID),
		zap.String("doctor_id", in.DoctorID),
		zap.Time("at", at),
		zap.String("type", string(booking.Appointment.Type)),
	)
	return booking.Appointment, nil
}

// ListQuery filters staff listings. Doctors and patients always see only
// their own appointments.
type ListQuery struct {
	DoctorID string
	Status   models.AppointmentStatus
	From     *time.Time
	To       *time.Time
}

func (s *AppointmentService) List(ctx context.Context, actor Actor, q ListQuery) ([]models.Appointment, error) {
	f := repository.AppointmentFilter{From: q.From, To: q.To}
	if q.Status != "" {
		if !q.Status.IsValid() {
			return nil, invalid(fmt.Sprintf("status %q is not valid", q.Status))
		}
		f.Statuses = []models.AppointmentStatus{q.Status}
	}

	switch actor.Role {
	case models.RoleDoctor:
		f.DoctorID = actor.UserID
	case models.RolePatient:
		f.PatientID = actor.UserID
		f.Descending = true
	case models.RoleAdmin, models.RoleReceptionist, models.RoleNurse:
		f.DoctorID = q.DoctorID
	default:
		return nil, ErrForbidden
	}
	return s.store.Appointments.List(ctx, f)
}

func (s *AppointmentService) canSee(actor Actor, a *models.Appointment) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleReceptionist, models.RoleNurse:
		return true
	case models.RoleDoctor:
		return a.DoctorID == actor.UserID
	case models.RolePatient:
		return a.PatientID == actor.UserID
	}
	return false
}

func (s *AppointmentService) Get(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	a, err := s.store.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, a) {
		return nil, ErrForbidden
	}
	return a, nil
}

// UpdateStatus applies a state-machine transition. The appointment's doctor
// and admins may make any allowed move; patients may only cancel their own.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor Actor, id string, next models.AppointmentStatus, notes string) (_ *models.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.UpdateStatus",
		attribute.String("appointment.id", id),
		attribute.String("status", string(next)),
	)
	defer func() { endSpan(span, err) }()

	if !next.IsValid() {
		return nil, invalid(fmt.Sprintf("status %q is not valid", next))
	}
	a, err := s.store.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.Role == models.RoleAdmin:
	case actor.Role == models.RoleDoctor && a.DoctorID == actor.UserID:
	case actor.Role == models.RolePatient && a.PatientID == actor.UserID:
		if next != models.StatusCancelled {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if !a.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}
	a.Status = next
	if n := strings.TrimSpace(notes); n != "" {
		a.Notes = n
	}
	if err := s.store.Appointments.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}
	s.metrics.IncStatus(string(next))

	if next == models.StatusCancelled && actor.UserID != a.PatientID {
		n := &models.Notification{
			UserID:  a.PatientID,
			Title:   "Cita cancelada",
			Message: fmt.Sprintf("Su cita del %s fue cancelada.", a.ScheduledAt.In(s.loc).Format("02/01/2006 15:04")),
		}
		if err := s.store.Notifications.Create(ctx, n); err != nil {
			s.log.Warn("notifying cancellation", zap.String("appointment_id", a.ID), zap.Error(err))
		}
	}
	return a, nil
}
