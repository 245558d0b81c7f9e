package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"neuroclinic-server/internal/models"
)

func TestBook_Success(t *testing.T) {
	f := newFixture(t)

	first := f.book(t, at(10, 10))
	if first.Type != models.TypeFirstVisit {
		t.Errorf("expected first visit, got %s", first.Type)
	}
	if first.Status != models.StatusScheduled || first.DurationMins != models.DefaultDurationMins {
		t.Errorf("unexpected appointment: %+v", first)
	}

	second := f.book(t, at(12, 14))
	if second.Type != models.TypeFollowUp {
		t.Errorf("second visit in the case should be a follow-up, got %s", second.Type)
	}

	notes := f.mem.Notifications(f.patient.ID)
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notes))
	}
	if notes[0].Title != "Cita programada" || !strings.Contains(notes[0].Message, "Gregorio Casas") {
		t.Errorf("unexpected notification: %+v", notes[0])
	}
}

func TestBook_NewCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Appointments.Book(ctx, BookingInput{
		DoctorID:    f.doctor.ID,
		PatientID:   f.patient.ID,
		ScheduledAt: at(10, 9),
		NewCase:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CaseID == "" || a.CaseID == f.openCase.ID {
		t.Fatalf("expected a fresh case, got %q", a.CaseID)
	}
	c, err := f.svc.Cases.Get(ctx, actorOf(f.doctor), a.CaseID)
	if err != nil {
		t.Fatalf("loading case: %v", err)
	}
	if !strings.HasPrefix(c.CodeCase, "HC-20250310-") {
		t.Errorf("unexpected generated code %q", c.CodeCase)
	}
	if a.Type != models.TypeFirstVisit {
		t.Errorf("expected first visit, got %s", a.Type)
	}
}

func TestBook_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, at(10, 11))

	other := f.mem.AddUser(&models.User{Email: "p2@mail.pe", FirstName: "Jorge", Role: models.RolePatient})
	closed := f.mem.AddCase(&models.ClinicalCase{PatientID: f.patient.ID, CodeCase: "HC-OLD", Status: models.CaseClosed})
	otherCase := f.mem.AddCase(&models.ClinicalCase{PatientID: other.ID, CodeCase: "HC-P2", Status: models.CaseOpen, IsActive: true})
	idle := f.mem.AddUser(&models.User{Email: "idle@clinic.pe", FirstName: "Sin", Role: models.RoleDoctor})

	tests := []struct {
		name string
		in   BookingInput
		want error
	}{
		{
			name: "in the past",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(3, 10), CaseID: f.openCase.ID},
			want: ErrSlotInPast,
		},
		{
			name: "outside availability",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 13), CaseID: f.openCase.ID},
			want: ErrSlotUnavailable,
		},
		{
			name: "not on the hour",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 9).Add(30 * time.Minute), CaseID: f.openCase.ID},
			want: ErrSlotUnavailable,
		},
		{
			name: "doctor already booked",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: other.ID, ScheduledAt: at(10, 11), CaseID: otherCase.ID},
			want: ErrSlotTaken,
		},
		{
			name: "case of another patient",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 9), CaseID: otherCase.ID},
			want: ErrCaseMismatch,
		},
		{
			name: "closed case",
			in:   BookingInput{DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 9), CaseID: closed.ID},
			want: ErrCaseInactive,
		},
		{
			name: "doctor without schedule",
			in:   BookingInput{DoctorID: idle.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 9), CaseID: f.openCase.ID},
			want: ErrNoAvailability,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Appointments.Book(ctx, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("case and new case together", func(t *testing.T) {
		_, err := f.svc.Appointments.Book(ctx, BookingInput{
			DoctorID: f.doctor.ID, PatientID: f.patient.ID, ScheduledAt: at(10, 9), CaseID: f.openCase.ID, NewCase: true,
		})
		if !isValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
	t.Run("patient is not a patient", func(t *testing.T) {
		_, err := f.svc.Appointments.Book(ctx, BookingInput{
			DoctorID: f.doctor.ID, PatientID: f.nurse.ID, ScheduledAt: at(10, 9), NewCase: true,
		})
		if !isValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestBook_CancelledSlotIsFree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.book(t, at(10, 9))
	if _, err := f.svc.Appointments.UpdateStatus(ctx, actorOf(f.patient), a.ID, models.StatusCancelled, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	again := f.book(t, at(10, 9))
	if again.Type != models.TypeFirstVisit {
		t.Errorf("cancelled visits do not count toward follow-ups, got %s", again.Type)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := f.mem.AddUser(&models.User{Email: "dr2@clinic.pe", FirstName: "Otro", Role: models.RoleDoctor})

	tests := []struct {
		name  string
		actor Actor
		next  models.AppointmentStatus
		want  error
	}{
		{"patient completes", actorOf(f.patient), models.StatusCompleted, ErrForbidden},
		{"other doctor", actorOf(stranger), models.StatusCompleted, ErrForbidden},
		{"nurse", actorOf(f.nurse), models.StatusNoShow, ErrForbidden},
		{"own doctor completes", actorOf(f.doctor), models.StatusCompleted, nil},
	}
	a := f.book(t, at(10, 10))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Appointments.UpdateStatus(ctx, tt.actor, a.ID, tt.next, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := f.svc.Appointments.UpdateStatus(ctx, actorOf(f.admin), a.ID, models.StatusCancelled, ""); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("completed is terminal, got %v", err)
	}
	if _, err := f.svc.Appointments.UpdateStatus(ctx, actorOf(f.admin), a.ID, "archived", ""); !isValidation(err) {
		t.Errorf("unknown status should fail validation, got %v", err)
	}
}

func TestUpdateStatus_DoctorCancellationNotifiesPatient(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, at(10, 10))

	got, err := f.svc.Appointments.UpdateStatus(context.Background(), actorOf(f.doctor), a.ID, models.StatusCancelled, "Doctor de viaje")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Notes != "Doctor de viaje" {
		t.Errorf("expected notes to be kept, got %q", got.Notes)
	}

	var titles []string
	for _, n := range f.mem.Notifications(f.patient.ID) {
		titles = append(titles, n.Title)
	}
	if !strings.Contains(strings.Join(titles, ","), "Cita cancelada") {
		t.Errorf("expected a cancellation notice, got %v", titles)
	}
}

func TestList_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, at(10, 9))
	f.book(t, at(12, 15))

	mine, err := f.svc.Appointments.List(ctx, actorOf(f.patient), ListQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 || !mine[0].ScheduledAt.After(mine[1].ScheduledAt) {
		t.Errorf("patients see their own appointments newest first, got %d", len(mine))
	}

	agenda, err := f.svc.Appointments.List(ctx, actorOf(f.doctor), ListQuery{Status: models.StatusScheduled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agenda) != 2 || agenda[0].ScheduledAt.After(agenda[1].ScheduledAt) {
		t.Errorf("doctor agenda should be ascending, got %d", len(agenda))
	}

	if _, err := f.svc.Appointments.List(ctx, Actor{UserID: "x", Role: "guest"}, ListQuery{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGet_Ownership(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, at(10, 9))
	other := f.mem.AddUser(&models.User{Email: "p3@mail.pe", Role: models.RolePatient})

	if _, err := f.svc.Appointments.Get(context.Background(), actorOf(other), a.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.Appointments.Get(context.Background(), actorOf(f.receptionist), a.ID); err != nil {
		t.Errorf("front desk sees every appointment: %v", err)
	}
}
