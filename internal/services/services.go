// Package services holds the clinic's use cases. Handlers call services,
// services call repositories; authorization decisions that depend on record
// ownership are made here.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/metrics"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

var tracer = otel.Tracer("neuroclinic-server/services")

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Role   models.Role
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanSeePatient is true for clinic staff and for the patient themself.
func (a Actor) CanSeePatient(patientID string) bool {
	return a.Role.IsStaff() || (a.Role == models.RolePatient && a.UserID == patientID)
}

// Deps are shared by every service.
type Deps struct {
	Store    *repository.Store
	Log      *zap.Logger
	Metrics  *metrics.Collector
	Location *time.Location
	Now      func() time.Time
}

type base struct {
	store   *repository.Store
	log     *zap.Logger
	metrics *metrics.Collector
	loc     *time.Location
	now     func() time.Time
}

func newBase(d Deps) base {
	b := base{store: d.Store, log: d.Log, metrics: d.Metrics, loc: d.Location, now: d.Now}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// today returns midnight of the current clinic day and of the next one.
func (b base) today() (time.Time, time.Time) {
	y, m, d := b.now().In(b.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, b.loc)
	return start, start.AddDate(0, 0, 1)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Services is the full set handed to the HTTP layer.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Directory     *DirectoryService
	Cases         *CaseService
	Appointments  *AppointmentService
	Triage        *TriageService
	Histories     *HistoryService
	Labs          *LabService
	Assessments   *AssessmentService
	Prescriptions *PrescriptionService
	Notifications *NotificationService
	Dashboard     *DashboardService
}

// New builds every service over the same dependencies.
func New(d Deps, cfg *config.Config) *Services {
	b := newBase(d)
	cases := &CaseService{base: b}
	return &Services{
		Auth:          &AuthService{base: b, cfg: cfg},
		Users:         &UserService{base: b},
		Directory:     &DirectoryService{base: b},
		Cases:         cases,
		Appointments:  &AppointmentService{base: b, cases: cases},
		Triage:        &TriageService{base: b, cases: cases},
		Histories:     &HistoryService{base: b},
		Labs:          &LabService{base: b, cases: cases},
		Assessments:   &AssessmentService{base: b, cases: cases},
		Prescriptions: &PrescriptionService{base: b, cases: cases},
		Notifications: &NotificationService{base: b},
		Dashboard:     newDashboardService(b),
	}
}
