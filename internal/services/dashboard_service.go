package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

// UpcomingLimit caps the upcoming list on the patient dashboard.
const UpcomingLimit = 3

type DoctorDashboard struct {
	Agenda  []models.Appointment `json:"agenda"`
	Total   int64                `json:"total"`
	Pending int64                `json:"pending"`
}

type PatientDashboard struct {
	Cases            []models.ClinicalCase       `json:"cases"`
	MedicalHistory   *models.MedicalHistory      `json:"medicalHistory,omitempty"`
	Appointments     []models.Appointment        `json:"appointments"`
	Upcoming         []models.Appointment        `json:"upcoming"`
	CurrentCase      *models.ClinicalCase        `json:"currentCase,omitempty"`
	Prescriptions    []models.Prescription       `json:"prescriptions"`
	LatestAssessment *models.NeurologyAssessment `json:"latestAssessment,omitempty"`
	LatestTriage     *models.TriageRecord        `json:"latestTriage,omitempty"`
}

type NurseDashboard struct {
	Today []models.Appointment `json:"today"`
}

type ReceptionistDashboard struct {
	Specialties []models.Specialty `json:"specialties"`
	TodayCount  int64              `json:"todayCount"`
}

type AdminDashboard struct {
	UsersByRole map[models.Role]int64 `json:"usersByRole"`
	TotalUsers  int64                 `json:"totalUsers"`
}

type dashboardBuilder func(ctx context.Context, actor Actor) (any, error)

// DashboardService builds the landing view for each role.
type DashboardService struct {
	base
	builders map[models.Role]dashboardBuilder
}

func newDashboardService(b base) *DashboardService {
	s := &DashboardService{base: b}
	s.builders = map[models.Role]dashboardBuilder{
		models.RoleDoctor:       s.doctor,
		models.RolePatient:      s.patient,
		models.RoleNurse:        s.nurse,
		models.RoleReceptionist: s.receptionist,
		models.RoleAdmin:        s.admin,
	}
	return s
}

// Build dispatches on the actor's role.
func (s *DashboardService) Build(ctx context.Context, actor Actor) (_ any, err error) {
	ctx, span := startSpan(ctx, "DashboardService.Build", attribute.String("user.role", string(actor.Role)))
	defer func() { endSpan(span, err) }()

	build, ok := s.builders[actor.Role]
	if !ok {
		return nil, ErrForbidden
	}
	return build(ctx, actor)
}

// doctor lists the whole agenda, past visits included, so the counts and the
// list describe the same appointments.
func (s *DashboardService) doctor(ctx context.Context, actor Actor) (any, error) {
	agenda, err := s.store.Appointments.List(ctx, repository.AppointmentFilter{
		DoctorID: actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	total, err := s.store.Appointments.Count(ctx, repository.AppointmentFilter{DoctorID: actor.UserID})
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Appointments.Count(ctx, repository.AppointmentFilter{
		DoctorID: actor.UserID,
		Statuses: []models.AppointmentStatus{models.StatusScheduled},
	})
	if err != nil {
		return nil, err
	}
	return &DoctorDashboard{Agenda: agenda, Total: total, Pending: pending}, nil
}

func (s *DashboardService) patient(ctx context.Context, actor Actor) (any, error) {
	d := &PatientDashboard{Upcoming: []models.Appointment{}, Prescriptions: []models.Prescription{}}

	var err error
	if d.Cases, err = s.store.Cases.ListByPatient(ctx, actor.UserID); err != nil {
		return nil, err
	}
	if d.MedicalHistory, err = optional(s.store.Histories.GetByPatient(ctx, actor.UserID)); err != nil {
		return nil, err
	}
	if d.Appointments, err = s.store.Appointments.List(ctx, repository.AppointmentFilter{
		PatientID:  actor.UserID,
		Descending: true,
	}); err != nil {
		return nil, err
	}

	now := s.now()
	// Appointments are newest first; walk backwards for the nearest ones. A
	// visit still in progress counts as upcoming.
	for i := len(d.Appointments) - 1; i >= 0 && len(d.Upcoming) < UpcomingLimit; i-- {
		a := d.Appointments[i]
		if a.Status == models.StatusScheduled && a.EndsAt().After(now) {
			d.Upcoming = append(d.Upcoming, a)
		}
	}

	if len(d.Cases) == 0 {
		return d, nil
	}
	current := d.Cases[0]
	d.CurrentCase = &current

	if d.Prescriptions, err = s.store.Prescriptions.ListByCase(ctx, current.ID); err != nil {
		return nil, err
	}
	if d.LatestAssessment, err = optional(s.store.Assessments.LatestByCase(ctx, current.ID)); err != nil {
		return nil, err
	}
	if d.LatestTriage, err = optional(s.store.Triage.LatestByCase(ctx, current.ID)); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) nurse(ctx context.Context, _ Actor) (any, error) {
	start, end := s.today()
	today, err := s.store.Appointments.List(ctx, repository.AppointmentFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	return &NurseDashboard{Today: today}, nil
}

func (s *DashboardService) receptionist(ctx context.Context, _ Actor) (any, error) {
	specialties, err := s.store.Directory.ListSpecialties(ctx, true)
	if err != nil {
		return nil, err
	}
	start, end := s.today()
	count, err := s.store.Appointments.Count(ctx, repository.AppointmentFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	return &ReceptionistDashboard{Specialties: specialties, TodayCount: count}, nil
}

func (s *DashboardService) admin(ctx context.Context, _ Actor) (any, error) {
	counts, err := s.store.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &AdminDashboard{UsersByRole: counts, TotalUsers: total}, nil
}
