// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

// Memory holds every table in maps. It is safe for concurrent use.
type Memory struct {
	mu  sync.Mutex
	seq int64

	users         map[string]*models.User
	tokens        map[string]*models.RefreshToken
	specialties   map[string]*models.Specialty
	doctors       map[string]*models.DoctorDetail
	cases         map[string]*models.ClinicalCase
	anamneses     map[string]*models.Anamnesis
	appointments  map[string]*models.Appointment
	notifications map[string]*models.Notification
	triage        map[string]*models.TriageRecord
	histories     map[string]*models.MedicalHistory
	labs          map[string]*models.LabResult
	assessments   map[string]*models.NeurologyAssessment
	prescriptions map[string]*models.Prescription
}

// New returns an empty in-memory database.
func New() *Memory {
	return &Memory{
		users:         map[string]*models.User{},
		tokens:        map[string]*models.RefreshToken{},
		specialties:   map[string]*models.Specialty{},
		doctors:       map[string]*models.DoctorDetail{},
		cases:         map[string]*models.ClinicalCase{},
		anamneses:     map[string]*models.Anamnesis{},
		appointments:  map[string]*models.Appointment{},
		notifications: map[string]*models.Notification{},
		triage:        map[string]*models.TriageRecord{},
		histories:     map[string]*models.MedicalHistory{},
		labs:          map[string]*models.LabResult{},
		assessments:   map[string]*models.NeurologyAssessment{},
		prescriptions: map[string]*models.Prescription{},
	}
}

// Store exposes the memory tables through the repository interfaces.
func (m *Memory) Store() *repository.Store {
	return &repository.Store{
		Users:         userRepo{m},
		RefreshTokens: tokenRepo{m},
		Directory:     directoryRepo{m},
		Cases:         caseRepo{m},
		Appointments:  appointmentRepo{m},
		Notifications: notificationRepo{m},
		Triage:        triageRepo{m},
		Histories:     historyRepo{m},
		Labs:          labRepo{m},
		Assessments:   assessmentRepo{m},
		Prescriptions: prescriptionRepo{m},
	}
}

// stamp assigns an ID and strictly increasing timestamps so "newest first"
// ordering is deterministic. Callers hold m.mu.
func (m *Memory) stamp(b *models.BaseModel) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	m.seq++
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = at
	}
	b.UpdatedAt = at
}

// Seed helpers bypass validation.

func (m *Memory) AddUser(u *models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&u.BaseModel)
	m.users[u.ID] = u
	return u
}

func (m *Memory) AddSpecialty(s *models.Specialty) *models.Specialty {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&s.BaseModel)
	m.specialties[s.ID] = s
	return s
}

func (m *Memory) AddDoctorDetail(d *models.DoctorDetail) *models.DoctorDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&d.BaseModel)
	m.doctors[d.ProfileID] = d
	return d
}

func (m *Memory) AddCase(c *models.ClinicalCase) *models.ClinicalCase {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&c.BaseModel)
	m.cases[c.ID] = c
	return c
}

func (m *Memory) AddAppointment(a *models.Appointment) *models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp(&a.BaseModel)
	m.appointments[a.ID] = a
	return a
}

// Notifications returns every notification addressed to userID.
func (m *Memory) Notifications(userID string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

func contains(field, term string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(strings.TrimSpace(term)))
}

func byNewest[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return created(items[i]).After(created(items[j])) })
}

// users

type userRepo struct{ m *Memory }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.m.stamp(&u.BaseModel)
	r.m.users[u.ID] = u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) Update(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.m.users {
		if existing.ID != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.m.stamp(&u.BaseModel)
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

// referenced mirrors the foreign keys that keep a user row alive. Callers
// hold m.mu.
func (m *Memory) referenced(userID string) bool {
	for _, c := range m.cases {
		if c.PatientID == userID {
			return true
		}
	}
	for _, a := range m.appointments {
		if a.DoctorID == userID || a.PatientID == userID {
			return true
		}
	}
	for _, p := range m.prescriptions {
		if p.DoctorID == userID {
			return true
		}
	}
	return false
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repository.ErrNotFound
	}
	if r.m.referenced(id) {
		return repository.ErrReference
	}
	for k, t := range r.m.tokens {
		if t.UserID == id {
			delete(r.m.tokens, k)
		}
	}
	for k, n := range r.m.notifications {
		if n.UserID == id {
			delete(r.m.notifications, k)
		}
	}
	delete(r.m.doctors, id)
	delete(r.m.users, id)
	return nil
}

func (r userRepo) sorted(keep func(*models.User) bool) []models.User {
	var out []models.User
	for _, u := range r.m.users {
		if keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out
}

func (r userRepo) List(_ context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.sorted(func(u *models.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return false
		}
		return f.Search == "" || contains(u.FirstName, f.Search) || contains(u.LastName, f.Search) || contains(u.Email, f.Search)
	})
	total := int64(len(out))
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r userRepo) SearchPatients(_ context.Context, term string, limit int) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.sorted(func(u *models.User) bool {
		return u.Role == models.RolePatient &&
			(contains(u.FirstName, term) || contains(u.LastName, term) || contains(u.DNI, term))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r userRepo) CountByRole(_ context.Context) (map[models.Role]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[models.Role]int64{}
	for _, u := range r.m.users {
		counts[u.Role]++
	}
	return counts, nil
}

// refresh tokens

type tokenRepo struct{ m *Memory }

func (r tokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&t.BaseModel)
	r.m.tokens[t.ID] = t
	return nil
}

func (r tokenRepo) FindActive(_ context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.tokens {
		if t.Token == token && t.UserID == userID && t.Usable(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r tokenRepo) Revoke(_ context.Context, token string, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	revoked := false
	for _, t := range r.m.tokens {
		if t.Token == token && !t.IsRevoked {
			t.Revoke(at)
			revoked = true
		}
	}
	return revoked, nil
}

// directory

type directoryRepo struct{ m *Memory }

func (r directoryRepo) ListSpecialties(_ context.Context, activeOnly bool) ([]models.Specialty, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Specialty
	for _, s := range r.m.specialties {
		if !activeOnly || s.Active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r directoryRepo) CreateSpecialty(_ context.Context, s *models.Specialty) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.specialties {
		if strings.EqualFold(existing.Name, s.Name) {
			return repository.ErrDuplicate
		}
	}
	r.m.stamp(&s.BaseModel)
	r.m.specialties[s.ID] = s
	return nil
}

func (r directoryRepo) GetSpecialty(_ context.Context, id string) (*models.Specialty, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.specialties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// loaded returns a copy of d with its relations filled in. Callers hold m.mu.
func (r directoryRepo) loaded(d *models.DoctorDetail) models.DoctorDetail {
	cp := *d
	if u, ok := r.m.users[d.ProfileID]; ok {
		profile := *u
		cp.Profile = &profile
	}
	if d.SpecialtyID != nil {
		if s, ok := r.m.specialties[*d.SpecialtyID]; ok {
			spec := *s
			cp.Specialty = &spec
		}
	}
	return cp
}

func (r directoryRepo) ListDoctors(_ context.Context, specialtyID, name string) ([]models.DoctorDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.DoctorDetail
	for _, d := range r.m.doctors {
		u, ok := r.m.users[d.ProfileID]
		if !ok || u.Role != models.RoleDoctor {
			continue
		}
		if specialtyID != "" && (d.SpecialtyID == nil || *d.SpecialtyID != specialtyID) {
			continue
		}
		if name != "" && !contains(u.FirstName, name) && !contains(u.LastName, name) {
			continue
		}
		out = append(out, r.loaded(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.LastName < out[j].Profile.LastName })
	return out, nil
}

func (r directoryRepo) GetDoctorDetail(_ context.Context, profileID string) (*models.DoctorDetail, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.doctors[profileID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := r.loaded(d)
	return &cp, nil
}

func (r directoryRepo) SaveDoctorDetail(_ context.Context, d *models.DoctorDetail) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[d.ProfileID]; !ok {
		return repository.ErrReference
	}
	if d.SpecialtyID != nil {
		if _, ok := r.m.specialties[*d.SpecialtyID]; !ok {
			return repository.ErrReference
		}
	}
	if existing, ok := r.m.doctors[d.ProfileID]; ok {
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	}
	r.m.stamp(&d.BaseModel)
	cp := *d
	cp.Profile, cp.Specialty = nil, nil
	r.m.doctors[d.ProfileID] = &cp
	return nil
}

// cases

type caseRepo struct{ m *Memory }

// createCase requires m.mu held.
func (m *Memory) createCase(c *models.ClinicalCase) error {
	for _, existing := range m.cases {
		if existing.CodeCase == c.CodeCase {
			return repository.ErrDuplicate
		}
	}
	m.stamp(&c.BaseModel)
	cp := *c
	cp.Patient = nil
	m.cases[c.ID] = &cp
	return nil
}

func (r caseRepo) Create(_ context.Context, c *models.ClinicalCase) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.createCase(c)
}

func (r caseRepo) GetByID(_ context.Context, id string) (*models.ClinicalCase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	if u, ok := r.m.users[c.PatientID]; ok {
		p := *u
		cp.Patient = &p
	}
	return &cp, nil
}

func (r caseRepo) ListByPatient(_ context.Context, patientID string) ([]models.ClinicalCase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.ClinicalCase
	for _, c := range r.m.cases {
		if c.PatientID == patientID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r caseRepo) Update(_ context.Context, c *models.ClinicalCase) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cases[c.ID]; !ok {
		return repository.ErrNotFound
	}
	r.m.stamp(&c.BaseModel)
	cp := *c
	cp.Patient = nil
	r.m.cases[c.ID] = &cp
	return nil
}

func (r caseRepo) GetAnamnesis(_ context.Context, caseID string) (*models.Anamnesis, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.anamneses[caseID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r caseRepo) SaveAnamnesis(_ context.Context, a *models.Anamnesis) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if existing, ok := r.m.anamneses[a.CaseID]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	}
	r.m.stamp(&a.BaseModel)
	cp := *a
	r.m.anamneses[a.CaseID] = &cp
	return nil
}

// appointments

type appointmentRepo struct{ m *Memory }

func (r appointmentRepo) Book(_ context.Context, b *repository.Booking) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a := b.Appointment
	if _, ok := r.m.doctors[a.DoctorID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.m.users[a.PatientID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.m.appointments {
		if existing.Status == models.StatusCancelled || !existing.ScheduledAt.Equal(a.ScheduledAt) {
			continue
		}
		if existing.DoctorID == a.DoctorID || existing.PatientID == a.PatientID {
			return repository.ErrConflict
		}
	}
	if b.NewCase != nil {
		if err := r.m.createCase(b.NewCase); err != nil {
			return err
		}
		a.CaseID = b.NewCase.ID
	}
	a.Type = models.TypeFirstVisit
	for _, existing := range r.m.appointments {
		if existing.CaseID == a.CaseID && existing.Status != models.StatusCancelled {
			a.Type = models.TypeFollowUp
			break
		}
	}
	r.m.stamp(&a.BaseModel)
	cp := *a
	r.m.appointments[a.ID] = &cp
	if b.Notification != nil {
		r.m.stamp(&b.Notification.BaseModel)
		n := *b.Notification
		r.m.notifications[n.ID] = &n
	}
	return nil
}

// loaded requires m.mu held.
func (r appointmentRepo) loaded(a *models.Appointment) models.Appointment {
	cp := *a
	if u, ok := r.m.users[a.DoctorID]; ok {
		d := *u
		cp.Doctor = &d
	}
	if u, ok := r.m.users[a.PatientID]; ok {
		p := *u
		cp.Patient = &p
	}
	if c, ok := r.m.cases[a.CaseID]; ok {
		cc := *c
		cp.Case = &cc
	}
	return cp
}

func (r appointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := r.loaded(a)
	return &cp, nil
}

func matches(a *models.Appointment, f repository.AppointmentFilter) bool {
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.CaseID != "" && a.CaseID != f.CaseID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && a.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !a.ScheduledAt.Before(*f.To) {
		return false
	}
	return true
}

func (r appointmentRepo) List(_ context.Context, f repository.AppointmentFilter) ([]models.Appointment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.m.appointments {
		if matches(a, f) {
			out = append(out, r.loaded(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Descending {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r appointmentRepo) Count(_ context.Context, f repository.AppointmentFilter) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, a := range r.m.appointments {
		if matches(a, f) {
			n++
		}
	}
	return n, nil
}

func (r appointmentRepo) BookedTimes(_ context.Context, doctorID string, from, to time.Time) ([]time.Time, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []time.Time
	for _, a := range r.m.appointments {
		if a.DoctorID == doctorID && a.Status != models.StatusCancelled &&
			!a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, a.ScheduledAt)
		}
	}
	return out, nil
}

func (r appointmentRepo) UpdateStatus(_ context.Context, a *models.Appointment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.appointments[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Status = a.Status
	existing.Notes = a.Notes
	return nil
}

// notifications

type notificationRepo struct{ m *Memory }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&n.BaseModel)
	cp := *n
	r.m.notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Notification
	for _, n := range r.m.notifications {
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, *n)
		}
	}
	byNewest(out, func(n models.Notification) time.Time { return n.CreatedAt })
	return out, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.ReadAt = &at
	return nil
}

// triage

type triageRepo struct{ m *Memory }

func (r triageRepo) ListByCase(_ context.Context, caseID string) ([]models.TriageRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.TriageRecord
	for _, t := range r.m.triage {
		if t.CaseID == caseID {
			out = append(out, *t)
		}
	}
	byNewest(out, func(t models.TriageRecord) time.Time { return t.CreatedAt })
	return out, nil
}

func (r triageRepo) LatestByCase(ctx context.Context, caseID string) (*models.TriageRecord, error) {
	all, _ := r.ListByCase(ctx, caseID)
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[0], nil
}

func (r triageRepo) Save(_ context.Context, t *models.TriageRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&t.BaseModel)
	cp := *t
	r.m.triage[t.ID] = &cp
	return nil
}

// medical history

type historyRepo struct{ m *Memory }

func (r historyRepo) GetByPatient(_ context.Context, patientID string) (*models.MedicalHistory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	h, ok := r.m.histories[patientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (r historyRepo) Upsert(_ context.Context, h *models.MedicalHistory) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if existing, ok := r.m.histories[h.PatientID]; ok {
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
	}
	r.m.stamp(&h.BaseModel)
	cp := *h
	r.m.histories[h.PatientID] = &cp
	return nil
}

// labs

type labRepo struct{ m *Memory }

func (r labRepo) Create(_ context.Context, l *models.LabResult) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&l.BaseModel)
	cp := *l
	r.m.labs[l.ID] = &cp
	return nil
}

func (r labRepo) ListByCase(_ context.Context, caseID string) ([]models.LabResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.LabResult
	for _, l := range r.m.labs {
		if l.CaseID == caseID {
			out = append(out, *l)
		}
	}
	byNewest(out, func(l models.LabResult) time.Time { return l.CreatedAt })
	return out, nil
}

// assessments

type assessmentRepo struct{ m *Memory }

func (r assessmentRepo) Create(_ context.Context, a *models.NeurologyAssessment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&a.BaseModel)
	cp := *a
	r.m.assessments[a.ID] = &cp
	return nil
}

func (r assessmentRepo) ListByCase(_ context.Context, caseID string) ([]models.NeurologyAssessment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.NeurologyAssessment
	for _, a := range r.m.assessments {
		if a.CaseID == caseID {
			out = append(out, *a)
		}
	}
	byNewest(out, func(a models.NeurologyAssessment) time.Time { return a.CreatedAt })
	return out, nil
}

func (r assessmentRepo) LatestByCase(ctx context.Context, caseID string) (*models.NeurologyAssessment, error) {
	all, _ := r.ListByCase(ctx, caseID)
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[0], nil
}

// prescriptions

type prescriptionRepo struct{ m *Memory }

func (r prescriptionRepo) Create(_ context.Context, p *models.Prescription) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.stamp(&p.BaseModel)
	for i := range p.Items {
		r.m.stamp(&p.Items[i].BaseModel)
		p.Items[i].PrescriptionID = p.ID
	}
	cp := *p
	cp.Items = append([]models.PrescriptionItem(nil), p.Items...)
	r.m.prescriptions[p.ID] = &cp
	return nil
}

func (r prescriptionRepo) list(keep func(*models.Prescription) bool) []models.Prescription {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Prescription
	for _, p := range r.m.prescriptions {
		if keep(p) {
			cp := *p
			if u, ok := r.m.users[p.DoctorID]; ok {
				d := *u
				cp.Doctor = &d
			}
			out = append(out, cp)
		}
	}
	byNewest(out, func(p models.Prescription) time.Time { return p.CreatedAt })
	return out
}

func (r prescriptionRepo) ListByCase(_ context.Context, caseID string) ([]models.Prescription, error) {
	return r.list(func(p *models.Prescription) bool { return p.CaseID == caseID }), nil
}

func (r prescriptionRepo) ListByPatient(_ context.Context, patientID string) ([]models.Prescription, error) {
	return r.list(func(p *models.Prescription) bool { return p.PatientID == patientID }), nil
}
