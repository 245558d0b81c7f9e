package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/metrics"
	"neuroclinic-server/internal/middleware"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository/repotest"
	"neuroclinic-server/internal/scheduling"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var lima = time.FixedZone("PET", -5*3600)

// Monday 2025-03-10, 08:00 in Lima.
var fixedNow = time.Date(2025, 3, 10, 8, 0, 0, 0, lima)

type testServer struct {
	router *gin.Engine
	cfg    *config.Config

	admin        *models.User
	doctor       *models.User
	nurse        *models.User
	receptionist *models.User
	patient      *models.User
	openCase     *models.ClinicalCase
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
		LoginRateLimit:            config.RateLimitConfig{PerMinute: 5, Burst: 3},
	}

	mem := repotest.New()
	s := &testServer{cfg: cfg}
	s.admin = mem.AddUser(&models.User{Email: "admin@clinic.pe", FirstName: "Ana", Role: models.RoleAdmin})
	s.doctor = mem.AddUser(&models.User{Email: "house@clinic.pe", FirstName: "Gregorio", LastName: "Casas", Role: models.RoleDoctor})
	s.nurse = mem.AddUser(&models.User{Email: "nurse@clinic.pe", FirstName: "Rosa", Role: models.RoleNurse})
	s.receptionist = mem.AddUser(&models.User{Email: "desk@clinic.pe", FirstName: "Luis", Role: models.RoleReceptionist})
	s.patient = mem.AddUser(&models.User{Email: "p1@mail.pe", FirstName: "Carla", LastName: "Quispe", DNI: "40123456", Role: models.RolePatient})
	if err := s.patient.SetPassword("paciente123"); err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	mem.AddDoctorDetail(&models.DoctorDetail{
		ProfileID: s.doctor.ID,
		AvailableHours: datatypes.NewJSONType(scheduling.Availability{
			"Lunes": {{StartTime: "09:00", EndTime: "12:00"}},
		}),
	})
	s.openCase = mem.AddCase(&models.ClinicalCase{
		PatientID: s.patient.ID,
		CodeCase:  "HC-0001",
		Status:    models.CaseOpen,
		IsActive:  true,
		StartDate: fixedNow.AddDate(0, -1, 0),
	})

	collector := metrics.NewCollector("test")
	svc := services.New(services.Deps{
		Store:    mem.Store(),
		Metrics:  collector,
		Location: lima,
		Now:      func() time.Time { return fixedNow },
	}, cfg)

	s.router = gin.New()
	s.router.Use(middleware.Metrics(collector))
	SetupRoutes(s.router, svc, cfg, collector)
	return s
}

func (s *testServer) token(t *testing.T, u *models.User) string {
	t.Helper()
	access, _, err := utils.GenerateTokens(u, s.cfg)
	if err != nil {
		t.Fatalf("generating tokens: %v", err)
	}
	return access
}

func (s *testServer) do(t *testing.T, method, path string, as *models.User, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, as))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "UP") {
		t.Fatalf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", nil, map[string]string{
		"email": "p1@mail.pe", "password": "paciente123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var session services.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if session.AccessToken == "" || session.User.Role != models.RolePatient {
		t.Errorf("unexpected session: %+v", session)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Value != session.RefreshToken {
		t.Errorf("expected HTTP-only refresh cookie, got %+v", cookie)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", nil, map[string]string{
		"email": "p1@mail.pe", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad password, got %d", rec.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "p1@mail.pe", "password": "wrong-password"}

	for i := 0; i < 3; i++ {
		if rec, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", nil, body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, rec.Code)
		}
	}
	rec, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", nil, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestBookAppointment(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"doctorId":    s.doctor.ID,
		"patientId":   s.patient.ID,
		"scheduledAt": "2025-03-10T10:00:00-05:00",
		"caseId":      s.openCase.ID,
	}

	rec, env := s.do(t, http.MethodPost, "/api/v1/appointments", s.receptionist, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var appt models.Appointment
	if err := json.Unmarshal(env.Data, &appt); err != nil {
		t.Fatalf("decoding appointment: %v", err)
	}
	if appt.Status != models.StatusScheduled || appt.CaseID != s.openCase.ID {
		t.Errorf("unexpected appointment: %+v", appt)
	}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/appointments", s.receptionist, body)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a taken slot, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodGet, "/api/v1/doctors/"+s.doctor.ID+"/slots?week=2025-03-10", s.patient, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for slots, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "2025-03-10T09:00:00-05:00") {
		t.Errorf("expected the 09:00 slot, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "2025-03-10T10:00:00-05:00") {
		t.Error("booked slot is still offered")
	}
}

func TestBookAppointment_Rejections(t *testing.T) {
	s := newTestServer(t)
	valid := map[string]any{
		"doctorId":    s.doctor.ID,
		"patientId":   s.patient.ID,
		"scheduledAt": "2025-03-10T10:00:00-05:00",
		"caseId":      s.openCase.ID,
	}
	with := func(key string, v any) map[string]any {
		out := make(map[string]any, len(valid))
		for k, val := range valid {
			out[k] = val
		}
		out[key] = v
		return out
	}

	tests := []struct {
		name string
		as   *models.User
		body map[string]any
		want int
	}{
		{"anonymous", nil, valid, http.StatusUnauthorized},
		{"patient cannot book", s.patient, valid, http.StatusForbidden},
		{"nurse cannot book", s.nurse, valid, http.StatusForbidden},
		{"malformed doctor id", s.receptionist, with("doctorId", "house"), http.StatusBadRequest},
		{"outside availability", s.receptionist, with("scheduledAt", "2025-03-10T15:00:00-05:00"), http.StatusBadRequest},
		{"in the past", s.receptionist, with("scheduledAt", "2025-03-03T10:00:00-05:00"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, "/api/v1/appointments", tt.as, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestClinicalRoutes_RoleGuards(t *testing.T) {
	s := newTestServer(t)
	casePath := "/api/v1/cases/" + s.openCase.ID

	triage := map[string]any{"temperature": 36.8, "heartRate": 72}
	if rec, _ := s.do(t, http.MethodPost, casePath+"/triage", s.patient, triage); rec.Code != http.StatusForbidden {
		t.Errorf("patients cannot record triage, got %d", rec.Code)
	}

	prescription := map[string]any{"items": []map[string]string{{"medication": "Tetrabenazina", "dose": "12.5 mg"}}}
	if rec, _ := s.do(t, http.MethodPost, casePath+"/prescriptions", s.nurse, prescription); rec.Code != http.StatusForbidden {
		t.Errorf("nurses cannot prescribe, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodPost, casePath+"/prescriptions", s.doctor, prescription); rec.Code != http.StatusCreated {
		t.Errorf("expected 201 for a doctor, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec, _ := s.do(t, http.MethodGet, casePath+"/prescriptions", s.patient, nil); rec.Code != http.StatusOK {
		t.Errorf("patients read their own prescriptions, got %d", rec.Code)
	}
	if rec, _ := s.do(t, http.MethodGet, "/api/v1/cases/not-a-uuid", s.doctor, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed id, got %d", rec.Code)
	}
}

func TestDeleteUser_Conflicts(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodDelete, "/api/v1/users/"+s.patient.ID, s.admin, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for a patient with a case, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec, _ := s.do(t, http.MethodDelete, "/api/v1/users/"+s.nurse.ID, s.admin, nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for a nurse, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSaveDoctorProfile_Availability(t *testing.T) {
	s := newTestServer(t)
	path := "/api/v1/doctors/" + s.doctor.ID + "/profile"

	tests := []struct {
		name  string
		hours any
		want  int
	}{
		{"valid week", map[string]any{"Lunes": []map[string]string{{"start_time": "08:00", "end_time": "12:00"}}}, http.StatusOK},
		{"end before start", map[string]any{"Lunes": []map[string]string{{"start_time": "12:00", "end_time": "09:00"}}}, http.StatusBadRequest},
		{"unknown day", map[string]any{"Funday": []map[string]string{{"start_time": "08:00", "end_time": "12:00"}}}, http.StatusBadRequest},
		{"not an object", []string{"Lunes"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPut, path, s.doctor, map[string]any{"availableHours": tt.hours})
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/dashboard", s.patient, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dash services.PatientDashboard
	if err := json.Unmarshal(env.Data, &dash); err != nil {
		t.Fatalf("decoding dashboard: %v", err)
	}
	if dash.CurrentCase == nil || dash.CurrentCase.ID != s.openCase.ID {
		t.Errorf("expected the open case as current, got %+v", dash.CurrentCase)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", nil, nil)

	rec, _ := s.do(t, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Errorf("health request not counted:\n%s", rec.Body.String())
	}
}
