package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollector_ExposesCounters(t *testing.T) {
	c := NewCollector("neuro")
	c.IncBooked()
	c.IncTriage("high")
	c.IncLogin("failure")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"neuro_clinical_appointments_booked_total 1",
		`neuro_clinical_triage_records_total{priority="high"} 1`,
		`neuro_auth_login_attempts_total{result="failure"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.IncBooked()
	c.IncStatus("completed")
	c.IncAssessment("mmse")
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// Two collectors must not clash on registration.
	NewCollector("a")
	NewCollector("a")
}
