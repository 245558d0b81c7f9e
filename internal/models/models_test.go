package models

import (
	"reflect"
	"testing"
	"time"
)

func TestRole(t *testing.T) {
	if !RoleNurse.IsStaff() || RolePatient.IsStaff() {
		t.Error("nurses are staff, patients are not")
	}
	if Role("janitor").IsValid() || Role("janitor").IsStaff() {
		t.Error("unknown roles are neither valid nor staff")
	}
}

func TestAppointment_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCompleted, false},
	}
	for _, tt := range tests {
		a := &Appointment{Status: tt.from}
		if got := a.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" penicilina, ,látex,,  polen ")
	want := []string{"penicilina", "látex", "polen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := SplitList(""); got == nil || len(got) != 0 {
		t.Errorf("empty input should give an empty, non-nil list, got %#v", got)
	}
}

func TestRefreshToken_Usable(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	tok := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	if !tok.Usable(now) {
		t.Fatal("fresh token should be usable")
	}
	if tok.Usable(now.Add(time.Hour)) {
		t.Error("token is unusable once it expires")
	}

	tok.Revoke(now)
	if tok.Usable(now) || tok.RevokedAt == nil || !tok.RevokedAt.Equal(now) {
		t.Errorf("revoked token still usable: %+v", tok)
	}
}

func TestUser_Password(t *testing.T) {
	u := &User{FirstName: "Carla", LastName: "Quispe"}
	if err := u.SetPassword("paciente123"); err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if !u.CheckPassword("paciente123") || u.CheckPassword("otra") {
		t.Error("password check mismatch")
	}
	if u.FullName() != "Carla Quispe" {
		t.Errorf("unexpected full name %q", u.FullName())
	}
	if s := u.Sanitize(); s.FirstName != "Carla" {
		t.Errorf("unexpected sanitized user: %+v", s)
	}
}
