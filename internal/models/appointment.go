package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// IsValid reports whether s is a known status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// AppointmentType distinguishes the first consultation of a case from the rest.
type AppointmentType string

const (
	TypeFirstVisit AppointmentType = "first_visit"
	TypeFollowUp   AppointmentType = "follow_up"
)

// DefaultDurationMins matches the one-hour slot grid.
const DefaultDurationMins = 60

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	DoctorID     string            `gorm:"size:36;index;not null" json:"doctorId"`
	PatientID    string            `gorm:"size:36;index;not null" json:"patientId"`
	CaseID       string            `gorm:"size:36;index" json:"caseId"`
	ScheduledAt  time.Time         `gorm:"index;not null" json:"scheduledAt"`
	DurationMins int               `gorm:"default:60" json:"durationMins"`
	Type         AppointmentType   `gorm:"size:20;default:'first_visit'" json:"type"`
	Status       AppointmentStatus `gorm:"size:20;index;default:'scheduled'" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Doctor  *User         `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient *User         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Case    *ClinicalCase `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

// EndsAt is the end of the booked slot.
func (a *Appointment) EndsAt() time.Time {
	mins := a.DurationMins
	if mins <= 0 {
		mins = DefaultDurationMins
	}
	return a.ScheduledAt.Add(time.Duration(mins) * time.Minute)
}

// State transitions:
//
//	scheduled → completed
//	scheduled → cancelled
//	scheduled → no_show
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled: {StatusCompleted, StatusCancelled, StatusNoShow},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusNoShow:    {},
	}
	for _, s := range allowed[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}
