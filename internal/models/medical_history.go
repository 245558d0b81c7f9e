package models

import (
	"strings"

	"gorm.io/datatypes"
)

// MedicalHistory is the per-patient background shared by all cases.
type MedicalHistory struct {
	BaseModel
	PatientID         string                      `gorm:"size:36;uniqueIndex;not null" json:"patientId"`
	BloodType         string                      `gorm:"size:5" json:"bloodType,omitempty"`
	Allergies         datatypes.JSONSlice[string] `json:"allergies"`
	ChronicConditions datatypes.JSONSlice[string] `json:"chronicConditions"`
	UpdatedBy         string                      `gorm:"size:36" json:"updatedBy,omitempty"`
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
