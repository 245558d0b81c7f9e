package models

import "neuroclinic-server/internal/triage"

// TriageRecord holds the vitals a nurse takes before the consultation.
type TriageRecord struct {
	BaseModel
	CaseID           string          `gorm:"size:36;index;not null" json:"caseId"`
	NurseID          string          `gorm:"size:36;index" json:"nurseId"`
	WeightKg         float64         `json:"weightKg"`
	HeightCm         float64         `json:"heightCm"`
	BMI              float64         `json:"bmi"`
	Temperature      float64         `json:"temperature"`
	Systolic         int             `json:"systolic"`
	Diastolic        int             `json:"diastolic"`
	HeartRate        int             `json:"heartRate"`
	OxygenSaturation int             `json:"oxygenSaturation"`
	Priority         triage.Priority `gorm:"size:10;index;default:'low'" json:"priority"`
	Notes            string          `gorm:"type:text" json:"notes,omitempty"`
}

// Vitals extracts the measured values.
func (t *TriageRecord) Vitals() triage.Vitals {
	return triage.Vitals{
		WeightKg:         t.WeightKg,
		HeightCm:         t.HeightCm,
		Temperature:      t.Temperature,
		Systolic:         t.Systolic,
		Diastolic:        t.Diastolic,
		HeartRate:        t.HeartRate,
		OxygenSaturation: t.OxygenSaturation,
	}
}

// ApplyVitals copies v onto the record and recomputes the derived fields.
func (t *TriageRecord) ApplyVitals(v triage.Vitals) {
	t.WeightKg = v.WeightKg
	t.HeightCm = v.HeightCm
	t.Temperature = v.Temperature
	t.Systolic = v.Systolic
	t.Diastolic = v.Diastolic
	t.HeartRate = v.HeartRate
	t.OxygenSaturation = v.OxygenSaturation
	t.BMI = triage.BMI(v)
	t.Priority = triage.Classify(v)
}
