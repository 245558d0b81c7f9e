// Package triage classifies a nurse's vital-sign reading.
package triage

import "math"

// Priority is the urgency assigned to a triage record.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities by urgency.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Vitals is one set of measurements. A zero value means "not measured".
type Vitals struct {
	WeightKg         float64 `json:"weightKg"`
	HeightCm         float64 `json:"heightCm"`
	Temperature      float64 `json:"temperature"`
	Systolic         int     `json:"systolic"`
	Diastolic        int     `json:"diastolic"`
	HeartRate        int     `json:"heartRate"`
	OxygenSaturation int     `json:"oxygenSaturation"`
}

// Classify derives the priority from the measured vitals.
func Classify(v Vitals) Priority {
	switch {
	case v.OxygenSaturation > 0 && v.OxygenSaturation < 92,
		v.Systolic >= 180,
		v.Systolic > 0 && v.Systolic < 90,
		v.Diastolic >= 120,
		v.HeartRate > 120,
		v.HeartRate > 0 && v.HeartRate < 50,
		v.Temperature >= 39.5:
		return PriorityHigh
	case v.OxygenSaturation > 0 && v.OxygenSaturation < 95,
		v.Systolic >= 140,
		v.Temperature >= 38,
		v.HeartRate > 100:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// BMI returns weight / height² rounded to one decimal, or 0 when either is missing.
func BMI(v Vitals) float64 {
	if v.WeightKg <= 0 || v.HeightCm <= 0 {
		return 0
	}
	m := v.HeightCm / 100
	return math.Round(v.WeightKg/(m*m)*10) / 10
}

// Validate reports the fields that fall outside physiologically possible ranges.
func Validate(v Vitals) []string {
	var fields []string
	check := func(ok bool, msg string) {
		if !ok {
			fields = append(fields, msg)
		}
	}
	check(v.WeightKg >= 0 && v.WeightKg <= 400, "weightKg must be between 0 and 400")
	check(v.HeightCm >= 0 && v.HeightCm <= 260, "heightCm must be between 0 and 260")
	check(v.Temperature == 0 || (v.Temperature >= 30 && v.Temperature <= 45), "temperature must be between 30 and 45")
	check(v.Systolic >= 0 && v.Systolic <= 300, "systolic must be between 0 and 300")
	check(v.Diastolic >= 0 && v.Diastolic <= 200, "diastolic must be between 0 and 200")
	check(v.HeartRate >= 0 && v.HeartRate <= 250, "heartRate must be between 0 and 250")
	check(v.OxygenSaturation >= 0 && v.OxygenSaturation <= 100, "oxygenSaturation must be between 0 and 100")
	if v.Systolic > 0 && v.Diastolic > 0 && v.Diastolic >= v.Systolic {
		fields = append(fields, "diastolic must be lower than systolic")
	}
	return fields
}
