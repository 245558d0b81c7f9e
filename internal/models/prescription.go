package models

// Prescription is issued by a doctor within a case.
type Prescription struct {
	BaseModel
	CaseID    string `gorm:"size:36;index;not null" json:"caseId"`
	DoctorID  string `gorm:"size:36;index;not null" json:"doctorId"`
	PatientID string `gorm:"size:36;index;not null" json:"patientId"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	Items  []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items"`
	Doctor *User              `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// PrescriptionItem is one medication line.
type PrescriptionItem struct {
	BaseModel
	PrescriptionID string `gorm:"size:36;index;not null" json:"prescriptionId"`
	Medication     string `gorm:"size:255;not null" json:"medication"`
	Dose           string `gorm:"size:100" json:"dose"`
	Frequency      string `gorm:"size:100" json:"frequency"`
	Duration       string `gorm:"size:100" json:"duration"`
	Instructions   string `gorm:"type:text" json:"instructions,omitempty"`
}
