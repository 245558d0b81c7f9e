package models

import "time"

// CaseStatus tracks where a clinical case is in its lifecycle.
type CaseStatus string

const (
	CaseOpen        CaseStatus = "open"
	CaseInTreatment CaseStatus = "in_treatment"
	CaseClosed      CaseStatus = "closed"
)

// ClinicalCase groups the visits, tests and notes of one patient problem.
type ClinicalCase struct {
	BaseModel
	PatientID string     `gorm:"size:36;index;not null" json:"patientId"`
	CodeCase  string     `gorm:"size:50;uniqueIndex;not null" json:"codeCase"`
	Status    CaseStatus `gorm:"size:20;default:'open'" json:"status"`
	IsActive  bool       `gorm:"default:true;index" json:"isActive"`
	StartDate time.Time  `json:"startDate"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`

	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// Anamnesis is the narrative history taken at the first visit of a case.
type Anamnesis struct {
	BaseModel
	CaseID          string `gorm:"size:36;uniqueIndex;not null" json:"caseId"`
	CurrentIllness  string `gorm:"type:text" json:"currentIllness"`
	FamilyHistory   string `gorm:"type:text" json:"familyHistory"`
	PersonalHistory string `gorm:"type:text" json:"personalHistory,omitempty"`
	RecordedBy      string `gorm:"size:36" json:"recordedBy"`
}

// TableName overrides the inflected default.
func (Anamnesis) TableName() string {
	return "anamneses"
}
