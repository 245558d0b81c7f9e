package models

import (
	"gorm.io/datatypes"

	"neuroclinic-server/internal/assessment"
)

// NeurologyAssessment stores one scored visit. A nil score means the
// instrument was not administered.
type NeurologyAssessment struct {
	BaseModel
	CaseID          string                               `gorm:"size:36;index;not null" json:"caseId"`
	DoctorID        string                               `gorm:"size:36;index" json:"doctorId"`
	HasChorea       bool                                 `json:"hasChorea"`
	UHDRSMotorScore *int                                 `json:"uhdrsMotorScore"`
	MMSEScore       *int                                 `json:"mmseScore"`
	PBAScore        *int                                 `json:"pbaScore"`
	TFCScore        *int                                 `json:"tfcScore"`
	TFCStage        string                               `gorm:"size:4" json:"tfcStage,omitempty"`
	Items           datatypes.JSONType[assessment.Sheet] `json:"items"`
	ClinicalNotes   string                               `gorm:"type:text" json:"clinicalNotes,omitempty"`
	Diagnosis       string                               `gorm:"type:text" json:"diagnosis,omitempty"`
}

// SetScore records the total of an instrument.
func (n *NeurologyAssessment) SetScore(inst assessment.Instrument, total int) {
	v := total
	switch inst {
	case assessment.UHDRSMotor:
		n.UHDRSMotorScore = &v
	case assessment.MMSE:
		n.MMSEScore = &v
	case assessment.PBA:
		n.PBAScore = &v
	case assessment.TFC:
		n.TFCScore = &v
		n.TFCStage = assessment.TFCStage(total)
	}
}
