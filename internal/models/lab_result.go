package models

import (
	"time"

	"gorm.io/datatypes"
)

// LabResult is a test ordered for a case. ResultsJSON keeps the analyte table as sent by the lab.
type LabResult struct {
	BaseModel
	CaseID      string            `gorm:"size:36;index;not null" json:"caseId"`
	Type        string            `gorm:"size:100;not null" json:"type"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	ResultsJSON datatypes.JSONMap `json:"resultsJson,omitempty"`
	ResultText  string            `gorm:"type:text" json:"resultText,omitempty"`
	AnalyzedAt  *time.Time        `json:"analyzedAt,omitempty"`
	RecordedBy  string            `gorm:"size:36" json:"recordedBy"`
}
