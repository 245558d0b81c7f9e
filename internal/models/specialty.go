package models

import (
	"gorm.io/datatypes"

	"neuroclinic-server/internal/scheduling"
)

// Specialty is a medical specialty doctors are filed under.
type Specialty struct {
	BaseModel
	Name   string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}

// DoctorDetail extends a doctor's profile with practice data.
type DoctorDetail struct {
	BaseModel
	ProfileID      string                                      `gorm:"size:36;uniqueIndex;not null" json:"profileId"`
	SpecialtyID    *string                                     `gorm:"size:36;index" json:"specialtyId"`
	License        string                                      `gorm:"size:50" json:"license"`
	AvailableHours datatypes.JSONType[scheduling.Availability] `json:"availableHours"`

	Profile   *User      `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Specialty *Specialty `gorm:"foreignKey:SpecialtyID" json:"specialty,omitempty"`
}

// Availability returns the decoded weekly availability, never nil.
func (d *DoctorDetail) Availability() scheduling.Availability {
	avail := d.AvailableHours.Data()
	if avail == nil {
		return scheduling.Availability{}
	}
	return avail
}
