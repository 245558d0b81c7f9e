package models

import "time"

// Notification is an in-app message for a single user.
type Notification struct {
	BaseModel
	UserID  string     `gorm:"size:36;index;not null" json:"userId"`
	Title   string     `gorm:"size:255;not null" json:"title"`
	Message string     `gorm:"type:text" json:"message"`
	ReadAt  *time.Time `json:"readAt,omitempty"`
}
