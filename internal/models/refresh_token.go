package models

import (
	"time"
)

// RefreshToken is a stored, rotatable refresh JWT. A token is usable until it
// expires or is revoked by logout or rotation.
type RefreshToken struct {
	BaseModel
	UserID    string     `gorm:"size:36;index" json:"userId"`
	Token     string     `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expiresAt"`
	IsRevoked bool       `gorm:"default:false;index" json:"isRevoked"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Usable reports whether the token can still be exchanged at now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}

// Revoke marks the token as spent.
func (t *RefreshToken) Revoke(at time.Time) {
	t.IsRevoked = true
	t.RevokedAt = &at
}
