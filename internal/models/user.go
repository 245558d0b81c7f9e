package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
	RoleReceptionist Role = "receptionist"
	RoleNurse        Role = "nurse"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RoleReceptionist, RoleNurse:
		return true
	}
	return false
}

// IsStaff is true for every role that works inside the clinic.
func (r Role) IsStaff() bool {
	return r.IsValid() && r != RolePatient
}

// User represents a user profile in the system
type User struct {
	BaseModel
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName string     `gorm:"size:100;index" json:"firstName"`
	LastName  string     `gorm:"size:100;index" json:"lastName"`
	Role      Role       `gorm:"size:20;index;default:'patient'" json:"role"`
	DNI       string     `gorm:"size:20;index" json:"dni,omitempty"`
	Phone     string     `gorm:"size:30" json:"phone,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	AvatarURL string     `gorm:"size:512" json:"avatarUrl,omitempty"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      Role       `json:"role"`
	DNI       string     `json:"dni,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		DNI:       u.DNI,
		Phone:     u.Phone,
		Birthday:  u.Birthday,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SanitizeUsers maps Sanitize over a slice.
func SanitizeUsers(users []User) []UserSanitized {
	out := make([]UserSanitized, len(users))
	for i := range users {
		out[i] = users[i].Sanitize()
	}
	return out
}
