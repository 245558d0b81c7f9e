package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
)

// Patient search rules: shorter terms return nothing, results are capped.
const (
	MinSearchLength   = 3
	PatientSearchSize = 5
)

type UserService struct {
	base
}

// UserInput is used both by admins creating staff and by the front desk
// registering patients.
type UserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
	DNI       string
	Phone     string
	Birthday  *time.Time
}

func (in UserInput) validate() error {
	var fields []string
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, "email must be a valid address")
	}
	if len(in.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, "firstName is required")
	}
	if !in.Role.IsValid() {
		fields = append(fields, fmt.Sprintf("role %q is not valid", in.Role))
	}
	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

func (s *UserService) create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		DNI:       strings.TrimSpace(in.DNI),
		Phone:     strings.TrimSpace(in.Phone),
		Birthday:  in.Birthday,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Create adds a user of any role.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	return s.create(ctx, in)
}

// RegisterPatient adds a patient. DNI and birthday are mandatory at intake.
func (s *UserService) RegisterPatient(ctx context.Context, in UserInput) (*models.User, error) {
	in.Role = models.RolePatient
	var fields []string
	if strings.TrimSpace(in.DNI) == "" {
		fields = append(fields, "dni is required")
	}
	if in.Birthday == nil {
		fields = append(fields, "birthday is required")
	} else if in.Birthday.After(s.now()) {
		fields = append(fields, "birthday cannot be in the future")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}
	return s.create(ctx, in)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.Users.List(ctx, f)
}

// UserUpdate carries admin-editable fields. Nil means unchanged.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *models.Role
	DNI       *string
	Phone     *string
	Birthday  *time.Time
	Password  *string
}

func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !in.Role.IsValid() {
			return nil, invalid(fmt.Sprintf("role %q is not valid", *in.Role))
		}
		user.Role = *in.Role
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.DNI != nil {
		user.DNI = strings.TrimSpace(*in.DNI)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Birthday != nil {
		user.Birthday = in.Birthday
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, invalid("password must be at least 8 characters")
		}
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}
	if err := s.store.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// Delete removes a user. Admins cannot delete their own account, and users
// that cases, appointments or prescriptions point at are kept.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if actor.UserID == id {
		return invalid("cannot delete your own account")
	}
	err := s.store.Users.Delete(ctx, id)
	if errors.Is(err, repository.ErrReference) {
		return ErrUserInUse
	}
	return err
}

// SearchPatients matches name or DNI. Terms shorter than MinSearchLength
// return an empty list without querying.
func (s *UserService) SearchPatients(ctx context.Context, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return []models.User{}, nil
	}
	return s.store.Users.SearchPatients(ctx, term, PatientSearchSize)
}
