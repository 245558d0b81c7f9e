package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
	"neuroclinic-server/internal/scheduling"
)

type DirectoryService struct {
	base
}

func (s *DirectoryService) ListSpecialties(ctx context.Context) ([]models.Specialty, error) {
	return s.store.Directory.ListSpecialties(ctx, true)
}

func (s *DirectoryService) CreateSpecialty(ctx context.Context, name string) (*models.Specialty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	sp := &models.Specialty{Name: name, Active: true}
	if err := s.store.Directory.CreateSpecialty(ctx, sp); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("specialty already exists")
		}
		return nil, err
	}
	return sp, nil
}

// ListDoctors filters by specialty and, case-insensitively, by name.
func (s *DirectoryService) ListDoctors(ctx context.Context, specialtyID, name string) ([]models.DoctorDetail, error) {
	return s.store.Directory.ListDoctors(ctx, specialtyID, strings.TrimSpace(name))
}

func (s *DirectoryService) Doctor(ctx context.Context, doctorID string) (*models.DoctorDetail, error) {
	return s.store.Directory.GetDoctorDetail(ctx, doctorID)
}

// DoctorProfileInput updates a doctor's practice data. Nil fields are unchanged.
type DoctorProfileInput struct {
	SpecialtyID  *string
	License      *string
	Availability scheduling.Availability
}

// SaveDoctorProfile is allowed for the doctor themself and for admins.
func (s *DirectoryService) SaveDoctorProfile(ctx context.Context, actor Actor, doctorID string, in DoctorProfileInput) (*models.DoctorDetail, error) {
	if !(actor.Role == models.RoleAdmin || (actor.Role == models.RoleDoctor && actor.UserID == doctorID)) {
		return nil, ErrForbidden
	}
	doctor, err := s.store.Users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Role != models.RoleDoctor {
		return nil, invalid("user is not a doctor")
	}

	detail, err := optional(s.store.Directory.GetDoctorDetail(ctx, doctorID))
	if err != nil {
		return nil, err
	}
	if detail == nil {
		detail = &models.DoctorDetail{ProfileID: doctorID}
	}

	if in.Availability != nil {
		if err := in.Availability.Validate(); err != nil {
			return nil, invalid(err.Error())
		}
		detail.AvailableHours = datatypes.NewJSONType(in.Availability)
	}
	if in.SpecialtyID != nil {
		detail.SpecialtyID = nil
		if id := strings.TrimSpace(*in.SpecialtyID); id != "" {
			if _, err := s.store.Directory.GetSpecialty(ctx, id); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, invalid("specialtyId does not exist")
				}
				return nil, err
			}
			detail.SpecialtyID = &id
		}
	}
	if in.License != nil {
		detail.License = strings.TrimSpace(*in.License)
	}
	detail.Profile, detail.Specialty = nil, nil

	if err := s.store.Directory.SaveDoctorDetail(ctx, detail); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, invalid("specialtyId does not exist")
		}
		return nil, fmt.Errorf("saving doctor detail: %w", err)
	}
	return s.store.Directory.GetDoctorDetail(ctx, doctorID)
}

// WeekSlots lists the open one-hour slots of the clinic week containing weekOf.
func (s *DirectoryService) WeekSlots(ctx context.Context, doctorID string, weekOf time.Time) (_ []scheduling.Slot, err error) {
	ctx, span := startSpan(ctx, "DirectoryService.WeekSlots", attribute.String("doctor.id", doctorID))
	defer func() { endSpan(span, err) }()

	detail, err := s.store.Directory.GetDoctorDetail(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	avail := detail.Availability()
	if len(avail) == 0 {
		return []scheduling.Slot{}, nil
	}

	from, to := scheduling.WeekBounds(weekOf.In(s.loc))
	booked, err := s.store.Appointments.BookedTimes(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading booked times: %w", err)
	}

	slots := scheduling.GenerateSlots(avail, from, booked, s.now())
	span.SetAttributes(attribute.Int("slots.count", len(slots)))
	return slots, nil
}
