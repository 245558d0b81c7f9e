package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/scheduling"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// DirectoryHandler serves specialties, doctor profiles and open slots.
type DirectoryHandler struct {
	Directory *services.DirectoryService
	Loc       *time.Location
	Now       func() time.Time
}

func NewDirectoryHandler(directory *services.DirectoryService, loc *time.Location) *DirectoryHandler {
	return &DirectoryHandler{Directory: directory, Loc: loc, Now: time.Now}
}

func (h *DirectoryHandler) ListSpecialties(c *gin.Context) {
	specialties, err := h.Directory.ListSpecialties(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Specialties fetched successfully", specialties)
}

type CreateSpecialtyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (h *DirectoryHandler) CreateSpecialty(c *gin.Context) {
	var req CreateSpecialtyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	specialty, err := h.Directory.CreateSpecialty(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Specialty created successfully", specialty)
}

// ListDoctors accepts optional specialtyId and name filters.
func (h *DirectoryHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.Directory.ListDoctors(c.Request.Context(), c.Query("specialtyId"), c.Query("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

func (h *DirectoryHandler) GetDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	doctor, err := h.Directory.Doctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// DoctorProfileRequest replaces the weekly availability when it is sent.
type DoctorProfileRequest struct {
	SpecialtyID    *string         `json:"specialtyId" binding:"omitempty,uuid"`
	License        *string         `json:"license" binding:"omitempty,max=50"`
	AvailableHours json.RawMessage `json:"availableHours"`
}

func (h *DirectoryHandler) SaveDoctorProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req DoctorProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var avail scheduling.Availability
	if raw := bytes.TrimSpace(req.AvailableHours); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		parsed, err := scheduling.ParseAvailability(raw)
		if err != nil {
			utils.BadRequest(c, "Validation failed: availableHours: "+err.Error())
			return
		}
		avail = parsed
	}

	doctor, err := h.Directory.SaveDoctorProfile(c.Request.Context(), actor, id, services.DoctorProfileInput{
		SpecialtyID:  req.SpecialtyID,
		License:      req.License,
		Availability: avail,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Doctor profile saved successfully", doctor)
}

// GetSlots lists open slots for the week containing ?week=YYYY-MM-DD, or the
// current week.
func (h *DirectoryHandler) GetSlots(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	week, ok := parseQueryDate(c, "week", h.Loc)
	if !ok {
		return
	}
	weekOf := h.Now().In(h.Loc)
	if week != nil {
		weekOf = *week
	}

	slots, err := h.Directory.WeekSlots(c.Request.Context(), id, weekOf)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Slots fetched successfully", slots)
}
