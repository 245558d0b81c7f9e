package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Loc          *time.Location
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, loc *time.Location) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Loc: loc}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
// Either caseId or newCase must be given.
type CreateAppointmentRequest struct {
	DoctorID    string    `json:"doctorId" binding:"required,uuid"`
	PatientID   string    `json:"patientId" binding:"required,uuid"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	CaseID      string    `json:"caseId" binding:"omitempty,uuid"`
	NewCase     bool      `json:"newCase"`
	NewCaseCode string    `json:"newCaseCode" binding:"max=50"`
	Notes       string    `json:"notes" binding:"max=2000"`
}

// CreateAppointment books a slot for a patient (receptionist, admin).
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.Book(c.Request.Context(), services.BookingInput{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		ScheduledAt: req.ScheduledAt,
		CaseID:      req.CaseID,
		NewCase:     req.NewCase,
		NewCaseCode: req.NewCaseCode,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointmentsForUser lists appointments visible to the caller. Doctors and
// patients get their own; staff may filter by doctor.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	from, ok := parseQueryDate(c, "from", h.Loc)
	if !ok {
		return
	}
	to, ok := parseQueryDate(c, "to", h.Loc)
	if !ok {
		return
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	appointments, err := h.Appointments.List(c.Request.Context(), actor, services.ListQuery{
		DoctorID: c.Query("doctorId"),
		Status:   models.AppointmentStatus(c.Query("status")),
		From:     from,
		To:       to,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	appointment, err := h.Appointments.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for a status change.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=scheduled completed cancelled no_show"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// UpdateAppointmentStatus handles status transitions.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.UpdateStatus(c.Request.Context(), actor, id, models.AppointmentStatus(req.Status), req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}
