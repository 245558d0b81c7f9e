package handlers

import (
	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// PatientHandler serves patient-scoped reads and the medical history.
type PatientHandler struct {
	Cases         *services.CaseService
	Histories     *services.HistoryService
	Prescriptions *services.PrescriptionService
}

func NewPatientHandler(s *services.Services) *PatientHandler {
	return &PatientHandler{Cases: s.Cases, Histories: s.Histories, Prescriptions: s.Prescriptions}
}

func patientAndActor(c *gin.Context) (services.Actor, string, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return services.Actor{}, "", false
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return services.Actor{}, "", false
	}
	return actor, id, true
}

func (h *PatientHandler) ListCases(c *gin.Context) {
	actor, patientID, ok := patientAndActor(c)
	if !ok {
		return
	}
	cases, err := h.Cases.ListForPatient(c.Request.Context(), actor, patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Cases fetched successfully", cases)
}

func (h *PatientHandler) GetHistory(c *gin.Context) {
	actor, patientID, ok := patientAndActor(c)
	if !ok {
		return
	}
	history, err := h.Histories.Get(c.Request.Context(), actor, patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical history fetched successfully", history)
}

// HistoryRequest takes allergies and chronic conditions as comma-separated text.
type HistoryRequest struct {
	BloodType         string `json:"bloodType" binding:"max=5"`
	Allergies         string `json:"allergies" binding:"max=2000"`
	ChronicConditions string `json:"chronicConditions" binding:"max=2000"`
}

func (h *PatientHandler) SaveHistory(c *gin.Context) {
	actor, patientID, ok := patientAndActor(c)
	if !ok {
		return
	}
	var req HistoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	history, err := h.Histories.Save(c.Request.Context(), actor, services.HistoryInput{
		PatientID:         patientID,
		BloodType:         req.BloodType,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical history saved successfully", history)
}

func (h *PatientHandler) ListPrescriptions(c *gin.Context) {
	actor, patientID, ok := patientAndActor(c)
	if !ok {
		return
	}
	list, err := h.Prescriptions.ListForPatient(c.Request.Context(), actor, patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", list)
}
