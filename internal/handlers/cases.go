package handlers

import (
	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// CaseHandler handles clinical cases and their anamnesis.
type CaseHandler struct {
	Cases *services.CaseService
}

func NewCaseHandler(cases *services.CaseService) *CaseHandler {
	return &CaseHandler{Cases: cases}
}

// CreateCaseRequest opens a case. A blank code is generated.
type CreateCaseRequest struct {
	PatientID string `json:"patientId" binding:"required,uuid"`
	CodeCase  string `json:"codeCase" binding:"max=50"`
}

func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	cs, err := h.Cases.Create(c.Request.Context(), req.PatientID, req.CodeCase)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Case created successfully", cs)
}

func (h *CaseHandler) GetCase(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	cs, err := h.Cases.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Case fetched successfully", cs)
}

// GetCaseDetail returns the case with everything recorded against it.
func (h *CaseHandler) GetCaseDetail(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	detail, err := h.Cases.Detail(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Case detail fetched successfully", detail)
}

type UpdateCaseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_treatment closed"`
}

func (h *CaseHandler) UpdateCaseStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateCaseStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	cs, err := h.Cases.SetStatus(c.Request.Context(), actor, id, models.CaseStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Case status updated successfully", cs)
}

type AnamnesisRequest struct {
	CurrentIllness  string `json:"currentIllness" binding:"max=10000"`
	FamilyHistory   string `json:"familyHistory" binding:"max=10000"`
	PersonalHistory string `json:"personalHistory" binding:"max=10000"`
}

func (h *CaseHandler) SaveAnamnesis(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req AnamnesisRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	a, err := h.Cases.SaveAnamnesis(c.Request.Context(), actor, id, services.AnamnesisInput{
		CurrentIllness:  req.CurrentIllness,
		FamilyHistory:   req.FamilyHistory,
		PersonalHistory: req.PersonalHistory,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Anamnesis saved successfully", a)
}
