package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/assessment"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/triage"
	"neuroclinic-server/internal/utils"
)

// ClinicalHandler handles the per-case records: triage, labs, assessments
// and prescriptions.
type ClinicalHandler struct {
	Triage        *services.TriageService
	Labs          *services.LabService
	Assessments   *services.AssessmentService
	Prescriptions *services.PrescriptionService
}

func NewClinicalHandler(s *services.Services) *ClinicalHandler {
	return &ClinicalHandler{
		Triage:        s.Triage,
		Labs:          s.Labs,
		Assessments:   s.Assessments,
		Prescriptions: s.Prescriptions,
	}
}

// caseAndActor reads the caller and the :id case parameter.
func caseAndActor(c *gin.Context) (services.Actor, string, bool) {
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

// TriageRequest carries the nurse's measurements. Zero means not taken.
type TriageRequest struct {
	WeightKg         float64 `json:"weightKg" binding:"gte=0"`
	HeightCm         float64 `json:"heightCm" binding:"gte=0"`
	Temperature      float64 `json:"temperature" binding:"gte=0"`
	Systolic         int     `json:"systolic" binding:"gte=0"`
	Diastolic        int     `json:"diastolic" binding:"gte=0"`
	HeartRate        int     `json:"heartRate" binding:"gte=0"`
	OxygenSaturation int     `json:"oxygenSaturation" binding:"gte=0,lte=100"`
	Notes            string  `json:"notes" binding:"max=2000"`
}

func (h *ClinicalHandler) RecordTriage(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	var req TriageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	rec, err := h.Triage.Record(c.Request.Context(), actor, services.TriageInput{
		CaseID: caseID,
		Vitals: triage.Vitals{
			WeightKg:         req.WeightKg,
			HeightCm:         req.HeightCm,
			Temperature:      req.Temperature,
			Systolic:         req.Systolic,
			Diastolic:        req.Diastolic,
			HeartRate:        req.HeartRate,
			OxygenSaturation: req.OxygenSaturation,
		},
		Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Triage saved successfully", rec)
}

func (h *ClinicalHandler) GetTriage(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	rec, err := h.Triage.Latest(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Triage fetched successfully", rec)
}

func (h *ClinicalHandler) GetTriageHistory(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	records, err := h.Triage.History(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Triage history fetched successfully", records)
}

type LabRequest struct {
	Type        string         `json:"type" binding:"required,max=100"`
	Description string         `json:"description" binding:"max=5000"`
	Results     map[string]any `json:"resultsJson"`
	ResultText  string         `json:"resultText" binding:"max=10000"`
	AnalyzedAt  *time.Time     `json:"analyzedAt"`
}

func (h *ClinicalHandler) CreateLab(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	var req LabRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	lab, err := h.Labs.Create(c.Request.Context(), actor, services.LabInput{
		CaseID:      caseID,
		Type:        req.Type,
		Description: req.Description,
		Results:     req.Results,
		ResultText:  req.ResultText,
		AnalyzedAt:  req.AnalyzedAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Lab result created successfully", lab)
}

func (h *ClinicalHandler) ListLabs(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	labs, err := h.Labs.ListByCase(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Lab results fetched successfully", labs)
}

// AssessmentRequest holds raw item scores grouped by instrument.
type AssessmentRequest struct {
	HasChorea     bool             `json:"hasChorea"`
	Items         assessment.Sheet `json:"items" binding:"required"`
	Lenient       bool             `json:"lenient"`
	ClinicalNotes string           `json:"clinicalNotes" binding:"max=10000"`
	Diagnosis     string           `json:"diagnosis" binding:"max=2000"`
}

func (h *ClinicalHandler) SubmitAssessment(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	var req AssessmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	scored, err := h.Assessments.Submit(c.Request.Context(), actor, services.AssessmentInput{
		CaseID:        caseID,
		HasChorea:     req.HasChorea,
		Items:         req.Items,
		Lenient:       req.Lenient,
		ClinicalNotes: req.ClinicalNotes,
		Diagnosis:     req.Diagnosis,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Assessment scored successfully", scored)
}

func (h *ClinicalHandler) GetLatestAssessment(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	a, err := h.Assessments.Latest(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Assessment fetched successfully", a)
}

func (h *ClinicalHandler) ListAssessments(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	list, err := h.Assessments.History(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Assessments fetched successfully", list)
}

// GetInstruments returns the scale definitions for building forms.
func (h *ClinicalHandler) GetInstruments(c *gin.Context) {
	utils.Success(c, "Instruments fetched successfully", h.Assessments.Catalog())
}

type PrescriptionItemRequest struct {
	Medication   string `json:"medication" binding:"required,max=200"`
	Dose         string `json:"dose" binding:"max=100"`
	Frequency    string `json:"frequency" binding:"max=100"`
	Duration     string `json:"duration" binding:"max=100"`
	Instructions string `json:"instructions" binding:"max=1000"`
}

type PrescriptionRequest struct {
	Notes string                    `json:"notes" binding:"max=2000"`
	Items []PrescriptionItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *ClinicalHandler) CreatePrescription(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	var req PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	in := services.PrescriptionInput{CaseID: caseID, Notes: req.Notes}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.PrescriptionItemInput(it))
	}
	p, err := h.Prescriptions.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Prescription created successfully", p)
}

func (h *ClinicalHandler) ListPrescriptions(c *gin.Context) {
	actor, caseID, ok := caseAndActor(c)
	if !ok {
		return
	}
	list, err := h.Prescriptions.ListByCase(c.Request.Context(), actor, caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", list)
}
