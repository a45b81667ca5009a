package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// PrescriptionHandler exposes prescription writing and lookup.
type PrescriptionHandler struct {
	svc *services.PrescriptionService
}

func NewPrescriptionHandler(svc *services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc}
}

// CreatePrescriptionRequest defines the prescription payload.
type CreatePrescriptionRequest struct {
	AppointmentID   string `json:"appointmentId" binding:"required"`
	Diagnosis       string `json:"diagnosis" binding:"required"`
	Medications     string `json:"medications"`
	Instructions    string `json:"instructions"`
	FollowUpDate    string `json:"followUpDate"`
	BedRequired     bool   `json:"bedRequired"`
	ExpectedBedDays int    `json:"expectedBedDays"`
}

// Create writes a prescription for an appointment. Doctor only.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var followUp *time.Time
	if req.FollowUpDate != "" {
		parsed, err := time.Parse("2006-01-02", req.FollowUpDate)
		if err != nil {
			utils.BadRequest(c, "followUpDate must be in YYYY-MM-DD format")
			return
		}
		followUp = &parsed
	}

	prescription, err := h.svc.Create(actor, services.PrescriptionInput{
		AppointmentID:   req.AppointmentID,
		Diagnosis:       req.Diagnosis,
		Medications:     req.Medications,
		Instructions:    req.Instructions,
		FollowUpDate:    followUp,
		BedRequired:     req.BedRequired,
		ExpectedBedDays: req.ExpectedBedDays,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Prescription created", prescription)
}

// List returns the prescriptions visible to the caller.
func (h *PrescriptionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	prescriptions, err := h.svc.ListForActor(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescriptions retrieved", prescriptions)
}

// Get returns a single prescription.
func (h *PrescriptionHandler) Get(c *gin.Context) {
	prescription, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescription retrieved", prescription)
}
