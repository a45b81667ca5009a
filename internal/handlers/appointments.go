package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// AppointmentHandler exposes the appointment lifecycle over HTTP.
type AppointmentHandler struct {
	svc *services.AppointmentService
}

func NewAppointmentHandler(svc *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, okID := middleware.GetUserIDFromContext(c)
	role, okRole := middleware.GetUserRoleFromContext(c)
	if !okID || !okRole {
		utils.Unauthorized(c, "Authentication required")
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: role}, true
}

// BookAppointmentRequest defines the booking payload.
type BookAppointmentRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason"`
}

// Book creates a pending appointment request.
func (h *AppointmentHandler) Book(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "date must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		utils.BadRequest(c, "time must be in HH:MM format")
		return
	}

	appointment, err := h.svc.Book(actor, services.BookInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		Time:      req.Time,
		Reason:    req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Appointment requested", appointment)
}

// List returns the appointments visible to the caller.
func (h *AppointmentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointments, err := h.svc.ListForActor(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved", appointments)
}

// Get returns a single appointment.
func (h *AppointmentHandler) Get(c *gin.Context) {
	appointment, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment retrieved", appointment)
}

// Approve approves a pending appointment.
func (h *AppointmentHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.svc.Approve(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment approved", appointment)
}

// RejectAppointmentRequest carries the rejection reason.
type RejectAppointmentRequest struct {
	Reason string `json:"reason"`
}

// Reject rejects a pending appointment.
func (h *AppointmentHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req RejectAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.svc.Reject(actor, c.Param("id"), req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment rejected", appointment)
}

// Cancel cancels a pending or approved appointment.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, err := h.svc.Cancel(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled", appointment)
}
