package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// BillingHandler exposes fee computation and the invoice lifecycle.
type BillingHandler struct {
	svc *services.BillingService
}

func NewBillingHandler(svc *services.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// ComputeFees previews the fee breakdown for an appointment without
// creating an invoice.
func (h *BillingHandler) ComputeFees(c *gin.Context) {
	breakdown, err := h.svc.ComputeFees(c.Param("appointmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Fees computed", breakdown)
}

// CreateInvoiceRequest defines the invoice creation payload.
type CreateInvoiceRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	Notes         string `json:"notes"`
}

// CreateInvoice raises an invoice for an appointment.
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	billing, err := h.svc.CreateInvoice(actor, req.AppointmentID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Invoice created", billing)
}

// List returns the invoices visible to the caller.
func (h *BillingHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	billings, err := h.svc.ListForActor(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Invoices retrieved", billings)
}

// Get returns a single invoice.
func (h *BillingHandler) Get(c *gin.Context) {
	billing, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Invoice retrieved", billing)
}

// RecordPaymentRequest defines the payment payload. Amount is a string
// so user-entered values with separators survive binding.
type RecordPaymentRequest struct {
	Amount string               `json:"amount"`
	Method models.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD UPI INSURANCE"`
}

// RecordPayment applies a payment to an invoice.
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	billing, err := h.svc.RecordPayment(actor, c.Param("id"), req.Amount, req.Method)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Payment recorded", billing)
}

// CancelInvoice voids an unpaid invoice.
func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	billing, err := h.svc.CancelInvoice(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Invoice cancelled", billing)
}
