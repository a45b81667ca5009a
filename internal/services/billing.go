package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

const (
	hospitalChargeRate = 0.10
	loyaltyDiscountPct = 25.0
	loyaltyWindowDays  = 90
	paymentTolerance   = 0.01
)

// BillingService computes fees and manages the invoice lifecycle.
type BillingService struct {
	db     *gorm.DB
	notify Notifier
}

func NewBillingService(db *gorm.DB, notify Notifier) *BillingService {
	return &BillingService{db: db, notify: notify}
}

// FeeBreakdown is the priced view of an appointment before an invoice
// is raised.
type FeeBreakdown struct {
	DoctorFee          float64 `json:"doctorFee"`
	HospitalCharge     float64 `json:"hospitalCharge"`
	BedCharge          float64 `json:"bedCharge"`
	BedDays            int     `json:"bedDays"`
	BedChargePerDay    float64 `json:"bedChargePerDay"`
	DiscountPercentage float64 `json:"discountPercentage"`
	DiscountAmount     float64 `json:"discountAmount"`
	TotalAmount        float64 `json:"totalAmount"`
	FinalAmount        float64 `json:"finalAmount"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeFees prices an appointment: the doctor's consultation fee, a
// 10% hospital charge on top of it, the unsettled bed charge if the
// patient occupies or recently left a bed, and the loyalty discount for
// returning patients.
func (s *BillingService) ComputeFees(appointmentID string) (*FeeBreakdown, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment not found", ErrNotFound)
		}
		return nil, err
	}
	return s.computeFees(s.db, &appointment)
}

func (s *BillingService) computeFees(tx *gorm.DB, appointment *models.Appointment) (*FeeBreakdown, error) {
	var doctor models.Doctor
	if err := tx.First(&doctor, "id = ?", appointment.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor not found", ErrNotFound)
		}
		return nil, err
	}

	breakdown := FeeBreakdown{
		DoctorFee:      round2(doctor.ConsultationFee),
		HospitalCharge: round2(doctor.ConsultationFee * hospitalChargeRate),
	}

	// Bed charge comes from the patient's latest unsettled allocation.
	var allocation models.BedAllocation
	err := tx.Preload("Bed").
		Where("patient_id = ? AND payment_status = ? AND status IN ?",
			appointment.PatientID, models.AllocationPaymentPending,
			[]models.AllocationStatus{models.AllocationStatusActive, models.AllocationStatusDischarged}).
		Order("admission_date DESC").
		First(&allocation).Error
	switch {
	case err == nil:
		end := time.Now()
		if allocation.DischargeDate != nil {
			end = *allocation.DischargeDate
		}
		days := int(end.Sub(allocation.AdmissionDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
		breakdown.BedDays = days
		breakdown.BedChargePerDay = round2(allocation.Bed.PricePerDay)
		breakdown.BedCharge = round2(float64(days) * allocation.Bed.PricePerDay)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no bed charge
	default:
		return nil, err
	}

	breakdown.TotalAmount = round2(breakdown.DoctorFee + breakdown.HospitalCharge + breakdown.BedCharge)

	eligible, err := s.discountEligible(tx, appointment)
	if err != nil {
		return nil, err
	}
	if eligible {
		breakdown.DiscountPercentage = loyaltyDiscountPct
		breakdown.DiscountAmount = round2(breakdown.TotalAmount * loyaltyDiscountPct / 100)
	}
	breakdown.FinalAmount = round2(breakdown.TotalAmount - breakdown.DiscountAmount)

	return &breakdown, nil
}

// discountEligible reports whether the patient qualifies for the
// returning-patient discount: an earlier appointment with the same
// doctor, in a completed-or-approved status, within the 90 days before
// the current appointment's date. "Earlier" is strict: an older date,
// or the same date at an earlier clock time. The COMPLETED status is
// checked for compatibility with historical rows even though the
// current lifecycle never writes it.
func (s *BillingService) discountEligible(tx *gorm.DB, appointment *models.Appointment) (bool, error) {
	windowStart := appointment.AppointmentDate.AddDate(0, 0, -loyaltyWindowDays)
	statuses := []string{"COMPLETED", string(models.AppointmentStatusApproved), string(models.AppointmentStatusVisited)}

	var count int64
	err := tx.Model(&models.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND id <> ?", appointment.PatientID, appointment.DoctorID, appointment.ID).
		Where("status IN ?", statuses).
		Where("appointment_date >= ?", windowStart).
		Where("appointment_date < ? OR (appointment_date = ? AND appointment_time < ?)",
			appointment.AppointmentDate, appointment.AppointmentDate, appointment.AppointmentTime).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const invoiceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newInvoiceNumber draws INV-XXXXXXXX codes until one is unused.
func newInvoiceNumber(tx *gorm.DB) (string, error) {
	for {
		b := make([]byte, 8)
		for i := range b {
			b[i] = invoiceCharset[rand.Intn(len(invoiceCharset))]
		}
		candidate := "INV-" + string(b)

		var count int64
		if err := tx.Model(&models.Billing{}).Where("invoice_number = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}

// CreateInvoice prices the appointment and persists the invoice. The
// same transaction reconciles the appointment's case type: OLD when the
// returning-patient discount applied, NEW otherwise, written only when
// it actually changed.
func (s *BillingService) CreateInvoice(actor Actor, appointmentID, notes string) (*models.Billing, error) {
	if err := Authorize(OpBillingCreate, actor.Role); err != nil {
		return nil, err
	}

	var billing models.Billing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.Preload("Patient").First(&appointment, "id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment not found", ErrNotFound)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Billing{}).Where("appointment_id = ?", appointment.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: invoice already exists for this appointment", ErrConflict)
		}

		breakdown, err := s.computeFees(tx, &appointment)
		if err != nil {
			return err
		}

		invoiceNumber, err := newInvoiceNumber(tx)
		if err != nil {
			return err
		}

		billing = models.Billing{
			AppointmentID:      appointment.ID,
			PatientID:          appointment.PatientID,
			DoctorID:           appointment.DoctorID,
			InvoiceNumber:      invoiceNumber,
			DoctorFee:          breakdown.DoctorFee,
			HospitalCharge:     breakdown.HospitalCharge,
			BedCharge:          breakdown.BedCharge,
			BedDays:            breakdown.BedDays,
			BedChargePerDay:    breakdown.BedChargePerDay,
			DiscountPercentage: breakdown.DiscountPercentage,
			DiscountAmount:     breakdown.DiscountAmount,
			TotalAmount:        breakdown.TotalAmount,
			FinalAmount:        breakdown.FinalAmount,
			PaymentStatus:      models.BillingPaymentPending,
			Notes:              notes,
		}
		if err := tx.Create(&billing).Error; err != nil {
			return err
		}

		// Eligibility, not the rupee amount, decides the case type: a
		// zero-fee visit can still be a returning patient.
		caseType := models.CaseTypeNew
		if breakdown.DiscountPercentage > 0 {
			caseType = models.CaseTypeOld
		}
		if appointment.CaseType != caseType {
			if err := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
				Update("case_type", caseType).Error; err != nil {
				return err
			}
		}

		s.notify.Notify(appointment.Patient.UserID, "Invoice Generated",
			fmt.Sprintf("Invoice %s has been generated for your visit. Amount payable: %.2f.",
				billing.InvoiceNumber, billing.PayableAmount()))
		if billing.DiscountPercentage > 0 {
			s.notify.Notify(appointment.Patient.UserID, "Loyalty Discount Applied",
				fmt.Sprintf("A %.0f%% returning-patient discount of %.2f was applied to invoice %s.",
					billing.DiscountPercentage, billing.DiscountAmount, billing.InvoiceNumber))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

// parseAmount accepts user-entered amounts with thousands separators or
// currency symbols. Unparseable input falls back to the target payable,
// treating it as "pay in full".
func parseAmount(raw string, fallback float64) float64 {
	cleaned := strings.NewReplacer(",", "", "$", "", "₹", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return fallback
	}
	return v
}

// RecordPayment applies a payment to the invoice. When the payment
// covers the payable amount (within a one-cent tolerance) the invoice
// becomes PAID and every unsettled bed allocation of the patient is
// settled in the same transaction.
func (s *BillingService) RecordPayment(actor Actor, billingID, amount string, method models.PaymentMethod) (*models.Billing, error) {
	if err := Authorize(OpBillingPay, actor.Role); err != nil {
		return nil, err
	}

	var billing models.Billing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Patient").First(&billing, "id = ?", billingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invoice not found", ErrNotFound)
			}
			return err
		}
		if billing.PaymentStatus == models.BillingPaymentCancelled {
			return fmt.Errorf("%w: invoice %s is cancelled", ErrInvalidState, billing.InvoiceNumber)
		}
		if billing.PaymentStatus == models.BillingPaymentPaid {
			return fmt.Errorf("%w: invoice %s is already paid", ErrInvalidState, billing.InvoiceNumber)
		}

		target := billing.PayableAmount()
		paid := round2(parseAmount(amount, target))
		if paid < 0 {
			return fmt.Errorf("%w: payment amount cannot be negative", ErrValidation)
		}

		billing.PaidAmount = paid
		billing.PaymentMethod = method
		updates := map[string]interface{}{
			"paid_amount":    paid,
			"payment_method": method,
		}
		if paid >= target-paymentTolerance {
			billing.PaymentStatus = models.BillingPaymentPaid
			updates["payment_status"] = models.BillingPaymentPaid
		}
		if err := tx.Model(&models.Billing{}).Where("id = ?", billing.ID).Updates(updates).Error; err != nil {
			return err
		}

		if billing.PaymentStatus == models.BillingPaymentPaid {
			if err := tx.Model(&models.BedAllocation{}).
				Where("patient_id = ? AND payment_status = ?", billing.PatientID, models.AllocationPaymentPending).
				Update("payment_status", models.AllocationPaymentPaid).Error; err != nil {
				return err
			}
		}

		// Both parties hear about every payment, partial ones included.
		s.notify.Notify(billing.Patient.UserID, "Payment Successful",
			fmt.Sprintf("Your payment of %.2f for invoice %s has been received.", paid, billing.InvoiceNumber))
		s.notify.NotifyRole(models.RoleAdmin, "Payment Received",
			fmt.Sprintf("Payment of %.2f received for invoice %s.", paid, billing.InvoiceNumber))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &billing, nil
}

// CancelInvoice voids an unpaid invoice. Bed allocation payment flags
// are deliberately left untouched so a replacement invoice can still
// pick the charge up.
func (s *BillingService) CancelInvoice(actor Actor, billingID string) (*models.Billing, error) {
	if err := Authorize(OpBillingCancel, actor.Role); err != nil {
		return nil, err
	}

	var billing models.Billing
	if err := s.db.First(&billing, "id = ?", billingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", ErrNotFound)
		}
		return nil, err
	}
	if billing.PaymentStatus == models.BillingPaymentPaid {
		return nil, fmt.Errorf("%w: paid invoice %s cannot be cancelled", ErrInvalidState, billing.InvoiceNumber)
	}
	if billing.PaymentStatus == models.BillingPaymentCancelled {
		return nil, fmt.Errorf("%w: invoice %s is already cancelled", ErrInvalidState, billing.InvoiceNumber)
	}

	billing.PaymentStatus = models.BillingPaymentCancelled
	if err := s.db.Model(&models.Billing{}).Where("id = ?", billing.ID).
		Update("payment_status", models.BillingPaymentCancelled).Error; err != nil {
		return nil, err
	}
	return &billing, nil
}

// GetByID returns an invoice with its relations preloaded.
func (s *BillingService) GetByID(id string) (*models.Billing, error) {
	var billing models.Billing
	err := s.db.Preload("Patient.User").Preload("Doctor.User").Preload("Appointment").
		First(&billing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice not found", ErrNotFound)
		}
		return nil, err
	}
	return &billing, nil
}

// ListForActor returns the invoices visible to the actor: their own for
// patients, everything for admins and staff.
func (s *BillingService) ListForActor(actor Actor) ([]models.Billing, error) {
	query := s.db.Preload("Patient.User").Preload("Doctor.User").Order("created_at DESC")

	if actor.Role == models.RolePatient {
		var patient models.Patient
		if err := s.db.Where("user_id = ?", actor.UserID).First(&patient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Billing{}, nil
			}
			return nil, err
		}
		query = query.Where("patient_id = ?", patient.ID)
	}

	var billings []models.Billing
	if err := query.Find(&billings).Error; err != nil {
		return nil, err
	}
	return billings, nil
}
