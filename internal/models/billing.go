package models

// BillingPaymentStatus enum
type BillingPaymentStatus string

const (
	BillingPaymentPending   BillingPaymentStatus = "PENDING"
	BillingPaymentPaid      BillingPaymentStatus = "PAID"
	BillingPaymentCancelled BillingPaymentStatus = "CANCELLED"
)

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "CASH"
	PaymentMethodCard      PaymentMethod = "CARD"
	PaymentMethodUPI       PaymentMethod = "UPI"
	PaymentMethodInsurance PaymentMethod = "INSURANCE"
)

// Billing is the invoice raised for a single appointment. All monetary
// fields hold 2-decimal currency values. InvoiceNumber is immutable once
// written.
type Billing struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	PatientID     string `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID      string `gorm:"size:36;index;not null" json:"doctorId"`
	InvoiceNumber string `gorm:"size:20;uniqueIndex;not null" json:"invoiceNumber"`

	DoctorFee          float64 `json:"doctorFee"`
	HospitalCharge     float64 `json:"hospitalCharge"`
	BedCharge          float64 `json:"bedCharge"`
	BedDays            int     `json:"bedDays"`
	BedChargePerDay    float64 `json:"bedChargePerDay"`
	DiscountPercentage float64 `json:"discountPercentage"`
	DiscountAmount     float64 `json:"discountAmount"`
	TotalAmount        float64 `json:"totalAmount"`
	FinalAmount        float64 `json:"finalAmount"`
	PaidAmount         float64 `json:"paidAmount"`

	PaymentStatus BillingPaymentStatus `gorm:"size:10;default:'PENDING'" json:"paymentStatus"`
	PaymentMethod PaymentMethod        `gorm:"size:10" json:"paymentMethod,omitempty"`
	Notes         string               `gorm:"type:text" json:"notes,omitempty"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      Doctor      `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// PayableAmount is what the payer owes: the discounted figure when one
// was computed, the gross total otherwise.
func (b *Billing) PayableAmount() float64 {
	if b.FinalAmount > 0 {
		return b.FinalAmount
	}
	return b.TotalAmount
}

// Balance returns the outstanding amount on the invoice.
func (b *Billing) Balance() float64 {
	return b.PayableAmount() - b.PaidAmount
}
