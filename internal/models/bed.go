package models

import (
	"time"
)

// WardType enum
type WardType string

const (
	WardTypeGeneral     WardType = "GENERAL"
	WardTypeICU         WardType = "ICU"
	WardTypePrivate     WardType = "PRIVATE"
	WardTypeSemiPrivate WardType = "SEMI_PRIVATE"
	WardTypeEmergency   WardType = "EMERGENCY"
	WardTypeMaternity   WardType = "MATERNITY"
	WardTypePediatric   WardType = "PEDIATRIC"
)

// BedStatus enum
type BedStatus string

const (
	BedStatusAvailable   BedStatus = "AVAILABLE"
	BedStatusOccupied    BedStatus = "OCCUPIED"
	BedStatusMaintenance BedStatus = "MAINTENANCE"
	BedStatusCleaning    BedStatus = "CLEANING"
)

// AllocationStatus enum
type AllocationStatus string

const (
	AllocationStatusActive     AllocationStatus = "ACTIVE"
	AllocationStatusDischarged AllocationStatus = "DISCHARGED"
)

// AllocationPaymentStatus enum
type AllocationPaymentStatus string

const (
	AllocationPaymentPending AllocationPaymentStatus = "PENDING"
	AllocationPaymentPaid    AllocationPaymentStatus = "PAID"
)

// BedRequestStatus enum
type BedRequestStatus string

const (
	BedRequestStatusPending  BedRequestStatus = "PENDING"
	BedRequestStatusApproved BedRequestStatus = "APPROVED"
	BedRequestStatusRejected BedRequestStatus = "REJECTED"
)

// Ward is a physical hospital ward containing beds.
type Ward struct {
	BaseModel
	Name        string   `gorm:"size:100;not null" json:"name"`
	WardType    WardType `gorm:"size:20;default:'GENERAL'" json:"wardType"`
	Floor       int      `json:"floor"`
	Description string   `gorm:"type:text" json:"description,omitempty"`

	Beds []Bed `gorm:"foreignKey:WardID" json:"beds,omitempty"`
}

// Bed is a single bed inside a ward.
type Bed struct {
	BaseModel
	WardID      string    `gorm:"size:36;index:idx_ward_bed,unique;not null" json:"wardId"`
	BedNumber   string    `gorm:"size:20;index:idx_ward_bed,unique;not null" json:"bedNumber"`
	BedType     string    `gorm:"size:50" json:"bedType,omitempty"`
	PricePerDay float64   `json:"pricePerDay"`
	Status      BedStatus `gorm:"size:20;default:'AVAILABLE'" json:"status"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	Ward Ward `gorm:"foreignKey:WardID" json:"ward,omitempty"`
}

// BedAllocation records a patient occupying a bed. Bed and patient rows
// must outlive their allocations, so deletes are restricted.
type BedAllocation struct {
	BaseModel
	BedID         string                  `gorm:"size:36;index;not null" json:"bedId"`
	PatientID     string                  `gorm:"size:36;index;not null" json:"patientId"`
	AdmissionDate time.Time               `gorm:"not null" json:"admissionDate"`
	DischargeDate *time.Time              `json:"dischargeDate,omitempty"`
	Reason        string                  `gorm:"type:text" json:"reason,omitempty"`
	Status        AllocationStatus        `gorm:"size:20;default:'ACTIVE'" json:"status"`
	PaymentStatus AllocationPaymentStatus `gorm:"size:10;default:'PENDING'" json:"paymentStatus"`
	Notes         string                  `gorm:"type:text" json:"notes,omitempty"`

	Bed     Bed     `gorm:"foreignKey:BedID;constraint:OnDelete:RESTRICT" json:"bed,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT" json:"patient,omitempty"`
}

// BedRequest is raised when a prescription flags that admission is needed.
type BedRequest struct {
	BaseModel
	PatientID       string           `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string           `gorm:"size:36;index;not null" json:"doctorId"`
	AppointmentID   string           `gorm:"size:36;index;not null" json:"appointmentId"`
	ExpectedBedDays int              `json:"expectedBedDays"`
	Status          BedRequestStatus `gorm:"size:20;default:'PENDING'" json:"status"`

	Patient     Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      Doctor      `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}
