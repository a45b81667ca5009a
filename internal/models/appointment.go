package models

import (
	"time"
)

// AppointmentStatus enum
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusApproved  AppointmentStatus = "APPROVED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusVisited   AppointmentStatus = "VISITED"
)

// CaseType enum. Derived during billing, never set by callers.
type CaseType string

const (
	CaseTypeNew CaseType = "NEW"
	CaseTypeOld CaseType = "OLD"
)

// Appointment represents a consultation request between a patient and a
// doctor. Rows are never hard-deleted; cancellation is a status change.
type Appointment struct {
	BaseModel
	PatientID string `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID  string `gorm:"size:36;index;not null" json:"doctorId"`

	// Calendar date of the visit. The clock time is kept separately as
	// HH:MM so same-day orderings compare lexicographically.
	AppointmentDate time.Time `gorm:"type:date;not null" json:"appointmentDate"`
	AppointmentTime string    `gorm:"size:5;not null" json:"appointmentTime"`

	Reason   string            `gorm:"type:text" json:"reason,omitempty"`
	Notes    string            `gorm:"type:text" json:"notes,omitempty"`
	Status   AppointmentStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	CaseType CaseType          `gorm:"size:5;default:'NEW'" json:"caseType"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// IsTerminal reports whether no further status transitions are allowed.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusVisited:
		return true
	}
	return false
}
