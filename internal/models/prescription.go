package models

import (
	"time"
)

// Prescription is written by a doctor against a visited appointment.
// At most one prescription exists per appointment.
type Prescription struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	PatientID     string `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID      string `gorm:"size:36;index;not null" json:"doctorId"`

	Diagnosis    string     `gorm:"type:text;not null" json:"diagnosis"`
	Medications  string     `gorm:"type:text" json:"medications,omitempty"`
	Instructions string     `gorm:"type:text" json:"instructions,omitempty"`
	FollowUpDate *time.Time `gorm:"type:date" json:"followUpDate,omitempty"`

	BedRequired     bool `gorm:"default:false" json:"bedRequired"`
	ExpectedBedDays int  `json:"expectedBedDays"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      Doctor      `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}
