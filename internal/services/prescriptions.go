package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// PrescriptionService writes prescriptions on behalf of doctors. A
// prescription completes the consultation, so creating one also marks
// the appointment VISITED and, when admission is needed, raises a bed
// request. All of it happens in one transaction.
type PrescriptionService struct {
	db           *gorm.DB
	notify       Notifier
	appointments *AppointmentService
}

func NewPrescriptionService(db *gorm.DB, notify Notifier, appointments *AppointmentService) *PrescriptionService {
	return &PrescriptionService{db: db, notify: notify, appointments: appointments}
}

// PrescriptionInput carries the fields a doctor submits.
type PrescriptionInput struct {
	AppointmentID   string
	Diagnosis       string
	Medications     string
	Instructions    string
	FollowUpDate    *time.Time
	BedRequired     bool
	ExpectedBedDays int
}

// Create writes the prescription for an appointment. The acting doctor
// must own the appointment; patient and doctor references are derived
// from it, never taken from the caller.
func (s *PrescriptionService) Create(actor Actor, in PrescriptionInput) (*models.Prescription, error) {
	if err := Authorize(OpPrescriptionCreate, actor.Role); err != nil {
		return nil, err
	}
	if in.Diagnosis == "" {
		return nil, fmt.Errorf("%w: diagnosis is required", ErrValidation)
	}
	if in.BedRequired && in.ExpectedBedDays <= 0 {
		return nil, fmt.Errorf("%w: expected bed days must be positive when a bed is required", ErrValidation)
	}

	var prescription models.Prescription
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", in.AppointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment not found", ErrNotFound)
			}
			return err
		}
		if appointment.Doctor.UserID != actor.UserID {
			return fmt.Errorf("%w: appointment belongs to another doctor", ErrPermission)
		}

		var existing int64
		if err := tx.Model(&models.Prescription{}).Where("appointment_id = ?", appointment.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: prescription already exists for this appointment", ErrConflict)
		}

		prescription = models.Prescription{
			AppointmentID:   appointment.ID,
			PatientID:       appointment.PatientID,
			DoctorID:        appointment.DoctorID,
			Diagnosis:       in.Diagnosis,
			Medications:     in.Medications,
			Instructions:    in.Instructions,
			FollowUpDate:    in.FollowUpDate,
			BedRequired:     in.BedRequired,
			ExpectedBedDays: in.ExpectedBedDays,
		}
		if err := tx.Create(&prescription).Error; err != nil {
			return err
		}

		if err := s.appointments.markVisited(tx, &appointment); err != nil {
			return err
		}

		if in.BedRequired {
			request := models.BedRequest{
				PatientID:       appointment.PatientID,
				DoctorID:        appointment.DoctorID,
				AppointmentID:   appointment.ID,
				ExpectedBedDays: in.ExpectedBedDays,
				Status:          models.BedRequestStatusPending,
			}
			if err := tx.Create(&request).Error; err != nil {
				return err
			}
		}

		s.notify.Notify(appointment.Patient.UserID, "New Prescription",
			"Your doctor has issued a new prescription for your recent visit.")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

// GetByID returns a prescription with its relations preloaded.
func (s *PrescriptionService) GetByID(id string) (*models.Prescription, error) {
	var prescription models.Prescription
	err := s.db.Preload("Patient.User").Preload("Doctor.User").Preload("Appointment").
		First(&prescription, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: prescription not found", ErrNotFound)
		}
		return nil, err
	}
	return &prescription, nil
}

// ListForActor returns prescriptions visible to the actor: their own
// for patients and doctors, everything for admins and staff.
func (s *PrescriptionService) ListForActor(actor Actor) ([]models.Prescription, error) {
	query := s.db.Preload("Patient.User").Preload("Doctor.User").Order("created_at DESC")

	switch actor.Role {
	case models.RolePatient:
		var patient models.Patient
		if err := s.db.Where("user_id = ?", actor.UserID).First(&patient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Prescription{}, nil
			}
			return nil, err
		}
		query = query.Where("patient_id = ?", patient.ID)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := s.db.Where("user_id = ?", actor.UserID).First(&doctor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Prescription{}, nil
			}
			return nil, err
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		return nil, err
	}
	return prescriptions, nil
}
