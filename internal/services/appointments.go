package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// AppointmentService drives the appointment state machine. Every status
// change goes through transition so the persisted status and the
// notifications it owes are always produced together.
type AppointmentService struct {
	db     *gorm.DB
	notify Notifier
}

func NewAppointmentService(db *gorm.DB, notify Notifier) *AppointmentService {
	return &AppointmentService{db: db, notify: notify}
}

// BookInput carries the fields a caller supplies when requesting an
// appointment. PatientID is only honored for ADMIN/STAFF actors.
type BookInput struct {
	PatientID string
	DoctorID  string
	Date      time.Time
	Time      string
	Reason    string
}

// Book creates a PENDING appointment and alerts the admins.
func (s *AppointmentService) Book(actor Actor, in BookInput) (*models.Appointment, error) {
	if err := Authorize(OpAppointmentBook, actor.Role); err != nil {
		return nil, err
	}

	patientID := in.PatientID
	if actor.Role == models.RolePatient {
		var patient models.Patient
		if err := s.db.Where("user_id = ?", actor.UserID).First(&patient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: patient profile not found", ErrValidation)
			}
			return nil, err
		}
		patientID = patient.ID
	}
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient is required", ErrValidation)
	}
	if in.DoctorID == "" || in.Date.IsZero() || in.Time == "" {
		return nil, fmt.Errorf("%w: doctor, date and time are required", ErrValidation)
	}

	var doctor models.Doctor
	if err := s.db.First(&doctor, "id = ?", in.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor not found", ErrNotFound)
		}
		return nil, err
	}

	appointment := models.Appointment{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		AppointmentDate: in.Date,
		AppointmentTime: in.Time,
		Reason:          in.Reason,
		Status:          models.AppointmentStatusPending,
		CaseType:        models.CaseTypeNew,
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, err
	}

	s.notify.NotifyRole(models.RoleAdmin, "New Appointment Request",
		fmt.Sprintf("A new appointment has been requested for %s at %s.",
			appointment.AppointmentDate.Format("2006-01-02"), appointment.AppointmentTime))

	return &appointment, nil
}

// Approve moves a PENDING appointment to APPROVED. Admin only.
func (s *AppointmentService) Approve(actor Actor, id string) (*models.Appointment, error) {
	if err := Authorize(OpAppointmentApprove, actor.Role); err != nil {
		return nil, err
	}
	return s.transition(id, models.AppointmentStatusApproved, func(a *models.Appointment) error {
		if a.Status != models.AppointmentStatusPending {
			return fmt.Errorf("%w: cannot approve appointment in status %s", ErrInvalidState, a.Status)
		}
		return nil
	}, "")
}

// Reject moves a PENDING appointment to REJECTED with a reason shown to
// the patient. Admin only.
func (s *AppointmentService) Reject(actor Actor, id, reason string) (*models.Appointment, error) {
	if err := Authorize(OpAppointmentReject, actor.Role); err != nil {
		return nil, err
	}
	return s.transition(id, models.AppointmentStatusRejected, func(a *models.Appointment) error {
		if a.Status != models.AppointmentStatusPending {
			return fmt.Errorf("%w: cannot reject appointment in status %s", ErrInvalidState, a.Status)
		}
		return nil
	}, reason)
}

// Cancel is allowed for the owning patient or an admin while the
// appointment is still PENDING or APPROVED.
func (s *AppointmentService) Cancel(actor Actor, id string) (*models.Appointment, error) {
	if err := Authorize(OpAppointmentCancel, actor.Role); err != nil {
		return nil, err
	}

	var appointment models.Appointment
	if err := s.db.Preload("Patient").First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment not found", ErrNotFound)
		}
		return nil, err
	}

	actorIsOwner := appointment.Patient.UserID == actor.UserID
	if actor.Role == models.RolePatient && !actorIsOwner {
		return nil, fmt.Errorf("%w: appointment belongs to another patient", ErrPermission)
	}

	result, err := s.transition(id, models.AppointmentStatusCancelled, func(a *models.Appointment) error {
		if a.Status != models.AppointmentStatusPending && a.Status != models.AppointmentStatusApproved {
			return fmt.Errorf("%w: cannot cancel appointment in status %s", ErrInvalidState, a.Status)
		}
		return nil
	}, "")
	if err != nil {
		return nil, err
	}
	// The notification for a cancellation is suppressed when the patient
	// cancelled their own appointment; transition leaves it to us.
	if !actorIsOwner {
		s.notify.Notify(appointment.Patient.UserID, "Appointment Cancelled",
			fmt.Sprintf("Your appointment on %s at %s has been cancelled.",
				appointment.AppointmentDate.Format("2006-01-02"), appointment.AppointmentTime))
	}
	return result, nil
}

// MarkVisited records that the consultation happened. Fired when the
// doctor writes the prescription; runs inside the caller's transaction.
func (s *AppointmentService) markVisited(tx *gorm.DB, appointment *models.Appointment) error {
	if appointment.IsTerminal() {
		return fmt.Errorf("%w: cannot mark appointment in status %s as visited", ErrInvalidState, appointment.Status)
	}
	appointment.Status = models.AppointmentStatusVisited
	if err := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
		Update("status", models.AppointmentStatusVisited).Error; err != nil {
		return err
	}
	s.notifyFor(appointment, "")
	return nil
}

// transition loads the appointment, runs the guard, persists the new
// status and fires the notifications that status owes.
func (s *AppointmentService) transition(id string, to models.AppointmentStatus, guard func(*models.Appointment) error, reason string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment not found", ErrNotFound)
		}
		return nil, err
	}
	if err := guard(&appointment); err != nil {
		return nil, err
	}

	appointment.Status = to
	updates := map[string]interface{}{"status": to}
	if reason != "" {
		appointment.Notes = reason
		updates["notes"] = reason
	}
	if err := s.db.Model(&models.Appointment{}).Where("id = ?", appointment.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.notifyFor(&appointment, reason)
	return &appointment, nil
}

// notifyFor sends the notifications owed by the appointment's current
// status. Cancellation is handled by the caller since its recipient
// depends on who acted.
func (s *AppointmentService) notifyFor(a *models.Appointment, reason string) {
	when := fmt.Sprintf("%s at %s", a.AppointmentDate.Format("2006-01-02"), a.AppointmentTime)
	switch a.Status {
	case models.AppointmentStatusApproved:
		s.notify.Notify(a.Patient.UserID, "Appointment Approved",
			fmt.Sprintf("Your appointment on %s has been approved.", when))
		s.notify.Notify(a.Doctor.UserID, "Appointment Scheduled",
			fmt.Sprintf("An appointment has been scheduled for you on %s.", when))
	case models.AppointmentStatusRejected:
		msg := fmt.Sprintf("Your appointment on %s has been rejected.", when)
		if reason != "" {
			msg = fmt.Sprintf("Your appointment on %s has been rejected. Reason: %s", when, reason)
		}
		s.notify.Notify(a.Patient.UserID, "Appointment Rejected", msg)
	case models.AppointmentStatusVisited:
		s.notify.Notify(a.Patient.UserID, "Consultation Completed",
			fmt.Sprintf("Your consultation on %s has been completed.", when))
	}
}

// GetByID returns an appointment with its relations preloaded.
func (s *AppointmentService) GetByID(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.Preload("Patient.User").Preload("Doctor.User").First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment not found", ErrNotFound)
		}
		return nil, err
	}
	return &appointment, nil
}

// ListForActor returns the appointments visible to the actor: their own
// for patients and doctors, everything for admins and staff.
func (s *AppointmentService) ListForActor(actor Actor) ([]models.Appointment, error) {
	query := s.db.Preload("Patient.User").Preload("Doctor.User").
		Order("appointment_date DESC, appointment_time DESC")

	switch actor.Role {
	case models.RolePatient:
		var patient models.Patient
		if err := s.db.Where("user_id = ?", actor.UserID).First(&patient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Appointment{}, nil
			}
			return nil, err
		}
		query = query.Where("patient_id = ?", patient.ID)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := s.db.Where("user_id = ?", actor.UserID).First(&doctor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Appointment{}, nil
			}
			return nil, err
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}
