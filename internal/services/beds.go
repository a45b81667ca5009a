package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// BedService owns bed occupancy: the bed status and its allocations
// always change together, inside one transaction.
type BedService struct {
	db     *gorm.DB
	notify Notifier
}

func NewBedService(db *gorm.DB, notify Notifier) *BedService {
	return &BedService{db: db, notify: notify}
}

// Allocate admits a patient into a bed. Fails with ErrConflict unless
// the bed is AVAILABLE at the time of the update.
func (s *BedService) Allocate(actor Actor, bedID, patientID, reason string) (*models.BedAllocation, error) {
	if err := Authorize(OpBedAllocate, actor.Role); err != nil {
		return nil, err
	}
	if bedID == "" || patientID == "" {
		return nil, fmt.Errorf("%w: bed and patient are required", ErrValidation)
	}

	var allocation models.BedAllocation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var bed models.Bed
		if err := tx.First(&bed, "id = ?", bedID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bed not found", ErrNotFound)
			}
			return err
		}
		if bed.Status != models.BedStatusAvailable || !bed.IsActive {
			return fmt.Errorf("%w: bed %s is not available", ErrConflict, bed.BedNumber)
		}

		var patient models.Patient
		if err := tx.First(&patient, "id = ?", patientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: patient not found", ErrNotFound)
			}
			return err
		}

		allocation = models.BedAllocation{
			BedID:         bed.ID,
			PatientID:     patient.ID,
			AdmissionDate: time.Now(),
			Reason:        reason,
			Status:        models.AllocationStatusActive,
			PaymentStatus: models.AllocationPaymentPending,
		}
		if err := tx.Create(&allocation).Error; err != nil {
			return err
		}

		// Guard against a racing allocation: the status update only
		// lands if the bed is still AVAILABLE.
		res := tx.Model(&models.Bed{}).
			Where("id = ? AND status = ?", bed.ID, models.BedStatusAvailable).
			Update("status", models.BedStatusOccupied)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: bed %s was taken concurrently", ErrConflict, bed.BedNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// Discharge closes an allocation. The bed returns to AVAILABLE
// immediately; settlement of the bed charge is left to billing, so the
// allocation's payment status stays PENDING.
func (s *BedService) Discharge(actor Actor, allocationID string, dischargeDate time.Time) (*models.BedAllocation, error) {
	if err := Authorize(OpBedDischarge, actor.Role); err != nil {
		return nil, err
	}
	if dischargeDate.IsZero() {
		return nil, fmt.Errorf("%w: discharge date is required", ErrValidation)
	}

	var allocation models.BedAllocation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&allocation, "id = ?", allocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: allocation not found", ErrNotFound)
			}
			return err
		}
		if allocation.Status == models.AllocationStatusDischarged {
			return fmt.Errorf("%w: patient already discharged", ErrInvalidState)
		}
		if dischargeDate.Before(allocation.AdmissionDate) {
			return fmt.Errorf("%w: discharge date precedes admission date", ErrValidation)
		}

		allocation.Status = models.AllocationStatusDischarged
		allocation.DischargeDate = &dischargeDate
		if err := tx.Model(&models.BedAllocation{}).Where("id = ?", allocation.ID).
			Updates(map[string]interface{}{
				"status":         models.AllocationStatusDischarged,
				"discharge_date": dischargeDate,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Bed{}).Where("id = ?", allocation.BedID).
			Update("status", models.BedStatusAvailable).Error
	})
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// UpdateBedStatus sets an out-of-service state (MAINTENANCE, CLEANING)
// or returns a bed to AVAILABLE. Occupied beds cannot be retargeted.
func (s *BedService) UpdateBedStatus(actor Actor, bedID string, status models.BedStatus) (*models.Bed, error) {
	if err := Authorize(OpBedManage, actor.Role); err != nil {
		return nil, err
	}
	switch status {
	case models.BedStatusAvailable, models.BedStatusMaintenance, models.BedStatusCleaning:
	default:
		return nil, fmt.Errorf("%w: bed status %s cannot be set directly", ErrValidation, status)
	}

	var bed models.Bed
	if err := s.db.First(&bed, "id = ?", bedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bed not found", ErrNotFound)
		}
		return nil, err
	}
	if bed.Status == models.BedStatusOccupied {
		return nil, fmt.Errorf("%w: bed is occupied", ErrInvalidState)
	}

	bed.Status = status
	if err := s.db.Model(&models.Bed{}).Where("id = ?", bed.ID).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &bed, nil
}

// ResolveBedRequest approves or rejects a pending bed request.
func (s *BedService) ResolveBedRequest(actor Actor, requestID string, status models.BedRequestStatus) (*models.BedRequest, error) {
	if err := Authorize(OpBedRequestResolve, actor.Role); err != nil {
		return nil, err
	}
	if status != models.BedRequestStatusApproved && status != models.BedRequestStatusRejected {
		return nil, fmt.Errorf("%w: invalid bed request resolution %s", ErrValidation, status)
	}

	var request models.BedRequest
	if err := s.db.Preload("Patient").First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bed request not found", ErrNotFound)
		}
		return nil, err
	}
	if request.Status != models.BedRequestStatusPending {
		return nil, fmt.Errorf("%w: bed request already resolved", ErrInvalidState)
	}

	request.Status = status
	if err := s.db.Model(&models.BedRequest{}).Where("id = ?", request.ID).Update("status", status).Error; err != nil {
		return nil, err
	}

	if status == models.BedRequestStatusApproved {
		s.notify.Notify(request.Patient.UserID, "Bed Request Approved",
			"Your bed request has been approved. Please contact the admission desk.")
	} else {
		s.notify.Notify(request.Patient.UserID, "Bed Request Rejected",
			"Your bed request has been rejected.")
	}
	return &request, nil
}
