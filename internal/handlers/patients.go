package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"
)

// PatientHandler serves patient profile endpoints.
type PatientHandler struct {
	db *gorm.DB
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{db: db}
}

// GetPatients lists patients. Staff-facing; supports a UHID filter.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.db.Preload("User").Order("created_at DESC")
	if uhid := c.Query("uhid"); uhid != "" {
		query = query.Where("uhid = ?", uhid)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients")
		return
	}
	utils.Success(c, "Patients retrieved", patients)
}

// GetPatient returns a single patient profile.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	var patient models.Patient
	if err := h.db.Preload("User").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}
	utils.Success(c, "Patient retrieved", patient)
}

// UpdatePatientRequest defines the editable patient profile fields.
type UpdatePatientRequest struct {
	Gender           *models.Gender `json:"gender"`
	BloodGroup       *string        `json:"bloodGroup"`
	Address          *string        `json:"address"`
	EmergencyContact *string        `json:"emergencyContact"`
	MedicalHistory   *string        `json:"medicalHistory"`
	Allergies        *string        `json:"allergies"`
}

// UpdateMyProfile lets a patient update their own hospital profile.
func (h *PatientHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.db.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		utils.NotFound(c, "Patient profile not found")
		return
	}

	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}

	if err := h.db.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient profile")
		return
	}
	utils.Success(c, "Patient profile updated", patient)
}
