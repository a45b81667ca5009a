package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"
)

// DoctorHandler serves the doctors directory and department management.
type DoctorHandler struct {
	db *gorm.DB
}

func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{db: db}
}

// GetDoctors lists doctors with their user and department, optionally
// filtered by department or availability.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.db.Preload("User").Preload("Department")
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department_id = ?", dept)
	}
	if c.Query("available") == "true" {
		query = query.Where("is_available = ?", true)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}
	utils.Success(c, "Doctors retrieved", doctors)
}

// GetDoctor returns a single doctor profile.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	var doctor models.Doctor
	err := h.db.Preload("User").Preload("Department").First(&doctor, "id = ?", c.Param("id")).Error
	if err != nil {
		utils.NotFound(c, "Doctor not found")
		return
	}
	utils.Success(c, "Doctor retrieved", doctor)
}

// UpdateDoctorRequest defines the editable doctor profile fields.
type UpdateDoctorRequest struct {
	DepartmentID    *string  `json:"departmentId"`
	Specialization  *string  `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experienceYears"`
	ConsultationFee *float64 `json:"consultationFee"`
	IsAvailable     *bool    `json:"isAvailable"`
}

// UpdateDoctor updates a doctor's profile. Admin only.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.db.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Doctor not found")
		return
	}

	if req.DepartmentID != nil {
		doctor.DepartmentID = req.DepartmentID
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.IsAvailable != nil {
		doctor.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor")
		return
	}
	utils.Success(c, "Doctor updated", doctor)
}

// CreateDepartmentRequest defines the department creation payload.
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDepartment creates a department. Admin only.
func (h *DoctorHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	department := models.Department{Name: req.Name, Description: req.Description}
	if err := h.db.Create(&department).Error; err != nil {
		utils.Conflict(c, "A department with this name already exists")
		return
	}
	utils.Created(c, "Department created", department)
}

// GetDepartments lists all departments.
func (h *DoctorHandler) GetDepartments(c *gin.Context) {
	var departments []models.Department
	if err := h.db.Order("name").Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments")
		return
	}
	utils.Success(c, "Departments retrieved", departments)
}
