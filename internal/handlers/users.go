package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"
)

// UserHandler serves the admin user-management endpoints.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUsers returns all users, optionally filtered by role.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.db.Order("created_at DESC")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users")
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}
	utils.Success(c, "Users retrieved", sanitized)
}

// CreateUserRequest defines the payload for creating staff accounts.
type CreateUserRequest struct {
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=8"`
	FirstName string      `json:"firstName" binding:"required"`
	LastName  string      `json:"lastName" binding:"required"`
	Role      models.Role `json:"role" binding:"required,oneof=ADMIN DOCTOR STAFF PATIENT"`
	Phone     string      `json:"phoneNumber"`

	// Doctor profile fields, honored when role is DOCTOR.
	DepartmentID    string  `json:"departmentId"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears"`
	ConsultationFee float64 `json:"consultationFee"`
	LicenseNumber   string  `json:"licenseNumber"`
}

// CreateUser creates an account of any role, with its hospital profile.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Failed to check existing users")
		return
	}
	if count > 0 {
		utils.Conflict(c, "A user with this email already exists")
		return
	}

	user := models.User{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		PhoneNumber: req.Phone,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to process password")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch req.Role {
		case models.RoleDoctor:
			doctor := models.Doctor{
				UserID:          user.ID,
				Specialization:  req.Specialization,
				Qualification:   req.Qualification,
				ExperienceYears: req.ExperienceYears,
				ConsultationFee: req.ConsultationFee,
				LicenseNumber:   req.LicenseNumber,
				IsAvailable:     true,
			}
			if req.DepartmentID != "" {
				doctor.DepartmentID = &req.DepartmentID
			}
			return tx.Create(&doctor).Error
		case models.RolePatient:
			patient := models.Patient{UserID: user.ID}
			return tx.Create(&patient).Error
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create user")
		return
	}

	utils.Created(c, "User created", user.Sanitize())
}

// GetUser returns a single user by ID.
func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}
	utils.Success(c, "User retrieved", user.Sanitize())
}
