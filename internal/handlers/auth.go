package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves registration, login and token lifecycle.
type AuthHandler struct {
	db     *gorm.DB
	tokens utils.TokenConfig
	secure bool
}

func NewAuthHandler(db *gorm.DB, tokens utils.TokenConfig, secureCookies bool) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, secure: secureCookies}
}

// RegisterRequest defines the registration payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phoneNumber"`
	Address   string `json:"address"`
}

// Register creates a new patient account with its hospital profile.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
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
		Role:        models.RolePatient,
		PhoneNumber: req.Phone,
		Address:     req.Address,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to process password")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		patient := models.Patient{UserID: user.ID, Address: req.Address}
		return tx.Create(&patient).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create user")
		return
	}

	utils.Created(c, "Registration successful", user.Sanitize())
}

// LoginRequest defines the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a user and issues a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&user, h.tokens)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens")
		return
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(h.tokens.RefreshExpiresIn),
	}
	if err := h.db.Create(&stored).Error; err != nil {
		utils.InternalServerError(c, "Failed to persist session")
		return
	}

	h.setRefreshCookie(c, refreshToken)
	utils.Success(c, "Login successful", gin.H{
		"accessToken": accessToken,
		"user":        user.Sanitize(),
	})
}

// RefreshToken rotates the refresh token and issues a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie == "" {
		utils.Unauthorized(c, "Refresh token is required")
		return
	}

	claims, err := utils.ValidateToken(cookie, h.tokens.RefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	var stored models.RefreshToken
	err = h.db.Where("token = ? AND user_id = ? AND is_revoked = ?", cookie, claims.UserID, false).
		First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token has been revoked")
			return
		}
		utils.InternalServerError(c, "Failed to look up session")
		return
	}
	if time.Now().After(stored.ExpiresAt) {
		utils.Unauthorized(c, "Refresh token has expired")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.Unauthorized(c, "User no longer exists")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&user, h.tokens)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens")
		return
	}

	// Rotate: revoke the old token and persist the replacement.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RefreshToken{}).Where("id = ?", stored.ID).
			Update("is_revoked", true).Error; err != nil {
			return err
		}
		replacement := models.RefreshToken{
			UserID:    user.ID,
			Token:     refreshToken,
			ExpiresAt: time.Now().Add(h.tokens.RefreshExpiresIn),
		}
		return tx.Create(&replacement).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to rotate session")
		return
	}

	h.setRefreshCookie(c, refreshToken)
	utils.Success(c, "Token refreshed", gin.H{"accessToken": accessToken})
}

// Logout revokes the caller's refresh tokens and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	if userID != "" {
		h.db.Model(&models.RefreshToken{}).
			Where("user_id = ? AND is_revoked = ?", userID, false).
			Update("is_revoked", true)
	}
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.secure, true)
	utils.Success(c, "Logged out", nil)
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	utils.Success(c, "Profile retrieved", user.Sanitize())
}

// UpdateProfileRequest defines the profile update payload
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateProfile updates the authenticated user's profile fields.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}

	if err := h.db.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile")
		return
	}

	utils.Success(c, "Profile updated", user.Sanitize())
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, int(h.tokens.RefreshExpiresIn.Seconds()), "/", "", h.secure, true)
}
