package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// BedHandler exposes ward, bed and allocation management over HTTP.
type BedHandler struct {
	db  *gorm.DB
	svc *services.BedService
}

func NewBedHandler(db *gorm.DB, svc *services.BedService) *BedHandler {
	return &BedHandler{db: db, svc: svc}
}

// CreateWardRequest defines the ward creation payload.
type CreateWardRequest struct {
	Name        string          `json:"name" binding:"required"`
	WardType    models.WardType `json:"wardType" binding:"required,oneof=GENERAL ICU PRIVATE SEMI_PRIVATE EMERGENCY MATERNITY PEDIATRIC"`
	Floor       int             `json:"floor"`
	Description string          `json:"description"`
}

// CreateWard creates a ward. Admin/staff only via routes.
func (h *BedHandler) CreateWard(c *gin.Context) {
	var req CreateWardRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ward := models.Ward{
		Name:        req.Name,
		WardType:    req.WardType,
		Floor:       req.Floor,
		Description: req.Description,
	}
	if err := h.db.Create(&ward).Error; err != nil {
		utils.InternalServerError(c, "Failed to create ward")
		return
	}
	utils.Created(c, "Ward created", ward)
}

// wardSummary augments a ward with derived bed counts.
type wardSummary struct {
	models.Ward
	TotalBeds     int64 `json:"totalBeds"`
	AvailableBeds int64 `json:"availableBeds"`
}

// GetWards lists wards with derived total/available bed counts.
func (h *BedHandler) GetWards(c *gin.Context) {
	var wards []models.Ward
	if err := h.db.Order("floor, name").Find(&wards).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch wards")
		return
	}

	summaries := make([]wardSummary, 0, len(wards))
	for _, ward := range wards {
		summary := wardSummary{Ward: ward}
		if err := h.db.Model(&models.Bed{}).
			Where("ward_id = ? AND is_active = ?", ward.ID, true).
			Count(&summary.TotalBeds).Error; err != nil {
			utils.InternalServerError(c, "Failed to count beds")
			return
		}
		if err := h.db.Model(&models.Bed{}).
			Where("ward_id = ? AND is_active = ? AND status = ?", ward.ID, true, models.BedStatusAvailable).
			Count(&summary.AvailableBeds).Error; err != nil {
			utils.InternalServerError(c, "Failed to count beds")
			return
		}
		summaries = append(summaries, summary)
	}
	utils.Success(c, "Wards retrieved", summaries)
}

// CreateBedRequest defines the bed creation payload.
type CreateBedRequest struct {
	WardID      string  `json:"wardId" binding:"required"`
	BedNumber   string  `json:"bedNumber" binding:"required"`
	BedType     string  `json:"bedType"`
	PricePerDay float64 `json:"pricePerDay" binding:"required"`
}

// CreateBed adds a bed to a ward.
func (h *BedHandler) CreateBed(c *gin.Context) {
	var req CreateBedRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var ward models.Ward
	if err := h.db.First(&ward, "id = ?", req.WardID).Error; err != nil {
		utils.NotFound(c, "Ward not found")
		return
	}

	bed := models.Bed{
		WardID:      req.WardID,
		BedNumber:   req.BedNumber,
		BedType:     req.BedType,
		PricePerDay: req.PricePerDay,
		Status:      models.BedStatusAvailable,
		IsActive:    true,
	}
	if err := h.db.Create(&bed).Error; err != nil {
		utils.Conflict(c, "A bed with this number already exists in the ward")
		return
	}
	utils.Created(c, "Bed created", bed)
}

// GetBeds lists beds, optionally filtered by ward and status.
func (h *BedHandler) GetBeds(c *gin.Context) {
	query := h.db.Preload("Ward").Where("is_active = ?", true)
	if wardID := c.Query("ward"); wardID != "" {
		query = query.Where("ward_id = ?", wardID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var beds []models.Bed
	if err := query.Find(&beds).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch beds")
		return
	}
	utils.Success(c, "Beds retrieved", beds)
}

// UpdateBedStatusRequest defines the status change payload.
type UpdateBedStatusRequest struct {
	Status models.BedStatus `json:"status" binding:"required,oneof=AVAILABLE MAINTENANCE CLEANING"`
}

// UpdateBedStatus sets a bed's operational status.
func (h *BedHandler) UpdateBedStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req UpdateBedStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	bed, err := h.svc.UpdateBedStatus(actor, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Bed status updated", bed)
}

// AllocateBedRequest defines the admission payload.
type AllocateBedRequest struct {
	BedID     string `json:"bedId" binding:"required"`
	PatientID string `json:"patientId" binding:"required"`
	Reason    string `json:"reason"`
}

// Allocate admits a patient into a bed.
func (h *BedHandler) Allocate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req AllocateBedRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	allocation, err := h.svc.Allocate(actor, req.BedID, req.PatientID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Bed allocated", allocation)
}

// DischargeRequest defines the discharge payload.
type DischargeRequest struct {
	DischargeDate string `json:"dischargeDate" binding:"required"`
}

// Discharge releases a patient from their bed.
func (h *BedHandler) Discharge(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req DischargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dischargeDate, err := time.Parse(time.RFC3339, req.DischargeDate)
	if err != nil {
		if dischargeDate, err = time.Parse("2006-01-02", req.DischargeDate); err != nil {
			utils.BadRequest(c, "dischargeDate must be an RFC3339 timestamp or YYYY-MM-DD date")
			return
		}
	}

	allocation, err := h.svc.Discharge(actor, c.Param("id"), dischargeDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Patient discharged", allocation)
}

// GetAllocations lists allocations, optionally filtered by patient or status.
func (h *BedHandler) GetAllocations(c *gin.Context) {
	query := h.db.Preload("Bed.Ward").Preload("Patient.User").Order("admission_date DESC")
	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var allocations []models.BedAllocation
	if err := query.Find(&allocations).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch allocations")
		return
	}
	utils.Success(c, "Allocations retrieved", allocations)
}

// GetBedRequests lists bed requests, optionally filtered by status.
func (h *BedHandler) GetBedRequests(c *gin.Context) {
	query := h.db.Preload("Patient.User").Preload("Doctor.User").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.BedRequest
	if err := query.Find(&requests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch bed requests")
		return
	}
	utils.Success(c, "Bed requests retrieved", requests)
}

// ResolveBedRequestRequest defines the resolution payload.
type ResolveBedRequestRequest struct {
	Status models.BedRequestStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// ResolveBedRequest approves or rejects a bed request.
func (h *BedHandler) ResolveBedRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req ResolveBedRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	request, err := h.svc.ResolveBedRequest(actor, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Bed request resolved", request)
}
