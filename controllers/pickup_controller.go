package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// PickupController manages waste collection scheduling.
type PickupController struct {
	db *gorm.DB
}

// NewPickupController creates a new controller instance.
func NewPickupController(db *gorm.DB) *PickupController {
	return &PickupController{db: db}
}

// SchedulePickup books a collection slot for the authenticated user.
func (p *PickupController) SchedulePickup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		WasteType     string    `json:"waste_type" binding:"required"`
		ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
		Address       string    `json:"address" binding:"required"`
		Notes         string    `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	wasteType := strings.ToLower(strings.TrimSpace(req.WasteType))
	if !models.ValidWasteType(wasteType) {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid waste type")
		return
	}
	if req.ScheduledDate.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "scheduled date must be in the future")
		return
	}

	pickup := models.PickupSchedule{
		UserID:        userID,
		WasteType:     wasteType,
		ScheduledDate: req.ScheduledDate,
		Address:       utils.Sanitize(strings.TrimSpace(req.Address)),
		Notes:         utils.Sanitize(strings.TrimSpace(req.Notes)),
		Status:        models.PickupScheduled,
	}

	if err := p.db.Create(&pickup).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to schedule pickup")
		return
	}

	utils.Success(ctx, gin.H{"pickup": pickup})
}

// ListPickups returns the user's pickups, soonest first.
func (p *PickupController) ListPickups(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := p.db.Where("user_id = ?", userID)
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var pickups []models.PickupSchedule
	if err := query.Order("scheduled_date ASC").Find(&pickups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list pickups")
		return
	}

	utils.Success(ctx, gin.H{"items": pickups})
}

// UpdatePickupStatus advances a pickup through its lifecycle. Owners may
// cancel; only admins confirm or complete.
func (p *PickupController) UpdatePickupStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}

	var pickup models.PickupSchedule
	if err := p.db.First(&pickup, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "pickup not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load pickup")
		return
	}

	admin := isAdmin(ctx)
	if pickup.UserID != userID && !admin {
		utils.Error(ctx, http.StatusForbidden, 40340, "not your pickup")
		return
	}

	if !validPickupTransition(pickup.Status, req.Status, admin) {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid status transition")
		return
	}

	pickup.Status = req.Status
	if err := p.db.Save(&pickup).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to update pickup")
		return
	}

	utils.Success(ctx, gin.H{"pickup": pickup})
}

// validPickupTransition: scheduled -> confirmed -> completed, cancel allowed
// any time before completion. Confirm/complete are operator actions.
func validPickupTransition(from, to string, admin bool) bool {
	switch to {
	case models.PickupCancelled:
		return from == models.PickupScheduled || from == models.PickupConfirmed
	case models.PickupConfirmed:
		return admin && from == models.PickupScheduled
	case models.PickupCompleted:
		return admin && from == models.PickupConfirmed
	}
	return false
}
