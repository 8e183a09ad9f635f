package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/config"
	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// WasteController manages logged waste entries and the per-user analytics view.
type WasteController struct {
	db *gorm.DB
}

// NewWasteController creates a new controller instance.
func NewWasteController(db *gorm.DB) *WasteController {
	return &WasteController{db: db}
}

// CreateWasteEntry logs a disposal and credits the earned points. The entry
// insert and the balance updates run in one transaction so the user's
// eco_points always moves by exactly the entry's eco_points_earned.
func (w *WasteController) CreateWasteEntry(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		WasteType string  `json:"waste_type" binding:"required"`
		Quantity  float64 `json:"quantity" binding:"required"`
		Notes     string  `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	wasteType := strings.ToLower(strings.TrimSpace(req.WasteType))
	if !models.ValidWasteType(wasteType) {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid waste type")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 1000 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "quantity must be between 0 and 1000 kg")
		return
	}

	cfg := config.Get()
	points := int(math.Round(float64(cfg.PointsPerKg[wasteType]) * req.Quantity))
	carbon := cfg.CarbonPerKg[wasteType] * req.Quantity

	entry := models.WasteEntry{
		UserID:          userID,
		WasteType:       wasteType,
		Quantity:        req.Quantity,
		EcoPointsEarned: points,
		CarbonSaved:     carbon,
		Notes:           utils.Sanitize(strings.TrimSpace(req.Notes)),
		CreatedAt:       time.Now(),
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumns(map[string]interface{}{
				"eco_points":       gorm.Expr("eco_points + ?", entry.EcoPointsEarned),
				"carbon_footprint": gorm.Expr("carbon_footprint + ?", entry.CarbonSaved),
				"updated_at":       time.Now(),
			}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create waste entry")
		return
	}

	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":")
	utils.InvalidateByPrefix("cache:stats:")

	utils.Success(ctx, gin.H{"entry": entry})
}

// ListWasteEntries returns the authenticated user's entries, newest first.
func (w *WasteController) ListWasteEntries(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := w.db.Model(&models.WasteEntry{}).Where("user_id = ?", userID)
	if t := strings.TrimSpace(ctx.Query("waste_type")); t != "" {
		query = query.Where("waste_type = ?", strings.ToLower(t))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count waste entries")
		return
	}

	var entries []models.WasteEntry
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list waste entries")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      entries,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetUserAnalytics returns waste quantities grouped by type plus the point and
// footprint totals stored on the user row.
func (w *WasteController) GetUserAnalytics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("cache:user:%d:analytics", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var user models.User
	if err := w.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load user")
		return
	}

	type typeRow struct {
		WasteType string  `json:"waste_type"`
		Total     float64 `json:"total"`
	}
	var rows []typeRow
	if err := w.db.Model(&models.WasteEntry{}).
		Select("waste_type, COALESCE(SUM(quantity),0) AS total").
		Where("user_id = ?", userID).
		Group("waste_type").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to aggregate waste entries")
		return
	}

	wasteByType := make(map[string]float64, len(rows))
	var totalQuantity float64
	for _, r := range rows {
		wasteByType[r.WasteType] = r.Total
		totalQuantity += r.Total
	}

	var entryCount int64
	if err := w.db.Model(&models.WasteEntry{}).Where("user_id = ?", userID).Count(&entryCount).Error; err != nil {
		entryCount = 0
	}

	payload := gin.H{
		"waste_by_type":    wasteByType,
		"total_quantity":   totalQuantity,
		"entry_count":      entryCount,
		"eco_points":       user.EcoPoints,
		"carbon_footprint": user.CarbonFootprint,
	}

	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)

	utils.Success(ctx, payload)
}
