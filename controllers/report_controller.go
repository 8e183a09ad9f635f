package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// ReportController manages community reports and their status lifecycle.
type ReportController struct {
	db *gorm.DB
}

// NewReportController creates a new controller instance.
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{db: db}
}

// CreateReport files a new community report. Free text is sanitized before it
// is stored.
func (r *ReportController) CreateReport(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ReportType  string `json:"report_type" binding:"required"`
		Description string `json:"description" binding:"required"`
		Location    string `json:"location" binding:"required"`
		Priority    string `json:"priority"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	reportType := strings.ToLower(strings.TrimSpace(req.ReportType))
	if !models.ValidReportType(reportType) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid report type")
		return
	}

	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = "medium"
	case "low", "medium", "high":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40052, "priority must be low, medium or high")
		return
	}

	report := models.CommunityReport{
		UserID:      userID,
		ReportType:  reportType,
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		Location:    utils.Sanitize(strings.TrimSpace(req.Location)),
		Priority:    priority,
		Status:      models.ReportStatusReported,
	}

	if err := r.db.Create(&report).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create report")
		return
	}

	utils.InvalidateByPrefix("cache:reports:list:")

	utils.Success(ctx, gin.H{"report": report})
}

// ListReports returns reports newest first, optionally filtered by status or
// type. Unfiltered pages are cached.
func (r *ReportController) ListReports(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))
	reportType := strings.TrimSpace(ctx.Query("report_type"))

	cacheable := status == "" && reportType == ""
	cacheKey := fmt.Sprintf("cache:reports:list:page=%d:size=%d", page, pageSize)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := r.db.Model(&models.CommunityReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count reports")
		return
	}

	var reports []models.CommunityReport
	if err := query.Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reports).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list reports")
		return
	}

	payload := gin.H{
		"items":      reports,
		"pagination": paginationMeta(page, pageSize, total),
	}
	if cacheable {
		wrapper := struct {
			Code    int         `json:"code"`
			Message string      `json:"message"`
			Data    interface{} `json:"data"`
		}{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// GetReport returns a single report.
func (r *ReportController) GetReport(ctx *gin.Context) {
	var report models.CommunityReport
	if err := r.db.Preload("User").First(&report, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "report not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load report")
		return
	}
	utils.Success(ctx, gin.H{"report": report})
}

// UpdateReportStatus moves a report through its lifecycle (admin only). The
// lifecycle is forward-only; resolved_at is set when the report is resolved.
func (r *ReportController) UpdateReportStatus(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40350, "admin access required")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}

	var report models.CommunityReport
	if err := r.db.First(&report, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "report not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load report")
		return
	}

	newStatus := strings.ToLower(strings.TrimSpace(req.Status))
	if !models.ValidReportTransition(report.Status, newStatus) {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid status transition")
		return
	}

	report.Status = newStatus
	if newStatus == models.ReportStatusResolved {
		now := time.Now()
		report.ResolvedAt = &now
	}

	if err := r.db.Save(&report).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update report")
		return
	}

	utils.InvalidateByPrefix("cache:reports:list:")
	utils.InvalidateByPrefix("cache:stats:")

	utils.Success(ctx, gin.H{"report": report})
}
