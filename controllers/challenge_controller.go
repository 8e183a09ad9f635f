package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// ChallengeController manages eco challenges and per-user progress.
type ChallengeController struct {
	db *gorm.DB
}

var errChallengeInactive = errors.New("challenge is not active")

// NewChallengeController creates a new controller instance.
func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{db: db}
}

// ListChallenges returns currently active challenges.
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	now := time.Now()
	var challenges []models.EcoChallenge
	if err := c.db.Where("active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("end_date ASC").Find(&challenges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list challenges")
		return
	}
	utils.Success(ctx, gin.H{"items": challenges})
}

// CreateChallenge registers a new challenge (admin only).
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40370, "admin access required")
		return
	}

	var req struct {
		Title           string    `json:"title" binding:"required"`
		Description     string    `json:"description"`
		ChallengeType   string    `json:"challenge_type"`
		TargetValue     int       `json:"target_value" binding:"required,min=1"`
		EcoPointsReward int       `json:"eco_points_reward"`
		StartDate       time.Time `json:"start_date" binding:"required"`
		EndDate         time.Time `json:"end_date" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	if !req.EndDate.After(req.StartDate) {
		utils.Error(ctx, http.StatusBadRequest, 40071, "end date must be after start date")
		return
	}

	challenge := models.EcoChallenge{
		Title:           utils.Sanitize(req.Title),
		Description:     utils.Sanitize(req.Description),
		ChallengeType:   req.ChallengeType,
		TargetValue:     req.TargetValue,
		EcoPointsReward: req.EcoPointsReward,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Active:          true,
	}
	if err := c.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create challenge")
		return
	}

	utils.Success(ctx, gin.H{"challenge": challenge})
}

// UpdateChallengeProgress adds to the user's progress counter for a challenge.
// The write is an upsert keyed (user_id, challenge_id): first call creates the
// row, later calls add to the existing progress. Reaching the target marks the
// row completed and pays the bonus exactly once, all in one transaction.
func (c *ChallengeController) UpdateChallengeProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Progress int `json:"progress" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid request payload")
		return
	}

	var completed bool
	var row models.UserChallengeProgress

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var challenge models.EcoChallenge
		if err := tx.First(&challenge, ctx.Param("id")).Error; err != nil {
			return err
		}
		now := time.Now()
		if !challenge.Active || now.Before(challenge.StartDate) || now.After(challenge.EndDate) {
			return errChallengeInactive
		}

		row = models.UserChallengeProgress{
			UserID:      userID,
			ChallengeID: challenge.ID,
			Progress:    req.Progress,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"progress":   gorm.Expr("progress + ?", req.Progress),
				"updated_at": now,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// Re-read: on conflict the in-memory struct does not reflect the
		// accumulated counter.
		if err := tx.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).
			First(&row).Error; err != nil {
			return err
		}

		if !row.Completed && row.Progress >= challenge.TargetValue {
			row.Completed = true
			row.CompletedAt = &now
			if err := tx.Model(&models.UserChallengeProgress{}).
				Where("id = ? AND completed = ?", row.ID, false).
				Updates(map[string]interface{}{"completed": true, "completed_at": now}).Error; err != nil {
				return err
			}
			if challenge.EcoPointsReward > 0 {
				if err := tx.Model(&models.User{}).Where("id = ?", userID).
					UpdateColumn("eco_points", gorm.Expr("eco_points + ?", challenge.EcoPointsReward)).Error; err != nil {
					return err
				}
			}
			completed = true
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40470, "challenge not found")
		return
	case errors.Is(err, errChallengeInactive):
		utils.Error(ctx, http.StatusBadRequest, 40073, err.Error())
		return
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update progress")
		return
	}

	utils.Success(ctx, gin.H{"progress": row, "completed_now": completed})
}

// ListMyProgress returns the user's progress rows with their challenges.
func (c *ChallengeController) ListMyProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var rows []models.UserChallengeProgress
	if err := c.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to list progress")
		return
	}
	utils.Success(ctx, gin.H{"items": rows})
}
