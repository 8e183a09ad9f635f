package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// RewardController manages the EcoPoints reward catalog and redemptions.
type RewardController struct {
	db *gorm.DB
}

var (
	errInsufficientPoints = errors.New("Insufficient EcoPoints")
	errRewardInactive     = errors.New("reward is not active")
	errOutOfStock         = errors.New("reward is out of stock")
)

// NewRewardController creates a new controller instance.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// ListRewards returns the active catalog, cheapest first. Cached.
func (r *RewardController) ListRewards(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:rewards:list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var rewards []models.Reward
	if err := r.db.Where("active = ?", true).Order("eco_points_cost ASC").Find(&rewards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to list rewards")
		return
	}

	payload := gin.H{"items": rewards}
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:rewards:list", wrapper, 10*time.Minute)

	utils.Success(ctx, payload)
}

// RedeemReward exchanges EcoPoints for a reward. The whole redemption is one
// transaction built on conditional updates: the balance check lives in the
// UPDATE's WHERE clause, so two concurrent redemptions can never both pass a
// stale balance check and overdraw the account.
func (r *RewardController) RedeemReward(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var redemption models.UserReward
	var reward models.Reward

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, ctx.Param("id")).Error; err != nil {
			return err
		}
		if !reward.Active {
			return errRewardInactive
		}

		// Limited stock: decrement guarded by stock > 0. -1 means unlimited.
		if reward.Stock == 0 {
			return errOutOfStock
		}
		if reward.Stock > 0 {
			res := tx.Model(&models.Reward{}).
				Where("id = ? AND stock > 0", reward.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errOutOfStock
			}
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND eco_points >= ?", userID, reward.EcoPointsCost).
			UpdateColumn("eco_points", gorm.Expr("eco_points - ?", reward.EcoPointsCost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientPoints
		}

		validDays := reward.ValidDays
		if validDays <= 0 {
			validDays = 30
		}
		redemption = models.UserReward{
			UserID:         userID,
			RewardID:       reward.ID,
			RedemptionCode: utils.GenerateRedemptionCode(),
			EcoPointsSpent: reward.EcoPointsCost,
			Status:         models.RewardActive,
			ExpiresAt:      time.Now().AddDate(0, 0, validDays),
		}
		return tx.Create(&redemption).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40480, "Reward not found")
		return
	case errors.Is(err, errInsufficientPoints):
		utils.Error(ctx, http.StatusBadRequest, 40080, err.Error())
		return
	case errors.Is(err, errRewardInactive):
		utils.Error(ctx, http.StatusBadRequest, 40081, err.Error())
		return
	case errors.Is(err, errOutOfStock):
		utils.Error(ctx, http.StatusConflict, 40980, err.Error())
		return
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to redeem reward")
		return
	}

	utils.InvalidateByPrefix("cache:rewards:list")
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":")

	// Best-effort confirmation email; never blocks the redemption.
	go func(code string, expires time.Time, rewardName string) {
		var user models.User
		if err := r.db.First(&user, userID).Error; err != nil || user.Email == "" {
			return
		}
		if err := utils.SendRedemptionEmail(user.Email, rewardName, code, expires); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("redemption email failed for user %d: %v", userID, err)
		}
	}(redemption.RedemptionCode, redemption.ExpiresAt, reward.Name)

	utils.Success(ctx, gin.H{"redemption": redemption})
}

// ListMyRewards returns the user's redemptions, newest first.
func (r *RewardController) ListMyRewards(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var redemptions []models.UserReward
	if err := r.db.Preload("Reward").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&redemptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list redemptions")
		return
	}
	utils.Success(ctx, gin.H{"items": redemptions})
}
