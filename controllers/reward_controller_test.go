package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
)

func newRewardRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := newRouter()
	rc := NewRewardController(db)
	r.GET("/api/rewards", rc.ListRewards)
	grp := r.Group("/api", authAs(userID, "alice"))
	grp.POST("/rewards/:id/redeem", rc.RedeemReward)
	grp.GET("/rewards/mine", rc.ListMyRewards)
	return r
}

func seedReward(t *testing.T, db *gorm.DB, name string, cost, stock int) models.Reward {
	t.Helper()
	reward := models.Reward{
		Name:          name,
		EcoPointsCost: cost,
		Stock:         stock,
		ValidDays:     30,
		Active:        true,
	}
	require.NoError(t, db.Create(&reward).Error)
	return reward
}

var redemptionCodeRe = regexp.MustCompile(`^ECO-\d+-[0-9A-F]{6}$`)

func TestRedeemRewardDeductsPoints(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 100)
	reward := seedReward(t, db, "Coffee voucher", 40, -1)
	r := newRewardRouter(db, user.ID)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", reward.ID), nil)
	data := dataMap(t, w)

	redemption := data["redemption"].(map[string]interface{})
	assert.EqualValues(t, 40, redemption["eco_points_spent"])
	assert.Equal(t, models.RewardActive, redemption["status"])
	assert.Regexp(t, redemptionCodeRe, redemption["redemption_code"])

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 60, fresh.EcoPoints)
}

func TestRedeemRewardInsufficientPoints(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 10)
	reward := seedReward(t, db, "Coffee voucher", 40, -1)
	r := newRewardRouter(db, user.ID)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", reward.ID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Insufficient EcoPoints", env.Message)

	// Balance untouched, no redemption row written.
	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.EcoPoints)
	var count int64
	require.NoError(t, db.Model(&models.UserReward{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRedeemRewardStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 1000)
	reward := seedReward(t, db, "Tote bag", 10, 1)
	r := newRewardRouter(db, user.ID)

	path := fmt.Sprintf("/api/rewards/%d/redeem", reward.ID)

	w := doJSON(r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var fresh models.Reward
	require.NoError(t, db.First(&fresh, reward.ID).Error)
	assert.Equal(t, 0, fresh.Stock)
}

func TestRedeemRewardNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 1000)
	r := newRewardRouter(db, user.ID)

	w := doJSON(r, http.MethodPost, "/api/rewards/999/redeem", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Reward not found", env.Message)
}

func TestRedeemRewardInactive(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 1000)
	reward := seedReward(t, db, "Retired item", 10, -1)
	require.NoError(t, db.Model(&reward).Update("active", false).Error)
	r := newRewardRouter(db, user.ID)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", reward.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRewardsOnlyActiveCheapestFirst(t *testing.T) {
	db := newTestDB(t)
	seedReward(t, db, "Expensive", 500, -1)
	seedReward(t, db, "Cheap", 20, -1)
	inactive := seedReward(t, db, "Hidden", 5, -1)
	require.NoError(t, db.Model(&inactive).Update("active", false).Error)

	r := newRewardRouter(db, 0)
	w := doJSON(r, http.MethodGet, "/api/rewards", nil)
	data := dataMap(t, w)

	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Cheap", first["name"])
}

func TestListMyRewards(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 1000)
	other := seedUser(t, db, "bob", 1000)
	reward := seedReward(t, db, "Coffee voucher", 10, -1)

	r := newRewardRouter(db, user.ID)
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", reward.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	otherRouter := newRewardRouter(db, other.ID)
	w = doJSON(otherRouter, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem", reward.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/rewards/mine", nil)
	data := dataMap(t, w)
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	mine := items[0].(map[string]interface{})
	assert.EqualValues(t, user.ID, mine["user_id"])
	rewardObj := mine["reward"].(map[string]interface{})
	assert.Equal(t, "Coffee voucher", rewardObj["name"])
}
