package models

import "time"

// UserReward redemption states.
const (
	RewardActive  = "active"
	RewardUsed    = "used"
	RewardExpired = "expired"
)

// Reward is a redeemable item in the EcoPoints catalog. Stock of -1 means
// unlimited.
type Reward struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	EcoPointsCost int       `gorm:"not null" json:"eco_points_cost"`
	Stock         int       `gorm:"default:-1" json:"stock"`
	ValidDays     int       `gorm:"default:30" json:"valid_days"`
	Active        bool      `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserReward is one redemption: the points spent and the generated code the
// user presents at partner locations.
type UserReward struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	RewardID       uint      `gorm:"index;not null" json:"reward_id"`
	RedemptionCode string    `gorm:"size:64;uniqueIndex;not null" json:"redemption_code"`
	EcoPointsSpent int       `gorm:"not null" json:"eco_points_spent"`
	Status         string    `gorm:"size:16;default:'active'" json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	Reward         Reward    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reward"`
}
