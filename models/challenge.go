package models

import "time"

// EcoChallenge is a time-boxed goal (e.g. "recycle 10kg of plastic") with a
// point bonus on completion.
type EcoChallenge struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	ChallengeType   string    `gorm:"size:32" json:"challenge_type"`
	TargetValue     int       `gorm:"not null" json:"target_value"`
	EcoPointsReward int       `gorm:"default:0" json:"eco_points_reward"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Active          bool      `gorm:"default:true;index" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserChallengeProgress accumulates a user's progress toward a challenge.
// Keyed (user_id, challenge_id); progress updates are upserts that add to the
// existing counter.
type UserChallengeProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index:idx_user_challenge,unique;not null" json:"user_id"`
	ChallengeID uint       `gorm:"index:idx_user_challenge,unique;not null" json:"challenge_id"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
