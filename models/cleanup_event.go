package models

import "time"

// Cleanup event states.
const (
	EventUpcoming  = "upcoming"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// CleanupEvent is a scheduled community activity with a participant cap and a
// fixed point reward for attendance.
type CleanupEvent struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"size:255;not null" json:"title"`
	Description         string    `gorm:"type:text" json:"description"`
	Location            string    `gorm:"size:512;not null" json:"location"`
	EventDate           time.Time `gorm:"index;not null" json:"event_date"`
	MaxParticipants     int       `gorm:"not null" json:"max_participants"`
	CurrentParticipants int       `gorm:"default:0" json:"current_participants"`
	EcoPointsReward     int       `gorm:"default:0" json:"eco_points_reward"`
	Status              string    `gorm:"size:16;index;default:'upcoming'" json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EventParticipant links a user to a cleanup event. The composite unique index
// makes joins idempotent at the schema level; RewardedAt guards double payouts
// when an event is completed more than once.
type EventParticipant struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EventID    uint       `gorm:"index:idx_event_user,unique;not null" json:"event_id"`
	UserID     uint       `gorm:"index:idx_event_user,unique;not null" json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	RewardedAt *time.Time `json:"rewarded_at"`
}
