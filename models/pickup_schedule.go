package models

import "time"

// Pickup lifecycle states.
const (
	PickupScheduled = "scheduled"
	PickupConfirmed = "confirmed"
	PickupCompleted = "completed"
	PickupCancelled = "cancelled"
)

// PickupSchedule is a user-requested waste collection slot.
type PickupSchedule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	WasteType     string    `gorm:"size:32;not null" json:"waste_type"`
	ScheduledDate time.Time `gorm:"index;not null" json:"scheduled_date"`
	Address       string    `gorm:"size:512;not null" json:"address"`
	Notes         string    `gorm:"size:512" json:"notes"`
	Status        string    `gorm:"size:16;default:'scheduled'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
