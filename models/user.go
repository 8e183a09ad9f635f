package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an EcoTrack member. Passwords are stored as bcrypt hashes
// only. Email, provider identity and registration IP never serialize: User
// rows ride along public payloads (report reporters, event participants), so
// owner-facing responses expose contact fields explicitly instead.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"size:255" json:"-"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Provider        string         `gorm:"size:32" json:"provider"`
	ProviderID      string         `gorm:"size:255" json:"-"`
	RegisterIP      string         `gorm:"size:45" json:"-"`
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	EcoPoints       int            `gorm:"default:0" json:"eco_points"`
	CarbonFootprint float64        `gorm:"default:0" json:"carbon_footprint"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	WasteEntries    []WasteEntry   `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
