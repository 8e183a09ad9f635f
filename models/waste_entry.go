package models

import "time"

// Waste types accepted by the logging endpoints.
const (
	WastePlastic    = "plastic"
	WastePaper      = "paper"
	WasteGlass      = "glass"
	WasteMetal      = "metal"
	WasteOrganic    = "organic"
	WasteElectronic = "electronic"
	WasteOther      = "other"
)

// WasteEntry records a single logged disposal. Points and carbon savings are
// computed server-side when the entry is created.
type WasteEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	WasteType       string    `gorm:"size:32;not null" json:"waste_type"`
	Quantity        float64   `gorm:"not null" json:"quantity"` // kilograms
	EcoPointsEarned int       `gorm:"not null" json:"eco_points_earned"`
	CarbonSaved     float64   `gorm:"default:0" json:"carbon_saved"`
	Notes           string    `gorm:"size:512" json:"notes"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// ValidWasteType reports whether t is one of the accepted waste categories.
func ValidWasteType(t string) bool {
	switch t {
	case WastePlastic, WastePaper, WasteGlass, WasteMetal, WasteOrganic, WasteElectronic, WasteOther:
		return true
	}
	return false
}
