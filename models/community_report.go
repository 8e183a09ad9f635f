package models

import "time"

// Report lifecycle states (forward-only: reported -> investigating -> resolved).
const (
	ReportStatusReported      = "reported"
	ReportStatusInvestigating = "investigating"
	ReportStatusResolved      = "resolved"
)

// Report categories.
const (
	ReportIllegalDumping = "illegal_dumping"
	ReportOverflowingBin = "overflowing_bin"
	ReportMissedPickup   = "missed_pickup"
	ReportHazardousWaste = "hazardous_waste"
	ReportOther          = "other"
)

// CommunityReport is a user-filed issue ticket about waste problems in the area.
type CommunityReport struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	ReportType  string     `gorm:"size:32;not null" json:"report_type"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Location    string     `gorm:"size:512;not null" json:"location"`
	Priority    string     `gorm:"size:16;default:'medium'" json:"priority"`
	Status      string     `gorm:"size:16;index;default:'reported'" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
}

// ValidReportType reports whether t is an accepted report category.
func ValidReportType(t string) bool {
	switch t {
	case ReportIllegalDumping, ReportOverflowingBin, ReportMissedPickup, ReportHazardousWaste, ReportOther:
		return true
	}
	return false
}

// ValidReportTransition enforces the forward-only status lifecycle.
func ValidReportTransition(from, to string) bool {
	switch from {
	case ReportStatusReported:
		return to == ReportStatusInvestigating || to == ReportStatusResolved
	case ReportStatusInvestigating:
		return to == ReportStatusResolved
	}
	return false
}
