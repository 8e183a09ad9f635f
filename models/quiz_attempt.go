package models

import "time"

// QuizAttempt records one graded quiz and the points it earned.
type QuizAttempt struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Topic           string    `gorm:"size:64;not null" json:"topic"`
	Difficulty      string    `gorm:"size:16;default:'easy'" json:"difficulty"`
	Score           int       `gorm:"not null" json:"score"`
	TotalQuestions  int       `gorm:"not null" json:"total_questions"`
	EcoPointsEarned int       `gorm:"default:0" json:"eco_points_earned"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
