package models

import "time"

// StudySession represents one scheduled learning session belonging to a user.
type StudySession struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time `gorm:"index"`
	UserID          uint       `gorm:"index;not null"`
	Title           string     `gorm:"size:255;not null"`
	Subject         string     `gorm:"size:128;index"`
	ScheduledAt     time.Time  `gorm:"not null"`
	DurationMinutes int        `gorm:"not null"`
	Notes           string     `gorm:"size:2048"`
	Completed       bool       `gorm:"default:false"`
	CompletedAt     *time.Time
}
