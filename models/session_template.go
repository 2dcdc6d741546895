package models

import "time"

// SessionTemplate is a reusable blueprint for a StudySession.
type SessionTemplate struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          uint   `gorm:"index;not null"`
	Name            string `gorm:"size:255;not null"`
	Subject         string `gorm:"size:128"`
	DurationMinutes int    `gorm:"not null"`
	Notes           string `gorm:"size:2048"`
}
