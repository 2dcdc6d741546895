package models

import (
	"time"
)

// User model. Email is stored and matched exactly as given (no lowercasing).
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time `gorm:"index"`
	Email        string     `gorm:"size:320;not null;uniqueIndex"`
	Name         string     `gorm:"size:255"`
	PasswordHash string     `gorm:"size:255;not null"` // argon2id encoded string, never serialized
	Sessions     []StudySession
	Templates    []SessionTemplate
}
