package models

import "time"

// RefreshToken is one row per issued refresh token. Rows are never mutated
// except to flip Revoked; the retention sweep deletes rows long past expiry.
type RefreshToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	JTI       string `gorm:"column:jti;size:64;not null;uniqueIndex"`
	// TokenHash is an argon2id hash of the full signed token string, so a
	// presented token proves possession rather than knowledge of a jti.
	TokenHash string    `gorm:"size:255;not null"`
	FamilyID  string    `gorm:"size:64;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"default:false"`
	UserAgent string    `gorm:"size:512"` // advisory provenance only
	IPAddress string    `gorm:"size:64"`
}
