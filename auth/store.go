package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"studyplan/models"
)

// RefreshTokenStore is the persistence seam for the refresh-token ledger.
// Lookups return (nil, nil) when no row matches.
type RefreshTokenStore interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	FindByJTI(ctx context.Context, jti string) (*models.RefreshToken, error)
	// MarkRevoked revokes the row only if it is still active and reports
	// whether this call flipped it. A false return means the row was
	// already revoked, typically because a concurrent refresh won the race.
	MarkRevoked(ctx context.Context, id uint) (bool, error)
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeAllForUser(ctx context.Context, userID uint) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error
}

// UserStore is the minimal user-record surface the auth core needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// GormTokenStore implements RefreshTokenStore on a relational table.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, t *models.RefreshToken) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *GormTokenStore) FindByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.db.WithContext(ctx).Where("jti = ?", jti).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormTokenStore) MarkRevoked(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	return res.RowsAffected > 0, res.Error
}

func (s *GormTokenStore) RevokeFamily(ctx context.Context, familyID string) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("family_id = ?", familyID).
		Update("revoked", true).Error
}

func (s *GormTokenStore) RevokeAllForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

func (s *GormTokenStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) error {
	return s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.RefreshToken{}).Error
}

// GormUserStore implements UserStore.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
