package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyplan/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))
	return db
}

func tokenRow(userID uint, jti, family string, expiresAt time.Time) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:    userID,
		JTI:       jti,
		TokenHash: "$argon2id$stub",
		FamilyID:  family,
		ExpiresAt: expiresAt,
	}
}

func TestGormTokenStore_CreateAndFindByJTI(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-a", "fam-1", time.Now().Add(time.Hour))))

	got, err := store.FindByJTI(ctx, "jti-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "fam-1", got.FamilyID)
	require.False(t, got.Revoked)

	missing, err := store.FindByJTI(ctx, "jti-unknown")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestGormTokenStore_JTIUnique(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-dup", "fam-1", time.Now().Add(time.Hour))))
	err := store.Create(ctx, tokenRow(2, "jti-dup", "fam-2", time.Now().Add(time.Hour)))
	require.Error(t, err)
	require.True(t, isUniqueConstraintError(err), "want unique violation, got %v", err)
}

func TestGormTokenStore_MarkRevokedIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	row := tokenRow(1, "jti-b", "fam-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, row))

	flipped, err := store.MarkRevoked(ctx, row.ID)
	require.NoError(t, err)
	require.True(t, flipped)

	// second caller lost the race
	flipped, err = store.MarkRevoked(ctx, row.ID)
	require.NoError(t, err)
	require.False(t, flipped)
}

func TestGormTokenStore_RevokeFamily(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-1", "fam-a", exp)))
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-2", "fam-a", exp)))
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-3", "fam-b", exp)))

	require.NoError(t, store.RevokeFamily(ctx, "fam-a"))

	for jti, wantRevoked := range map[string]bool{"jti-1": true, "jti-2": true, "jti-3": false} {
		got, err := store.FindByJTI(ctx, jti)
		require.NoError(t, err)
		require.Equal(t, wantRevoked, got.Revoked, "jti %s", jti)
	}
}

func TestGormTokenStore_RevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-u1a", "fam-a", exp)))
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-u1b", "fam-b", exp)))
	require.NoError(t, store.Create(ctx, tokenRow(2, "jti-u2", "fam-c", exp)))

	require.NoError(t, store.RevokeAllForUser(ctx, 1))

	for jti, wantRevoked := range map[string]bool{"jti-u1a": true, "jti-u1b": true, "jti-u2": false} {
		got, err := store.FindByJTI(ctx, jti)
		require.NoError(t, err)
		require.Equal(t, wantRevoked, got.Revoked, "jti %s", jti)
	}
}

func TestGormTokenStore_DeleteExpiredBefore(t *testing.T) {
	ctx := context.Background()
	store := NewGormTokenStore(testDB(t))

	old := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-old", "fam-a", old)))
	require.NoError(t, store.Create(ctx, tokenRow(1, "jti-new", "fam-a", time.Now().Add(time.Hour))))

	require.NoError(t, store.DeleteExpiredBefore(ctx, time.Now().Add(-30*24*time.Hour)))

	gone, err := store.FindByJTI(ctx, "jti-old")
	require.NoError(t, err)
	require.Nil(t, gone)
	kept, err := store.FindByJTI(ctx, "jti-new")
	require.NoError(t, err)
	require.NotNil(t, kept)
}

func TestGormUserStore_FindByEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store := NewGormUserStore(testDB(t))

	require.NoError(t, store.Create(ctx, &models.User{Email: "Alice@example.com", PasswordHash: "h"}))

	got, err := store.FindByEmail(ctx, "Alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)

	other, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Nil(t, other, "emails are matched exactly as stored")
}
