package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studyplan/models"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// RefreshClaims additionally carries the token id (the registered "jti")
// and the rotation family the token belongs to.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	FamilyID string `json:"fid"`
}

// Signer issues and verifies HS256 tokens. Access and refresh tokens are
// signed with independent secrets so compromise of one class does not
// forge the other.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewSigner(accessSecret, refreshSecret []byte) *Signer {
	return &Signer{accessSecret: accessSecret, refreshSecret: refreshSecret}
}

// SignAccess issues a short-lived access token for user.
func (s *Signer) SignAccess(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// SignRefresh issues a refresh token carrying jti and familyID.
func (s *Signer) SignRefresh(user *models.User, jti, familyID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    user.Email,
		FamilyID: familyID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

// VerifyAccess parses and validates an access token.
func (s *Signer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, s.accessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token.
func (s *Signer) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, s.refreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify collapses every failure (expired, tampered, malformed, wrong
// algorithm) into ErrInvalidSignature; the wrapped cause stays available
// for internal logging but responses must not distinguish them.
func (s *Signer) verify(tokenString string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !token.Valid {
		return ErrInvalidSignature
	}
	return nil
}

// ParseTTL parses a duration of the shape <integer><unit> with unit one of
// s, m, h, d. "15m" and "7d" are valid; "15" and "15x" fail.
func ParseTTL(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
	}
	digits := s[:len(s)-1]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
	}
	switch s[len(s)-1] {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
}
