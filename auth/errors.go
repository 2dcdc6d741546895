package auth

import "errors"

// Sentinel errors surfaced by the auth core; the HTTP layer maps them to
// status codes and generic messages.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidSignature    = errors.New("invalid token")
	ErrInvalidTTL          = errors.New("invalid ttl")
)
