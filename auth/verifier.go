package auth

import (
	"context"
	"strings"

	"studyplan/models"
)

// CredentialVerifier checks an email/password pair against the user store.
// It fails with the same error whether the email is unknown or the password
// is wrong.
type CredentialVerifier struct {
	users  UserStore
	hasher *Hasher
	// dummyHash is verified against when the email is unknown so both
	// branches cost one argon2 verify and latency does not reveal whether
	// an account exists.
	dummyHash string
}

func NewCredentialVerifier(users UserStore, hasher *Hasher) (*CredentialVerifier, error) {
	dummy, err := hasher.Hash("studyplan.dummy.credential")
	if err != nil {
		return nil, err
	}
	return &CredentialVerifier{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Verify returns the matching user or ErrInvalidCredentials.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := v.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_, _ = v.hasher.Verify(v.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	ok, err := v.hasher.Verify(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
