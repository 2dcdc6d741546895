package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyplan/models"
)

// retentionWindow is how long expired rows are kept before the sweep
// deletes them, regardless of revocation state.
const retentionWindow = 30 * 24 * time.Hour

// Config carries the token lifetimes as duration strings ("15m", "7d").
type Config struct {
	AccessTTL  string
	RefreshTTL string
}

// TokenPair is an access/refresh token pair from one issuance event.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by Register and Login. User never includes the
// password hash in serialized responses; handlers build their own DTO.
type AuthResult struct {
	User *models.User
	TokenPair
}

// Meta is advisory request provenance recorded on the token row.
type Meta struct {
	UserAgent string
	IPAddress string
}

// Service coordinates registration, login, and the rotating refresh-token
// protocol. Each login or registration starts a token family; each refresh
// rolls the family forward by exactly one token, and any re-presentation
// of a consumed token revokes the whole family. The service holds no state
// between requests.
type Service struct {
	users      UserStore
	tokens     RefreshTokenStore
	signer     *Signer
	hasher     *Hasher
	verifier   *CredentialVerifier
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewService wires the orchestrator. Fails with ErrInvalidTTL if either
// configured lifetime does not parse.
func NewService(users UserStore, tokens RefreshTokenStore, signer *Signer, hasher *Hasher, verifier *CredentialVerifier, cfg Config) (*Service, error) {
	if cfg.AccessTTL == "" {
		cfg.AccessTTL = "15m"
	}
	if cfg.RefreshTTL == "" {
		cfg.RefreshTTL = "7d"
	}
	accessTTL, err := ParseTTL(cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := ParseTTL(cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		signer:     signer,
		hasher:     hasher,
		verifier:   verifier,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Register creates a user and starts a fresh token family.
func (s *Service) Register(ctx context.Context, email, password, name string, meta Meta) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueConstraintError(err) { // lost the pre-check race
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	pair, err := s.issueTokens(ctx, user, "", meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// Login authenticates and starts a fresh token family, distinct from any
// still-active family the user holds.
func (s *Service) Login(ctx context.Context, email, password string, meta Meta) (*AuthResult, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, user, "", meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// Refresh rotates the presented refresh token. The caller has already
// verified the token's signature and expiry against the refresh secret;
// claims are trusted here, but the stored row still decides. Any anomaly
// other than natural expiry revokes the whole family, so a token stolen
// earlier in the chain is not separately usable.
func (s *Service) Refresh(ctx context.Context, presented string, claims *RefreshClaims, meta Meta) (*TokenPair, error) {
	row, err := s.tokens.FindByJTI(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		// A structurally valid token with no row means the row was swept
		// or the store is inconsistent; treated as a reuse signal.
		_ = s.tokens.RevokeFamily(ctx, claims.FamilyID)
		return nil, ErrInvalidRefreshToken
	}
	if row.Revoked {
		// Central reuse trigger: a consumed token came back.
		_ = s.tokens.RevokeFamily(ctx, row.FamilyID)
		return nil, ErrRefreshTokenRevoked
	}
	if s.now().After(row.ExpiresAt) {
		// Natural expiry is not an attack signal; the family survives.
		return nil, ErrRefreshTokenExpired
	}
	ok, err := s.hasher.Verify(row.TokenHash, presented)
	if err != nil || !ok {
		// The stored jti/family pair was reused by a token we never issued.
		_ = s.tokens.RevokeFamily(ctx, row.FamilyID)
		return nil, ErrInvalidRefreshToken
	}
	flipped, err := s.tokens.MarkRevoked(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent refresh rotated this token first.
		_ = s.tokens.RevokeFamily(ctx, row.FamilyID)
		return nil, ErrRefreshTokenRevoked
	}
	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}
	return s.issueTokens(ctx, user, row.FamilyID, meta)
}

// Logout revokes the single row matching jti. Missing rows are tolerated;
// logout is idempotent and never fails the caller on a stale token.
func (s *Service) Logout(ctx context.Context, jti string) error {
	row, err := s.tokens.FindByJTI(ctx, jti)
	if err != nil || row == nil {
		return err
	}
	_, err = s.tokens.MarkRevoked(ctx, row.ID)
	return err
}

// LogoutAll revokes every refresh token the user holds, across families.
func (s *Service) LogoutAll(ctx context.Context, userID uint) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

// issueTokens signs a new pair for user. An empty familyID starts a new
// lineage (register/login); otherwise the supplied family is carried
// forward (refresh). The full signed refresh token string is hashed before
// the row is persisted, and rows expired past the retention window are
// swept opportunistically.
func (s *Service) issueTokens(ctx context.Context, user *models.User, familyID string, meta Meta) (*TokenPair, error) {
	jti := uuid.NewString()
	if familyID == "" {
		familyID = uuid.NewString()
	}
	access, err := s.signer.SignAccess(user, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signer.SignRefresh(user, jti, familyID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	tokenHash, err := s.hasher.Hash(refresh)
	if err != nil {
		return nil, err
	}
	row := &models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		TokenHash: tokenHash,
		FamilyID:  familyID,
		ExpiresAt: s.now().Add(s.refreshTTL),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, err
	}
	// Retention sweep; a failure here must not fail the issuance.
	_ = s.tokens.DeleteExpiredBefore(ctx, s.now().Add(-retentionWindow))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// isUniqueConstraintError matches duplicate-key failures across postgres
// and sqlite without importing driver-specific error types.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "UNIQUE constraint") ||
		strings.Contains(s, "unique constraint")
}
