package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
	"github.com/iamprecieee/distributed-notification-system/internal/models"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
)

// Service implements the four auth operations: login, refresh, logout,
// validate. Login's unauthorized-on-either-failure shape specifically
// avoids user enumeration.
type Service struct {
	users  *repository.UserRepository
	store  *Store
	issuer *Issuer
}

func NewService(users *repository.UserRepository, store *Store, issuer *Issuer) *Service {
	return &Service{users: users, store: store, issuer: issuer}
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         UserSummary
}

type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// Payload is what validate() hands the gateway: enough to route a
// notification without a second round-trip to the user store.
type Payload struct {
	UserID    string
	Email     string
	AccessJTI string
	ExpiresAt time.Time
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Run the same bcrypt comparison a wrong-password rejection would
		// pay, against a fixed dummy hash, so a missing account takes the
		// same time as an existing one with the wrong password.
		VerifyPassword(dummyHash, password)
		return nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(time.Until(pair.ExpiresAt).Seconds()),
		User: UserSummary{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

// issuePair signs a fresh access token and mints a fresh refresh token,
// persisting the refresh token.
func (s *Service) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, _, expiresAt, err := s.issuer.NewAccessToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed issuing access token", err)
	}

	refreshJTI := uuid.NewString()
	refreshToken := uuid.NewString()
	if err := s.store.PersistRefreshToken(ctx, user.ID.String(), refreshJTI, refreshToken, s.issuer.RefreshTTL()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed persisting refresh token", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshJTI + "." + refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh rotates a refresh token: verify its shape, confirm it's the
// one on record, confirm it isn't blacklisted, confirm the user still
// exists, then issue a new pair and revoke the old one. The revoke and
// blacklist steps are best-effort sequential, not atomic — see
// DESIGN.md Open Questions.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*LoginResult, error) {
	jti, secret, ok := splitRefreshToken(rawRefreshToken)
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "malformed refresh token")
	}

	userID, stored, err := s.findRefreshOwner(ctx, jti)
	if err != nil || stored == "" || stored != secret {
		return nil, apperr.New(apperr.Unauthorized, "refresh token not recognized")
	}

	blacklisted, err := s.store.IsBlacklisted(ctx, jti)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed checking blacklist", err)
	}
	if blacklisted {
		return nil, apperr.New(apperr.Unauthorized, "refresh token revoked")
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "invalid user reference")
	}
	user, err := s.users.GetByID(uid)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "user no longer exists")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.store.RevokeRefreshToken(ctx, userID, jti)
	_ = s.store.Blacklist(ctx, jti, s.issuer.RefreshTTL())

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(time.Until(pair.ExpiresAt).Seconds()),
		User: UserSummary{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}

func (s *Service) Logout(ctx context.Context, userID, accessJTI string, accessTTL time.Duration) error {
	if err := s.store.Blacklist(ctx, accessJTI, accessTTL); err != nil {
		return apperr.Wrap(apperr.Internal, "failed blacklisting access token", err)
	}
	if err := s.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed revoking refresh tokens", err)
	}
	return nil
}

// Validate is the only call the gateway needs: signature, expiry and
// blacklist. Exposed both in-process (here) and over HTTP by
// internal/gateway, so other services can validate tokens without a
// shared secret.
func (s *Service) Validate(ctx context.Context, accessToken string) (*Payload, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}
	blacklisted, err := s.store.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed checking blacklist", err)
	}
	if blacklisted {
		return nil, apperr.New(apperr.Unauthorized, "token revoked")
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &Payload{UserID: claims.UserID, Email: claims.Email, AccessJTI: claims.ID, ExpiresAt: expiresAt}, nil
}

// findRefreshOwner scans refresh_token:*:{jti} since the user id isn't
// known until the token is decoded — the refresh token itself carries
// no claims, by design (see store.go).
func (s *Service) findRefreshOwner(ctx context.Context, jti string) (userID, token string, err error) {
	keys, err := s.store.cache.Keys(ctx, "refresh_token:*:"+jti)
	if err != nil {
		return "", "", err
	}
	if len(keys) == 0 {
		return "", "", nil
	}
	val, err := s.store.cache.Get(ctx, keys[0])
	if err != nil {
		return "", "", err
	}
	userID = extractUserID(keys[0])
	return userID, string(val), nil
}
