package session

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace-api/internal/domain"
	pkgdevice "github.com/marketplace-api/internal/pkg/device"
	"github.com/marketplace-api/internal/pkg/id"
	pkgtoken "github.com/marketplace-api/internal/pkg/token"
)

// IssueResult is what a successful authentication hands back to the client.
type IssueResult struct {
	AccessToken  string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	// Issue mints a session bound to (account, role, device) and signs an
	// access token for it. Sessions for the same identity under different
	// roles are independent.
	Issue(ctx context.Context, a *domain.Account, deviceUUID *string) (*IssueResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	// RevokeAll disables every session of an account. Called on password reset
	// and account deletion so stale tokens cannot survive.
	RevokeAll(ctx context.Context, accountID string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	SoftDeleteByAccount(ctx context.Context, accountID string) error
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type jwtSigner interface {
	Sign(accountID, role, deviceID, sessionID string) (string, error)
}

type service struct {
	sessionRepo     sessionStore
	accountRepo     accountStore
	deviceRepo      pkgdevice.Store
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	AccountRepo     accountStore
	DeviceRepo      pkgdevice.Store
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		accountRepo:     deps.AccountRepo,
		deviceRepo:      deps.DeviceRepo,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

func (s *service) Issue(ctx context.Context, a *domain.Account, deviceUUID *string) (*IssueResult, error) {
	if s.jwtProvider == nil {
		return nil, fmt.Errorf("token signing not configured: %w", domain.ErrUnavailable)
	}
	dev, err := pkgdevice.Resolve(ctx, s.deviceRepo, deviceUUID, a.AccountID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		AccountID:        a.AccountID,
		Role:             a.Role,
		DeviceID:         dev.DeviceID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	accessToken, err := s.jwtProvider.Sign(a.AccountID, a.Role, dev.DeviceID, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.Account = a
	return &IssueResult{AccessToken: accessToken, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
	}
	a, err := s.accountRepo.Get(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	sess.Account = a
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if s.jwtProvider == nil {
		return "", "", fmt.Errorf("token signing not configured: %w", domain.ErrUnavailable)
	}
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if !sess.Enable || sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	a, err := s.accountRepo.Get(ctx, sess.AccountID)
	if err != nil {
		return "", "", err
	}
	accessToken, err := s.jwtProvider.Sign(a.AccountID, a.Role, sess.DeviceID, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return accessToken, newToken, nil
}

func (s *service) RevokeAll(ctx context.Context, accountID string) error {
	return s.sessionRepo.SoftDeleteByAccount(ctx, accountID)
}
