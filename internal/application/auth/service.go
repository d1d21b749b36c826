package auth

import (
	"context"
	"fmt"

	"github.com/marketplace-api/internal/application/account"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/session"
	"github.com/marketplace-api/internal/domain"
	pkgidentity "github.com/marketplace-api/internal/pkg/identity"
)

type RegisterRequest struct {
	Identity   string  `json:"identity" validate:"required"`
	OTP        string  `json:"otp" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Password   string  `json:"password" validate:"omitempty,min=8,max=72"`
	DeviceUUID *string `json:"device_uuid"`
}

type LoginOTPRequest struct {
	Identity   string  `json:"identity" validate:"required"`
	OTP        string  `json:"otp" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type LoginPasswordRequest struct {
	Identity   string  `json:"identity" validate:"required"`
	Password   string  `json:"password" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type ResetPasswordRequest struct {
	Role        string `json:"role" validate:"required"`
	Identity    string `json:"identity" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Service orchestrates the OTP-driven flows for one request: code checks via
// the OTP issuer, account lifecycle via the credential store, token handoff
// via the session issuer.
type Service interface {
	Register(ctx context.Context, role string, req RegisterRequest) (*session.IssueResult, error)
	LoginWithOTP(ctx context.Context, role string, req LoginOTPRequest) (*session.IssueResult, error)
	LoginWithPassword(ctx context.Context, role string, req LoginPasswordRequest) (*session.IssueResult, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type sessionIssuer interface {
	Issue(ctx context.Context, a *domain.Account, deviceUUID *string) (*session.IssueResult, error)
	RevokeAll(ctx context.Context, accountID string) error
}

type service struct {
	otpSvc     otp.Service
	accountSvc account.Service
	sessionSvc sessionIssuer
}

type ServiceDeps struct {
	OTPService     otp.Service
	AccountService account.Service
	SessionService sessionIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpSvc:     deps.OTPService,
		accountSvc: deps.AccountService,
		sessionSvc: deps.SessionService,
	}
}

func (s *service) Register(ctx context.Context, role string, req RegisterRequest) (*session.IssueResult, error) {
	if err := s.otpSvc.Verify(ctx, otp.VerifyInput{
		Identity: req.Identity,
		Role:     role,
		Purpose:  domain.PurposeRegister,
		Code:     req.OTP,
	}); err != nil {
		return nil, err
	}

	kind, norm, err := pkgidentity.Classify(req.Identity)
	if err != nil {
		return nil, err
	}
	in := account.CreateInput{
		Role:      role,
		Name:      req.Name,
		Password:  req.Password,
		Confirmed: true,
	}
	if kind == pkgidentity.KindPhone {
		in.Phone = &norm
	} else {
		in.Email = &norm
	}
	a, err := s.accountSvc.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.sessionSvc.Issue(ctx, a, req.DeviceUUID)
}

func (s *service) LoginWithOTP(ctx context.Context, role string, req LoginOTPRequest) (*session.IssueResult, error) {
	if err := s.otpSvc.Verify(ctx, otp.VerifyInput{
		Identity: req.Identity,
		Role:     role,
		Purpose:  domain.PurposeLogin,
		Code:     req.OTP,
	}); err != nil {
		return nil, err
	}
	a, err := s.accountSvc.FindByIdentity(ctx, role, req.Identity)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if !a.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return s.sessionSvc.Issue(ctx, a, req.DeviceUUID)
}

func (s *service) LoginWithPassword(ctx context.Context, role string, req LoginPasswordRequest) (*session.IssueResult, error) {
	a, err := s.accountSvc.FindByIdentity(ctx, role, req.Identity)
	if err != nil {
		// Same answer for unknown identity and wrong password.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !a.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if err := s.accountSvc.CheckPassword(a, req.Password); err != nil {
		return nil, err
	}
	return s.sessionSvc.Issue(ctx, a, req.DeviceUUID)
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if !domain.ValidRole(req.Role) {
		return fmt.Errorf("unknown role %q: %w", req.Role, domain.ErrBadRequest)
	}
	if err := s.otpSvc.Verify(ctx, otp.VerifyInput{
		Identity: req.Identity,
		Role:     req.Role,
		Purpose:  domain.PurposeResetPassword,
		Code:     req.OTP,
	}); err != nil {
		return err
	}
	a, err := s.accountSvc.FindByIdentity(ctx, req.Role, req.Identity)
	if err != nil {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	if err := s.accountSvc.SetPassword(ctx, a.AccountID, req.NewPassword); err != nil {
		return err
	}
	// A reset must not leave previously issued tokens valid.
	return s.sessionSvc.RevokeAll(ctx, a.AccountID)
}
