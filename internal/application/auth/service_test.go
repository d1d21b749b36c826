package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/marketplace-api/internal/application/account"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/session"
	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Send(ctx context.Context, in otp.SendInput) error {
	return m.Called(ctx, in).Error(0)
}
func (m *mockOTPService) Verify(ctx context.Context, in otp.VerifyInput) error {
	return m.Called(ctx, in).Error(0)
}

type mockAccountService struct{ mock.Mock }

func (m *mockAccountService) Create(ctx context.Context, in account.CreateInput) (*domain.Account, error) {
	args := m.Called(ctx, in)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountService) FindByIdentity(ctx context.Context, role, identity string) (*domain.Account, error) {
	args := m.Called(ctx, role, identity)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountService) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountService) List(ctx context.Context, limit int, cursor string) ([]domain.Account, string, error) {
	args := m.Called(ctx, limit, cursor)
	list, _ := args.Get(0).([]domain.Account)
	return list, args.String(1), args.Error(2)
}
func (m *mockAccountService) Delete(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}
func (m *mockAccountService) SetPassword(ctx context.Context, accountID, newPassword string) error {
	return m.Called(ctx, accountID, newPassword).Error(0)
}
func (m *mockAccountService) CheckPassword(a *domain.Account, password string) error {
	return m.Called(a, password).Error(0)
}

type mockSessionIssuer struct{ mock.Mock }

func (m *mockSessionIssuer) Issue(ctx context.Context, a *domain.Account, deviceUUID *string) (*session.IssueResult, error) {
	args := m.Called(ctx, a, deviceUUID)
	if r, _ := args.Get(0).(*session.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionIssuer) RevokeAll(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

func newService(otps *mockOTPService, accounts *mockAccountService, issuer *mockSessionIssuer) Service {
	return NewService(ServiceDeps{
		OTPService:     otps,
		AccountService: accounts,
		SessionService: issuer,
	})
}

const testPhone = "+919876543210"

func issued() *session.IssueResult {
	return &session.IssueResult{AccessToken: "jwt", RefreshToken: "refresh"}
}

// --- Register ---

func TestRegister_BadOTP(t *testing.T) {
	otps := &mockOTPService{}
	otps.On("Verify", mock.Anything, otp.VerifyInput{
		Identity: testPhone, Role: domain.RoleCustomer, Purpose: domain.PurposeRegister, Code: "000000",
	}).Return(domain.ErrOTPMismatch)

	svc := newService(otps, nil, nil)
	_, err := svc.Register(context.Background(), domain.RoleCustomer, RegisterRequest{
		Identity: testPhone, OTP: "000000", Name: "Asha",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPMismatch))
}

func TestRegister_PhoneIdentity(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}
	issuer := &mockSessionIssuer{}

	otps.On("Verify", mock.Anything, mock.Anything).Return(nil)
	accounts.On("Create", mock.Anything, mock.MatchedBy(func(in account.CreateInput) bool {
		return in.Role == domain.RoleCustomer && in.Confirmed &&
			in.Phone != nil && *in.Phone == testPhone && in.Email == nil
	})).Return(&domain.Account{AccountID: "a1", Role: domain.RoleCustomer, Enable: true}, nil)
	issuer.On("Issue", mock.Anything, mock.Anything, (*string)(nil)).Return(issued(), nil)

	svc := newService(otps, accounts, issuer)
	res, err := svc.Register(context.Background(), domain.RoleCustomer, RegisterRequest{
		Identity: testPhone, OTP: "123456", Name: "Asha",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.AccessToken)
	accounts.AssertExpectations(t)
}

func TestRegister_EmailIdentityNormalized(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}
	issuer := &mockSessionIssuer{}

	otps.On("Verify", mock.Anything, mock.Anything).Return(nil)
	accounts.On("Create", mock.Anything, mock.MatchedBy(func(in account.CreateInput) bool {
		return in.Email != nil && *in.Email == "asha@example.com" && in.Phone == nil
	})).Return(&domain.Account{AccountID: "a1"}, nil)
	issuer.On("Issue", mock.Anything, mock.Anything, (*string)(nil)).Return(issued(), nil)

	svc := newService(otps, accounts, issuer)
	_, err := svc.Register(context.Background(), domain.RoleSeller, RegisterRequest{
		Identity: "Asha@Example.COM", OTP: "123456", Name: "Asha",
	})
	require.NoError(t, err)
	accounts.AssertExpectations(t)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}

	otps.On("Verify", mock.Anything, mock.Anything).Return(nil)
	accounts.On("Create", mock.Anything, mock.Anything).
		Return(nil, domain.ErrDuplicateIdentity)

	svc := newService(otps, accounts, nil)
	_, err := svc.Register(context.Background(), domain.RoleCustomer, RegisterRequest{
		Identity: testPhone, OTP: "123456", Name: "Asha",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateIdentity))
}

// --- LoginWithOTP ---

func TestLoginWithOTP_UnknownAccount(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}

	otps.On("Verify", mock.Anything, mock.Anything).Return(nil)
	accounts.On("FindByIdentity", mock.Anything, domain.RoleCustomer, testPhone).
		Return(nil, domain.ErrNotFound)

	svc := newService(otps, accounts, nil)
	_, err := svc.LoginWithOTP(context.Background(), domain.RoleCustomer, LoginOTPRequest{
		Identity: testPhone, OTP: "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLoginWithOTP_DisabledAccount(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}

	otps.On("Verify", mock.Anything, mock.Anything).Return(nil)
	accounts.On("FindByIdentity", mock.Anything, domain.RoleCustomer, testPhone).
		Return(&domain.Account{AccountID: "a1", Enable: false}, nil)

	svc := newService(otps, accounts, nil)
	_, err := svc.LoginWithOTP(context.Background(), domain.RoleCustomer, LoginOTPRequest{
		Identity: testPhone, OTP: "123456",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithOTP_Success(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}
	issuer := &mockSessionIssuer{}

	otps.On("Verify", mock.Anything, otp.VerifyInput{
		Identity: testPhone, Role: domain.RoleDelivery, Purpose: domain.PurposeLogin, Code: "123456",
	}).Return(nil)
	accounts.On("FindByIdentity", mock.Anything, domain.RoleDelivery, testPhone).
		Return(&domain.Account{AccountID: "a1", Role: domain.RoleDelivery, Enable: true}, nil)
	issuer.On("Issue", mock.Anything, mock.Anything, (*string)(nil)).Return(issued(), nil)

	svc := newService(otps, accounts, issuer)
	res, err := svc.LoginWithOTP(context.Background(), domain.RoleDelivery, LoginOTPRequest{
		Identity: testPhone, OTP: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "refresh", res.RefreshToken)
}

// --- LoginWithPassword ---

func TestLoginWithPassword_UnknownIdentityLooksLikeBadPassword(t *testing.T) {
	accounts := &mockAccountService{}
	accounts.On("FindByIdentity", mock.Anything, domain.RoleAdmin, "ops@example.com").
		Return(nil, domain.ErrNotFound)

	svc := newService(nil, accounts, nil)
	_, err := svc.LoginWithPassword(context.Background(), domain.RoleAdmin, LoginPasswordRequest{
		Identity: "ops@example.com", Password: "whatever",
	})
	require.Error(t, err)
	// Unknown identity must be indistinguishable from a wrong password.
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestLoginWithPassword_WrongPassword(t *testing.T) {
	accounts := &mockAccountService{}
	a := &domain.Account{AccountID: "a1", Enable: true, PasswordHash: "$2a$hash"}
	accounts.On("FindByIdentity", mock.Anything, domain.RoleAdmin, "ops@example.com").
		Return(a, nil)
	accounts.On("CheckPassword", a, "wrong").Return(domain.ErrUnauthorized)

	svc := newService(nil, accounts, nil)
	_, err := svc.LoginWithPassword(context.Background(), domain.RoleAdmin, LoginPasswordRequest{
		Identity: "ops@example.com", Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithPassword_Success(t *testing.T) {
	accounts := &mockAccountService{}
	issuer := &mockSessionIssuer{}
	a := &domain.Account{AccountID: "a1", Role: domain.RoleAdmin, Enable: true, PasswordHash: "$2a$hash"}
	accounts.On("FindByIdentity", mock.Anything, domain.RoleAdmin, "ops@example.com").
		Return(a, nil)
	accounts.On("CheckPassword", a, "right-pass").Return(nil)
	issuer.On("Issue", mock.Anything, a, (*string)(nil)).Return(issued(), nil)

	svc := newService(nil, accounts, issuer)
	res, err := svc.LoginWithPassword(context.Background(), domain.RoleAdmin, LoginPasswordRequest{
		Identity: "ops@example.com", Password: "right-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.AccessToken)
}

// --- ResetPassword ---

func TestResetPassword_UnknownRole(t *testing.T) {
	svc := newService(nil, nil, nil)
	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Role: "superuser", Identity: testPhone, OTP: "123456", NewPassword: "new-pass-123",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResetPassword_RevokesSessions(t *testing.T) {
	otps := &mockOTPService{}
	accounts := &mockAccountService{}
	issuer := &mockSessionIssuer{}

	otps.On("Verify", mock.Anything, otp.VerifyInput{
		Identity: testPhone, Role: domain.RoleCustomer, Purpose: domain.PurposeResetPassword, Code: "123456",
	}).Return(nil)
	accounts.On("FindByIdentity", mock.Anything, domain.RoleCustomer, testPhone).
		Return(&domain.Account{AccountID: "a1", Enable: true}, nil)
	accounts.On("SetPassword", mock.Anything, "a1", "new-pass-123").Return(nil)
	issuer.On("RevokeAll", mock.Anything, "a1").Return(nil)

	svc := newService(otps, accounts, issuer)
	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Role: domain.RoleCustomer, Identity: testPhone, OTP: "123456", NewPassword: "new-pass-123",
	})
	require.NoError(t, err)
	issuer.AssertExpectations(t)
	accounts.AssertExpectations(t)
}
