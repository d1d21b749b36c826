package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/account"
	"github.com/marketplace-api/internal/domain"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
	"github.com/marketplace-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Create(ctx context.Context, in account.CreateInput) (*domain.Account, error) {
	args := m.Called(ctx, in)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) FindByIdentity(ctx context.Context, role, identity string) (*domain.Account, error) {
	args := m.Called(ctx, role, identity)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) List(ctx context.Context, limit int, cursor string) ([]domain.Account, string, error) {
	args := m.Called(ctx, limit, cursor)
	list, _ := args.Get(0).([]domain.Account)
	return list, args.String(1), args.Error(2)
}
func (m *mockAccountSvc) Delete(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}
func (m *mockAccountSvc) SetPassword(ctx context.Context, accountID, newPassword string) error {
	return m.Called(ctx, accountID, newPassword).Error(0)
}
func (m *mockAccountSvc) CheckPassword(a *domain.Account, password string) error {
	return m.Called(a, password).Error(0)
}

func getWithClaims(router http.Handler, method, path string, claims *jwtinfra.Claims) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if claims != nil {
		ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
		req = req.WithContext(ctx)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newAccountRouter(svc *mockAccountSvc) http.Handler {
	h := NewAccountHandler(svc)
	r := chi.NewRouter()
	r.Get("/v1/accounts/{id}", h.Get)
	r.Get("/v1/accounts", h.List)
	r.Delete("/v1/accounts/{id}", h.Delete)
	return r
}

func TestAccountGet_Self(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Get", mock.Anything, "a1").
		Return(&domain.Account{AccountID: "a1", Role: domain.RoleCustomer}, nil)

	router := newAccountRouter(svc)
	rr := getWithClaims(router, http.MethodGet, "/v1/accounts/a1",
		&jwtinfra.Claims{AccountID: "a1", Role: domain.RoleCustomer})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAccountGet_OtherAccountForbidden(t *testing.T) {
	svc := &mockAccountSvc{}
	router := newAccountRouter(svc)
	rr := getWithClaims(router, http.MethodGet, "/v1/accounts/a2",
		&jwtinfra.Claims{AccountID: "a1", Role: domain.RoleCustomer})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestAccountGet_AdminOverride(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Get", mock.Anything, "a2").
		Return(&domain.Account{AccountID: "a2", Role: domain.RoleSeller}, nil)

	router := newAccountRouter(svc)
	rr := getWithClaims(router, http.MethodGet, "/v1/accounts/a2",
		&jwtinfra.Claims{AccountID: "admin-1", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAccountList_PassesPagination(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("List", mock.Anything, 25, "abc").
		Return([]domain.Account{{AccountID: "a1"}}, "def", nil)

	router := newAccountRouter(svc)
	rr := getWithClaims(router, http.MethodGet, "/v1/accounts?limit=25&cursor=abc",
		&jwtinfra.Claims{AccountID: "admin-1", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestAccountDelete_NotFoundMapsTo404(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Delete", mock.Anything, "missing").Return(domain.ErrNotFound)

	router := newAccountRouter(svc)
	rr := getWithClaims(router, http.MethodDelete, "/v1/accounts/missing",
		&jwtinfra.Claims{AccountID: "admin-1", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
