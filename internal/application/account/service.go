package account

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/id"
	pkgidentity "github.com/marketplace-api/internal/pkg/identity"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName           = "name"
	fieldEmail          = "email"
	fieldPhone          = "phone"
	fieldEmailConfirmed = "email_confirmed"
	fieldPhoneConfirmed = "phone_confirmed"
	fieldPasswordHash   = "password_hash"
)

type CreateInput struct {
	Role     string
	Phone    *string
	Email    *string
	Password string // optional; phone-OTP-only roles carry none
	Name     string
	// Confirmed marks the registering identity channel as verified, set when
	// creation follows a successful register-OTP verification.
	Confirmed bool
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*domain.Account, error)
	// FindByIdentity resolves a phone or email within one role namespace.
	FindByIdentity(ctx context.Context, role, identity string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Account, string, error)
	Delete(ctx context.Context, accountID string) error
	SetPassword(ctx context.Context, accountID, newPassword string) error
	CheckPassword(a *domain.Account, password string) error
}

type accountStore interface {
	Put(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByPhone(ctx context.Context, role, phone string) (*domain.Account, error)
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, accountID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Account, string, error)
}

type sessionStore interface {
	SoftDeleteByAccount(ctx context.Context, accountID string) error
}

type service struct {
	repo        accountStore
	sessionRepo sessionStore
}

type ServiceDeps struct {
	AccountRepo accountStore
	SessionRepo sessionStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.AccountRepo, sessionRepo: deps.SessionRepo}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*domain.Account, error) {
	if !domain.ValidRole(in.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrBadRequest)
	}
	if in.Phone == nil && in.Email == nil {
		return nil, fmt.Errorf("phone or email required: %w", domain.ErrBadRequest)
	}
	// Uniqueness is scoped to the role namespace: the same phone may already
	// exist under a different role.
	if in.Phone != nil {
		if _, err := s.repo.GetByPhone(ctx, in.Role, *in.Phone); err == nil {
			return nil, fmt.Errorf("phone already registered for role %s: %w", in.Role, domain.ErrDuplicateIdentity)
		}
	}
	if in.Email != nil {
		if _, err := s.repo.GetByEmail(ctx, in.Role, *in.Email); err == nil {
			return nil, fmt.Errorf("email already registered for role %s: %w", in.Role, domain.ErrDuplicateIdentity)
		}
	}

	var hash string
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:      id.New(),
		Role:           in.Role,
		Phone:          in.Phone,
		Email:          in.Email,
		PasswordHash:   hash,
		Name:           in.Name,
		PhoneConfirmed: in.Confirmed && in.Phone != nil,
		EmailConfirmed: in.Confirmed && in.Phone == nil && in.Email != nil,
		Enable:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) FindByIdentity(ctx context.Context, role, rawIdentity string) (*domain.Account, error) {
	kind, norm, err := pkgidentity.Classify(rawIdentity)
	if err != nil {
		return nil, err
	}
	if kind == pkgidentity.KindPhone {
		return s.repo.GetByPhone(ctx, role, norm)
	}
	return s.repo.GetByEmail(ctx, role, norm)
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}

func (s *service) Update(ctx context.Context, accountID string, req domain.UpdateAccountRequest) (*domain.Account, error) {
	current, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	// Identities are stored normalized (trimmed, email lowercased) so the
	// role-scoped GSI lookups stay exact-match. A changed identity also loses
	// its confirmed status until re-verified over that channel.
	if req.Email != nil {
		kind, norm, err := pkgidentity.Classify(*req.Email)
		if err != nil {
			return nil, err
		}
		if kind != pkgidentity.KindEmail {
			return nil, fmt.Errorf("not an email address: %w", domain.ErrInvalidIdentity)
		}
		if existing, err := s.repo.GetByEmail(ctx, current.Role, norm); err == nil && existing.AccountID != accountID {
			return nil, fmt.Errorf("email already registered for role %s: %w", current.Role, domain.ErrDuplicateIdentity)
		}
		if current.Email == nil || *current.Email != norm {
			updates[fieldEmail] = norm
			updates[fieldEmailConfirmed] = false
		}
	}
	if req.Phone != nil {
		kind, norm, err := pkgidentity.Classify(*req.Phone)
		if err != nil {
			return nil, err
		}
		if kind != pkgidentity.KindPhone {
			return nil, fmt.Errorf("not a phone number: %w", domain.ErrInvalidIdentity)
		}
		if existing, err := s.repo.GetByPhone(ctx, current.Role, norm); err == nil && existing.AccountID != accountID {
			return nil, fmt.Errorf("phone already registered for role %s: %w", current.Role, domain.ErrDuplicateIdentity)
		}
		if current.Phone == nil || *current.Phone != norm {
			updates[fieldPhone] = norm
			updates[fieldPhoneConfirmed] = false
		}
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := s.repo.Update(ctx, accountID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Account, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Delete(ctx context.Context, accountID string) error {
	if err := s.repo.SoftDelete(ctx, accountID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByAccount(ctx, accountID)
}

func (s *service) SetPassword(ctx context.Context, accountID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, accountID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

func (s *service) CheckPassword(a *domain.Account, password string) error {
	if a.PasswordHash == "" {
		return fmt.Errorf("password login not available for this account: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return nil
}
