package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/marketplace-api/internal/domain"
)

type Service interface {
	List(ctx context.Context) ([]domain.RoleRecord, error)
	Get(ctx context.Context, roleID string) (*domain.RoleRecord, error)
	// Create adds a Custom role; the name must not collide with any existing
	// role's name (case-sensitive as stored).
	Create(ctx context.Context, input domain.RoleInput) (*domain.RoleRecord, error)
	// Update and Delete refuse System roles outright and leave them unchanged.
	Update(ctx context.Context, roleID string, input domain.RoleInput) (*domain.RoleRecord, error)
	Delete(ctx context.Context, roleID string) error
	// Permissions returns the static capability catalog for role editors.
	Permissions() []string
	// EnsureSystemRoles seeds the platform-defined roles at startup.
	EnsureSystemRoles(ctx context.Context) error
}

type roleStore interface {
	Put(ctx context.Context, r *domain.RoleRecord) error
	Get(ctx context.Context, roleID string) (*domain.RoleRecord, error)
	GetByName(ctx context.Context, name string) (*domain.RoleRecord, error)
	Scan(ctx context.Context) ([]domain.RoleRecord, error)
	Update(ctx context.Context, roleID string, updates map[string]interface{}) error
	Delete(ctx context.Context, roleID string) error
}

type service struct {
	repo roleStore
}

func NewService(repo roleStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.RoleRecord, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, roleID string) (*domain.RoleRecord, error) {
	return s.repo.Get(ctx, roleID)
}

func (s *service) Create(ctx context.Context, input domain.RoleInput) (*domain.RoleRecord, error) {
	if _, err := s.repo.GetByName(ctx, input.Name); err == nil {
		return nil, fmt.Errorf("role %q already exists: %w", input.Name, domain.ErrDuplicateName)
	}
	if err := validPermissions(input.Permissions); err != nil {
		return nil, err
	}
	rec := &domain.RoleRecord{
		RoleID:      uuid.NewString(),
		Name:        input.Name,
		Type:        domain.RoleTypeCustom,
		Permissions: input.Permissions,
		Description: input.Description,
		Enable:      true,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Update(ctx context.Context, roleID string, input domain.RoleInput) (*domain.RoleRecord, error) {
	rec, err := s.repo.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if rec.Type == domain.RoleTypeSystem {
		return nil, fmt.Errorf("system roles are immutable: %w", domain.ErrForbidden)
	}
	if err := validPermissions(input.Permissions); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"permissions": input.Permissions,
		"description": input.Description,
	}
	if input.Name != rec.Name {
		// Rename re-checks uniqueness before applying.
		if _, err := s.repo.GetByName(ctx, input.Name); err == nil {
			return nil, fmt.Errorf("role %q already exists: %w", input.Name, domain.ErrDuplicateName)
		}
		updates["name"] = input.Name
	}
	if err := s.repo.Update(ctx, roleID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, roleID)
}

func (s *service) Delete(ctx context.Context, roleID string) error {
	rec, err := s.repo.Get(ctx, roleID)
	if err != nil {
		return err
	}
	if rec.Type == domain.RoleTypeSystem {
		return fmt.Errorf("system roles cannot be deleted: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, roleID)
}

func (s *service) Permissions() []string {
	out := make([]string, len(domain.PermissionCatalog))
	copy(out, domain.PermissionCatalog)
	return out
}

// systemRoles are the platform-defined permission bundles, one per client app.
var systemRoles = []domain.RoleRecord{
	{Name: "admin", Permissions: append([]string{}, domain.PermissionCatalog...), Description: "Back-office administrator"},
	{Name: "customer", Permissions: []string{}, Description: "Storefront customer"},
	{Name: "seller", Permissions: []string{"orders_manage", "media_manage"}, Description: "Restaurant / store owner"},
	{Name: "delivery", Permissions: []string{"orders_manage"}, Description: "Delivery partner"},
}

func (s *service) EnsureSystemRoles(ctx context.Context) error {
	for _, tmpl := range systemRoles {
		_, err := s.repo.GetByName(ctx, tmpl.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		rec := tmpl
		rec.RoleID = uuid.NewString()
		rec.Type = domain.RoleTypeSystem
		rec.Enable = true
		if err := s.repo.Put(ctx, &rec); err != nil {
			return err
		}
		slog.Info("seeded system role", "name", rec.Name)
	}
	return nil
}

func validPermissions(perms []string) error {
	for _, p := range perms {
		if !knownPermission(p) {
			return fmt.Errorf("unknown permission %q: %w", p, domain.ErrBadRequest)
		}
	}
	return nil
}

func knownPermission(p string) bool {
	for _, known := range domain.PermissionCatalog {
		if known == p {
			return true
		}
	}
	return false
}
