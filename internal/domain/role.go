package domain

// Role record types. System roles are seeded at bootstrap and can never be
// renamed or deleted; Custom roles are admin-managed.
const (
	RoleTypeSystem = "System"
	RoleTypeCustom = "Custom"
)

// Capability tags used in RoleRecord.Permissions. The catalog is static
// configuration, not derived state.
var PermissionCatalog = []string{
	"users_manage",
	"sellers_manage",
	"delivery_manage",
	"orders_manage",
	"roles_manage",
	"zones_manage",
	"withdrawals_manage",
	"media_manage",
}

// RoleRecord is an admin-managed permission bundle, distinct from the account
// role namespace constants in account.go.
type RoleRecord struct {
	RoleID      string   `json:"id" dynamodbav:"role_id"`
	Name        string   `json:"name" dynamodbav:"name"`
	Type        string   `json:"type" dynamodbav:"type"`
	Permissions []string `json:"permissions" dynamodbav:"permissions"`
	Description string   `json:"description" dynamodbav:"description"`
	Enable      bool     `json:"enable" dynamodbav:"enable"`
}

type RoleInput struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions"`
	Description string   `json:"description"`
}
