package domain

import "time"

// Role names. An account belongs to exactly one role namespace; the same phone
// number may exist once per role.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleDelivery = "delivery"
	RoleAdmin    = "admin"
)

// ValidRole reports whether name is one of the four account roles.
func ValidRole(name string) bool {
	switch name {
	case RoleCustomer, RoleSeller, RoleDelivery, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	AccountID      string     `json:"id" dynamodbav:"account_id"`
	Role           string     `json:"role" dynamodbav:"role"`
	// phone and email are S-typed GSI keys; omitempty keeps a nil pointer out
	// of the item entirely, a NULL attribute would fail the index type check.
	Phone          *string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Email          *string    `json:"email,omitempty" dynamodbav:"email,omitempty"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Name           string     `json:"name" dynamodbav:"name"`
	PhoneConfirmed bool       `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	EmailConfirmed bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	Enable         bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type UpdateAccountRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}
