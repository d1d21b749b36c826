package domain

// OTP purposes. An OTP record is valid for exactly one purpose; a register code
// cannot be replayed against login.
const (
	PurposeRegister      = "register"
	PurposeLogin         = "login"
	PurposeResetPassword = "reset-password"
)

// ValidPurpose reports whether p is a known OTP purpose tag.
func ValidPurpose(p string) bool {
	switch p {
	case PurposeRegister, PurposeLogin, PurposeResetPassword:
		return true
	}
	return false
}

// OTP is a pending one-time code.
// PK: identity_key ("role#identity"), SK: purpose. At most one record exists per
// (identity, role, purpose): PutItem on the same key replaces the pending code.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTP struct {
	IdentityKey       string `json:"identity_key" dynamodbav:"identity_key"`
	Purpose           string `json:"purpose" dynamodbav:"purpose"`
	Code              string `json:"-" dynamodbav:"code"`
	ExpiresAt         int64  `json:"expires_at" dynamodbav:"expires_at"`
	AttemptsRemaining int    `json:"attempts_remaining" dynamodbav:"attempts_remaining"`
	IssuedAt          int64  `json:"issued_at" dynamodbav:"issued_at"`
}

// IdentityKey builds the OTP partition key for a role-scoped identity.
func IdentityKey(role, identity string) string {
	return role + "#" + identity
}
