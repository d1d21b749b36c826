package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// phone and email back the role-phone-index / role-email-index GSIs as S-typed
// keys. A nil pointer must be absent from the marshaled item: a NULL attribute
// on an index key attribute makes PutItem reject the whole write.

func TestAccountMarshal_EmailOnlyOmitsPhone(t *testing.T) {
	a := &domain.Account{
		AccountID: "a1",
		Role:      domain.RoleAdmin,
		Email:     strPtr("ops@example.com"),
		Name:      "Ops",
		Enable:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	item, err := attributevalue.MarshalMap(a)
	require.NoError(t, err)

	_, present := item["phone"]
	assert.False(t, present, "nil phone must be omitted, not written as NULL")

	email, ok := item["email"].(*types.AttributeValueMemberS)
	require.True(t, ok, "email must marshal as S")
	assert.Equal(t, "ops@example.com", email.Value)
}

// DynamoDB rejects expressions that use reserved words like "enable" directly;
// the scan filter must reference it through an attribute name alias.
func TestEnabledFilter_AliasesReservedWord(t *testing.T) {
	expr, names := enabledFilter()
	assert.Equal(t, "#en = :t", expr)
	assert.Equal(t, map[string]string{"#en": "enable"}, names)
	assert.NotContains(t, expr, "enable")
}

func TestAccountMarshal_PhoneOnlyOmitsEmail(t *testing.T) {
	a := &domain.Account{
		AccountID: "a1",
		Role:      domain.RoleCustomer,
		Phone:     strPtr("+919876543210"),
		Name:      "Asha",
		Enable:    true,
	}
	item, err := attributevalue.MarshalMap(a)
	require.NoError(t, err)

	_, present := item["email"]
	assert.False(t, present, "nil email must be omitted, not written as NULL")

	phone, ok := item["phone"].(*types.AttributeValueMemberS)
	require.True(t, ok, "phone must marshal as S")
	assert.Equal(t, "+919876543210", phone.Value)
}
