package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marketplace-api/internal/domain"
)

// Kind tells which delivery channel an identity maps to.
type Kind int

const (
	KindPhone Kind = iota
	KindEmail
)

var (
	// Digit-only, optional leading +, 8-15 digits (E.164 upper bound).
	phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	// RFC-shaped, not a full RFC 5322 parse. Good enough to route mail.
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Classify validates the raw identity and returns its kind plus a normalized
// form (trimmed, email lowercased). Fails with domain.ErrInvalidIdentity.
func Classify(raw string) (Kind, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", fmt.Errorf("identity required: %w", domain.ErrInvalidIdentity)
	}
	if strings.ContainsRune(s, '@') {
		s = strings.ToLower(s)
		if !emailRe.MatchString(s) {
			return 0, "", fmt.Errorf("malformed email %q: %w", raw, domain.ErrInvalidIdentity)
		}
		return KindEmail, s, nil
	}
	if !phoneRe.MatchString(s) {
		return 0, "", fmt.Errorf("malformed phone number %q: %w", raw, domain.ErrInvalidIdentity)
	}
	return KindPhone, s, nil
}
