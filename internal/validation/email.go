package validation

import (
	"net/mail"
	"strings"
)

const maxEmailLength = 254

// ValidateEmail checks basic RFC 5322 shape plus the length and domain rules
// the registration flow relies on.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// ValidateEmailField wraps ValidateEmail in a ValidationError.
func ValidateEmailField(email, fieldName string) error {
	if !ValidateEmail(email) {
		return ValidationError{
			Field:   fieldName,
			Message: "is not a valid email address",
		}
	}
	return nil
}
