package auth

import (
	"errors"
	"fmt"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
)

var (
	ErrInvalidEmailDomain = errors.New("email domain not allowed")
	ErrPasswordTooShort   = errors.New("password too short")
)

// Policy is the credential policy shared by the server and the client stores.
type Policy struct {
	EmailDomain       string // required suffix, e.g. "@rguktrkv.ac.in"
	MinPasswordLength int
}

// DefaultPolicy matches the campus deployment.
func DefaultPolicy() Policy {
	return Policy{EmailDomain: "@rguktrkv.ac.in", MinPasswordLength: 6}
}

// ValidateEmail rejects addresses outside the institutional domain.
func (p Policy) ValidateEmail(email string) error {
	if !normalize.HasDomain(email, p.EmailDomain) {
		return fmt.Errorf("%w: only %s email addresses are allowed", ErrInvalidEmailDomain, p.EmailDomain)
	}
	return nil
}

// ValidatePassword enforces the minimum length.
func (p Policy) ValidatePassword(password string) error {
	if len(password) < p.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrPasswordTooShort, p.MinPasswordLength)
	}
	return nil
}
