package market

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
)

var (
	ErrInvalidEmailDomain = auth.ErrInvalidEmailDomain
	ErrPasswordTooShort   = auth.ErrPasswordTooShort
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingField       = errors.New("required field missing")
	ErrUnauthenticated    = errors.New("not signed in")
	ErrTooManyImages      = errors.New("too many images")
	ErrInvalidCondition   = errors.New("invalid condition")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrContactUnavailable = errors.New("seller's contact information is not available")

	// Kinds carried by BackendError.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("already exists")
)

// BackendError is a failure reported by the backend. Message is meant for
// the user; Kind, when set, is one of the sentinels above.
type BackendError struct {
	Message string
	Kind    error
}

func (e *BackendError) Error() string { return e.Message }
func (e *BackendError) Unwrap() error { return e.Kind }

// userMessage is the text a notification shows for err.
func userMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

// permanent reports whether retrying err cannot help.
func permanent(err error) bool {
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// inputError turns a validator failure into the matching sentinel.
func inputError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return fmt.Errorf("%w: %s", ErrMissingField, fe.Field())
	case fe.Tag() == "product_condition":
		return fmt.Errorf("%w: %v", ErrInvalidCondition, fe.Value())
	case fe.Tag() == "product_status":
		return fmt.Errorf("%w: %v", ErrInvalidStatus, fe.Value())
	case fe.Field() == "Images" && fe.Tag() == "max":
		return fmt.Errorf("%w: at most %d allowed", ErrTooManyImages, MaxImages)
	case fe.Field() == "Price":
		return fmt.Errorf("%w: must not be negative", ErrInvalidPrice)
	}
	return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, fe.Field(), fe.Tag())
}
