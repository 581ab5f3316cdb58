package domain

import "errors"

// Domain failures. They are always wrapped with context via fmt.Errorf("%w: ...")
// so callers should match them with errors.Is.
var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrDuplicatePosition    = errors.New("duplicate position")
	ErrPositionNotFound     = errors.New("position not found")
	ErrMissingPrice         = errors.New("missing price")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrEmptyPortfolio       = errors.New("empty portfolio")
	ErrMalformedValue       = errors.New("malformed value")

	ErrUserNotFound            = errors.New("user not found")
	ErrUserAlreadyRegistered   = errors.New("user already registered")
	ErrInstrumentNotFound      = errors.New("instrument not found")
	ErrUnsupportedInstrument   = errors.New("unsupported instrument")
	ErrNotificationUnavailable = errors.New("notification sender unavailable")
)
