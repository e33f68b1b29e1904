package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by use cases wraps exactly one of them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConcurrency = errors.New("concurrent modification")
)

var (
	ErrAlreadyExists      = fmt.Errorf("%w: already exists", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidPrice      = fmt.Errorf("%w: price must be positive", ErrValidation)
	ErrPriceBelowFees    = fmt.Errorf("%w: price does not cover insurance and commission", ErrValidation)
	ErrInvalidRating     = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrConflict)

	ErrOfferExists     = fmt.Errorf("%w: offer already exists", ErrConflict)
	ErrOfferNotPending = fmt.Errorf("%w: offer is not pending", ErrConflict)
	ErrOfferExpired    = fmt.Errorf("%w: offer expired", ErrConflict)
	ErrOrderNotOpen    = fmt.Errorf("%w: order is not open for offers", ErrConflict)
	ErrAlreadyRated    = fmt.Errorf("%w: order already rated", ErrConflict)
	ErrPayoutExists    = fmt.Errorf("%w: payout already exists", ErrConflict)
	ErrProviderExists  = fmt.Errorf("%w: provider already registered", ErrConflict)

	ErrNotEligible = fmt.Errorf("%w: driver is not an active verified provider", ErrForbidden)
)

// Validation wraps a message as a validation error.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Kind reports which error kind err belongs to, or nil when it is none of them.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrConcurrency, ErrConflict, ErrNotFound, ErrForbidden} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
