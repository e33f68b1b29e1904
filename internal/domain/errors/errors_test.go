package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsWrapKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"already exists", ErrAlreadyExists, ErrConflict},
		{"invalid price", ErrInvalidPrice, ErrValidation},
		{"price below fees", ErrPriceBelowFees, ErrValidation},
		{"invalid rating", ErrInvalidRating, ErrValidation},
		{"invalid transition", ErrInvalidTransition, ErrConflict},
		{"offer exists", ErrOfferExists, ErrConflict},
		{"offer not pending", ErrOfferNotPending, ErrConflict},
		{"offer expired", ErrOfferExpired, ErrConflict},
		{"order not open", ErrOrderNotOpen, ErrConflict},
		{"already rated", ErrAlreadyRated, ErrConflict},
		{"payout exists", ErrPayoutExists, ErrConflict},
		{"provider exists", ErrProviderExists, ErrConflict},
		{"not eligible", ErrNotEligible, ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.kind) {
				t.Fatalf("expected %v to wrap %v", tc.err, tc.kind)
			}
			if got := Kind(tc.err); got != tc.kind {
				t.Fatalf("expected kind %v, got %v", tc.kind, got)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if Kind(stdErrors.New("boom")) != nil {
		t.Fatal("expected nil kind for unrelated error")
	}
	wrapped := fmt.Errorf("accept offer: %w", ErrConcurrency)
	if Kind(wrapped) != ErrConcurrency {
		t.Fatalf("expected concurrency kind, got %v", Kind(wrapped))
	}
	if Kind(Validation("pickup date required")) != ErrValidation {
		t.Fatal("expected validation kind")
	}
}
