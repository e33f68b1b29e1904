package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

func TestValidateInputMessages(t *testing.T) {
	in := model.NewOrder{
		PickupLocation:   "Berlin",
		DeliveryLocation: "Berlin",
		PickupDate:       time.Now(),
	}

	err := validateInput(in)
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"VehicleType is required", "DeliveryLocation must differ from PickupLocation"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestValidateInputAccepts(t *testing.T) {
	if err := validateInput(newOrderInput("100")); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if err := validateInput(model.NewOffer{Message: strings.Repeat("x", 1001)}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected message length violation, got %v", err)
	}
}
