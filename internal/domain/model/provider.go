package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerificationStatus gates marketplace participation of a provider.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationInReview   VerificationStatus = "in_review"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

// Provider is a driver or company registered for the marketplace.
type Provider struct {
	ID                   int64
	UserID               int64
	CompanyName          string
	TaxNumber            string
	BusinessRegistration string
	InsuranceCertificate string
	VerificationStatus   VerificationStatus
	IsActive             bool
	Rating               *decimal.Decimal
	TotalOrders          int
	CompletedOrders      int
	ReviewedBy           *int64
	ReviewedAt           *time.Time
	RejectionReason      string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewProvider carries validated registration input.
type NewProvider struct {
	CompanyName          string `validate:"required,max=255"`
	TaxNumber            string `validate:"required,max=64"`
	BusinessRegistration string `validate:"max=255"`
	InsuranceCertificate string `validate:"max=255"`
}

// ProviderReview describes an admin decision on a provider.
type ProviderReview struct {
	ProviderID int64
	From       []VerificationStatus
	To         VerificationStatus
	ReviewerID int64
	Reason     string
}

// NetworkStats aggregates the provider network.
type NetworkStats struct {
	Total           int64
	Active          int64
	Verified        int64
	Pending         int64
	CompletedOrders int64
	AverageRating   decimal.Decimal
}

// DriverProfile holds earnings statistics for a driver account.
type DriverProfile struct {
	UserID          int64
	TotalEarnings   decimal.Decimal
	CompletedOrders int
	Rating          *decimal.Decimal
	UpdatedAt       time.Time
}
