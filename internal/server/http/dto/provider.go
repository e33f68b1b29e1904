package dto

import (
	"time"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// RegisterProviderRequest describes a provider application.
type RegisterProviderRequest struct {
	CompanyName          string `json:"company_name"`
	TaxNumber            string `json:"tax_number"`
	BusinessRegistration string `json:"business_registration"`
	InsuranceCertificate string `json:"insurance_certificate"`
}

func (r RegisterProviderRequest) ToModel() model.NewProvider {
	return model.NewProvider{
		CompanyName:          r.CompanyName,
		TaxNumber:            r.TaxNumber,
		BusinessRegistration: r.BusinessRegistration,
		InsuranceCertificate: r.InsuranceCertificate,
	}
}

// RejectProviderRequest carries the rejection reason.
type RejectProviderRequest struct {
	Reason string `json:"reason"`
}

// ProviderResponse is the public view of a provider.
type ProviderResponse struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	CompanyName          string     `json:"company_name"`
	TaxNumber            string     `json:"tax_number"`
	BusinessRegistration string     `json:"business_registration,omitempty"`
	InsuranceCertificate string     `json:"insurance_certificate,omitempty"`
	VerificationStatus   string     `json:"verification_status"`
	IsActive             bool       `json:"is_active"`
	Rating               *string    `json:"rating,omitempty"`
	TotalOrders          int        `json:"total_orders"`
	CompletedOrders      int        `json:"completed_orders"`
	ReviewedBy           *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt           *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func NewProviderResponse(p *model.Provider) ProviderResponse {
	return ProviderResponse{
		ID:                   p.ID,
		UserID:               p.UserID,
		CompanyName:          p.CompanyName,
		TaxNumber:            p.TaxNumber,
		BusinessRegistration: p.BusinessRegistration,
		InsuranceCertificate: p.InsuranceCertificate,
		VerificationStatus:   string(p.VerificationStatus),
		IsActive:             p.IsActive,
		Rating:               optionalMoney(p.Rating),
		TotalOrders:          p.TotalOrders,
		CompletedOrders:      p.CompletedOrders,
		ReviewedBy:           p.ReviewedBy,
		ReviewedAt:           p.ReviewedAt,
		RejectionReason:      p.RejectionReason,
		CreatedAt:            p.CreatedAt,
	}
}

func NewProviderResponses(providers []model.Provider) []ProviderResponse {
	out := make([]ProviderResponse, 0, len(providers))
	for i := range providers {
		out = append(out, NewProviderResponse(&providers[i]))
	}
	return out
}

// NetworkStatsResponse aggregates the provider network.
type NetworkStatsResponse struct {
	Total           int64  `json:"total"`
	Active          int64  `json:"active"`
	Verified        int64  `json:"verified"`
	Pending         int64  `json:"pending"`
	CompletedOrders int64  `json:"completed_orders"`
	AverageRating   string `json:"average_rating"`
}

func NewNetworkStatsResponse(s *model.NetworkStats) NetworkStatsResponse {
	return NetworkStatsResponse{
		Total:           s.Total,
		Active:          s.Active,
		Verified:        s.Verified,
		Pending:         s.Pending,
		CompletedOrders: s.CompletedOrders,
		AverageRating:   Money(s.AverageRating),
	}
}
