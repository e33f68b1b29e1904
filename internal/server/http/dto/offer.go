package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// SubmitOfferRequest is a driver's bid.
type SubmitOfferRequest struct {
	QuotedPrice       decimal.Decimal `json:"quoted_price"`
	EstimatedDuration *int            `json:"estimated_duration"`
	Message           string          `json:"message"`
}

func (r SubmitOfferRequest) ToModel() model.NewOffer {
	return model.NewOffer{
		QuotedPrice:       r.QuotedPrice,
		EstimatedDuration: r.EstimatedDuration,
		Message:           r.Message,
	}
}

// OfferResponse is the public view of an offer.
type OfferResponse struct {
	ID                int64     `json:"id"`
	OrderID           int64     `json:"order_id"`
	DriverID          int64     `json:"driver_id"`
	QuotedPrice       string    `json:"quoted_price"`
	EstimatedDuration *int      `json:"estimated_duration,omitempty"`
	Message           string    `json:"message,omitempty"`
	DriverRating      *string   `json:"driver_rating,omitempty"`
	CompletedJobs     int       `json:"completed_jobs"`
	Status            string    `json:"status"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewOfferResponse(o *model.Offer) OfferResponse {
	return OfferResponse{
		ID:                o.ID,
		OrderID:           o.OrderID,
		DriverID:          o.DriverID,
		QuotedPrice:       Money(o.QuotedPrice),
		EstimatedDuration: o.EstimatedDuration,
		Message:           o.Message,
		DriverRating:      optionalMoney(o.DriverRating),
		CompletedJobs:     o.CompletedJobs,
		Status:            string(o.Status),
		ExpiresAt:         o.ExpiresAt,
		CreatedAt:         o.CreatedAt,
	}
}

func NewOfferResponses(offers []model.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		out = append(out, NewOfferResponse(&offers[i]))
	}
	return out
}

// ComparisonResponse summarises the live offers of an order.
type ComparisonResponse struct {
	TotalOffers  int            `json:"total_offers"`
	MinPrice     string         `json:"min_price"`
	MaxPrice     string         `json:"max_price"`
	AveragePrice string         `json:"average_price"`
	BestRated    *OfferResponse `json:"best_rated,omitempty"`
}

func NewComparisonResponse(c *model.OfferComparison) ComparisonResponse {
	resp := ComparisonResponse{
		TotalOffers:  c.TotalOffers,
		MinPrice:     Money(c.MinPrice),
		MaxPrice:     Money(c.MaxPrice),
		AveragePrice: Money(c.AveragePrice),
	}
	if c.BestRated != nil {
		best := NewOfferResponse(c.BestRated)
		resp.BestRated = &best
	}
	return resp
}

// AcceptOfferResponse carries the confirmed order and the accepted offer.
type AcceptOfferResponse struct {
	Order OrderResponse `json:"order"`
	Offer OfferResponse `json:"offer"`
}
