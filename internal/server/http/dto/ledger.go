package dto

import (
	"time"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// PayoutResponse is a driver remittance.
type PayoutResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	DriverID  int64     `json:"driver_id"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPayoutResponse(p *model.Payout) PayoutResponse {
	return PayoutResponse{
		ID:        p.ID,
		OrderID:   p.OrderID,
		DriverID:  p.DriverID,
		Amount:    Money(p.Amount),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewPayoutResponses(payouts []model.Payout) []PayoutResponse {
	out := make([]PayoutResponse, 0, len(payouts))
	for i := range payouts {
		out = append(out, NewPayoutResponse(&payouts[i]))
	}
	return out
}

// UpdatePayoutRequest moves a payout to a new status.
type UpdatePayoutRequest struct {
	Status string `json:"status"`
}

// CheckoutResponse points the client at the hosted payment page.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// AuditEntryResponse is one audit log record.
type AuditEntryResponse struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewAuditEntryResponses(entries []model.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
