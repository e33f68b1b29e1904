package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// CreateOrderRequest describes a new transport job.
type CreateOrderRequest struct {
	VehicleType      string          `json:"vehicle_type"`
	VehicleMake      string          `json:"vehicle_make"`
	VehicleModel     string          `json:"vehicle_model"`
	PickupLocation   string          `json:"pickup_location"`
	DeliveryLocation string          `json:"delivery_location"`
	PickupDate       time.Time       `json:"pickup_date"`
	Notes            string          `json:"notes"`
	Price            decimal.Decimal `json:"price"`
}

func (r CreateOrderRequest) ToModel() model.NewOrder {
	return model.NewOrder{
		VehicleType:      r.VehicleType,
		VehicleMake:      r.VehicleMake,
		VehicleModel:     r.VehicleModel,
		PickupLocation:   r.PickupLocation,
		DeliveryLocation: r.DeliveryLocation,
		PickupDate:       r.PickupDate,
		Notes:            r.Notes,
		Price:            r.Price,
	}
}

// AssignDriverRequest names the driver an admin assigns to an order.
type AssignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

// RateOrderRequest carries the client's rating of a completed transport.
type RateOrderRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// PriceResponse is the price split of an order or quote.
type PriceResponse struct {
	Total      string `json:"total_price"`
	Insurance  string `json:"insurance_fee"`
	Commission string `json:"system_commission"`
	Payout     string `json:"driver_payout"`
}

func NewPriceResponse(p model.PriceSplit) PriceResponse {
	return PriceResponse{
		Total:      Money(p.Total),
		Insurance:  Money(p.Insurance),
		Commission: Money(p.Commission),
		Payout:     Money(p.Payout),
	}
}

// OrderResponse is the public view of an order.
type OrderResponse struct {
	ID               int64         `json:"id"`
	ClientID         int64         `json:"client_id"`
	DriverID         *int64        `json:"driver_id,omitempty"`
	VehicleType      string        `json:"vehicle_type"`
	VehicleMake      string        `json:"vehicle_make,omitempty"`
	VehicleModel     string        `json:"vehicle_model,omitempty"`
	PickupLocation   string        `json:"pickup_location"`
	DeliveryLocation string        `json:"delivery_location"`
	PickupDate       time.Time     `json:"pickup_date"`
	DeliveryDate     *time.Time    `json:"delivery_date,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Price            PriceResponse `json:"price"`
	Status           string        `json:"status"`
	DriverRating     *int          `json:"driver_rating,omitempty"`
	DriverFeedback   *string       `json:"driver_feedback,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func NewOrderResponse(o *model.Order) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		ClientID:         o.ClientID,
		DriverID:         o.DriverID,
		VehicleType:      o.VehicleType,
		VehicleMake:      o.VehicleMake,
		VehicleModel:     o.VehicleModel,
		PickupLocation:   o.PickupLocation,
		DeliveryLocation: o.DeliveryLocation,
		PickupDate:       o.PickupDate,
		DeliveryDate:     o.DeliveryDate,
		Notes:            o.Notes,
		Price:            NewPriceResponse(o.Price),
		Status:           string(o.Status),
		DriverRating:     o.DriverRating,
		DriverFeedback:   o.DriverFeedback,
		PaidAt:           o.PaidAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func NewOrderResponses(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

// CompleteOrderResponse carries the completed order and the payout it created.
type CompleteOrderResponse struct {
	Order  OrderResponse  `json:"order"`
	Payout PayoutResponse `json:"payout"`
}

// StatisticsResponse aggregates the order book.
type StatisticsResponse struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"by_status"`
	Revenue         string           `json:"revenue"`
	CommissionTotal string           `json:"commission_total"`
	InsuranceTotal  string           `json:"insurance_total"`
	PayoutTotal     string           `json:"payout_total"`
}

func NewStatisticsResponse(s *model.OrderStatistics) StatisticsResponse {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for status, n := range s.ByStatus {
		byStatus[string(status)] = n
	}
	return StatisticsResponse{
		Total:           s.Total,
		ByStatus:        byStatus,
		Revenue:         Money(s.Revenue),
		CommissionTotal: Money(s.CommissionTotal),
		InsuranceTotal:  Money(s.InsuranceTotal),
		PayoutTotal:     Money(s.PayoutTotal),
	}
}

// DriverProfileResponse is a driver's earnings summary.
type DriverProfileResponse struct {
	UserID          int64     `json:"user_id"`
	TotalEarnings   string    `json:"total_earnings"`
	CompletedOrders int       `json:"completed_orders"`
	Rating          *string   `json:"rating,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewDriverProfileResponse(p *model.DriverProfile) DriverProfileResponse {
	return DriverProfileResponse{
		UserID:          p.UserID,
		TotalEarnings:   Money(p.TotalEarnings),
		CompletedOrders: p.CompletedOrders,
		Rating:          optionalMoney(p.Rating),
		UpdatedAt:       p.UpdatedAt,
	}
}
