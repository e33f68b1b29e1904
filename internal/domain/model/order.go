package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the transport lifecycle.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusEnroute   OrderStatus = "enroute"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// PriceSplit is the three-way division of a gross price.
type PriceSplit struct {
	Total      decimal.Decimal
	Insurance  decimal.Decimal
	Commission decimal.Decimal
	Payout     decimal.Decimal
}

// Order describes one vehicle transport job.
type Order struct {
	ID               int64
	ClientID         int64
	DriverID         *int64
	VehicleType      string
	VehicleMake      string
	VehicleModel     string
	PickupLocation   string
	DeliveryLocation string
	PickupDate       time.Time
	DeliveryDate     *time.Time
	Notes            string
	Price            PriceSplit
	Status           OrderStatus
	DriverRating     *int
	DriverFeedback   *string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AssignedTo reports whether the order is assigned to the given driver.
func (o *Order) AssignedTo(driverID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

// NewOrder carries validated client input for order creation.
type NewOrder struct {
	VehicleType      string          `validate:"required,max=64"`
	VehicleMake      string          `validate:"max=64"`
	VehicleModel     string          `validate:"max=64"`
	PickupLocation   string          `validate:"required,max=255"`
	DeliveryLocation string          `validate:"required,max=255,nefield=PickupLocation"`
	PickupDate       time.Time       `validate:"required"`
	Notes            string          `validate:"max=2000"`
	Price            decimal.Decimal `validate:"-"`
}

// OrderStatistics aggregates the order book for the back office.
type OrderStatistics struct {
	Total           int64
	ByStatus        map[OrderStatus]int64
	Revenue         decimal.Decimal
	CommissionTotal decimal.Decimal
	InsuranceTotal  decimal.Decimal
	PayoutTotal     decimal.Decimal
}
