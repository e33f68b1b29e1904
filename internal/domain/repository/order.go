package repository

import (
	"context"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// OrderRepository describes persistence and guarded transitions of orders.
//
// Transition methods apply their precondition inside the data store and return
// domain errors: ErrNotFound for a missing row, ErrInvalidTransition when the
// order is in an incompatible status, ErrConcurrency when a conditional update
// lost a race.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Order, error)
	ListByDriver(ctx context.Context, driverID int64) ([]model.Order, error)
	ListAll(ctx context.Context, limit int) ([]model.Order, error)
	ListOpenForDriver(ctx context.Context, driverID int64) ([]model.Order, error)

	// AssignDriver moves a created, unassigned order to confirmed for driverID and
	// rejects its pending offers.
	AssignDriver(ctx context.Context, orderID, driverID int64) (*model.Order, error)
	// Transition moves the order from one of from to to.
	Transition(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (*model.Order, error)
	// Complete finishes an enroute order of driverID, updates driver statistics and
	// creates the payout in one transaction.
	Complete(ctx context.Context, orderID, driverID int64) (*model.Order, *model.Payout, error)
	Rate(ctx context.Context, orderID, clientID int64, rating int, feedback string) (*model.Order, error)
	Delete(ctx context.Context, orderID int64) error
	Statistics(ctx context.Context) (*model.OrderStatistics, error)
}
