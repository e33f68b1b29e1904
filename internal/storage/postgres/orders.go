package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, client_id, driver_id, vehicle_type, vehicle_make, vehicle_model,
       pickup_location, delivery_location, pickup_date, delivery_date, notes,
       total_price, insurance_amount, commission_amount, driver_payout,
       status, driver_rating, driver_feedback, paid_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.ClientID, &o.DriverID, &o.VehicleType, &o.VehicleMake, &o.VehicleModel,
		&o.PickupLocation, &o.DeliveryLocation, &o.PickupDate, &o.DeliveryDate, &o.Notes,
		&o.Price.Total, &o.Price.Insurance, &o.Price.Commission, &o.Price.Payout,
		&o.Status, &o.DriverRating, &o.DriverFeedback, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func statusStrings(statuses []model.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (client_id, vehicle_type, vehicle_make, vehicle_model, pickup_location,
                       delivery_location, pickup_date, notes, total_price, insurance_amount, commission_amount,
                       driver_payout, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   RETURNING id, created_at, updated_at`
	o := *order
	err := r.storage.pool.QueryRow(ctx, query,
		o.ClientID, o.VehicleType, o.VehicleMake, o.VehicleModel, o.PickupLocation,
		o.DeliveryLocation, o.PickupDate, o.Notes, o.Price.Total, o.Price.Insurance, o.Price.Commission,
		o.Price.Payout, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOrder)
}

func (r *orderRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE client_id=$1 ORDER BY created_at DESC`, clientID)
}

func (r *orderRepository) ListByDriver(ctx context.Context, driverID int64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE driver_id=$1 ORDER BY created_at DESC`, driverID)
}

func (r *orderRepository) ListAll(ctx context.Context, limit int) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
}

// ListOpenForDriver returns created orders the driver has not bid on yet.
func (r *orderRepository) ListOpenForDriver(ctx context.Context, driverID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders o
                   WHERE o.status='created'
                     AND NOT EXISTS (SELECT 1 FROM offers f WHERE f.order_id=o.id AND f.driver_id=$1)
                   ORDER BY o.created_at DESC`
	return r.list(ctx, query, driverID)
}

func (r *orderRepository) AssignDriver(ctx context.Context, orderID, driverID int64) (*model.Order, error) {
	const assign = `UPDATE orders SET driver_id=$2, status='confirmed', updated_at=NOW()
                    WHERE id=$1 AND status='created' AND driver_id IS NULL
                    RETURNING ` + orderColumns

	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, assign, orderID, driverID))
		if errors.Is(err, pgx.ErrNoRows) {
			return r.assignConflict(ctx, tx, orderID)
		}
		if err != nil {
			return err
		}
		if err := rejectPendingOffers(ctx, tx, orderID, 0); err != nil {
			return err
		}
		return bumpProviderOrders(ctx, tx, driverID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// assignConflict explains why a claim did not match: a still-open order lost a
// race, anything else was never claimable.
func (r *orderRepository) assignConflict(ctx context.Context, q querier, orderID int64) error {
	status, err := currentStatus(ctx, q, orderID)
	if err != nil {
		return err
	}
	if status == model.OrderStatusCreated || status == model.OrderStatusConfirmed {
		return domainErrors.ErrConcurrency
	}
	return fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidTransition, status)
}

func currentStatus(ctx context.Context, q querier, orderID int64) (model.OrderStatus, error) {
	var status model.OrderStatus
	if err := q.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&status); err != nil {
		return "", notFound(err)
	}
	return status, nil
}

func (r *orderRepository) Transition(ctx context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (*model.Order, error) {
	const update = `UPDATE orders SET status=$2, updated_at=NOW()
                    WHERE id=$1 AND status = ANY($3)
                    RETURNING ` + orderColumns

	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRow(ctx, update, orderID, string(to), statusStrings(from)))
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := currentStatus(ctx, tx, orderID); err != nil {
				return err
			}
			return domainErrors.ErrConcurrency
		}
		if err != nil {
			return err
		}
		if to == model.OrderStatusCancelled {
			return rejectPendingOffers(ctx, tx, orderID, 0)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Complete(ctx context.Context, orderID, driverID int64) (*model.Order, *model.Payout, error) {
	const (
		lockOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		finish    = `UPDATE orders SET status='completed', delivery_date=NOW(), updated_at=NOW()
                     WHERE id=$1 RETURNING ` + orderColumns
		profile = `INSERT INTO driver_profiles (user_id, total_earnings, completed_orders)
                     VALUES ($1, $2, 1)
                     ON CONFLICT (user_id) DO UPDATE
                     SET total_earnings = driver_profiles.total_earnings + EXCLUDED.total_earnings,
                         completed_orders = driver_profiles.completed_orders + 1,
                         updated_at = NOW()`
		provider = `UPDATE providers SET completed_orders = completed_orders + 1, updated_at=NOW() WHERE user_id=$1`
		payout   = `INSERT INTO payouts (order_id, driver_id, amount, status) VALUES ($1, $2, $3, $4)
                     ON CONFLICT (order_id) DO NOTHING
                     RETURNING id, created_at, updated_at`
	)

	var (
		order  *model.Order
		result *model.Payout
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := scanOrder(tx.QueryRow(ctx, lockOrder, orderID))
		if err != nil {
			return notFound(err)
		}
		if current.Status != model.OrderStatusEnroute || !current.AssignedTo(driverID) {
			return fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidTransition, current.Status)
		}

		order, err = scanOrder(tx.QueryRow(ctx, finish, orderID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, profile, driverID, order.Price.Payout); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, provider, driverID); err != nil {
			return err
		}

		p := model.Payout{OrderID: orderID, DriverID: driverID, Amount: order.Price.Payout, Status: model.PayoutStatusPending}
		err = tx.QueryRow(ctx, payout, p.OrderID, p.DriverID, p.Amount, string(p.Status)).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrPayoutExists
		}
		if err != nil {
			return err
		}
		result = &p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, result, nil
}

func (r *orderRepository) Rate(ctx context.Context, orderID, clientID int64, rating int, feedback string) (*model.Order, error) {
	const (
		lockOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		rate      = `UPDATE orders SET driver_rating=$2, driver_feedback=$3, updated_at=NOW()
                     WHERE id=$1 RETURNING ` + orderColumns
		average  = `SELECT AVG(driver_rating) FROM orders WHERE driver_id=$1 AND driver_rating IS NOT NULL`
		profile  = `UPDATE driver_profiles SET rating=$2, updated_at=NOW() WHERE user_id=$1`
		provider = `UPDATE providers SET rating=$2, updated_at=NOW() WHERE user_id=$1`
	)

	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		current, err := scanOrder(tx.QueryRow(ctx, lockOrder, orderID))
		if err != nil {
			return notFound(err)
		}
		if current.ClientID != clientID {
			return domainErrors.ErrNotFound
		}
		if current.DriverRating != nil {
			return domainErrors.ErrAlreadyRated
		}
		if current.Status != model.OrderStatusCompleted || current.DriverID == nil {
			return fmt.Errorf("%w: order is %s", domainErrors.ErrInvalidTransition, current.Status)
		}

		order, err = scanOrder(tx.QueryRow(ctx, rate, orderID, rating, feedback))
		if err != nil {
			return err
		}

		driverID := *current.DriverID
		var avg decimal.Decimal
		if err := tx.QueryRow(ctx, average, driverID).Scan(&avg); err != nil {
			return err
		}
		avg = avg.RoundBank(2)
		if _, err := tx.Exec(ctx, profile, driverID, avg); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, provider, driverID, avg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Delete(ctx context.Context, orderID int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("%w: order has a payout", domainErrors.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Statistics(ctx context.Context) (*model.OrderStatistics, error) {
	const (
		byStatus = `SELECT status, COUNT(*) FROM orders GROUP BY status`
		totals   = `SELECT COALESCE(SUM(total_price), 0), COALESCE(SUM(commission_amount), 0),
                           COALESCE(SUM(insurance_amount), 0), COALESCE(SUM(driver_payout), 0)
                    FROM orders WHERE status='completed'`
	)

	stats := &model.OrderStatistics{ByStatus: make(map[model.OrderStatus]int64)}
	rows, err := r.storage.pool.Query(ctx, byStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status model.OrderStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.storage.pool.QueryRow(ctx, totals).Scan(&stats.Revenue, &stats.CommissionTotal, &stats.InsuranceTotal, &stats.PayoutTotal)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func rejectPendingOffers(ctx context.Context, q querier, orderID, keep int64) error {
	const query = `UPDATE offers SET status='rejected', updated_at=NOW() WHERE order_id=$1 AND id<>$2 AND status='pending'`
	_, err := q.Exec(ctx, query, orderID, keep)
	return err
}

func bumpProviderOrders(ctx context.Context, q querier, driverID int64) error {
	const query = `UPDATE providers SET total_orders = total_orders + 1, updated_at=NOW() WHERE user_id=$1`
	_, err := q.Exec(ctx, query, driverID)
	return err
}
