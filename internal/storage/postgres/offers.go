package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

type offerRepository struct {
	storage *Storage
}

const offerColumns = `id, order_id, driver_id, quoted_price, estimated_duration, message,
       driver_rating, completed_jobs, status, expires_at, created_at, updated_at`

func scanOffer(row pgx.Row) (*model.Offer, error) {
	var (
		o      model.Offer
		rating decimal.NullDecimal
	)
	err := row.Scan(
		&o.ID, &o.OrderID, &o.DriverID, &o.QuotedPrice, &o.EstimatedDuration, &o.Message,
		&rating, &o.CompletedJobs, &o.Status, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.DriverRating = fromNullDecimal(rating)
	return &o, nil
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r *offerRepository) Create(ctx context.Context, offer *model.Offer) (*model.Offer, error) {
	const insert = `INSERT INTO offers (order_id, driver_id, quoted_price, estimated_duration, message,
                        driver_rating, completed_jobs, status, expires_at)
                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                    RETURNING id, created_at, updated_at`

	o := *offer
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var status model.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR SHARE`, o.OrderID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrOrderNotOpen
		}
		if err != nil {
			return err
		}
		if status != model.OrderStatusCreated {
			return domainErrors.ErrOrderNotOpen
		}

		err = tx.QueryRow(ctx, insert,
			o.OrderID, o.DriverID, o.QuotedPrice, o.EstimatedDuration, o.Message,
			toNullDecimal(o.DriverRating), o.CompletedJobs, string(o.Status), o.ExpiresAt,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if pgCode(err) == pgUniqueViolation {
			return domainErrors.ErrOfferExists
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) GetByID(ctx context.Context, id int64) (*model.Offer, error) {
	offer, err := scanOffer(r.storage.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return offer, nil
}

func (r *offerRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Offer, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOffer)
}

func (r *offerRepository) ListByDriver(ctx context.Context, driverID int64) ([]model.Offer, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE driver_id=$1 ORDER BY created_at DESC`, driverID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOffer)
}

func (r *offerRepository) Accept(ctx context.Context, orderID, offerID int64, split repository.SplitFunc, now time.Time) (*model.Order, *model.Offer, error) {
	const (
		lockOrder = `SELECT status, driver_id FROM orders WHERE id=$1 FOR UPDATE`
		lockOffer = `SELECT ` + offerColumns + ` FROM offers WHERE id=$1 AND order_id=$2 FOR UPDATE`
		accept    = `UPDATE offers SET status='accepted', updated_at=NOW() WHERE id=$1 AND status='pending'
                     RETURNING updated_at`
		confirm = `UPDATE orders SET driver_id=$2, status='confirmed', total_price=$3, insurance_amount=$4,
                       commission_amount=$5, driver_payout=$6, updated_at=NOW()
                   WHERE id=$1 AND status='created' AND driver_id IS NULL
                   RETURNING ` + orderColumns
	)

	var (
		order    *model.Order
		accepted *model.Offer
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var (
			status   model.OrderStatus
			assigned *int64
		)
		if err := tx.QueryRow(ctx, lockOrder, orderID).Scan(&status, &assigned); err != nil {
			return notFound(err)
		}
		if status != model.OrderStatusCreated || assigned != nil {
			return domainErrors.ErrOrderNotOpen
		}

		offer, err := scanOffer(tx.QueryRow(ctx, lockOffer, offerID, orderID))
		if err != nil {
			return notFound(err)
		}
		if offer.Status != model.OfferStatusPending {
			return domainErrors.ErrOfferNotPending
		}
		if offer.EffectiveStatus(now) == model.OfferStatusExpired {
			return domainErrors.ErrOfferExpired
		}

		price, err := split(offer.QuotedPrice)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, accept, offerID).Scan(&offer.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgUniqueViolation {
			return domainErrors.ErrConcurrency
		}
		if err != nil {
			return err
		}
		offer.Status = model.OfferStatusAccepted

		if err := rejectPendingOffers(ctx, tx, orderID, offerID); err != nil {
			return err
		}

		order, err = scanOrder(tx.QueryRow(ctx, confirm, orderID, offer.DriverID,
			price.Total, price.Insurance, price.Commission, price.Payout))
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrConcurrency
		}
		if err != nil {
			return err
		}
		accepted = offer
		return bumpProviderOrders(ctx, tx, offer.DriverID)
	})
	if err != nil {
		return nil, nil, err
	}
	return order, accepted, nil
}

func (r *offerRepository) Reject(ctx context.Context, orderID, offerID int64) (*model.Offer, error) {
	const query = `UPDATE offers SET status='rejected', updated_at=NOW()
                   WHERE id=$1 AND order_id=$2 AND status='pending'
                   RETURNING ` + offerColumns

	offer, err := scanOffer(r.storage.pool.QueryRow(ctx, query, offerID, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		var status model.OfferStatus
		err := r.storage.pool.QueryRow(ctx, `SELECT status FROM offers WHERE id=$1 AND order_id=$2`, offerID, orderID).Scan(&status)
		if err != nil {
			return nil, notFound(err)
		}
		return nil, fmt.Errorf("%w: offer is %s", domainErrors.ErrOfferNotPending, status)
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// ExpireStale marks pending offers past their expiry as expired.
func (r *offerRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE offers SET status='expired', updated_at=$1 WHERE status='pending' AND expires_at <= $1`
	tag, err := r.storage.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
