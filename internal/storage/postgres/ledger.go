package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

type payoutRepository struct {
	storage *Storage
}

type paymentRepository struct {
	storage *Storage
}

type auditRepository struct {
	storage *Storage
}

// --- PayoutRepository implementation ---

const payoutColumns = `id, order_id, driver_id, amount, status, created_at, updated_at`

func scanPayout(row pgx.Row) (*model.Payout, error) {
	var p model.Payout
	if err := row.Scan(&p.ID, &p.OrderID, &p.DriverID, &p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payoutRepository) GetByID(ctx context.Context, id int64) (*model.Payout, error) {
	p, err := scanPayout(r.storage.pool.QueryRow(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *payoutRepository) ListByDriver(ctx context.Context, driverID int64) ([]model.Payout, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE driver_id=$1 ORDER BY created_at DESC`, driverID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayout)
}

func (r *payoutRepository) ListAll(ctx context.Context, limit int) ([]model.Payout, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+payoutColumns+` FROM payouts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayout)
}

func (r *payoutRepository) UpdateStatus(ctx context.Context, id int64, from, to model.PayoutStatus) (*model.Payout, error) {
	const query = `UPDATE payouts SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2 RETURNING ` + payoutColumns
	p, err := scanPayout(r.storage.pool.QueryRow(ctx, query, id, string(from), string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domainErrors.ErrConcurrency
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// --- PaymentRepository implementation ---

const paymentColumns = `id, order_id, client_id, session_id, amount, currency, status, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.ClientID, &p.SessionID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	const query = `INSERT INTO payments (order_id, client_id, session_id, amount, currency, status)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   RETURNING id, created_at, updated_at`
	p := *payment
	err := r.storage.pool.QueryRow(ctx, query, p.OrderID, p.ClientID, p.SessionID, p.Amount, p.Currency, string(p.Status)).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) GetBySession(ctx context.Context, sessionID string) (*model.Payment, error) {
	p, err := scanPayment(r.storage.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE session_id=$1`, sessionID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *paymentRepository) Settle(ctx context.Context, sessionID string, to model.PaymentStatus, at time.Time) (*model.Payment, error) {
	const (
		settle = `UPDATE payments SET status=$2, updated_at=$3 WHERE session_id=$1 AND status='pending' RETURNING ` + paymentColumns
		exists = `SELECT EXISTS (SELECT 1 FROM payments WHERE session_id=$1)`
		paid   = `UPDATE orders SET paid_at=COALESCE(paid_at, $2), updated_at=$2 WHERE id=$1`
	)

	var settled *model.Payment
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		p, err := scanPayment(tx.QueryRow(ctx, settle, sessionID, string(to), at))
		if errors.Is(err, pgx.ErrNoRows) {
			var found bool
			if err := tx.QueryRow(ctx, exists, sessionID).Scan(&found); err != nil {
				return err
			}
			if !found {
				return domainErrors.ErrNotFound
			}
			return domainErrors.ErrConcurrency
		}
		if err != nil {
			return err
		}

		if to == model.PaymentStatusCompleted {
			tag, err := tx.Exec(ctx, paid, p.OrderID, at)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domainErrors.ErrNotFound
			}
		}
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// --- AuditRepository implementation ---

func (r *auditRepository) Record(ctx context.Context, entry model.AuditEntry) error {
	const query = `INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.storage.pool.Exec(ctx, query, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, entry.Details, entry.CreatedAt)
	return err
}

func (r *auditRepository) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	const query = `SELECT id, actor_id, action, entity_type, entity_id, details, created_at
                   FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (*model.AuditEntry, error) {
		var e model.AuditEntry
		if err := row.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		return &e, nil
	})
}
