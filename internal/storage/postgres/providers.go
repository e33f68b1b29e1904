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

type providerRepository struct {
	storage *Storage
}

type driverProfileRepository struct {
	storage *Storage
}

const providerColumns = `id, user_id, company_name, tax_number, business_registration, insurance_certificate,
       verification_status, is_active, rating, total_orders, completed_orders,
       reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

func scanProvider(row pgx.Row) (*model.Provider, error) {
	var (
		p      model.Provider
		rating decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CompanyName, &p.TaxNumber, &p.BusinessRegistration, &p.InsuranceCertificate,
		&p.VerificationStatus, &p.IsActive, &rating, &p.TotalOrders, &p.CompletedOrders,
		&p.ReviewedBy, &p.ReviewedAt, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Rating = fromNullDecimal(rating)
	return &p, nil
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) (*model.Provider, error) {
	const query = `INSERT INTO providers (user_id, company_name, tax_number, business_registration,
                       insurance_certificate, verification_status, is_active)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING id, created_at, updated_at`
	p := *provider
	err := r.storage.pool.QueryRow(ctx, query,
		p.UserID, p.CompanyName, p.TaxNumber, p.BusinessRegistration,
		p.InsuranceCertificate, string(p.VerificationStatus), p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, domainErrors.ErrProviderExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *providerRepository) GetByID(ctx context.Context, id int64) (*model.Provider, error) {
	p, err := scanProvider(r.storage.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *providerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Provider, error) {
	p, err := scanProvider(r.storage.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE user_id=$1`, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *providerRepository) ListByStatus(ctx context.Context, statuses ...model.VerificationStatus) ([]model.Provider, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	rows, err := r.storage.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers WHERE verification_status = ANY($1) ORDER BY id`, values)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProvider)
}

func (r *providerRepository) ListActive(ctx context.Context) ([]model.Provider, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProvider)
}

func (r *providerRepository) Review(ctx context.Context, review model.ProviderReview) (*model.Provider, error) {
	const query = `UPDATE providers
                   SET verification_status=$2,
                       is_active=$3,
                       reviewed_by=COALESCE($4, reviewed_by),
                       reviewed_at=CASE WHEN $4::BIGINT IS NULL THEN reviewed_at ELSE NOW() END,
                       rejection_reason=$5,
                       updated_at=NOW()
                   WHERE id=$1 AND verification_status = ANY($6)
                   RETURNING ` + providerColumns

	var reviewer *int64
	if review.ReviewerID != 0 {
		id := review.ReviewerID
		reviewer = &id
	}
	reason := ""
	if review.To == model.VerificationRejected {
		reason = review.Reason
	}
	from := make([]string, len(review.From))
	for i, s := range review.From {
		from[i] = string(s)
	}

	p, err := scanProvider(r.storage.pool.QueryRow(ctx, query,
		review.ProviderID, string(review.To), review.To == model.VerificationVerified, reviewer, reason, from))
	if errors.Is(err, pgx.ErrNoRows) {
		var status model.VerificationStatus
		err := r.storage.pool.QueryRow(ctx, `SELECT verification_status FROM providers WHERE id=$1`, review.ProviderID).Scan(&status)
		if err != nil {
			return nil, notFound(err)
		}
		return nil, fmt.Errorf("%w: provider is %s", domainErrors.ErrInvalidTransition, status)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *providerRepository) Stats(ctx context.Context) (*model.NetworkStats, error) {
	const query = `SELECT COUNT(*),
                          COUNT(*) FILTER (WHERE is_active),
                          COUNT(*) FILTER (WHERE verification_status='verified'),
                          COUNT(*) FILTER (WHERE verification_status IN ('unverified', 'in_review')),
                          COALESCE(SUM(completed_orders), 0),
                          AVG(rating)
                   FROM providers`
	var (
		stats model.NetworkStats
		avg   decimal.NullDecimal
	)
	err := r.storage.pool.QueryRow(ctx, query).Scan(
		&stats.Total, &stats.Active, &stats.Verified, &stats.Pending, &stats.CompletedOrders, &avg)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = decimal.Zero
	if avg.Valid {
		stats.AverageRating = avg.Decimal.RoundBank(2)
	}
	return &stats, nil
}

func (r *driverProfileRepository) GetByUserID(ctx context.Context, userID int64) (*model.DriverProfile, error) {
	const query = `SELECT user_id, total_earnings, completed_orders, rating, updated_at FROM driver_profiles WHERE user_id=$1`
	var (
		p      model.DriverProfile
		rating decimal.NullDecimal
	)
	err := r.storage.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.TotalEarnings, &p.CompletedOrders, &rating, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.Rating = fromNullDecimal(rating)
	return &p, nil
}
