package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// Auditor records activity entries. Implementations never fail the caller.
type Auditor interface {
	Record(ctx context.Context, entry model.AuditEntry)
}

// AuditRecorder persists activity entries and logs write failures.
type AuditRecorder struct {
	repo   repository.AuditRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditRecorder constructs AuditRecorder.
func NewAuditRecorder(repo repository.AuditRepository, logger *slog.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger, now: time.Now}
}

// Record stores entry; failures are logged only.
func (r *AuditRecorder) Record(ctx context.Context, entry model.AuditEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now().UTC()
	}
	// The entry is written after the main operation committed, so the request
	// being cancelled must not drop it.
	if err := r.repo.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("failed to record audit entry",
			slog.String("action", entry.Action),
			slog.String("entity_type", entry.EntityType),
			slog.Int64("entity_id", entry.EntityID),
			slog.String("error", err.Error()),
		)
	}
}

// AuditUseCase exposes the activity log to administrators.
type AuditUseCase struct {
	repo  repository.AuditRepository
	guard *Guard
}

// NewAuditUseCase constructs AuditUseCase.
func NewAuditUseCase(repos repository.Factory, guard *Guard) *AuditUseCase {
	return &AuditUseCase{repo: repos.Audit(), guard: guard}
}

// List returns the most recent entries first.
func (u *AuditUseCase) List(ctx context.Context, actor model.Actor, limit int) ([]model.AuditEntry, error) {
	if err := u.guard.Authorize(ctx, actor, OpListAudit, "audit", 0); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, clampLimit(limit, defaultAuditLimit, maxAuditLimit))
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
