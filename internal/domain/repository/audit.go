package repository

import (
	"context"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// AuditRepository persists activity log entries.
type AuditRepository interface {
	Record(ctx context.Context, entry model.AuditEntry) error
	List(ctx context.Context, limit int) ([]model.AuditEntry, error)
}
