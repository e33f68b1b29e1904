package model

import "time"

// AuditEntry records a state-changing or denied operation.
type AuditEntry struct {
	ID         int64
	ActorID    int64
	Action     string
	EntityType string
	EntityID   int64
	Details    map[string]any
	CreatedAt  time.Time
}
