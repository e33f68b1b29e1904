package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

// Operation names a core operation subject to authorization.
type Operation string

const (
	OpCreateOrder       Operation = "order.create"
	OpViewOrder         Operation = "order.view"
	OpListOrders        Operation = "order.list"
	OpOrderStatistics   Operation = "order.statistics"
	OpDeleteOrder       Operation = "order.delete"
	OpClaimOrder        Operation = "order.claim"
	OpAssignDriver      Operation = "order.assign"
	OpStartTransit      Operation = "order.start"
	OpCompleteOrder     Operation = "order.complete"
	OpCancelOrder       Operation = "order.cancel"
	OpRateOrder         Operation = "order.rate"
	OpCheckout          Operation = "order.checkout"
	OpAvailableOrders   Operation = "order.available"
	OpSubmitOffer       Operation = "offer.submit"
	OpListOffers        Operation = "offer.list"
	OpCompareOffers     Operation = "offer.compare"
	OpAcceptOffer       Operation = "offer.accept"
	OpRejectOffer       Operation = "offer.reject"
	OpRegisterProvider  Operation = "provider.register"
	OpViewOwnProvider   Operation = "provider.view_own"
	OpRequestReview     Operation = "provider.request_review"
	OpListPending       Operation = "provider.list_pending"
	OpListActive        Operation = "provider.list_active"
	OpNetworkStats      Operation = "provider.stats"
	OpReviewProvider    Operation = "provider.review"
	OpListPayouts       Operation = "payout.list"
	OpUpdatePayout      Operation = "payout.update"
	OpListAudit         Operation = "audit.list"
	OpQuotePrice        Operation = "pricing.quote"
	OpSubscribeUpdates  Operation = "notification.subscribe"
	OpViewDriverProfile Operation = "driver.profile"
)

var (
	everyone = []model.Role{model.RoleSuperAdmin, model.RoleAdmin, model.RoleClient, model.RoleDriver}
	admins   = []model.Role{model.RoleSuperAdmin, model.RoleAdmin}
)

// policyTable is the single source of role permissions. Relation checks such as
// "owning client" or "assigned driver" are applied by the use cases on top of it.
var policyTable = map[Operation][]model.Role{
	OpCreateOrder:       {model.RoleClient},
	OpViewOrder:         everyone,
	OpListOrders:        everyone,
	OpOrderStatistics:   admins,
	OpDeleteOrder:       {model.RoleSuperAdmin},
	OpClaimOrder:        {model.RoleDriver},
	OpAssignDriver:      admins,
	OpStartTransit:      {model.RoleDriver},
	OpCompleteOrder:     {model.RoleDriver},
	OpCancelOrder:       {model.RoleSuperAdmin, model.RoleAdmin, model.RoleClient},
	OpRateOrder:         {model.RoleClient},
	OpCheckout:          {model.RoleClient},
	OpAvailableOrders:   {model.RoleDriver},
	OpSubmitOffer:       {model.RoleDriver},
	OpListOffers:        {model.RoleSuperAdmin, model.RoleAdmin, model.RoleClient},
	OpCompareOffers:     {model.RoleSuperAdmin, model.RoleAdmin, model.RoleClient},
	OpAcceptOffer:       {model.RoleClient},
	OpRejectOffer:       {model.RoleClient},
	OpRegisterProvider:  {model.RoleDriver},
	OpViewOwnProvider:   {model.RoleDriver},
	OpRequestReview:     {model.RoleDriver},
	OpListPending:       admins,
	OpListActive:        everyone,
	OpNetworkStats:      admins,
	OpReviewProvider:    admins,
	OpListPayouts:       {model.RoleSuperAdmin, model.RoleAdmin, model.RoleDriver},
	OpUpdatePayout:      admins,
	OpListAudit:         admins,
	OpQuotePrice:        everyone,
	OpSubscribeUpdates:  everyone,
	OpViewDriverProfile: {model.RoleDriver},
}

// Allowed reports whether role may perform op.
func Allowed(role model.Role, op Operation) bool {
	for _, r := range policyTable[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Guard enforces the policy table and records denied attempts in the activity log.
type Guard struct {
	audit  Auditor
	logger *slog.Logger
}

// NewGuard constructs Guard.
func NewGuard(audit Auditor, logger *slog.Logger) *Guard {
	return &Guard{audit: audit, logger: logger}
}

// Authorize checks the role permission for op.
func (g *Guard) Authorize(ctx context.Context, actor model.Actor, op Operation, entityType string, entityID int64) error {
	if Allowed(actor.Role, op) {
		return nil
	}
	cause := fmt.Errorf("%w: role %q may not perform %s", domainErrors.ErrForbidden, actor.Role, op)
	return g.Deny(ctx, actor, op, entityType, entityID, cause)
}

// Deny audits a refused attempt and returns cause, which must wrap ErrForbidden.
func (g *Guard) Deny(ctx context.Context, actor model.Actor, op Operation, entityType string, entityID int64, cause error) error {
	g.logger.Warn("operation denied",
		slog.Int64("actor_id", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.String("operation", string(op)),
		slog.String("reason", cause.Error()),
	)
	g.audit.Record(ctx, model.AuditEntry{
		ActorID:    actor.ID,
		Action:     "denied:" + string(op),
		EntityType: entityType,
		EntityID:   entityID,
		Details:    map[string]any{"role": string(actor.Role), "reason": cause.Error()},
	})
	return cause
}

// Record writes a post-commit activity entry.
func (g *Guard) Record(ctx context.Context, actor model.Actor, op Operation, entityType string, entityID int64, details map[string]any) {
	g.audit.Record(ctx, model.AuditEntry{
		ActorID:    actor.ID,
		Action:     string(op),
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

func notRelated(what string) error {
	return fmt.Errorf("%w: %s", domainErrors.ErrForbidden, what)
}
