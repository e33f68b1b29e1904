package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/server/http/dto"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "Stripe-Signature"
)

// LedgerHandler serves payouts, checkout, payment callbacks and the audit log.
type LedgerHandler struct {
	facade LedgerFacade
}

// NewLedgerHandler constructs ledger handler.
func NewLedgerHandler(facade LedgerFacade) *LedgerHandler {
	return &LedgerHandler{facade: facade}
}

// Payouts handles GET /api/payouts.
func (h *LedgerHandler) Payouts(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	payouts, err := h.facade.Payouts(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPayoutResponses(payouts))
}

// UpdatePayout handles PATCH /api/payouts/:id.
func (h *LedgerHandler) UpdatePayout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePayoutRequest
	if !bindJSON(c, &req) {
		return
	}
	payout, err := h.facade.UpdatePayoutStatus(c.Request.Context(), CurrentActor(c), id, model.PayoutStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPayoutResponse(payout))
}

// Checkout handles POST /api/orders/:id/checkout.
func (h *LedgerHandler) Checkout(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.facade.Checkout(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

// Webhook handles POST /api/payments/webhook.
func (h *LedgerHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "payload too large"})
		return
	}
	if err := h.facade.HandlePaymentWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Audit handles GET /api/audit.
func (h *LedgerHandler) Audit(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	entries, err := h.facade.AuditLog(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuditEntryResponses(entries))
}
