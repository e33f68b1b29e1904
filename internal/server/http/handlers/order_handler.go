package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/server/http/dto"
)

// OrderHandler serves order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs order handler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Quote handles GET /api/pricing/quote?price=.
func (h *OrderHandler) Quote(c *gin.Context) {
	gross, err := decimal.NewFromString(c.Query("price"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid price"})
		return
	}
	split, err := h.facade.Quote(c.Request.Context(), CurrentActor(c), gross)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPriceResponse(split))
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentActor(c), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponses(orders))
}

// Available handles GET /api/orders/available.
func (h *OrderHandler) Available(c *gin.Context) {
	orders, err := h.facade.AvailableOrders(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponses(orders))
}

// Statistics handles GET /api/orders/statistics.
func (h *OrderHandler) Statistics(c *gin.Context) {
	stats, err := h.facade.OrderStatistics(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStatisticsResponse(stats))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteOrder(c.Request.Context(), CurrentActor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Claim handles POST /api/orders/:id/claim.
func (h *OrderHandler) Claim(c *gin.Context) {
	h.transition(c, h.facade.ClaimOrder)
}

// Start handles POST /api/orders/:id/start.
func (h *OrderHandler) Start(c *gin.Context) {
	h.transition(c, h.facade.StartTransit)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.facade.CancelOrder)
}

// Assign handles POST /api/orders/:id/assign.
func (h *OrderHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.AssignDriver(c.Request.Context(), CurrentActor(c), id, req.DriverID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Complete handles POST /api/orders/:id/complete.
func (h *OrderHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, payout, err := h.facade.CompleteOrder(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CompleteOrderResponse{
		Order:  dto.NewOrderResponse(order),
		Payout: dto.NewPayoutResponse(payout),
	})
}

// Rate handles POST /api/orders/:id/rating.
func (h *OrderHandler) Rate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.facade.RateOrder(c.Request.Context(), CurrentActor(c), id, req.Rating, req.Feedback)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// DriverProfile handles GET /api/drivers/me/profile.
func (h *OrderHandler) DriverProfile(c *gin.Context) {
	profile, err := h.facade.DriverProfile(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDriverProfileResponse(profile))
}

type orderTransition func(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)

func (h *OrderHandler) transition(c *gin.Context, apply orderTransition) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := apply(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}
