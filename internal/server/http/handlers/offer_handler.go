package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autotransit/internal/server/http/dto"
)

// OfferHandler serves marketplace bidding endpoints.
type OfferHandler struct {
	facade OfferFacade
}

// NewOfferHandler constructs offer handler.
func NewOfferHandler(facade OfferFacade) *OfferHandler {
	return &OfferHandler{facade: facade}
}

// Submit handles POST /api/orders/:id/offers.
func (h *OfferHandler) Submit(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	offer, err := h.facade.SubmitOffer(c.Request.Context(), CurrentActor(c), orderID, req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOfferResponse(offer))
}

// List handles GET /api/orders/:id/offers.
func (h *OfferHandler) List(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offers, err := h.facade.Offers(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOfferResponses(offers))
}

// Mine handles GET /api/offers.
func (h *OfferHandler) Mine(c *gin.Context) {
	offers, err := h.facade.MyOffers(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOfferResponses(offers))
}

// Compare handles GET /api/orders/:id/offers/comparison.
func (h *OfferHandler) Compare(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cmp, err := h.facade.CompareOffers(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewComparisonResponse(cmp))
}

// Accept handles POST /api/orders/:id/offers/:offerID/accept.
func (h *OfferHandler) Accept(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offerID, ok := pathID(c, "offerID")
	if !ok {
		return
	}
	order, offer, err := h.facade.AcceptOffer(c.Request.Context(), CurrentActor(c), orderID, offerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AcceptOfferResponse{
		Order: dto.NewOrderResponse(order),
		Offer: dto.NewOfferResponse(offer),
	})
}

// Reject handles POST /api/orders/:id/offers/:offerID/reject.
func (h *OfferHandler) Reject(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	offerID, ok := pathID(c, "offerID")
	if !ok {
		return
	}
	offer, err := h.facade.RejectOffer(c.Request.Context(), CurrentActor(c), orderID, offerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOfferResponse(offer))
}
