package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/server/http/dto"
)

// ProviderHandler serves provider registration and verification.
type ProviderHandler struct {
	facade ProviderFacade
}

// NewProviderHandler constructs provider handler.
func NewProviderHandler(facade ProviderFacade) *ProviderHandler {
	return &ProviderHandler{facade: facade}
}

// Register handles POST /api/providers.
func (h *ProviderHandler) Register(c *gin.Context) {
	var req dto.RegisterProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	provider, err := h.facade.RegisterProvider(c.Request.Context(), CurrentActor(c), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProviderResponse(provider))
}

// Mine handles GET /api/providers/me.
func (h *ProviderHandler) Mine(c *gin.Context) {
	provider, err := h.facade.MyProvider(c.Request.Context(), CurrentActor(c))
	h.single(c, provider, err)
}

// RequestReview handles POST /api/providers/me/review.
func (h *ProviderHandler) RequestReview(c *gin.Context) {
	provider, err := h.facade.RequestProviderReview(c.Request.Context(), CurrentActor(c))
	h.single(c, provider, err)
}

// Pending handles GET /api/providers/pending.
func (h *ProviderHandler) Pending(c *gin.Context) {
	providers, err := h.facade.PendingProviders(c.Request.Context(), CurrentActor(c))
	h.list(c, providers, err)
}

// Active handles GET /api/providers/active.
func (h *ProviderHandler) Active(c *gin.Context) {
	providers, err := h.facade.ActiveProviders(c.Request.Context(), CurrentActor(c))
	h.list(c, providers, err)
}

// Stats handles GET /api/providers/stats.
func (h *ProviderHandler) Stats(c *gin.Context) {
	stats, err := h.facade.NetworkStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewNetworkStatsResponse(stats))
}

// Verify handles POST /api/providers/:id/verify.
func (h *ProviderHandler) Verify(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	provider, err := h.facade.VerifyProvider(c.Request.Context(), CurrentActor(c), id)
	h.single(c, provider, err)
}

// Reject handles POST /api/providers/:id/reject.
func (h *ProviderHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RejectProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	provider, err := h.facade.RejectProvider(c.Request.Context(), CurrentActor(c), id, req.Reason)
	h.single(c, provider, err)
}

func (h *ProviderHandler) single(c *gin.Context, provider *model.Provider, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProviderResponse(provider))
}

func (h *ProviderHandler) list(c *gin.Context, providers []model.Provider, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProviderResponses(providers))
}
