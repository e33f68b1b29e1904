package handlers

import (
	"github.com/gin-gonic/gin"
)

// PushHandler upgrades authenticated clients to the websocket feed.
type PushHandler struct {
	hub PushHub
}

func NewPushHandler(hub PushHub) *PushHandler {
	return &PushHandler{hub: hub}
}

// Serve handles GET /api/ws. The upgrader writes its own error response.
func (h *PushHandler) Serve(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request, CurrentActor(c).ID); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}
