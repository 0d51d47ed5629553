package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/service"
	"dispatch/internal/telegram"
)

// WebhookHandler receives Telegram bot updates. Telegram retries any
// non-200 response, so the handler acknowledges every update and keeps
// failures server-side.
type WebhookHandler struct {
	dispatchService *service.DispatchService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(dispatchService *service.DispatchService) *WebhookHandler {
	return &WebhookHandler{dispatchService: dispatchService}
}

// HandleUpdate handles POST /v1/telegram/webhook
func (h *WebhookHandler) HandleUpdate(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Printf("webhook: discarding malformed update: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.dispatchService.HandleUpdate(c.Request.Context(), &update); err != nil {
		log.Printf("webhook: update %d not applied: %v", update.UpdateID, err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
