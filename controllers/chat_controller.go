package controllers

import (
	"net/http"

	"dietvision/logger"
	"dietvision/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatController struct {
	Svc *services.ChatService
}

func NewChatController(svc *services.ChatService) *ChatController {
	return &ChatController{Svc: svc}
}

// POST /chat {"message": "..."}
func (h *ChatController) Send(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reply, err := h.Svc.Reply(c.Request.Context(), sess, req.Message)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("chat reply failed", zap.String("email", sess.Email), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Error generating response"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// GET /chat/history
func (h *ChatController) History(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.Chat()})
}

// DELETE /chat/history
func (h *ChatController) Clear(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		return
	}
	sess.ClearChat()
	c.Status(http.StatusNoContent)
}
