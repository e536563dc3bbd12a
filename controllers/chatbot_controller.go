package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/database"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/services"
)

type ChatbotController struct {
	chatbotService *services.ChatbotService
	logger         *zap.Logger
}

func NewChatbotController(chatbotService *services.ChatbotService, logger *zap.Logger) *ChatbotController {
	return &ChatbotController{
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// HandleChat processes one chat message.
func (cc *ChatbotController) HandleChat(c *gin.Context) {
	var req models.ChatRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	response, err := cc.chatbotService.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Empty message",
			})
			return
		}

		cc.logger.Error("failed to process message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process message",
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResetSession clears a user's dialog state. Resetting an unknown user id
// still succeeds.
func (cc *ChatbotController) ResetSession(c *gin.Context) {
	var req models.ResetRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	message := "No active session found"
	if cc.chatbotService.ResetSession(req.UserID) {
		message = "Session reset successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
	})
}

// HealthCheck reports model and archive availability for operators.
func (cc *ChatbotController) HealthCheck(c *gin.Context) {
	status := cc.chatbotService.Status()
	status.Database = database.Status()
	c.JSON(http.StatusOK, status)
}
