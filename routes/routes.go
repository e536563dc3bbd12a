package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/controllers"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/services"
)

func SetupRoutes(router *gin.Engine, chatbotService *services.ChatbotService, logger *zap.Logger) {
	// Initialize controllers
	chatbotController := controllers.NewChatbotController(chatbotService, logger)
	wsController := controllers.NewWebSocketController(chatbotService, logger)

	// Operator endpoints
	router.GET("/health", chatbotController.HealthCheck)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.POST("/chat", chatbotController.HandleChat)
		public.POST("/reset_session", chatbotController.ResetSession)

		// WebSocket for real-time chat
		public.GET("/ws", wsController.HandleWebSocket)
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}
