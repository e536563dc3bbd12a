package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

type WebSocketController struct {
	chatbotService *services.ChatbotService
	logger         *zap.Logger
}

func NewWebSocketController(chatbotService *services.ChatbotService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		chatbotService: chatbotService,
		logger:         logger,
	}
}

// HandleWebSocket runs a realtime chat loop over one connection. Frames are
// ChatRequest JSON; replies are the same ChatResponse payloads as /chat, so
// a dialog started over HTTP can continue over the socket.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			wc.logger.Debug("websocket read ended", zap.Error(err))
			break
		}

		response, err := wc.chatbotService.ProcessMessage(c.Request.Context(), req)
		if err != nil {
			msg := "Failed to process message"
			if err == services.ErrEmptyMessage {
				msg = "Empty message"
			}
			if err := conn.WriteJSON(gin.H{"error": msg}); err != nil {
				break
			}
			continue
		}

		if err := conn.WriteJSON(response); err != nil {
			break
		}
	}
}
