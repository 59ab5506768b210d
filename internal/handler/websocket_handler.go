package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/supportbot/chatbot-go/internal/model"
	"github.com/supportbot/chatbot-go/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境应该检查 Origin 白名单
		return true
	},
}

// WebSocketHandler WebSocket 聊天处理器
type WebSocketHandler struct {
	connections *service.ConnectionService
	pipeline    *service.PipelineService
	logger      *zap.Logger
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(connections *service.ConnectionService, pipeline *service.PipelineService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		connections: connections,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// HandleWebSocket WebSocket 连接入口
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = "session_" + uuid.New().String()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket 升级失败", zap.Error(err))
		return
	}
	defer conn.Close()

	clientIP := c.ClientIP()
	h.connections.Register(sessionID, conn, clientIP)
	defer h.connections.Remove(sessionID)

	h.logger.Info("WebSocket 连接建立",
		zap.String("sessionId", sessionID),
		zap.String("clientIp", clientIP))

	// 消息循环
	for {
		var msg model.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket 读取错误", zap.Error(err))
			}
			break
		}

		h.handleMessage(sessionID, clientIP, &msg)
	}

	h.logger.Info("WebSocket 连接断开", zap.String("sessionId", sessionID))
}

// handleMessage 处理单条消息
func (h *WebSocketHandler) handleMessage(sessionID, clientIP string, msg *model.WSMessage) {
	switch msg.Type {
	case "CHAT":
		// 异步跑管线，结果推回连接
		go h.processChat(sessionID, clientIP, msg)

	case "HEARTBEAT":
		h.connections.UpdateHeartbeat(sessionID)

	default:
		h.logger.Warn("未知消息类型",
			zap.String("sessionId", sessionID),
			zap.String("type", msg.Type))
	}
}

// processChat 通过管线处理聊天消息并推送回复
func (h *WebSocketHandler) processChat(sessionID, clientIP string, msg *model.WSMessage) {
	req := model.ChatRequest{
		Message:   msg.Content,
		SessionID: sessionID,
	}

	resp, err := h.pipeline.Process(context.Background(), req, clientIP)
	if err != nil {
		h.logger.Warn("WebSocket 消息处理失败",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		h.connections.Send(sessionID, model.WSResponse{
			Success:   false,
			Type:      "ERROR",
			MessageID: msg.MessageID,
			Message:   err.Error(),
		})
		return
	}

	h.connections.Send(sessionID, model.WSResponse{
		Success:   true,
		Type:      "AI_RESPONSE",
		MessageID: msg.MessageID,
		Payload:   resp,
	})
}
