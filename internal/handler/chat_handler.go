package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/chatbot-go/internal/model"
	"github.com/supportbot/chatbot-go/internal/service"
	"go.uber.org/zap"
)

// ChatHandler 查询管线 API 处理器
type ChatHandler struct {
	pipeline  *service.PipelineService
	analytics *service.AnalyticsService
	responder *service.ResponseService
	logger    *zap.Logger
	startedAt time.Time
}

// NewChatHandler 创建 API 处理器
func NewChatHandler(
	pipeline *service.PipelineService,
	analytics *service.AnalyticsService,
	responder *service.ResponseService,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		pipeline:  pipeline,
		analytics: analytics,
		responder: responder,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Chat 处理聊天请求
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resp, err := h.pipeline.Process(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		var rateErr *service.RateLimitError
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		case errors.Is(err, service.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message too long"})
		case errors.As(err, &rateErr):
			retryAfter := int(rateErr.RetryAfter.Seconds() + 0.5)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
		default:
			h.logger.Error("管线处理失败", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Analytics 返回运行统计
func (h *ChatHandler) Analytics(c *gin.Context) {
	snapshot := h.analytics.Snapshot()

	sentiments := make(map[string]int64, len(snapshot.SentimentCounts))
	for k, v := range snapshot.SentimentCounts {
		sentiments[string(k)] = v
	}
	intents := make(map[string]int64, len(snapshot.IntentCounts))
	for k, v := range snapshot.IntentCounts {
		intents[string(k)] = v
	}

	c.JSON(http.StatusOK, model.AnalyticsResponse{
		TotalQueries:          snapshot.TotalQueries,
		AvgResponseTime:       snapshot.AvgResponseTime,
		Uptime:                time.Since(h.startedAt).Truncate(time.Second).String(),
		SentimentDistribution: sentiments,
		IntentDistribution:    intents,
		ConversationsStored:   snapshot.ConversationsStored,
		LastUpdated:           time.Now().UTC().Format(time.RFC3339),
	})
}

// Health 健康检查，反映外部补全服务的可用性
func (h *ChatHandler) Health(c *gin.Context) {
	status := "ok"
	if !h.responder.Healthy() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"openai_integration": h.responder.Configured(),
	})
}

// Conversations 返回最近的查询记录（管理/调试接口）
func (h *ChatHandler) Conversations(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	records := h.analytics.RecentRecords(limit)
	sessions, avgLength := h.analytics.SessionStats()

	c.JSON(http.StatusOK, gin.H{
		"conversations": records,
		"total":         h.analytics.Snapshot().ConversationsStored,
		"summary": gin.H{
			"total_sessions":     sessions,
			"avg_session_length": avgLength,
		},
	})
}

// SessionData 返回指定会话的统计视图
func (h *ChatHandler) SessionData(c *gin.Context) {
	sessionID := c.Param("id")
	summary, ok := h.analytics.SessionSummary(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("session %s not found", sessionID)})
		return
	}

	c.JSON(http.StatusOK, summary)
}
