package model

import "time"

// ChatRequest /api/chat 请求体
type ChatRequest struct {
	Message   string             `json:"message"`
	SessionID string             `json:"session_id,omitempty"`
	Context   []ConversationTurn `json:"context,omitempty"`
}

// ChatResponse /api/chat 响应体
type ChatResponse struct {
	Response     string    `json:"response"`
	Intent       Intent    `json:"intent"`
	Sentiment    Sentiment `json:"sentiment"`
	Entities     []Entity  `json:"entities"`
	ResponseTime float64   `json:"response_time"` // 秒
	QueryID      int64     `json:"query_id"`
	SessionID    string    `json:"session_id"`
	Timestamp    string    `json:"timestamp"`
	Suggestions  []string  `json:"suggestions"`
	Source       string    `json:"source"`
}

// AnalyticsResponse /api/analytics 响应体
type AnalyticsResponse struct {
	TotalQueries          int64            `json:"total_queries"`
	AvgResponseTime       float64          `json:"avg_response_time"`
	Uptime                string           `json:"uptime"`
	SentimentDistribution map[string]int64 `json:"sentiment_distribution"`
	IntentDistribution    map[string]int64 `json:"intent_distribution"`
	ConversationsStored   int              `json:"conversations_stored"`
	LastUpdated           string           `json:"last_updated"`
}

// ConversationRecord 已完成查询的记录（管理/调试接口）
type ConversationRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	Intent        Intent    `json:"intent"`
	Sentiment     Sentiment `json:"sentiment"`
	ResponseTime  float64   `json:"response_time"`
	QueryID       int64     `json:"query_id"`
	EntitiesCount int       `json:"entities_count"`
}

// SessionSummary 单个会话的统计视图
type SessionSummary struct {
	SessionID     string      `json:"session_id"`
	Conversations int         `json:"conversations"`
	StartTime     time.Time   `json:"start_time"`
	LastActivity  time.Time   `json:"last_activity"`
	Intents       []Intent    `json:"intents"`
	Sentiments    []Sentiment `json:"sentiments"`
}

// WSMessage WebSocket 消息
type WSMessage struct {
	MessageID string `json:"messageId"`
	Type      string `json:"type"` // CHAT, HEARTBEAT, AI_RESPONSE
	Content   string `json:"content"`
	SessionID string `json:"sessionId,omitempty"`
}

// WSResponse WebSocket 回执
type WSResponse struct {
	Success   bool          `json:"success"`
	Type      string        `json:"type"` // AI_RESPONSE, ERROR
	MessageID string        `json:"messageId,omitempty"`
	Message   string        `json:"message,omitempty"`
	Payload   *ChatResponse `json:"payload,omitempty"`
}
