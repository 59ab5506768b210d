package model

import "time"

// Intent 查询意图（闭集）
type Intent string

const (
	IntentReturnRefund      Intent = "return_refund"
	IntentTechnicalSupport  Intent = "technical_support"
	IntentBilling           Intent = "billing"
	IntentProductInfo       Intent = "product_info"
	IntentComplaint         Intent = "complaint"
	IntentFeedback          Intent = "feedback"
	IntentAccountManagement Intent = "account_management"
	IntentGeneralInquiry    Intent = "general_inquiry"
)

// AllIntents 意图优先级顺序（得分相同时靠前者胜出）
var AllIntents = []Intent{
	IntentReturnRefund,
	IntentTechnicalSupport,
	IntentBilling,
	IntentProductInfo,
	IntentComplaint,
	IntentFeedback,
	IntentAccountManagement,
	IntentGeneralInquiry,
}

// Sentiment 情感标签
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// EntityType 实体类型（闭集）
type EntityType string

const (
	EntityEmail         EntityType = "email"
	EntityPhone         EntityType = "phone"
	EntityOrderNumber   EntityType = "order_number"
	EntityAccountNumber EntityType = "account_number"
	EntityURL           EntityType = "url"
	EntityProductName   EntityType = "product_name"
	EntityErrorCode     EntityType = "error_code"
	EntityVersionNumber EntityType = "version_number"
)

// Entity 从文本中识别的结构化实体
type Entity struct {
	Type  EntityType `json:"type"`
	Text  string     `json:"text"`
	Start int        `json:"-"`
	End   int        `json:"-"`
}

// Query 一次入站查询，创建后不可变
type Query struct {
	Text      string
	ClientID  string
	SessionID string
	Timestamp time.Time
}

// ClassificationResult 对单次查询的完整分类结果
type ClassificationResult struct {
	Intent     Intent
	Confidence float64
	Entities   []Entity
	Sentiment  Sentiment
	Polarity   float64
}

// ConversationTurn 会话中的一轮消息
type ConversationTurn struct {
	Role      string    `json:"role"` // user, assistant
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseSource 回复来源
type ResponseSource string

const (
	SourceLLM      ResponseSource = "llm"
	SourceFallback ResponseSource = "fallback"
)

// QueryEvent 一次完成的查询，用于分析统计
type QueryEvent struct {
	SessionID    string
	Intent       Intent
	Sentiment    Sentiment
	Latency      time.Duration
	EntitiesLen  int
	Source       ResponseSource
	Timestamp    time.Time
}

// AnalyticsSnapshot 某一时刻的统计快照
type AnalyticsSnapshot struct {
	TotalQueries         int64
	AvgResponseTime      float64 // 秒
	SentimentCounts      map[Sentiment]int64
	IntentCounts         map[Intent]int64
	ConversationsStored  int
	StartedAt            time.Time
}
