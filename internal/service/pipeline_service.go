package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/supportbot/chatbot-go/internal/metrics"
	"github.com/supportbot/chatbot-go/internal/model"
	"github.com/supportbot/chatbot-go/internal/nlp"
	"go.uber.org/zap"
)

// maxMessageLength 入站消息长度上限（字节）
const maxMessageLength = 4096

// PipelineService 查询处理管线：
// 准入 → 分类/实体/情感 → 会话上下文 → 生成回复 → 记录统计
type PipelineService struct {
	rateLimiter *RateLimitService
	store       ConversationStore
	analytics   *AnalyticsService
	responder   *ResponseService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewPipelineService 创建查询管线。metrics 可为 nil（测试场景）。
func NewPipelineService(
	rateLimiter *RateLimitService,
	store ConversationStore,
	analytics *AnalyticsService,
	responder *ResponseService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		rateLimiter: rateLimiter,
		store:       store,
		analytics:   analytics,
		responder:   responder,
		metrics:     m,
		logger:      logger,
	}
}

// Process 处理一次查询请求。
// 非法输入与限流拒绝在进入管线前返回，不产生任何统计或会话副作用。
func (p *PipelineService) Process(ctx context.Context, req model.ChatRequest, clientID string) (*model.ChatResponse, error) {
	start := time.Now()

	message := nlp.Preprocess(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	if allowed, retryAfter := p.rateLimiter.Admit(clientID, start); !allowed {
		if p.metrics != nil {
			p.metrics.RecordRateLimited()
		}
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "session_" + uuid.New().String()
	}

	query := model.Query{
		Text:      message,
		ClientID:  clientID,
		SessionID: sessionID,
		Timestamp: start,
	}

	entities := nlp.ExtractEntities(message)
	sentiment, polarity := nlp.ScoreSentiment(message)
	intent, confidence := nlp.ClassifyIntent(message, entities)

	classification := model.ClassificationResult{
		Intent:     intent,
		Confidence: confidence,
		Entities:   entities,
		Sentiment:  sentiment,
		Polarity:   polarity,
	}

	p.logger.Info("查询分类完成",
		zap.String("sessionId", sessionID),
		zap.String("intent", string(intent)),
		zap.Float64("confidence", confidence),
		zap.String("sentiment", string(sentiment)),
		zap.Int("entities", len(entities)))

	// 先写入用户轮次，取窗口内上下文；存储失败降级为无上下文继续
	windowed, err := p.store.Append(ctx, sessionID, model.ConversationTurn{
		Role:      "user",
		Text:      message,
		Timestamp: start,
	})
	if err != nil {
		p.logger.Warn("写入会话历史失败，继续无上下文处理",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		windowed = nil
	}

	// 提示词上下文不包含刚写入的当前消息；新会话可用请求自带的上下文
	var history []model.ConversationTurn
	if len(windowed) > 1 {
		history = windowed[:len(windowed)-1]
	} else if len(req.Context) > 0 {
		history = req.Context
	}

	responseText, source := p.responder.Generate(ctx, query, classification, history)

	if _, err := p.store.Append(ctx, sessionID, model.ConversationTurn{
		Role:      "assistant",
		Text:      responseText,
		Timestamp: time.Now(),
	}); err != nil {
		p.logger.Warn("写入回复轮次失败",
			zap.String("sessionId", sessionID),
			zap.Error(err))
	}

	latency := time.Since(start)
	queryID := p.analytics.Record(model.QueryEvent{
		SessionID:   sessionID,
		Intent:      intent,
		Sentiment:   sentiment,
		Latency:     latency,
		EntitiesLen: len(entities),
		Source:      source,
		Timestamp:   start,
	})

	if p.metrics != nil {
		p.metrics.RecordQuery(string(intent), string(sentiment), latency, source == model.SourceFallback)
	}

	if entities == nil {
		entities = []model.Entity{}
	}

	return &model.ChatResponse{
		Response:     responseText,
		Intent:       intent,
		Sentiment:    sentiment,
		Entities:     entities,
		ResponseTime: latency.Seconds(),
		QueryID:      queryID,
		SessionID:    sessionID,
		Timestamp:    start.UTC().Format(time.RFC3339),
		Suggestions:  p.responder.Suggestions(intent, sentiment),
		Source:       string(source),
	}, nil
}
