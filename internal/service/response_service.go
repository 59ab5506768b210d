package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/supportbot/chatbot-go/internal/client"
	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

// Completer 外部补全服务的窄接口，便于用假实现测试回退与超时逻辑
type Completer interface {
	Complete(ctx context.Context, messages []client.Message) (string, error)
	Configured() bool
}

// fallbackResponses 按意图的固定回退话术，每个意图保证非空
var fallbackResponses = map[model.Intent]string{
	model.IntentReturnRefund:      "I understand you want to return or request a refund. Please provide your order number and the reason for your request. I'll help you with the process.",
	model.IntentTechnicalSupport:  "I understand you're experiencing a technical issue. Our support team will be happy to help you resolve this. Please provide more details about the problem, including any error messages you're seeing.",
	model.IntentBilling:           "I can help you with billing questions. Could you please provide your account number or describe the specific billing issue you're experiencing? I'll make sure to get this resolved for you.",
	model.IntentProductInfo:       "I'd be happy to provide information about our products. What specific details would you like to know? I can help with features, pricing, or comparisons.",
	model.IntentComplaint:         "I'm sorry to hear about your experience. I want to help resolve this issue and ensure it doesn't happen again. Could you please provide more details about what happened?",
	model.IntentFeedback:          "Thank you for your feedback! We value your input and use it to improve our services. Could you please elaborate on your suggestions?",
	model.IntentAccountManagement: "I can help you with account-related questions. What specific account issue are you experiencing? I'll guide you through the process.",
	model.IntentGeneralInquiry:    "Hello! I'm here to help you with any questions or concerns. How can I assist you today?",
}

// intentSuggestions 按意图的推荐后续动作
var intentSuggestions = map[model.Intent][]string{
	model.IntentReturnRefund: {
		"Please provide your order number and reason for return/refund",
		"Check your order history for return/refund policies",
		"Contact our customer service for assistance",
	},
	model.IntentTechnicalSupport: {
		"Provide error messages or screenshots",
		"Describe what you were doing when the issue occurred",
		"Check if the issue happens on different devices",
	},
	model.IntentBilling: {
		"Have your account number ready",
		"Check your recent invoices",
		"Verify payment method details",
	},
	model.IntentProductInfo: {
		"Ask about specific features",
		"Request product comparisons",
		"Get pricing information",
	},
}

const systemPromptTemplate = `You are a professional, helpful customer support AI assistant.

User's Intent: %s
Sentiment: %s (polarity: %.2f)
Entities Detected: %s

GUIDELINES:
- Always address the user's specific intent first; never give generic responses to a specific issue
- Keep responses concise and professional (under 150 words)
- If sentiment is negative, be extra empathetic and helpful
- Ask for the specific details needed to help (order numbers, account info, etc.)
- Offer to escalate to human support if needed`

// ResponseService 回复生成：优先调用外部补全服务，失败时回退到固定话术
type ResponseService struct {
	completer Completer
	timeout   time.Duration
	healthy   atomic.Bool
	logger    *zap.Logger
}

// NewResponseService 创建回复生成服务
func NewResponseService(completer Completer, timeout time.Duration, logger *zap.Logger) *ResponseService {
	s := &ResponseService{
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
	s.healthy.Store(completer != nil && completer.Configured())
	return s
}

// Generate 生成回复。外部调用只尝试一次、受超时约束，任何失败都回退；
// 返回值永远非空。
func (s *ResponseService) Generate(ctx context.Context, query model.Query, classification model.ClassificationResult, history []model.ConversationTurn) (string, model.ResponseSource) {
	if s.completer == nil || !s.completer.Configured() {
		return s.fallback(classification), model.SourceFallback
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completer.Complete(callCtx, s.buildMessages(query, classification, history))
	if err != nil {
		s.healthy.Store(false)
		s.logger.Warn("补全调用失败，使用回退话术",
			zap.String("sessionId", query.SessionID),
			zap.Error(err))
		return s.fallback(classification), model.SourceFallback
	}

	s.healthy.Store(true)
	return text, model.SourceLLM
}

// buildMessages 组装补全请求：系统提示 + 会话上下文 + 当前查询
func (s *ResponseService) buildMessages(query model.Query, classification model.ClassificationResult, history []model.ConversationTurn) []client.Message {
	entityDesc := "none"
	if len(classification.Entities) > 0 {
		entityDesc = ""
		for i, e := range classification.Entities {
			if i > 0 {
				entityDesc += ", "
			}
			entityDesc += fmt.Sprintf("%s: %s", e.Type, e.Text)
		}
	}

	messages := []client.Message{{
		Role: "system",
		Content: fmt.Sprintf(systemPromptTemplate,
			classification.Intent, classification.Sentiment, classification.Polarity, entityDesc),
	}}

	for _, turn := range history {
		messages = append(messages, client.Message{Role: turn.Role, Content: turn.Text})
	}

	messages = append(messages, client.Message{Role: "user", Content: query.Text})
	return messages
}

// fallback 按意图查表取回退话术，负面情绪时附加安抚前缀
func (s *ResponseService) fallback(classification model.ClassificationResult) string {
	text, ok := fallbackResponses[classification.Intent]
	if !ok {
		text = fallbackResponses[model.IntentGeneralInquiry]
	}

	if classification.Intent == model.IntentGeneralInquiry && classification.Sentiment == model.SentimentNegative {
		text = "I understand this is frustrating and I want to help resolve it quickly. " + text
	}

	return text
}

// Suggestions 生成最多三条与意图和情绪相关的建议
func (s *ResponseService) Suggestions(intent model.Intent, sentiment model.Sentiment) []string {
	suggestions := append([]string{}, intentSuggestions[intent]...)
	if sentiment == model.SentimentNegative {
		suggestions = append(suggestions, "I'm here to help resolve this issue")
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// Healthy 外部补全服务当前是否可用
func (s *ResponseService) Healthy() bool {
	return s.healthy.Load()
}

// Configured 是否配置了外部补全服务
func (s *ResponseService) Configured() bool {
	return s.completer != nil && s.completer.Configured()
}
