package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

// RedisConversationStore Redis 版会话存储，每个会话一个列表，多实例部署时共享上下文
type RedisConversationStore struct {
	client     *redis.Client
	windowSize int
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewRedisConversationStore 创建 Redis 会话存储
func NewRedisConversationStore(client *redis.Client, windowSize int, sessionTTL time.Duration, logger *zap.Logger) *RedisConversationStore {
	return &RedisConversationStore{
		client:     client,
		windowSize: windowSize,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("chat_history:%s", sessionID)
}

// Append 追加一轮消息并裁剪到窗口大小
func (s *RedisConversationStore) Append(ctx context.Context, sessionID string, turn model.ConversationTurn) ([]model.ConversationTurn, error) {
	data, err := json.Marshal(turn)
	if err != nil {
		return nil, fmt.Errorf("序列化轮次失败: %w", err)
	}

	key := historyKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.windowSize), -1)
	pipe.Expire(ctx, key, s.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("写入会话历史失败: %w", err)
	}

	return s.Get(ctx, sessionID)
}

// Get 返回窗口内上下文
func (s *RedisConversationStore) Get(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	items, err := s.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取会话历史失败: %w", err)
	}

	turns := make([]model.ConversationTurn, 0, len(items))
	for _, item := range items {
		var turn model.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("跳过无法解析的历史记录",
				zap.String("sessionId", sessionID),
				zap.Error(err))
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
