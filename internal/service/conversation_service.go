package service

import (
	"context"
	"sync"
	"time"

	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

// ConversationStore 按会话维护有界轮次历史
type ConversationStore interface {
	// Append 追加一轮消息，返回追加后的窗口内上下文（按时间先后排列）
	Append(ctx context.Context, sessionID string, turn model.ConversationTurn) ([]model.ConversationTurn, error)
	// Get 返回窗口内上下文（按时间先后排列）
	Get(ctx context.Context, sessionID string) ([]model.ConversationTurn, error)
}

// conversationSession 单个会话的状态，字段由自身互斥锁保护
type conversationSession struct {
	mu           sync.Mutex
	turns        []model.ConversationTurn
	lastActivity time.Time
}

// MemoryConversationStore 进程内会话存储。
// 会话表由读写锁保护，各会话的轮次由会话自身的锁保护，会话间完全并行。
type MemoryConversationStore struct {
	windowSize int
	sessionTTL time.Duration
	mu         sync.RWMutex
	sessions   map[string]*conversationSession
	logger     *zap.Logger
}

// NewMemoryConversationStore 创建内存会话存储
func NewMemoryConversationStore(windowSize int, sessionTTL time.Duration, logger *zap.Logger) *MemoryConversationStore {
	s := &MemoryConversationStore{
		windowSize: windowSize,
		sessionTTL: sessionTTL,
		sessions:   make(map[string]*conversationSession),
		logger:     logger,
	}

	// 启动不活跃会话清理
	go s.cleaner()

	return s
}

// Append 追加一轮消息，超出窗口时逐出最旧的一轮
func (s *MemoryConversationStore) Append(_ context.Context, sessionID string, turn model.ConversationTurn) ([]model.ConversationTurn, error) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, turn)
	if len(sess.turns) > s.windowSize {
		// FIFO 逐出，原地搬移避免底层数组无限增长
		copy(sess.turns, sess.turns[1:])
		sess.turns = sess.turns[:s.windowSize]
	}
	sess.lastActivity = time.Now()

	return copyTurns(sess.turns), nil
}

// Get 返回窗口内上下文
func (s *MemoryConversationStore) Get(_ context.Context, sessionID string) ([]model.ConversationTurn, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return copyTurns(sess.turns), nil
}

// SessionCount 当前会话数
func (s *MemoryConversationStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// getOrCreate 首次访问时创建会话
func (s *MemoryConversationStore) getOrCreate(sessionID string) *conversationSession {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &conversationSession{lastActivity: time.Now()}
	s.sessions[sessionID] = sess
	return sess
}

// cleaner 定期清理不活跃会话
func (s *MemoryConversationStore) cleaner() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		evicted := s.sweep(time.Now())
		if evicted > 0 {
			s.logger.Info("清理不活跃会话", zap.Int("count", evicted))
		}
	}
}

// sweep 逐出超过 TTL 未活动的会话，返回逐出数量
func (s *MemoryConversationStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for sessionID, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastActivity)
		sess.mu.Unlock()

		if idle >= s.sessionTTL {
			delete(s.sessions, sessionID)
			evicted++
		}
	}
	return evicted
}

func copyTurns(turns []model.ConversationTurn) []model.ConversationTurn {
	out := make([]model.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
