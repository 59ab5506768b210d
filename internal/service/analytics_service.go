package service

import (
	"sync"
	"time"

	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

// defaultRecordCapacity 保留的已完成查询记录上限
const defaultRecordCapacity = 1000

// AnalyticsService 运行期统计聚合。
// 计数器与均值用增量公式维护，内存占用与查询总量无关；
// 记录环有界，供管理接口回溯最近的查询。
// 所有字段由单个互斥锁保护，快照读不会看到撕裂的中间状态。
type AnalyticsService struct {
	mu              sync.Mutex
	total           int64
	meanLatency     float64 // 秒
	sentimentCounts map[model.Sentiment]int64
	intentCounts    map[model.Intent]int64
	records         []model.ConversationRecord
	capacity        int
	startedAt       time.Time
	logger          *zap.Logger
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		sentimentCounts: make(map[model.Sentiment]int64),
		intentCounts:    make(map[model.Intent]int64),
		capacity:        defaultRecordCapacity,
		startedAt:       time.Now(),
		logger:          logger,
	}
}

// Record 记录一次完成的查询，返回其全局查询序号。
// 记录要么完整生效要么完全不生效，不存在部分计数。
func (s *AnalyticsService) Record(event model.QueryEvent) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	latency := event.Latency.Seconds()
	s.meanLatency += (latency - s.meanLatency) / float64(s.total)
	s.sentimentCounts[event.Sentiment]++
	s.intentCounts[event.Intent]++

	record := model.ConversationRecord{
		Timestamp:     event.Timestamp,
		SessionID:     event.SessionID,
		Intent:        event.Intent,
		Sentiment:     event.Sentiment,
		ResponseTime:  latency,
		QueryID:       s.total,
		EntitiesCount: event.EntitiesLen,
	}
	if len(s.records) == s.capacity {
		copy(s.records, s.records[1:])
		s.records = s.records[:s.capacity-1]
	}
	s.records = append(s.records, record)

	return s.total
}

// Snapshot 返回一致的统计快照
func (s *AnalyticsService) Snapshot() model.AnalyticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sentiments := make(map[model.Sentiment]int64, len(s.sentimentCounts))
	for k, v := range s.sentimentCounts {
		sentiments[k] = v
	}
	intents := make(map[model.Intent]int64, len(s.intentCounts))
	for k, v := range s.intentCounts {
		intents[k] = v
	}

	return model.AnalyticsSnapshot{
		TotalQueries:        s.total,
		AvgResponseTime:     s.meanLatency,
		SentimentCounts:     sentiments,
		IntentCounts:        intents,
		ConversationsStored: len(s.records),
		StartedAt:           s.startedAt,
	}
}

// RecentRecords 返回最近 limit 条记录（时间先后顺序）
func (s *AnalyticsService) RecentRecords(limit int) []model.ConversationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]model.ConversationRecord, limit)
	copy(out, s.records[len(s.records)-limit:])
	return out
}

// SessionSummary 汇总某个会话的记录，会话未知时返回 false
func (s *AnalyticsService) SessionSummary(sessionID string) (model.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := model.SessionSummary{SessionID: sessionID}
	for _, r := range s.records {
		if r.SessionID != sessionID {
			continue
		}
		if summary.Conversations == 0 || r.Timestamp.Before(summary.StartTime) {
			summary.StartTime = r.Timestamp
		}
		if r.Timestamp.After(summary.LastActivity) {
			summary.LastActivity = r.Timestamp
		}
		summary.Conversations++
		summary.Intents = append(summary.Intents, r.Intent)
		summary.Sentiments = append(summary.Sentiments, r.Sentiment)
	}

	return summary, summary.Conversations > 0
}

// SessionStats 记录环中的会话数与平均会话长度
func (s *AnalyticsService) SessionStats() (int, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make(map[string]bool)
	for _, r := range s.records {
		if r.SessionID != "" {
			sessions[r.SessionID] = true
		}
	}
	if len(sessions) == 0 {
		return 0, 0
	}
	return len(sessions), float64(len(s.records)) / float64(len(sessions))
}
