package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// rateWindow 单个客户端的固定窗口状态
type rateWindow struct {
	count int
	start time.Time
}

// RateLimitService 按客户端限流：每 W 秒窗口内最多 K 次请求
type RateLimitService struct {
	maxRequests int
	window      time.Duration
	mu          sync.Mutex
	windows     map[string]*rateWindow
	logger      *zap.Logger
}

// NewRateLimitService 创建限流服务
func NewRateLimitService(maxRequests int, window time.Duration, logger *zap.Logger) *RateLimitService {
	s := &RateLimitService{
		maxRequests: maxRequests,
		window:      window,
		windows:     make(map[string]*rateWindow),
		logger:      logger,
	}

	// 启动过期窗口清理
	go s.cleaner()

	return s
}

// Admit 申请准入。拒绝时返回距窗口重置的等待时间。
// 整个判定在锁内完成：同一客户端并发请求不会都占到最后一个名额。
func (s *RateLimitService) Admit(clientID string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[clientID]
	if !ok || now.Sub(w.start) >= s.window {
		s.windows[clientID] = &rateWindow{count: 1, start: now}
		return true, 0
	}

	if w.count < s.maxRequests {
		w.count++
		return true, 0
	}

	// 超限请求不计数，不影响下一个窗口
	retryAfter := s.window - now.Sub(w.start)
	s.logger.Debug("请求被限流",
		zap.String("clientId", clientID),
		zap.Duration("retryAfter", retryAfter))
	return false, retryAfter
}

// cleaner 定期移除早已过期的窗口
func (s *RateLimitService) cleaner() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.sweep(time.Now())
	}
}

// sweep 移除超过两个窗口周期未活动的客户端
func (s *RateLimitService) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for clientID, w := range s.windows {
		if now.Sub(w.start) >= 2*s.window {
			delete(s.windows, clientID)
		}
	}
}
