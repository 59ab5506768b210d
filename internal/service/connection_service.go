package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

var (
	ErrSessionOffline = fmt.Errorf("会话不在线")
)

// ConnectionService 在线 WebSocket 连接管理
type ConnectionService struct {
	conns  map[string]*model.ClientConn // sessionId -> conn
	mu     sync.RWMutex                 // 读写锁保护
	logger *zap.Logger
}

// NewConnectionService 创建连接管理服务
func NewConnectionService(logger *zap.Logger) *ConnectionService {
	s := &ConnectionService{
		conns:  make(map[string]*model.ClientConn),
		logger: logger,
	}

	// 启动心跳检测
	go s.heartbeatChecker()

	return s
}

// Register 注册连接，同会话重连时关闭旧连接
func (s *ConnectionService) Register(sessionID string, conn *websocket.Conn, clientIP string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conns[sessionID]; ok {
		s.logger.Info("会话重新连接，关闭旧连接",
			zap.String("sessionId", sessionID))
		existing.Conn.Close()
	}

	s.conns[sessionID] = model.NewClientConn(sessionID, conn, clientIP)

	s.logger.Info("连接注册成功",
		zap.String("sessionId", sessionID),
		zap.String("clientIp", clientIP))
}

// Send 向指定会话发送消息
func (s *ConnectionService) Send(sessionID string, message interface{}) error {
	s.mu.RLock()
	conn, ok := s.conns[sessionID]
	s.mu.RUnlock()

	if !ok {
		return ErrSessionOffline
	}

	if err := conn.WriteMessage(message); err != nil {
		s.logger.Error("消息发送失败",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		// 异步清理无效连接
		go s.Remove(sessionID)
		return err
	}

	return nil
}

// UpdateHeartbeat 更新心跳时间
func (s *ConnectionService) UpdateHeartbeat(sessionID string) bool {
	s.mu.RLock()
	conn, ok := s.conns[sessionID]
	s.mu.RUnlock()

	if !ok {
		return false
	}

	conn.UpdateHeartbeat()
	return true
}

// Remove 移除连接
func (s *ConnectionService) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[sessionID]; ok {
		delete(s.conns, sessionID)
		s.logger.Info("连接已移除", zap.String("sessionId", sessionID))
	}
}

// OnlineCount 在线连接数
func (s *ConnectionService) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// heartbeatChecker 心跳检测器
func (s *ConnectionService) heartbeatChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()

		now := time.Now()
		for sessionID, conn := range s.conns {
			if conn.HeartbeatAge(now) <= 60*time.Second {
				continue
			}

			conn.IncrementMissedBeats()
			if conn.ShouldBeCleaned() {
				s.logger.Info("清理无效连接",
					zap.String("sessionId", sessionID))
				conn.Conn.Close()
				delete(s.conns, sessionID)
			} else {
				s.logger.Warn("会话心跳丢失",
					zap.String("sessionId", sessionID))
			}
		}

		s.mu.Unlock()
	}
}
