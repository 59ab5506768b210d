package model

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 一条在线 WebSocket 连接
type ClientConn struct {
	SessionID     string
	Conn          *websocket.Conn
	ClientIP      string
	LastHeartbeat time.Time
	MissedBeats   int
	mu            sync.RWMutex // 保护连接字段
}

// NewClientConn 创建连接包装
func NewClientConn(sessionID string, conn *websocket.Conn, clientIP string) *ClientConn {
	return &ClientConn{
		SessionID:     sessionID,
		Conn:          conn,
		ClientIP:      clientIP,
		LastHeartbeat: time.Now(),
	}
}

// UpdateHeartbeat 更新心跳时间
func (c *ClientConn) UpdateHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastHeartbeat = time.Now()
	c.MissedBeats = 0
}

// IncrementMissedBeats 增加丢失心跳次数
func (c *ClientConn) IncrementMissedBeats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MissedBeats++
}

// ShouldBeCleaned 判断是否应该清理
func (c *ClientConn) ShouldBeCleaned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MissedBeats >= 3
}

// HeartbeatAge 距上次心跳的时长
func (c *ClientConn) HeartbeatAge(now time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return now.Sub(c.LastHeartbeat)
}

// WriteMessage 向 WebSocket 写入消息（线程安全）
func (c *ClientConn) WriteMessage(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(message)
}
