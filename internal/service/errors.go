package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyMessage 消息为空
	ErrEmptyMessage = errors.New("消息不能为空")
	// ErrMessageTooLong 消息超长
	ErrMessageTooLong = errors.New("消息超出长度限制")
)

// RateLimitError 限流拒绝，携带重试等待时间
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("请求被限流，%.0f 秒后重试", e.RetryAfter.Seconds())
}
