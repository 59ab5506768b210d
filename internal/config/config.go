package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	RateLimit    RateLimitConfig    `yaml:"rateLimit"`
	Conversation ConversationConfig `yaml:"conversation"`
	Redis        RedisConfig        `yaml:"redis"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
}

// OpenAIConfig 外部补全服务配置
type OpenAIConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"maxTokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	MaxRequests   int `yaml:"maxRequests"`
	WindowSeconds int `yaml:"windowSeconds"`
}

// ConversationConfig 会话配置
type ConversationConfig struct {
	Store             string `yaml:"store"` // memory, redis
	WindowSize        int    `yaml:"windowSize"`
	SessionTTLMinutes int    `yaml:"sessionTtlMinutes"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// LoadConfig 加载配置文件，环境变量覆盖敏感项
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量优先（API Key 不放进配置文件）
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5001
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 150
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.OpenAI.TimeoutSeconds == 0 {
		c.OpenAI.TimeoutSeconds = 10
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Conversation.Store == "" {
		c.Conversation.Store = "memory"
	}
	if c.Conversation.WindowSize == 0 {
		c.Conversation.WindowSize = 20
	}
	if c.Conversation.SessionTTLMinutes == 0 {
		c.Conversation.SessionTTLMinutes = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// CompletionTimeout 补全调用超时时间
func (c *OpenAIConfig) CompletionTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Window 限流窗口时长
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// SessionTTL 会话不活跃过期时长
func (c *ConversationConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
