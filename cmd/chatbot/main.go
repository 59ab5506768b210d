package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/supportbot/chatbot-go/internal/client"
	"github.com/supportbot/chatbot-go/internal/config"
	"github.com/supportbot/chatbot-go/internal/handler"
	"github.com/supportbot/chatbot-go/internal/metrics"
	"github.com/supportbot/chatbot-go/internal/middleware"
	"github.com/supportbot/chatbot-go/internal/service"
	"github.com/supportbot/chatbot-go/pkg/logger"
	"github.com/supportbot/chatbot-go/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	// .env 仅用于本地开发，缺失可忽略
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/chatbot.yaml"
	}

	// 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化日志
	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("chatbot 服务启动中...")

	// 初始化补全服务客户端
	llmClient := client.NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		cfg.OpenAI.CompletionTimeout(),
		zapLogger,
	)
	if !llmClient.Configured() {
		zapLogger.Warn("未配置 OPENAI_API_KEY，所有回复将使用回退话术")
	}

	// 初始化会话存储
	var store service.ConversationStore
	switch cfg.Conversation.Store {
	case "redis":
		redisClient, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("连接 Redis 失败", zap.Error(err))
		}
		store = service.NewRedisConversationStore(redisClient, cfg.Conversation.WindowSize, cfg.Conversation.SessionTTL(), zapLogger)
		zapLogger.Info("使用 Redis 会话存储")
	default:
		store = service.NewMemoryConversationStore(cfg.Conversation.WindowSize, cfg.Conversation.SessionTTL(), zapLogger)
	}

	// 初始化服务
	m := metrics.NewMetrics()
	rateLimiter := service.NewRateLimitService(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window(), zapLogger)
	analytics := service.NewAnalyticsService(zapLogger)
	responder := service.NewResponseService(llmClient, cfg.OpenAI.CompletionTimeout(), zapLogger)
	pipeline := service.NewPipelineService(rateLimiter, store, analytics, responder, m, zapLogger)
	connections := service.NewConnectionService(zapLogger)

	// 初始化处理器
	chatHandler := handler.NewChatHandler(pipeline, analytics, responder, zapLogger)
	wsHandler := handler.NewWebSocketHandler(connections, pipeline, zapLogger)

	// 初始化路由
	r := gin.Default()
	r.Use(middleware.CORS())

	r.POST("/api/chat", chatHandler.Chat)
	r.GET("/api/analytics", chatHandler.Analytics)
	r.GET("/api/health", chatHandler.Health)
	r.GET("/api/conversations", chatHandler.Conversations)
	r.GET("/api/session/:id", chatHandler.SessionData)
	r.GET("/ws", wsHandler.HandleWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLogger.Info("chatbot 服务启动成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("conversationStore", cfg.Conversation.Store))

	if err := r.Run(addr); err != nil {
		zapLogger.Fatal("服务启动失败", zap.Error(err))
	}
}
