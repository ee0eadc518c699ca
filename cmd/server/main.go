package main

import (
	"log"
	"net/http"

	config "github.com/minsnailee/llm-detective/configs"
	"github.com/minsnailee/llm-detective/pkg/handlers"
	"github.com/minsnailee/llm-detective/pkg/inference"
	"github.com/minsnailee/llm-detective/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// Ginルーターの初期化
	r := gin.Default()

	// サービスの初期化
	// 推論クライアントはここで一度だけ構築し、全リクエストで共有する
	monitoringService := services.NewMonitoringService()
	inferenceClient := inference.NewClient(
		cfg.InferenceEndpoint,
		cfg.InferenceAPIKey,
		cfg.EmbeddingModel,
		cfg.EntailmentModel,
	)
	scoreService := services.NewScoreService(inferenceClient)

	// ハンドラーの初期化
	nlpHandler := handlers.NewNlpHandler(scoreService, cfg.DefaultEngine)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	// 認証ミドルウェア
	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	// ヘルスチェックエンドポイント
	r.GET("/health", handlers.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		// スコアリングAPI
		nlp := v1.Group("/nlp")
		{
			nlp.POST("/analyze", nlpHandler.Analyze)  // セッション全体の分析
			nlp.POST("/score", nlpHandler.QuickScore) // 発話単位の簡易採点
		}

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
			monitoring.GET("/logs/export", monitoringHandler.ExportLogs)
		}
	}

	log.Printf("Starting llm-detective scoring server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
