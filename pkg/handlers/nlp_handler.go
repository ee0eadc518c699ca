package handlers

import (
	"net/http"

	"github.com/minsnailee/llm-detective/pkg/models"
	"github.com/minsnailee/llm-detective/pkg/services"

	"github.com/gin-gonic/gin"
)

// NlpHandler はスコアリング関連の操作のハンドラです。
type NlpHandler struct {
	scoreService  *services.ScoreService
	defaultEngine string
}

// NewNlpHandler は新しいNlpHandlerを生成します。
func NewNlpHandler(scoreService *services.ScoreService, defaultEngine string) *NlpHandler {
	return &NlpHandler{
		scoreService:  scoreService,
		defaultEngine: defaultEngine,
	}
}

// Analyze はセッション全体の会話ログから5つのスキルスコアを算出します。
// エンジンはクエリパラメータ優先、なければボディの指定を使います。
// 不明な指定はsimilarityとして扱います。
func (h *NlpHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}

	if engine := c.Query("engine"); engine != "" {
		req.Engine = engine
	}
	if req.Engine == "" {
		req.Engine = h.defaultEngine
	}

	resp := h.scoreService.Analyze(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

// QuickScore は発話1件の即時フィードバック用の簡易採点を返します。
func (h *NlpHandler) QuickScore(c *gin.Context) {
	var req models.QuickScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, services.QuickScore(req.UserText))
}
