package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/minsnailee/llm-detective/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// periodToHours は期間指定のクエリパラメータを時間数に変換します。
func periodToHours(period string) int {
	switch period {
	case "1h":
		return 1
	case "24h":
		return 24
	case "7d":
		return 24 * 7
	default:
		return 24
	}
}

// GetLogs は集計されたログデータを返します。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours := periodToHours(c.DefaultQuery("period", "24h"))
	data := h.Service.GetDashboardData(hours)
	c.JSON(http.StatusOK, data)
}

// ExportLogs はリクエストログをExcelワークブックとしてダウンロードさせます。
func (h *MonitoringHandler) ExportLogs(c *gin.Context) {
	hours := periodToHours(c.DefaultQuery("period", "24h"))
	entries := h.Service.RecentEntries(hours)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Excelファイルのクローズに失敗: %v", err)
		}
	}()

	const sheet = "RequestLogs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "エクスポートの作成に失敗しました: " + err.Error()})
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Timestamp", "Method", "Path", "StatusCode", "ResponseTimeMs"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.Timestamp.Format(time.RFC3339),
			entry.Method,
			entry.Path,
			entry.StatusCode,
			entry.ResponseTime.Milliseconds(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	fileName := fmt.Sprintf("request_logs_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Printf("Excelファイルの書き込みに失敗: %v", err)
	}
}
