package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time
	Path         string
	Method       string
	StatusCode   int
	ResponseTime time.Duration
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	logs []LogEntry
	mu   sync.RWMutex
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs: make([]LogEntry, 0),
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
// 管理・モニタリング系のパスは集計から除外します。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		})
	}
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []map[string]interface{} `json:"requestsOverTime"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      map[string]int           `json:"statusCodes"`
	AvgResponseTimes map[string]float64       `json:"avgResponseTimes"`
	RecentErrors     []LogEntry               `json:"recentErrors"`
}

// RecentEntries は指定時間内のログエントリを時系列順で返します。
func (s *MonitoringService) RecentEntries(periodHours int) []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-time.Duration(periodHours) * time.Hour)
	var entries []LogEntry
	for _, entry := range s.logs {
		if entry.Timestamp.After(cutoff) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	entries := s.RecentEntries(periodHours)

	data := DashboardData{
		RequestsOverTime: make([]map[string]interface{}, 0),
		Endpoints:        make(map[string]int),
		StatusCodes:      make(map[string]int),
		AvgResponseTimes: make(map[string]float64),
		RecentErrors:     make([]LogEntry, 0),
	}

	hourly := make(map[string]int)
	totalTimes := make(map[string]time.Duration)
	for _, entry := range entries {
		hour := entry.Timestamp.Format("2006-01-02 15:00")
		hourly[hour]++

		endpoint := entry.Method + " " + entry.Path
		data.Endpoints[endpoint]++
		totalTimes[endpoint] += entry.ResponseTime

		switch {
		case entry.StatusCode < 300:
			data.StatusCodes["2xx"]++
		case entry.StatusCode < 400:
			data.StatusCodes["3xx"]++
		case entry.StatusCode < 500:
			data.StatusCodes["4xx"]++
		default:
			data.StatusCodes["5xx"]++
		}

		if entry.StatusCode >= 400 {
			data.RecentErrors = append(data.RecentErrors, entry)
		}
	}

	for hour, count := range hourly {
		data.RequestsOverTime = append(data.RequestsOverTime, map[string]interface{}{
			"time":  hour,
			"count": count,
		})
	}

	for endpoint, total := range totalTimes {
		count := data.Endpoints[endpoint]
		if count > 0 {
			data.AvgResponseTimes[endpoint] = float64(total.Milliseconds()) / float64(count)
		}
	}

	// 直近のエラーのみ残す
	const maxErrors = 20
	if len(data.RecentErrors) > maxErrors {
		data.RecentErrors = data.RecentErrors[len(data.RecentErrors)-maxErrors:]
	}

	return data
}
