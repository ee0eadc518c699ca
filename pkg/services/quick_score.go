package services

import (
	"fmt"
	"strings"

	"github.com/minsnailee/llm-detective/pkg/models"
)

// 疑問詞。発話単位の簡易採点で探究的な聞き方を加点するために使います。
var interrogatives = []string{"왜", "어떻게", "언제", "어디", "무엇", "누가"}

// extractKeywords は発話からキーワード候補を抽出します。
// 2文字以上のトークンを出現順に重複なしで最大limit件返します。
func extractKeywords(text string, limit int) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, tok := range Tokenize(text) {
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) >= limit {
			break
		}
	}
	return keywords
}

// QuickScore は発話1件の即時フィードバック用の簡易採点です。
// セッション全体の分析とは独立した固定ベースライン+語彙加点の方式で、
// 外部サービスを呼び出しません。
func QuickScore(text string) models.QuickScoreResponse {
	trimmed := strings.TrimSpace(text)
	keywords := extractKeywords(trimmed, 5)
	length := len([]rune(trimmed))

	logic := 60
	if strings.Contains(trimmed, "모순") || strings.Contains(trimmed, "알리바이") {
		logic += 10
	}
	if length < 6 {
		logic -= 10
	}

	focus := 65
	if len(keywords) <= 3 {
		focus += 5
	}

	diversity := 55
	for _, q := range interrogatives {
		if strings.Contains(trimmed, q) {
			diversity += 10
			break
		}
	}

	creativity := 55 + len(keywords)

	depth := 50
	if strings.Contains(trimmed, "왜") || strings.Contains(trimmed, "어떻게") {
		depth += 15
	}

	return models.QuickScoreResponse{
		Logic:      clampScore(float64(logic)),
		Creativity: clampScore(float64(creativity)),
		Focus:      clampScore(float64(focus)),
		Diversity:  clampScore(float64(diversity)),
		Depth:      clampScore(float64(depth)),
		Keywords:   keywords,
		Evidence: []string{
			fmt.Sprintf("키워드: %s", strings.Join(keywords, ", ")),
			fmt.Sprintf("길이: %d", length),
		},
	}
}
