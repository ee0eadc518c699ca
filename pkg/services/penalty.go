package services

import "strings"

// PenalizeQuestion は発話1件の品質減点を計算します。戻り値は常に0以下です。
// 該当する条件の減点はすべて加算されます。ただし定型相槌の減点は
// 複数パターンに同時一致しても一度だけ適用します。
func PenalizeQuestion(text string) int {
	stripped := strings.TrimSpace(text)
	penalty := 0

	length := len([]rune(stripped))
	if length < 3 {
		penalty -= 60
	} else if length < 5 {
		penalty -= 35
	}

	if jamoOnlyPattern.MatchString(stripped) {
		penalty -= 50
	}
	if isRepeatedChar(stripped) {
		penalty -= 30
	}
	if isFillerUtterance(stripped) {
		penalty -= 50
	}
	if len(Tokenize(stripped)) < 2 {
		penalty -= 25
	}

	return penalty
}

// PenalizeQuestionCoarse は trivial/meaningful の区別を使わない
// ヒューリスティックエンジン向けの粗い減点です。
func PenalizeQuestionCoarse(text string) int {
	stripped := strings.TrimSpace(text)
	penalty := 0

	if len([]rune(stripped)) < 5 {
		penalty -= 30
	}
	if jamoOnlyPattern.MatchString(stripped) {
		penalty -= 40
	}
	if isRepeatedChar(stripped) {
		penalty -= 20
	}

	return penalty
}
