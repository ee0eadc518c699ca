package services

import (
	"regexp"
	"strings"
)

// トークン＝小文字化したテキストから抽出した ハングル音節/英数字 の連続。
// 子音・母音だけのジャモ連打 (ㅋㅋㅋ, ㅏㅏ) はトークンに含めません。
var (
	tokenPattern       = regexp.MustCompile(`[가-힣a-zA-Z0-9]+`)
	jamoOnlyPattern    = regexp.MustCompile(`^[ㄱ-ㅎㅏ-ㅣ]+$`)
	questionRunPattern = regexp.MustCompile(`^[?？]+$`)
	punctuationPattern = regexp.MustCompile(`^[\p{P}\p{S}\p{Zs}]+$`)
)

// fillerWords 1〜2文字の相槌・つなぎ表現の固定セット。
// これ単体の発話は分析対象として意味を持たないため trivial 扱いにします。
var fillerWords = map[string]struct{}{
	"네": {}, "넵": {}, "예": {}, "응": {}, "어": {}, "음": {},
	"흠": {}, "아": {}, "오": {}, "와": {}, "헐": {}, "글쎄": {},
	"그래": {}, "그럼": {}, "ok": {}, "no": {},
}

// Tokenize はテキストを小文字化し、意味を持ちうるトークン列を抽出します。
// 空文字・空白のみの入力は空のスライスを返します。
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// TokenSet は Tokenize の結果を集合として返します。
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// isRepeatedChar は同一文字の3回以上の繰り返し (ㅋㅋㅋ, ???, ㅎㅎㅎㅎ) を判定します。
func isRepeatedChar(text string) bool {
	runes := []rune(text)
	if len(runes) < 3 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

// isFillerUtterance は定型の相槌・記号のみの発話を判定します。
func isFillerUtterance(text string) bool {
	if questionRunPattern.MatchString(text) {
		return true
	}
	if punctuationPattern.MatchString(text) {
		return true
	}
	_, ok := fillerWords[strings.ToLower(text)]
	return ok
}

// IsTrivialQuestion は発話が分析に値しない trivial なものかを判定します。
// 以下のいずれか1つでも該当すれば trivial です。
//   - 空白を除いて空
//   - ジャモ (単独子音・母音) のみ
//   - 同一文字の3回以上の繰り返し
//   - 定型の相槌・記号のみの発話
//   - トークン数が2未満
//
// 入力文字列のみに依存する純粋関数です。
func IsTrivialQuestion(text string) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return true
	}
	if jamoOnlyPattern.MatchString(stripped) {
		return true
	}
	if isRepeatedChar(stripped) {
		return true
	}
	if isFillerUtterance(stripped) {
		return true
	}
	return len(Tokenize(stripped)) < 2
}
