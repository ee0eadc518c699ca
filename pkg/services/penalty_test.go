package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPenalizeQuestion(t *testing.T) {
	// 意味のある質問は減点なし
	assert.Equal(t, 0, PenalizeQuestion("범인은 어디에 있었나요"))

	// 3文字未満 (-60) + トークン不足 (-25)
	assert.Equal(t, -85, PenalizeQuestion("아니"))

	// 3文字以上5文字未満 (-35) + トークン不足 (-25)
	assert.Equal(t, -60, PenalizeQuestion("누구야"))

	// ジャモのみ: 長さ4 (-35) + ジャモ (-50) + 相槌扱いはされない + トークン不足 (-25)
	assert.Equal(t, -110, PenalizeQuestion("ㅁㄴㅇㄹ"))

	// 同一文字の繰り返し: 長さ5以上でも繰り返し (-30) + トークン不足 (-25)
	assert.Equal(t, -55, PenalizeQuestion("아아아아아"))

	// 疑問符の連打: 相槌 (-50) + 繰り返し (-30) + トークン不足 (-25)
	assert.Equal(t, -105, PenalizeQuestion("?????"))
}

func TestPenalizeQuestionNeverPositive(t *testing.T) {
	inputs := []string{"", "네", "ㅋㅋㅋ", "범인은 누구입니까", "칼에 묻은 지문은 누구의 것인가요"}
	for _, input := range inputs {
		assert.LessOrEqual(t, PenalizeQuestion(input), 0, "input=%q", input)
		assert.LessOrEqual(t, PenalizeQuestionCoarse(input), 0, "input=%q", input)
	}
}

func TestPenalizeQuestionCoarse(t *testing.T) {
	// 5文字未満のみ
	assert.Equal(t, -30, PenalizeQuestionCoarse("누구야"))

	// ジャモのみ: 5文字未満 (-30) + ジャモ (-40)
	assert.Equal(t, -70, PenalizeQuestionCoarse("ㅁㄴㅇㄹ"))

	// 繰り返し: 5文字以上なら繰り返しのみ (-20)
	assert.Equal(t, -20, PenalizeQuestionCoarse("?????"))

	// ジャモの連打: ジャモ (-40) + 繰り返し (-20)
	assert.Equal(t, -60, PenalizeQuestionCoarse("ㅋㅋㅋㅋㅋ"))

	// 通常の質問は減点なし
	assert.Equal(t, 0, PenalizeQuestionCoarse("범인은 어디에 있었나요"))
}
