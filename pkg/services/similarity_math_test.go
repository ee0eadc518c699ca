package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMean(t *testing.T) {
	assert.Equal(t, 0.0, calculateMean(nil))
	assert.Equal(t, 2.0, calculateMean([]float64{1, 2, 3}))
}

func TestCalculateStandardDeviation(t *testing.T) {
	assert.Equal(t, 0.0, calculateStandardDeviation(nil))
	assert.Equal(t, 0.0, calculateStandardDeviation([]float64{5, 5, 5}))
	// 母標準偏差: [2,4,4,4,5,5,7,9] -> 2.0
	assert.InDelta(t, 2.0, calculateStandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestCalculateMedian(t *testing.T) {
	assert.Equal(t, 0.0, calculateMedian(nil))
	assert.Equal(t, 3.0, calculateMedian([]float64{5, 1, 3}))
	// 偶数個は中央2値の平均
	assert.Equal(t, 2.5, calculateMedian([]float64{4, 1, 2, 3}))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// ゼロベクトル・長さ不一致は0
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestJaccardSimilarity(t *testing.T) {
	a := TokenSet("범인은 어디에 있었나요")
	b := TokenSet("범인은 무엇을 했나요")

	// 共通1 / 和集合5
	assert.InDelta(t, 1.0/5.0, jaccardSimilarity(a, b), 1e-9)

	// 同一集合は1、両方空は0
	assert.InDelta(t, 1.0, jaccardSimilarity(a, a), 1e-9)
	assert.Equal(t, 0.0, jaccardSimilarity(map[string]struct{}{}, map[string]struct{}{}))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-10))
	assert.Equal(t, 100, clampScore(150))
	// 四捨五入は0.5を切り上げ
	assert.Equal(t, 35, clampScore(34.5))
}

func TestMeanRuneLength(t *testing.T) {
	assert.Equal(t, 0.0, meanRuneLength(nil))
	// マルチバイト文字もrune単位で数える
	assert.Equal(t, 3.0, meanRuneLength([]string{"가나다", "abc"}))
}
