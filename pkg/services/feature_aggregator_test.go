package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider はテスト用のSimilarityProvider実装です。
// 全テキストに同一ベクトルを返すため、質問同士のコサイン類似度は1になります。
type fakeProvider struct {
	vector      []float32
	entailProbs map[string]float64 // ラベル別の含意確率
	embedErr    error
	entailErr   error
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

func (f *fakeProvider) Entail(_ context.Context, _, label string) (float64, error) {
	if f.entailErr != nil {
		return 0, f.entailErr
	}
	if p, ok := f.entailProbs[label]; ok {
		return p, nil
	}
	return 0.5, nil
}

// pairProvider は質問とヒントに別ベクトルを返すプロバイダです。
// 質問は [0.6, 0.8]、ヒントは [1, 0] を返すため cos=0.6 になります。
type pairProvider struct {
	fakeProvider
	hintTexts map[string]struct{}
}

func (p *pairProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if _, ok := p.hintTexts[text]; ok {
			vectors[i] = []float32{1, 0}
		} else {
			vectors[i] = []float32{0.6, 0.8}
		}
	}
	return vectors, nil
}

func TestSimilarityFeaturesEmptyQuestions(t *testing.T) {
	fa := NewFeatureAggregator(&fakeProvider{vector: []float32{1, 0}})

	// ヒントがあるのに質問ゼロ: 全次元が低信頼の0.05
	raw, subs, err := fa.SimilarityFeatures(context.Background(), nil, []string{"힌트"})
	require.NoError(t, err)
	assert.Equal(t, 0.05, raw.Focus)
	assert.Equal(t, 0.05, raw.Logic)
	assert.Equal(t, 0.05, raw.Depth)
	assert.Equal(t, 0.05, raw.Diversity)
	assert.Equal(t, 0.05, raw.Creativity)
	assert.NotNil(t, subs)

	// ヒントも質問もない: 次元別の既定値
	raw, _, err = fa.SimilarityFeatures(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, raw.Focus)
	assert.Equal(t, 0.5, raw.Logic)
	assert.Equal(t, 0.2, raw.Depth)
	assert.Equal(t, 0.6, raw.Diversity)
	assert.Equal(t, 0.5, raw.Creativity)
}

func TestSimilarityFeaturesFormulas(t *testing.T) {
	hint := "피해자는 서재에서 발견되었다"
	provider := &pairProvider{
		fakeProvider: fakeProvider{
			entailProbs: map[string]float64{
				labelFocused:  0.7,
				labelLogical:  0.8,
				labelDeep:     0.6,
				labelCreative: 0.4,
			},
		},
		hintTexts: map[string]struct{}{hint: {}},
	}
	fa := NewFeatureAggregator(provider)

	questions := []string{
		"범인은 어디에 있었나요",
		"흉기는 무엇이었나요",
	}
	raw, subs, err := fa.SimilarityFeatures(context.Background(), questions, []string{hint})
	require.NoError(t, err)

	// focus = 0.5*0.7 + 0.5*0.6
	assert.InDelta(t, 0.65, raw.Focus, 1e-9)
	assert.InDelta(t, 0.6, subs.FocusSim, 1e-9)

	// logic = 0.6*0.8 + 0.4*0.6
	assert.InDelta(t, 0.72, raw.Logic, 1e-9)

	// depth = 0.6*0.6 + 0.4*tanh(meanLen/40)
	expectedLength := math.Tanh(meanRuneLength(questions) / 40.0)
	assert.InDelta(t, 0.6*0.6+0.4*expectedLength, raw.Depth, 1e-9)

	// 質問ベクトルが同一なのでペア類似度は1、diversityは0
	assert.InDelta(t, 0.0, raw.Diversity, 1e-9)

	// creativity = 0.6*0.4 + 0.4*(1-0.6)
	assert.InDelta(t, 0.4, raw.Creativity, 1e-9)
}

func TestSimilarityFeaturesSingleQuestionDiversity(t *testing.T) {
	fa := NewFeatureAggregator(&fakeProvider{vector: []float32{1, 0}})

	raw, _, err := fa.SimilarityFeatures(context.Background(), []string{"범인은 누구인가요"}, nil)
	require.NoError(t, err)

	// 1問だけならdiversityは最大
	assert.Equal(t, 1.0, raw.Diversity)
}

func TestSimilarityFeaturesEmbedFailure(t *testing.T) {
	fa := NewFeatureAggregator(&fakeProvider{embedErr: errors.New("connection refused")})

	_, _, err := fa.SimilarityFeatures(context.Background(), []string{"범인은 누구인가요"}, nil)
	assert.Error(t, err)
}

func TestSimilarityFeaturesEntailFailureSubstitutes(t *testing.T) {
	// 含意判定の失敗は0.5で代替され、エラーにはならない
	fa := NewFeatureAggregator(&fakeProvider{
		vector:    []float32{1, 0},
		entailErr: errors.New("model not loaded"),
	})

	raw, subs, err := fa.SimilarityFeatures(context.Background(), []string{"범인은 누구인가요"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, subs.FocusZ)
	assert.Equal(t, 0.5, subs.LogicZ)
	assert.Greater(t, raw.Focus, 0.0)
}

func TestHeuristicFeatures(t *testing.T) {
	fa := NewFeatureAggregator(nil)

	questions := []string{
		"범인은 어디에 있었나요",
		"그래서 흉기는 무엇인가요",
	}
	hints := []string{"범인은 서재에 있었다"}
	raw := fa.HeuristicFeatures(questions, hints)

	// ヒントとトークンが重なるのでfocusは正
	assert.Greater(t, raw.Focus, 0.0)

	// 因果マーカー「그래서」が片方にあるのでlogicに加点が乗る
	assert.Greater(t, raw.Logic, 0.7*raw.Focus)

	// 全値が[0,1]に収まる
	for _, v := range []float64{raw.Focus, raw.Logic, raw.Depth, raw.Diversity, raw.Creativity} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestHeuristicFeaturesDefaults(t *testing.T) {
	fa := NewFeatureAggregator(nil)

	raw := fa.HeuristicFeatures(nil, []string{"힌트"})
	assert.Equal(t, 0.05, raw.Focus)

	raw = fa.HeuristicFeatures(nil, nil)
	assert.Equal(t, 0.5, raw.Focus)
	assert.Equal(t, 0.2, raw.Depth)
	assert.Equal(t, 0.6, raw.Diversity)
}
