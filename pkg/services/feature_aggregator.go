package services

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/minsnailee/llm-detective/pkg/models"
)

// SimilarityProvider は文章埋め込みと含意判定を提供する外部コラボレータです。
// 実装 (pkg/inference.Client) はプロセス起動時に一度だけ構築し、
// 読み取り専用で全リクエストから共有します。
type SimilarityProvider interface {
	// Embed は各テキストの埋め込みベクトルを返します。空入力は空行列。
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Entail は「この文章は{label}だ」が premise から含意される確率を返します。
	Entail(ctx context.Context, premise, label string) (float64, error)
}

// ゼロショット含意判定に使うラベル。
const (
	labelFocused  = "집중됨"
	labelLogical  = "논리적"
	labelDeep     = "깊이있음"
	labelCreative = "창의적"
)

// 論理性の語彙ヒューリスティックで見る因果マーカー。
var causalMarkers = []string{"때문", "그래서", "따라서", "왜냐", "즉", "결과"}

// FeatureAggregator は質問群とケースヒントから5次元の生特徴量 [0,1] を計算します。
type FeatureAggregator struct {
	provider SimilarityProvider
}

// NewFeatureAggregator は新しいFeatureAggregatorを作成します。
func NewFeatureAggregator(provider SimilarityProvider) *FeatureAggregator {
	return &FeatureAggregator{provider: provider}
}

// defaultRawFeatures は意味のある質問が1件もない場合の既定値です。
// ヒントがあるのに質問できていない場合は全次元を低信頼の0.05に落とします。
func defaultRawFeatures(hasHints bool) models.RawFeatures {
	if hasHints {
		return models.RawFeatures{Focus: 0.05, Logic: 0.05, Depth: 0.05, Diversity: 0.05, Creativity: 0.05}
	}
	return models.RawFeatures{Focus: 0.5, Logic: 0.5, Depth: 0.2, Diversity: 0.6, Creativity: 0.5}
}

// entailMean は各質問に対する含意確率の平均を返します。
// 1回の呼び出し失敗は0.5で代替し、リクエスト全体には波及させません。
func (fa *FeatureAggregator) entailMean(ctx context.Context, questions []string, label string) float64 {
	if len(questions) == 0 {
		return 0.5
	}
	probs := make([]float64, 0, len(questions))
	for _, q := range questions {
		p, err := fa.provider.Entail(ctx, q, label)
		if err != nil {
			log.Printf("含意判定に失敗したため0.5で代替します: %v", err)
			p = 0.5
		}
		probs = append(probs, p)
	}
	return calculateMean(probs)
}

// SimilarityFeatures は埋め込みと含意判定を使って生特徴量を計算します。
// 埋め込みの取得に失敗した場合はエラーを返し、呼び出し側が
// ヒューリスティックエンジンへ切り替えます。
func (fa *FeatureAggregator) SimilarityFeatures(ctx context.Context, questions, hints []string) (models.RawFeatures, *models.EntailmentSubmetrics, error) {
	hasHints := len(hints) > 0
	if len(questions) == 0 {
		raw := defaultRawFeatures(hasHints)
		return raw, &models.EntailmentSubmetrics{
			FocusZ: 0.5, FocusSim: 0.5, LogicZ: 0.5, DepthZ: 0.5,
			LengthRaw: 0.5, CreativityZ: 0.5, Novelty: 0.5,
		}, nil
	}

	questionVecs, err := fa.provider.Embed(ctx, questions)
	if err != nil {
		return models.RawFeatures{}, nil, err
	}

	// focus: ヒント全文との類似度と「集中している」の含意確率の折衷
	focusSim := 0.5
	if hasHints {
		hintVecs, err := fa.provider.Embed(ctx, []string{strings.Join(hints, " ")})
		if err != nil {
			return models.RawFeatures{}, nil, err
		}
		sims := make([]float64, len(questionVecs))
		for i, qv := range questionVecs {
			sims[i] = cosineSimilarity(qv, hintVecs[0])
		}
		focusSim = calculateMean(sims)
	}
	focusZ := fa.entailMean(ctx, questions, labelFocused)
	focusRaw := 0.5*focusZ + 0.5*focusSim

	// logic: 含意確率とヒント類似度の折衷 (類似度項はfocusと共用)
	logicZ := fa.entailMean(ctx, questions, labelLogical)
	logicRaw := 0.6*logicZ + 0.4*focusSim

	// depth: 含意確率と平均発話長の折衷
	depthZ := fa.entailMean(ctx, questions, labelDeep)
	lengthRaw := math.Tanh(meanRuneLength(questions) / 40.0)
	depthRaw := 0.6*depthZ + 0.4*lengthRaw

	// diversity: 質問同士の平均ペア類似度の補数。1問以下なら最大値。
	diversityRaw := 1.0
	if len(questionVecs) >= 2 {
		var pairSims []float64
		for i := 0; i < len(questionVecs); i++ {
			for j := i + 1; j < len(questionVecs); j++ {
				pairSims = append(pairSims, cosineSimilarity(questionVecs[i], questionVecs[j]))
			}
		}
		diversityRaw = 1.0 - calculateMean(pairSims)
	}

	// creativity: 含意確率と「最も近いヒントからの距離」の折衷
	novelty := 0.5
	if hasHints {
		hintVecs, err := fa.provider.Embed(ctx, hints)
		if err != nil {
			return models.RawFeatures{}, nil, err
		}
		maxSims := make([]float64, len(questionVecs))
		for i, qv := range questionVecs {
			maxSim := math.Inf(-1)
			for _, hv := range hintVecs {
				if sim := cosineSimilarity(qv, hv); sim > maxSim {
					maxSim = sim
				}
			}
			maxSims[i] = maxSim
		}
		novelty = 1.0 - calculateMean(maxSims)
	}
	creativityZ := fa.entailMean(ctx, questions, labelCreative)
	creativityRaw := 0.6*creativityZ + 0.4*novelty

	raw := models.RawFeatures{
		Focus:      clip01(focusRaw),
		Logic:      clip01(logicRaw),
		Depth:      clip01(depthRaw),
		Diversity:  clip01(diversityRaw),
		Creativity: clip01(creativityRaw),
	}
	subs := &models.EntailmentSubmetrics{
		FocusZ:      focusZ,
		FocusSim:    focusSim,
		LogicZ:      logicZ,
		DepthZ:      depthZ,
		LengthRaw:   lengthRaw,
		CreativityZ: creativityZ,
		Novelty:     novelty,
	}
	return raw, subs, nil
}

// HeuristicFeatures は外部依存なしの語彙ヒューリスティックで生特徴量を計算します。
// コサイン類似度の代わりにヒントトークンとのJaccard係数を使い、
// focusとlogicは同じ重なり値を共有します。
func (fa *FeatureAggregator) HeuristicFeatures(questions, hints []string) models.RawFeatures {
	hasHints := len(hints) > 0
	if len(questions) == 0 {
		return defaultRawFeatures(hasHints)
	}

	hintTokens := TokenSet(strings.Join(hints, " "))
	questionTokens := make([]map[string]struct{}, len(questions))
	for i, q := range questions {
		questionTokens[i] = TokenSet(q)
	}

	// focus: ヒントトークンとの平均Jaccard
	overlaps := make([]float64, len(questions))
	for i := range questions {
		if len(hintTokens) > 0 {
			overlaps[i] = jaccardSimilarity(questionTokens[i], hintTokens)
		} else {
			overlaps[i] = 0.5
		}
	}
	focusRaw := calculateMean(overlaps)

	// logic: 重なり値と因果マーカーの使用率の折衷
	causal := make([]float64, len(questions))
	for i, q := range questions {
		for _, marker := range causalMarkers {
			if strings.Contains(q, marker) {
				causal[i] = 1.0
				break
			}
		}
	}
	logicRaw := 0.7*focusRaw + 0.3*calculateMean(causal)

	// depth: 平均発話長と語彙のユニーク率の折衷
	uniqRatios := make([]float64, len(questions))
	for i, q := range questions {
		tokens := Tokenize(q)
		denom := len(tokens)
		if denom < 1 {
			denom = 1
		}
		uniqRatios[i] = float64(len(questionTokens[i])) / float64(denom)
	}
	depthRaw := 0.5*math.Tanh(meanRuneLength(questions)/40.0) + 0.5*calculateMean(uniqRatios)

	// diversity: 質問同士の平均ペアJaccardの補数。1問以下なら最大値。
	diversityRaw := 1.0
	if len(questions) >= 2 {
		var pairSims []float64
		for i := 0; i < len(questionTokens); i++ {
			for j := i + 1; j < len(questionTokens); j++ {
				pairSims = append(pairSims, jaccardSimilarity(questionTokens[i], questionTokens[j]))
			}
		}
		diversityRaw = 1.0 - calculateMean(pairSims)
	}

	// creativity: ヒントから離れた質問ほど高い
	creativityRaw := 0.5
	if len(hintTokens) > 0 {
		novelties := make([]float64, len(questions))
		for i := range questions {
			novelties[i] = 1.0 - jaccardSimilarity(questionTokens[i], hintTokens)
		}
		creativityRaw = calculateMean(novelties)
	}

	return models.RawFeatures{
		Focus:      clip01(focusRaw),
		Logic:      clip01(logicRaw),
		Depth:      clip01(depthRaw),
		Diversity:  clip01(diversityRaw),
		Creativity: clip01(creativityRaw),
	}
}
