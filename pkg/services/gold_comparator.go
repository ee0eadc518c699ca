package services

import (
	"context"
	"strings"

	"github.com/minsnailee/llm-detective/pkg/models"
)

// GoldComparator は提出された最終回答を模範解答と比較します。
type GoldComparator struct {
	provider SimilarityProvider
}

// NewGoldComparator は新しいGoldComparatorを作成します。
func NewGoldComparator(provider SimilarityProvider) *GoldComparator {
	return &GoldComparator{provider: provider}
}

// normalizeAnswerText 大文字小文字と空白の差を吸収した比較用の正規化。
func normalizeAnswerText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), ""))
}

// normalizeIDSet 証拠IDのリストを正規化済みの集合に変換します。空文字は無視。
func normalizeIDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range ids {
		if norm := normalizeAnswerText(id); norm != "" {
			set[norm] = struct{}{}
		}
	}
	return set
}

// textSimilarity は自由記述同士の類似度を計算します。
// どちらかが空なら0。similarityエンジンでは埋め込みのコサイン類似度、
// heuristicエンジンではトークンのJaccard係数を使います。
func (gc *GoldComparator) textSimilarity(ctx context.Context, submitted, reference string, useEmbeddings bool) (float64, error) {
	if strings.TrimSpace(submitted) == "" || strings.TrimSpace(reference) == "" {
		return 0, nil
	}
	if !useEmbeddings {
		return jaccardSimilarity(TokenSet(submitted), TokenSet(reference)), nil
	}
	vecs, err := gc.provider.Embed(ctx, []string{submitted, reference})
	if err != nil {
		return 0, err
	}
	return cosineSimilarity(vecs[0], vecs[1]), nil
}

// Compare は最終回答と模範解答を比較し、各要素と総合品質を返します。
// finalAnswer が省略されている場合は空回答として採点します。
// 埋め込み取得の失敗はエラーとして返し、呼び出し側がエンジンを切り替えます。
func (gc *GoldComparator) Compare(ctx context.Context, final *models.FinalAnswer, gold *models.GoldAnswer, useEmbeddings bool) (models.GoldSubmetrics, error) {
	if final == nil {
		final = &models.FinalAnswer{}
	}

	var subs models.GoldSubmetrics

	// 犯人: 正規化した提出値が模範のIDまたは表示名に一致すれば正解
	culprit := normalizeAnswerText(final.Culprit)
	if culprit != "" && (culprit == normalizeAnswerText(gold.CulpritID) || culprit == normalizeAnswerText(gold.CulpritName)) {
		subs.CulpritExact = 1.0
	}

	methodSim, err := gc.textSimilarity(ctx, final.How, gold.Method, useEmbeddings)
	if err != nil {
		return models.GoldSubmetrics{}, err
	}
	motiveSim, err := gc.textSimilarity(ctx, final.Why, gold.Motive, useEmbeddings)
	if err != nil {
		return models.GoldSubmetrics{}, err
	}
	subs.MethodSim = methodSim
	subs.MotiveSim = motiveSim

	// 証拠: 正規化した集合同士の precision / recall / F1
	submitted := normalizeIDSet(final.EvidenceSelected)
	reference := normalizeIDSet(gold.KeyEvidenceIDs)
	intersection := 0
	for id := range submitted {
		if _, ok := reference[id]; ok {
			intersection++
		}
	}
	precDenom := len(submitted)
	if precDenom < 1 {
		precDenom = 1
	}
	recDenom := len(reference)
	if recDenom < 1 {
		recDenom = 1
	}
	subs.EvidencePrecision = float64(intersection) / float64(precDenom)
	subs.EvidenceRecall = float64(intersection) / float64(recDenom)
	if subs.EvidencePrecision+subs.EvidenceRecall > 0 {
		subs.EvidenceF1 = 2 * subs.EvidencePrecision * subs.EvidenceRecall / (subs.EvidencePrecision + subs.EvidenceRecall)
	}

	subs.AnswerQuality = 0.4*subs.CulpritExact + 0.2*subs.MethodSim + 0.2*subs.MotiveSim + 0.2*subs.EvidenceF1
	return subs, nil
}
