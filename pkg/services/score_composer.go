package services

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/minsnailee/llm-detective/pkg/models"

	"github.com/google/uuid"
)

// ウィンドウスケーリングの次元別 (lo, hi)。
// raw が lo 以下なら0、hi 以上なら100に飽和します。
var (
	focusWindow      = scaleWindow{0.2, 0.85}
	logicWindow      = scaleWindow{0.15, 0.85}
	depthWindow      = scaleWindow{0.2, 0.9}
	diversityWindow  = scaleWindow{0.1, 0.85}
	creativityWindow = scaleWindow{0.1, 0.85}
)

// 意味のある質問が1件もないセッションのスコア上限。
const (
	floorCapLogic      = 5
	floorCapFocus      = 5
	floorCapCreativity = 10
	floorCapDepth      = 10
	floorCapDiversity  = 15
)

type scaleWindow struct {
	lo, hi float64
}

// scaleFeature は生特徴量 [0,1] を 0-100 に線形スケーリングします。
func scaleFeature(raw float64, w scaleWindow) int {
	return int(math.Round(100 * clip01((raw-w.lo)/(w.hi-w.lo+1e-9))))
}

// scaledScores スケーリング直後の各次元値。
type scaledScores struct {
	logic, creativity, focus, diversity, depth int
}

// ScoreService は会話ログから5つのスキルスコアを算出するオーケストレータです。
// 類似度プロバイダはコンストラクタで注入し、リクエスト間で共有します。
type ScoreService struct {
	aggregator *FeatureAggregator
	comparator *GoldComparator
}

// NewScoreService は新しいScoreServiceを作成します。
func NewScoreService(provider SimilarityProvider) *ScoreService {
	return &ScoreService{
		aggregator: NewFeatureAggregator(provider),
		comparator: NewGoldComparator(provider),
	}
}

// ExtractPlayerQuestions は会話ログからPLAYERの空でない発話を抽出します。
func ExtractPlayerQuestions(logJSON *models.TranscriptLog) []string {
	var questions []string
	for _, turn := range logJSON.Logs {
		if !strings.EqualFold(turn.Speaker, "PLAYER") {
			continue
		}
		if msg := strings.TrimSpace(turn.Message); msg != "" {
			questions = append(questions, msg)
		}
	}
	return questions
}

// collectHints はケースのヒントテキスト (事実リスト・あらすじ・タイトル) を集めます。
func collectHints(req *models.AnalyzeRequest) []string {
	var hints []string
	for _, fact := range req.Facts {
		if f := strings.TrimSpace(fact); f != "" {
			hints = append(hints, f)
		}
	}
	if s := strings.TrimSpace(req.CaseSummary); s != "" {
		hints = append(hints, s)
	}
	if t := strings.TrimSpace(req.CaseTitle); t != "" {
		hints = append(hints, t)
	}
	return hints
}

// engagementFactor は実質的な入力量に応じた減衰係数 [0,1] を計算します。
// 意味のある質問が多いほど1.0に近づき、短文連打は追加で減衰します。
func engagementFactor(total, meaningful int, questions []string) float64 {
	if total == 0 {
		return 0.05
	}
	if meaningful == 0 {
		return 0.1
	}
	factor := 0.3*float64(total)/10.0 + 0.7*float64(meaningful)/10.0
	if factor > 1 {
		factor = 1
	}
	avgLen := meanRuneLength(questions)
	if avgLen < 5 {
		factor *= 0.6
	} else if avgLen < 8 {
		factor *= 0.8
	}
	return factor
}

// scaleAll は全次元をウィンドウスケーリングします。
func scaleAll(raw models.RawFeatures) scaledScores {
	return scaledScores{
		logic:      scaleFeature(raw.Logic, logicWindow),
		creativity: scaleFeature(raw.Creativity, creativityWindow),
		focus:      scaleFeature(raw.Focus, focusWindow),
		diversity:  scaleFeature(raw.Diversity, diversityWindow),
		depth:      scaleFeature(raw.Depth, depthWindow),
	}
}

// applyFloorCaps は意味のある質問がゼロのセッションにスコア上限を適用します。
func applyFloorCaps(skills models.SkillScores) models.SkillScores {
	capTo := func(v, limit int) int {
		if v > limit {
			return limit
		}
		return v
	}
	return models.SkillScores{
		Logic:      capTo(skills.Logic, floorCapLogic),
		Focus:      capTo(skills.Focus, floorCapFocus),
		Creativity: capTo(skills.Creativity, floorCapCreativity),
		Depth:      capTo(skills.Depth, floorCapDepth),
		Diversity:  capTo(skills.Diversity, floorCapDiversity),
	}
}

// normalizeEngine は不明なエンジン指定をsimilarityに倒します。
func normalizeEngine(engine string) string {
	if strings.EqualFold(engine, models.EngineHeuristic) {
		return models.EngineHeuristic
	}
	return models.EngineSimilarity
}

// similarityPath は埋め込み・含意判定を使った一式の計算を試みます。
// プロバイダ呼び出しが失敗した場合は部分結果を捨ててエラーを返します。
func (s *ScoreService) similarityPath(ctx context.Context, req *models.AnalyzeRequest, meaningful, hints []string) (models.RawFeatures, *models.EntailmentSubmetrics, *models.GoldSubmetrics, error) {
	raw, entailSubs, err := s.aggregator.SimilarityFeatures(ctx, meaningful, hints)
	if err != nil {
		return models.RawFeatures{}, nil, nil, err
	}
	var goldSubs *models.GoldSubmetrics
	if req.GoldAnswer != nil {
		gs, err := s.comparator.Compare(ctx, req.FinalAnswer, req.GoldAnswer, true)
		if err != nil {
			return models.RawFeatures{}, nil, nil, err
		}
		goldSubs = &gs
	}
	return raw, entailSubs, goldSubs, nil
}

// Analyze は1リクエスト分のスコアバンドルを計算します。
// similarityエンジンが失敗した場合はheuristicエンジンで全体を再計算するため、
// 正しい形のリクエストに対しては常に完全な結果を返します。
func (s *ScoreService) Analyze(ctx context.Context, req *models.AnalyzeRequest) *models.AnalyzeResponse {
	engine := normalizeEngine(req.Engine)
	questions := ExtractPlayerQuestions(&req.Log)

	var meaningful []string
	for _, q := range questions {
		if !IsTrivialQuestion(q) {
			meaningful = append(meaningful, q)
		}
	}

	hints := collectHints(req)
	engagement := engagementFactor(len(questions), len(meaningful), questions)

	var raw models.RawFeatures
	var entailSubs *models.EntailmentSubmetrics
	var goldSubs *models.GoldSubmetrics

	if engine == models.EngineSimilarity {
		r, es, gs, err := s.similarityPath(ctx, req, meaningful, hints)
		if err != nil {
			log.Printf("similarityエンジンが失敗したためheuristicエンジンで再計算します: %v", err)
			engine = models.EngineHeuristic
		} else {
			raw, entailSubs, goldSubs = r, es, gs
		}
	}

	if engine == models.EngineHeuristic {
		raw = s.aggregator.HeuristicFeatures(meaningful, hints)
		entailSubs = nil
		goldSubs = nil
		if req.GoldAnswer != nil {
			// heuristicの比較は外部呼び出しを行わないため失敗しない
			gs, _ := s.comparator.Compare(ctx, req.FinalAnswer, req.GoldAnswer, false)
			goldSubs = &gs
		}
	}

	penaltySum := 0
	for _, q := range questions {
		if engine == models.EngineSimilarity {
			penaltySum += PenalizeQuestion(q)
		} else {
			penaltySum += PenalizeQuestionCoarse(q)
		}
	}

	scaled := scaleAll(raw)
	var skills models.SkillScores
	var timeSubs *models.TimeSubmetrics

	if goldSubs != nil {
		// 模範解答ありのリクエストは回答ボーナスで合成し、時間補正は使わない。
		logicBonus := math.Round(20 * goldSubs.AnswerQuality * engagement)
		depthBonus := math.Round(10 * goldSubs.AnswerQuality * engagement)
		penalty := float64(penaltySum)
		skills = models.SkillScores{
			Logic:      clampScore((float64(scaled.logic) + logicBonus + penalty) * engagement),
			Focus:      clampScore((float64(scaled.focus) + penalty) * engagement),
			Creativity: clampScore((float64(scaled.creativity) + penalty) * engagement),
			Depth:      clampScore((float64(scaled.depth) + depthBonus) * engagement),
			Diversity:  clampScore(float64(scaled.diversity) * engagement),
		}
	} else {
		// 模範解答なしのリクエストは時間補正で合成する。
		penalty := float64(penaltySum)
		base := models.SkillScores{
			Logic:      clampScore((float64(scaled.logic) + penalty) * engagement),
			Focus:      clampScore((float64(scaled.focus) + penalty) * engagement),
			Creativity: clampScore((float64(scaled.creativity) + penalty) * engagement),
			Depth:      clampScore(float64(scaled.depth) * engagement),
			Diversity:  clampScore(float64(scaled.diversity) * engagement),
		}
		tf := ExtractTimeFeatures(req.Timings, len(questions))
		deltas := TimeAdjustments(tf)
		skills = models.SkillScores{
			Logic:      clampScore(float64(base.Logic + deltas.Logic)),
			Focus:      clampScore(float64(base.Focus + deltas.Focus)),
			Creativity: clampScore(float64(base.Creativity + deltas.Creativity)),
			Depth:      clampScore(float64(base.Depth + deltas.Depth)),
			Diversity:  clampScore(float64(base.Diversity + deltas.Diversity)),
		}
		timeSubs = &models.TimeSubmetrics{
			Total:       tf.Total,
			NTurns:      float64(tf.NTurns),
			AvgTurn:     tf.AvgTurn,
			StdTurn:     tf.StdTurn,
			MedTurn:     tf.MedTurn,
			Report:      tf.Report,
			DLogic:      deltas.Logic,
			DCreativity: deltas.Creativity,
			DFocus:      deltas.Focus,
			DDiversity:  deltas.Diversity,
			DDepth:      deltas.Depth,
		}
	}

	if len(meaningful) == 0 {
		skills = applyFloorCaps(skills)
	}

	return &models.AnalyzeResponse{
		AnalysisID: uuid.New().String(),
		Engine:     engine,
		Skills:     skills,
		Submetrics: models.Submetrics{
			SchemaVersion:    models.SubmetricsSchemaVersion,
			NUserTurns:       float64(len(questions)),
			NMeaningful:      float64(len(meaningful)),
			EngagementFactor: engagement,
			PenaltySum:       float64(penaltySum),
			Raw:              raw,
			Entailment:       entailSubs,
			Time:             timeSubs,
			Gold:             goldSubs,
		},
	}
}
