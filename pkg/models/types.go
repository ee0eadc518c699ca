package models

// EngineSimilarity / EngineHeuristic 分析エンジンの識別子。
// 不明な値を受け取った場合は similarity として扱います。
const (
	EngineSimilarity = "similarity"
	EngineHeuristic  = "heuristic"
)

// TranscriptTurn は会話ログの1ターンを表します。
// PLAYER の発話のみがスコアリング対象で、それ以外の話者は無視されます。
type TranscriptTurn struct {
	Speaker string `json:"speaker"` // "PLAYER" or "OTHER"
	Message string `json:"message"`
}

// TranscriptLog はゲームセッション全体の会話ログです。
type TranscriptLog struct {
	Logs []TranscriptTurn `json:"logs"`
}

// FinalAnswer はプレイヤーが提出した最終回答です。全フィールド省略可能。
type FinalAnswer struct {
	Culprit          string   `json:"culprit"`
	How              string   `json:"how"`
	Why              string   `json:"why"`
	EvidenceSelected []string `json:"evidence_selected"`
}

// GoldAnswer はシナリオの模範解答です。
type GoldAnswer struct {
	CulpritID      string   `json:"culpritId"`
	CulpritName    string   `json:"culpritName"`
	Method         string   `json:"method"`
	Motive         string   `json:"motive"`
	KeyEvidenceIDs []string `json:"keyEvidenceIds"`
}

// TimingInfo はセッションの時間情報です。
// 値の型が保証されないため interface{} で受け取り、数値化できない値は
// 存在しないものとして扱います。
type TimingInfo struct {
	TotalDuration  interface{}   `json:"total_duration"`
	PerTurn        []interface{} `json:"per_turn"`
	ReportDuration interface{}   `json:"report_duration"`
}

// AnalyzeRequest は /nlp/analyze のリクエストボディです。
type AnalyzeRequest struct {
	SessionID   *int64        `json:"session_id"`
	Log         TranscriptLog `json:"logJson"`
	CaseTitle   string        `json:"caseTitle"`
	CaseSummary string        `json:"caseSummary"`
	Facts       []string      `json:"facts"`
	FinalAnswer *FinalAnswer  `json:"finalAnswer"`
	GoldAnswer  *GoldAnswer   `json:"goldAnswer"`
	Timings     *TimingInfo   `json:"timings"`
	Engine      string        `json:"engine"`
}

// SkillScores は5つのスキルスコア (0-100 の整数) です。
// 一度の分析で全フィールドをまとめて構築し、以後変更しません。
type SkillScores struct {
	Logic      int `json:"logic"`
	Creativity int `json:"creativity"`
	Focus      int `json:"focus"`
	Diversity  int `json:"diversity"`
	Depth      int `json:"depth"`
}

// AnalyzeResponse は /nlp/analyze のレスポンスボディです。
type AnalyzeResponse struct {
	AnalysisID string      `json:"analysis_id"`
	Engine     string      `json:"engine"`
	Skills     SkillScores `json:"skills"`
	Submetrics Submetrics  `json:"submetrics"`
}

// RawFeatures はウィンドウスケーリング前の [0,1] 特徴量です。
type RawFeatures struct {
	Focus      float64 `json:"focus_raw"`
	Logic      float64 `json:"logic_raw"`
	Depth      float64 `json:"depth_raw"`
	Diversity  float64 `json:"diversity_raw"`
	Creativity float64 `json:"creativity_raw"`
}

// EntailmentSubmetrics は similarity エンジンの中間値です。
type EntailmentSubmetrics struct {
	FocusZ      float64 `json:"focus_z"`
	FocusSim    float64 `json:"focus_sim"`
	LogicZ      float64 `json:"logic_z"`
	DepthZ      float64 `json:"depth_z"`
	LengthRaw   float64 `json:"length_raw"`
	CreativityZ float64 `json:"creativity_z"`
	Novelty     float64 `json:"novelty"`
}

// TimeSubmetrics は時間統計とスキルごとの補正デルタです。
type TimeSubmetrics struct {
	Total       float64 `json:"t_total"`
	NTurns      float64 `json:"t_n_turns"`
	AvgTurn     float64 `json:"t_avg_turn"`
	StdTurn     float64 `json:"t_std_turn"`
	MedTurn     float64 `json:"t_med_turn"`
	Report      float64 `json:"t_report"`
	DLogic      int     `json:"d_logic"`
	DCreativity int     `json:"d_creativity"`
	DFocus      int     `json:"d_focus"`
	DDiversity  int     `json:"d_diversity"`
	DDepth      int     `json:"d_depth"`
}

// GoldSubmetrics は模範解答との比較結果です。
type GoldSubmetrics struct {
	CulpritExact      float64 `json:"culprit_exact"`
	MethodSim         float64 `json:"method_sim"`
	MotiveSim         float64 `json:"motive_sim"`
	EvidencePrecision float64 `json:"evidence_precision"`
	EvidenceRecall    float64 `json:"evidence_recall"`
	EvidenceF1        float64 `json:"evidence_f1"`
	AnswerQuality     float64 `json:"answer_quality"`
}

// SubmetricsSchemaVersion 現行の診断値スキーマのバージョン。
const SubmetricsSchemaVersion = 1

// Submetrics は分析の診断値をまとめた構造体です。
// 任意の map ではなく固定フィールドで返すことで、テストでの検証と
// クライアント側の互換性判断を明示的にします。
type Submetrics struct {
	SchemaVersion    int                   `json:"schema_version"`
	NUserTurns       float64               `json:"n_user_turns"`
	NMeaningful      float64               `json:"n_meaningful"`
	EngagementFactor float64               `json:"engagement_factor"`
	PenaltySum       float64               `json:"penalty_sum"`
	Raw              RawFeatures           `json:"raw"`
	Entailment       *EntailmentSubmetrics `json:"entailment,omitempty"`
	Time             *TimeSubmetrics       `json:"time,omitempty"`
	Gold             *GoldSubmetrics       `json:"gold,omitempty"`
}

// QuickScoreRequest は /nlp/score (発話単位の簡易採点) のリクエストです。
type QuickScoreRequest struct {
	RoomID   string `json:"roomId"`
	UserText string `json:"userText" binding:"required"`
}

// QuickScoreResponse は発話単位の簡易採点結果です。
type QuickScoreResponse struct {
	Logic      int      `json:"logic"`
	Creativity int      `json:"creativity"`
	Focus      int      `json:"focus"`
	Diversity  int      `json:"diversity"`
	Depth      int      `json:"depth"`
	Keywords   []string `json:"keywords"`
	Evidence   []string `json:"evidence"`
}
