package services

import (
	"strconv"

	"github.com/minsnailee/llm-detective/pkg/models"
)

// TimeFeatures はセッションの時間統計です。
type TimeFeatures struct {
	Total   float64
	NTurns  int
	AvgTurn float64
	StdTurn float64
	MedTurn float64
	Report  float64
}

// TimeDeltas はスキルごとの加算補正値です。
type TimeDeltas struct {
	Logic      int
	Creativity int
	Focus      int
	Diversity  int
	Depth      int
}

// safeNum は型が保証されないJSON値を数値化します。
// 数値化できない値は (0, false) を返し、存在しないものとして扱います。
func safeNum(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// coercePerTurn はターンごとの所要時間リストから数値化できる非負値のみを集めます。
func coercePerTurn(values []interface{}) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := safeNum(v); ok && f >= 0 {
			out = append(out, f)
		}
	}
	return out
}

// ExtractTimeFeatures は時間情報から統計量を導出します。
// per_turn がない場合は総時間をターン数で均等配分して推定します。
func ExtractTimeFeatures(timings *models.TimingInfo, fallbackTurns int) TimeFeatures {
	var total, report float64
	var hasTotal bool
	var perTurn []float64

	if timings != nil {
		if f, ok := safeNum(timings.TotalDuration); ok {
			total = f
			hasTotal = true
		}
		if f, ok := safeNum(timings.ReportDuration); ok {
			report = f
		}
		perTurn = coercePerTurn(timings.PerTurn)
	}

	nTurns := len(perTurn)
	if nTurns == 0 {
		nTurns = fallbackTurns
	}

	if len(perTurn) == 0 && hasTotal && nTurns > 0 {
		perTurn = make([]float64, nTurns)
		for i := range perTurn {
			perTurn[i] = total / float64(nTurns)
		}
	}

	return TimeFeatures{
		Total:   total,
		NTurns:  nTurns,
		AvgTurn: calculateMean(perTurn),
		StdTurn: calculateStandardDeviation(perTurn),
		MedTurn: calculateMedian(perTurn),
		Report:  report,
	}
}

// TimeAdjustments は時間統計からスキルごとの整数デルタを導出します。
// 経験則:
//   - 総時間が短すぎる(<60s): depth -10, logic -5
//   - 適正な総時間(3〜15分): depth +5, focus +5
//   - 長すぎる(>30分): focus -10, creativity -5
//   - ターン数が少なすぎる(<3): diversity -8, depth -6
//   - 平均ターン時間が短すぎる(<3s): depth -12, logic -6
//   - 平均ターン時間が長すぎる(>120s): focus -8
//   - ターン時間のばらつきが大きい(>45s): focus -5
//   - 報告書作成時間が適正(20〜180s): depth +3、短すぎる(<10s): depth -5
func TimeAdjustments(tf TimeFeatures) TimeDeltas {
	var d TimeDeltas

	switch {
	case tf.Total > 0 && tf.Total < 60:
		d.Depth -= 10
		d.Logic -= 5
	case tf.Total >= 180 && tf.Total <= 900:
		d.Depth += 5
		d.Focus += 5
	case tf.Total > 1800:
		d.Focus -= 10
		d.Creativity -= 5
	}

	if tf.NTurns > 0 && tf.NTurns < 3 {
		d.Diversity -= 8
		d.Depth -= 6
	}

	if tf.AvgTurn > 0 && tf.AvgTurn < 3 {
		d.Depth -= 12
		d.Logic -= 6
	} else if tf.AvgTurn > 120 {
		d.Focus -= 8
	}

	if tf.StdTurn > 45 {
		d.Focus -= 5
	}

	if tf.Report > 0 {
		if tf.Report >= 20 && tf.Report <= 180 {
			d.Depth += 3
		} else if tf.Report < 10 {
			d.Depth -= 5
		}
	}

	return d
}
