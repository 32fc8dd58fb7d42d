package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"finsight/internal/core"
)

// PredictorConfig holds the fixed weights of the spending forecast.
type PredictorConfig struct {
	// MeanWeight and MedianWeight blend the two location estimates into
	// the forecast. They should sum to 1.
	MeanWeight   float64
	MedianWeight float64
	// SlopeBand is the regression slope magnitude below which the trend
	// counts as stable.
	SlopeBand float64
	// BreakdownSize caps how many trailing buckets the breakdown reports.
	BreakdownSize int
	// SampleTarget is the bucket count at which the sample-size factor of
	// the confidence saturates.
	SampleTarget int
	// LowSampleConfidence is the fixed confidence with fewer than 2 buckets.
	LowSampleConfidence float64
	// ConfidenceFloor and ConfidenceCeil clamp the final confidence.
	ConfidenceFloor float64
	ConfidenceCeil  float64
}

// DefaultPredictorConfig returns the deployed forecast weights.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		MeanWeight:          0.7,
		MedianWeight:        0.3,
		SlopeBand:           0.05,
		BreakdownSize:       6,
		SampleTarget:        12,
		LowSampleConfidence: 0.3,
		ConfidenceFloor:     0.1,
		ConfidenceCeil:      0.95,
	}
}

// Predictor forecasts the next period's spending total from per-period
// aggregates of past transactions.
type Predictor struct {
	cfg PredictorConfig
}

func NewPredictor() *Predictor {
	return &Predictor{cfg: DefaultPredictorConfig()}
}

func NewPredictorWithConfig(cfg PredictorConfig) *Predictor {
	return &Predictor{cfg: cfg}
}

// Predict groups txs into calendar buckets for the given period, optionally
// restricted to one category, and forecasts the next bucket total as a
// weighted blend of mean and median. Buckets keep the order in which they
// are first encountered in the input; the breakdown reports the trailing
// BreakdownSize buckets in that same order.
func (p *Predictor) Predict(txs []core.Transaction, period core.Period, category string) core.PredictionResult {
	filtered := txs
	if category != "" {
		filtered = make([]core.Transaction, 0, len(txs))
		for _, tx := range txs {
			if tx.Category == category {
				filtered = append(filtered, tx)
			}
		}
	}

	if len(filtered) == 0 {
		return core.PredictionResult{
			Trend:     core.TrendStable,
			Breakdown: []core.PeriodAmount{},
		}
	}

	keys, totals := bucketByPeriod(filtered, period)

	amounts := make([]float64, len(keys))
	for i, k := range keys {
		amounts[i] = totals[k]
	}

	mean := stat.Mean(amounts, nil)
	med := median(amounts)
	var stdDev float64
	if len(amounts) > 1 {
		stdDev = stat.StdDev(amounts, nil)
	}

	prediction := math.Round(mean*p.cfg.MeanWeight + med*p.cfg.MedianWeight)

	breakdownKeys := keys
	if len(breakdownKeys) > p.cfg.BreakdownSize {
		breakdownKeys = breakdownKeys[len(breakdownKeys)-p.cfg.BreakdownSize:]
	}
	breakdown := make([]core.PeriodAmount, len(breakdownKeys))
	for i, k := range breakdownKeys {
		breakdown[i] = core.PeriodAmount{Period: k, Amount: totals[k]}
	}

	return core.PredictionResult{
		Prediction: prediction,
		Trend:      p.trend(amounts),
		Confidence: p.confidence(amounts, stdDev, mean),
		Breakdown:  breakdown,
	}
}

// bucketByPeriod sums amounts per period key, preserving first-encounter
// order. The input is deliberately not sorted chronologically: bucket order
// follows the caller-supplied transaction order.
func bucketByPeriod(txs []core.Transaction, period core.Period) ([]string, map[string]float64) {
	keys := make([]string, 0, len(txs))
	totals := make(map[string]float64, len(txs))
	for _, tx := range txs {
		k := periodKey(tx.SpentAt, period)
		if _, ok := totals[k]; !ok {
			keys = append(keys, k)
		}
		totals[k] += tx.Amount
	}
	return keys, totals
}

// periodKey renders the calendar bucket for a timestamp. Week keys pair the
// calendar year with the ISO-8601 week number ("2024-W14"), month keys
// zero-pad the month ("2024-03") and year keys are the bare year.
func periodKey(t time.Time, period core.Period) string {
	switch period {
	case core.Week:
		_, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%d", t.Year(), week)
	case core.Month:
		return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
	default:
		return fmt.Sprintf("%d", t.Year())
	}
}

// trend fits an ordinary least squares line to (index, total) pairs and
// bands the slope. Fewer than two buckets, or a degenerate fit, reads as
// stable.
func (p *Predictor) trend(amounts []float64) core.Trend {
	if len(amounts) < 2 {
		return core.TrendStable
	}
	xs := make([]float64, len(amounts))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, amounts, nil, false)
	switch {
	case math.IsNaN(slope):
		return core.TrendStable
	case slope > p.cfg.SlopeBand:
		return core.TrendIncreasing
	case slope < -p.cfg.SlopeBand:
		return core.TrendDecreasing
	}
	return core.TrendStable
}

// confidence scores the forecast from the dispersion of bucket totals: a
// low coefficient of variation and a larger sample both raise it.
func (p *Predictor) confidence(amounts []float64, stdDev, mean float64) float64 {
	if len(amounts) < 2 {
		return p.cfg.LowSampleConfidence
	}

	cv := 1.0
	if mean > 0 {
		cv = stdDev / mean
	}
	base := 1 - math.Min(cv, 1)

	sampleFactor := math.Min(float64(len(amounts))/float64(p.cfg.SampleTarget), 1)
	confidence := base*0.7 + sampleFactor*0.3

	return math.Max(p.cfg.ConfidenceFloor, math.Min(p.cfg.ConfidenceCeil, confidence))
}

// median returns the middle value of the data, averaging the two central
// values for even-sized samples. The input slice is not modified.
func median(data []float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
