package engine

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"finsight/internal/core"
)

// AnomalyConfig collects every tunable of the anomaly detector in one
// immutable value so the thresholds stay testable and shareable across
// concurrent calls.
type AnomalyConfig struct {
	// DefaultThreshold is the z-score cutoff used when the caller passes 0.
	DefaultThreshold float64
	// MinSampleSize is the minimum number of transactions required before
	// any detector runs; dispersion statistics need at least this many.
	MinSampleSize int
	// HighMultiplier and MediumMultiplier scale the threshold into
	// severity bands for amount outliers.
	HighMultiplier   float64
	MediumMultiplier float64
	// NightEndHour bounds the unusual-time window [0, NightEndHour).
	NightEndHour int
	// CategoryCeilings holds the per-category amount ceilings; spending
	// above the ceiling in a categorized transaction is flagged.
	CategoryCeilings map[string]float64
	// SmallAmountFloor flags amounts below it within SmallAmountCategories.
	SmallAmountFloor      float64
	SmallAmountCategories map[string]bool
}

// DefaultAnomalyConfig returns the deployed configuration (amounts in VND).
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		DefaultThreshold: 2.5,
		MinSampleSize:    3,
		HighMultiplier:   1.5,
		MediumMultiplier: 1.2,
		NightEndHour:     5,
		CategoryCeilings: map[string]float64{
			"food":      500000,
			"transport": 300000,
			"utilities": 2000000,
		},
		SmallAmountFloor:      1000,
		SmallAmountCategories: map[string]bool{"shopping": true, "entertainment": true},
	}
}

// AnomalyDetector runs four independent sub-detectors over a transaction
// list and concatenates their findings. A transaction can be reported by
// more than one detector.
type AnomalyDetector struct {
	cfg AnomalyConfig
}

func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{cfg: DefaultAnomalyConfig()}
}

func NewAnomalyDetectorWithConfig(cfg AnomalyConfig) *AnomalyDetector {
	return &AnomalyDetector{cfg: cfg}
}

// Detect returns the anomalies found in txs, in detector order: amount,
// time, duplicate, category mismatch. Fewer than MinSampleSize transactions
// yield an empty result. A zero threshold selects the default.
func (d *AnomalyDetector) Detect(txs []core.Transaction, threshold float64) []core.Anomaly {
	anomalies := []core.Anomaly{}

	if len(txs) < d.cfg.MinSampleSize {
		return anomalies
	}
	if threshold == 0 {
		threshold = d.cfg.DefaultThreshold
	}

	anomalies = append(anomalies, d.amountAnomalies(txs, threshold)...)
	anomalies = append(anomalies, d.timeAnomalies(txs)...)
	anomalies = append(anomalies, d.duplicateAnomalies(txs)...)
	anomalies = append(anomalies, d.categoryAnomalies(txs)...)
	return anomalies
}

// amountAnomalies flags transactions whose amount deviates from the sample
// mean by more than threshold standard deviations.
func (d *AnomalyDetector) amountAnomalies(txs []core.Transaction, threshold float64) []core.Anomaly {
	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}

	mean := stat.Mean(amounts, nil)
	stdDev := stat.StdDev(amounts, nil)
	// All-equal amounts give a zero deviation; every z-score would be
	// non-finite, so the detector contributes nothing.
	if !(stdDev > 0) {
		return nil
	}

	var anomalies []core.Anomaly
	for _, tx := range txs {
		z := math.Abs(tx.Amount-mean) / stdDev
		if z <= threshold {
			continue
		}
		severity := core.SeverityLow
		switch {
		case z > threshold*d.cfg.HighMultiplier:
			severity = core.SeverityHigh
		case z > threshold*d.cfg.MediumMultiplier:
			severity = core.SeverityMedium
		}
		anomalies = append(anomalies, core.Anomaly{
			Transaction: tx,
			Reason: fmt.Sprintf("Chi tiêu bất thường: %s VND (cao hơn %d lần độ lệch chuẩn)",
				core.FormatVND(tx.Amount), int(math.Round(z))),
			Severity: severity,
			Score:    z,
		})
	}
	return anomalies
}

// timeAnomalies flags spending between midnight and NightEndHour, in the
// transaction's own time zone.
func (d *AnomalyDetector) timeAnomalies(txs []core.Transaction) []core.Anomaly {
	var anomalies []core.Anomaly
	for _, tx := range txs {
		hour := tx.SpentAt.Hour()
		if hour >= 0 && hour < d.cfg.NightEndHour {
			anomalies = append(anomalies, core.Anomaly{
				Transaction: tx,
				Reason:      fmt.Sprintf("Chi tiêu vào giờ bất thường: %d:00", hour),
				Severity:    core.SeverityLow,
				Score:       1.5,
			})
		}
	}
	return anomalies
}

// duplicateAnomalies flags repeats of the same amount + description on the
// same calendar day. The first transaction seen for a key, in input order,
// is canonical and never flagged.
func (d *AnomalyDetector) duplicateAnomalies(txs []core.Transaction) []core.Anomaly {
	var anomalies []core.Anomaly
	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		key := strconv.FormatFloat(tx.Amount, 'f', -1, 64) + "-" + tx.Description + "-" + tx.SpentAt.Format("2006-01-02")
		if seen[key] {
			anomalies = append(anomalies, core.Anomaly{
				Transaction: tx,
				Reason: fmt.Sprintf("Chi tiêu trùng lặp: %q - %s VND",
					tx.Description, core.FormatVND(tx.Amount)),
				Severity: core.SeverityMedium,
				Score:    2.0,
			})
			continue
		}
		seen[key] = true
	}
	return anomalies
}

// categoryAnomalies flags categorized transactions that exceed their
// category ceiling, or that are implausibly small for shopping and
// entertainment. Uncategorized transactions are skipped.
func (d *AnomalyDetector) categoryAnomalies(txs []core.Transaction) []core.Anomaly {
	var anomalies []core.Anomaly
	for _, tx := range txs {
		if tx.Category == "" {
			continue
		}

		if ceiling, ok := d.cfg.CategoryCeilings[tx.Category]; ok && tx.Amount > ceiling {
			anomalies = append(anomalies, core.Anomaly{
				Transaction: tx,
				Reason: fmt.Sprintf("Chi tiêu cao bất thường cho danh mục %q: %s VND",
					tx.Category, core.FormatVND(tx.Amount)),
				Severity: core.SeverityMedium,
				Score:    2.5,
			})
		}

		if tx.Amount < d.cfg.SmallAmountFloor && d.cfg.SmallAmountCategories[tx.Category] {
			anomalies = append(anomalies, core.Anomaly{
				Transaction: tx,
				Reason: fmt.Sprintf("Chi tiêu quá nhỏ cho danh mục %q: %s VND",
					tx.Category, core.FormatVND(tx.Amount)),
				Severity: core.SeverityLow,
				Score:    1.2,
			})
		}
	}
	return anomalies
}
