package engine

import (
	"reflect"
	"testing"
	"time"

	"finsight/internal/core"
)

func tx(id string, amount float64, desc, category string, spentAt time.Time) core.Transaction {
	return core.Transaction{ID: id, Amount: amount, Description: desc, Category: category, SpentAt: spentAt}
}

func noonOn(day int) time.Time {
	return time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestDetectNeedsThreeTransactions(t *testing.T) {
	d := NewAnomalyDetector()

	cases := [][]core.Transaction{
		nil,
		{tx("1", 100, "a", "", noonOn(1))},
		{tx("1", 100, "a", "", noonOn(1)), tx("2", 99999999, "b", "", noonOn(2))},
	}
	for i, txs := range cases {
		got := d.Detect(txs, 2.5)
		if len(got) != 0 {
			t.Errorf("case %d: expected no anomalies for %d transactions, got %d", i, len(txs), len(got))
		}
	}
}

func TestAmountDetectorSkipsZeroDeviation(t *testing.T) {
	d := NewAnomalyDetector()

	txs := []core.Transaction{
		tx("1", 100000, "a", "", noonOn(1)),
		tx("2", 100000, "b", "", noonOn(2)),
		tx("3", 100000, "c", "", noonOn(3)),
	}
	for _, threshold := range []float64{1, 2.5, 5} {
		if got := d.Detect(txs, threshold); len(got) != 0 {
			t.Fatalf("threshold %v: amount detector must stay silent on equal amounts, got %+v", threshold, got)
		}
	}
}

func TestAmountDetectorFlagsOutlier(t *testing.T) {
	d := NewAnomalyDetector()

	txs := make([]core.Transaction, 0, 10)
	for i := 0; i < 9; i++ {
		txs = append(txs, tx("small", 10, "desc", "", noonOn(i+1)))
	}
	txs = append(txs, tx("big", 1000, "spike", "", noonOn(10)))

	// Sample stddev of nine 10s and one 1000 is ~313, putting the spike at
	// z ~ 2.85.
	got := d.Detect(txs, 2.5)
	var flagged *core.Anomaly
	for i := range got {
		if got[i].Transaction.ID == "big" && got[i].Score > 2.5 {
			flagged = &got[i]
		}
	}
	if flagged == nil {
		t.Fatalf("expected the spike to be flagged, got %+v", got)
	}
	if flagged.Severity != core.SeverityLow {
		t.Errorf("z ~ 2.85 with threshold 2.5 should be low severity, got %s", flagged.Severity)
	}

	// A looser threshold moves the same z-score into the high band.
	got = d.Detect(txs, 1.0)
	found := false
	for _, a := range got {
		if a.Transaction.ID == "big" && a.Severity == core.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("z ~ 2.85 with threshold 1.0 should be high severity, got %+v", got)
	}
}

func TestTimeDetectorFlagsNightSpending(t *testing.T) {
	d := NewAnomalyDetector()

	night := time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)
	dawn := time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("night", 100, "a", "", night),
		tx("dawn", 100, "b", "", dawn),
		tx("noon", 100, "c", "", noonOn(2)),
	}

	got := d.Detect(txs, 2.5)
	if len(got) != 1 {
		t.Fatalf("expected exactly one anomaly, got %+v", got)
	}
	a := got[0]
	if a.Transaction.ID != "night" || a.Severity != core.SeverityLow || a.Score != 1.5 {
		t.Errorf("unexpected night anomaly: %+v", a)
	}
	if a.Reason != "Chi tiêu vào giờ bất thường: 2:00" {
		t.Errorf("unexpected reason: %q", a.Reason)
	}
}

func TestDuplicateDetectorFlagsRepeatsOnly(t *testing.T) {
	d := NewAnomalyDetector()

	day := noonOn(5)
	txs := []core.Transaction{
		tx("first", 1000, "coffee", "", day),
		tx("second", 1000, "coffee", "", day),
		tx("third", 1000, "coffee", "", day),
		tx("otherday", 1000, "coffee", "", noonOn(6)),
	}

	got := d.Detect(txs, 2.5)
	var dups []string
	for _, a := range got {
		if a.Score == 2.0 {
			dups = append(dups, a.Transaction.ID)
		}
	}
	if !reflect.DeepEqual(dups, []string{"second", "third"}) {
		t.Fatalf("duplicate detector flagged %v, want [second third]", dups)
	}
}

func TestCategoryDetector(t *testing.T) {
	d := NewAnomalyDetector()

	txs := []core.Transaction{
		tx("feast", 600000, "tiệc", "food", noonOn(1)),
		tx("tiny", 500, "sticker", "shopping", noonOn(2)),
		tx("nocat", 99000000, "mystery", "", noonOn(3)),
		tx("bill", 1500000, "điện", "utilities", noonOn(4)),
	}

	got := d.Detect(txs, 99)
	byID := map[string][]core.Anomaly{}
	for _, a := range got {
		byID[a.Transaction.ID] = append(byID[a.Transaction.ID], a)
	}

	if as := byID["feast"]; len(as) != 1 || as[0].Severity != core.SeverityMedium || as[0].Score != 2.5 {
		t.Errorf("food over ceiling should flag medium/2.5, got %+v", as)
	}
	if as := byID["tiny"]; len(as) != 1 || as[0].Severity != core.SeverityLow || as[0].Score != 1.2 {
		t.Errorf("small shopping amount should flag low/1.2, got %+v", as)
	}
	if as := byID["nocat"]; len(as) != 0 {
		t.Errorf("uncategorized transaction must be skipped, got %+v", as)
	}
	if as := byID["bill"]; len(as) != 0 {
		t.Errorf("utilities below ceiling must pass, got %+v", as)
	}
}

func TestDetectorOrderAndDeterminism(t *testing.T) {
	d := NewAnomalyDetector()

	night := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("a", 1000, "coffee", "", noonOn(1)),
		tx("b", 1000, "coffee", "", noonOn(1)),
		tx("c", 700000, "tiệc", "food", night),
	}

	first := d.Detect(txs, 2.5)
	second := d.Detect(txs, 2.5)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must yield identical output")
	}

	// Time finding (score 1.5) precedes duplicate (2.0) which precedes
	// category mismatch (2.5).
	var scores []float64
	for _, a := range first {
		scores = append(scores, a.Score)
	}
	if !reflect.DeepEqual(scores, []float64{1.5, 2.0, 2.5}) {
		t.Fatalf("detector output order wrong: %v", scores)
	}
}

func TestAmountReasonFormatting(t *testing.T) {
	d := NewAnomalyDetector()

	txs := make([]core.Transaction, 0, 10)
	for i := 0; i < 9; i++ {
		txs = append(txs, tx("small", 10000, "desc", "", noonOn(i+1)))
	}
	txs = append(txs, tx("big", 1000000, "spike", "", noonOn(10)))

	got := d.Detect(txs, 2.5)
	found := false
	for _, a := range got {
		if a.Transaction.ID != "big" || a.Score < 2.5 {
			continue
		}
		found = true
		if a.Reason != "Chi tiêu bất thường: 1.000.000 VND (cao hơn 3 lần độ lệch chuẩn)" {
			t.Errorf("unexpected reason: %q", a.Reason)
		}
	}
	if !found {
		t.Fatal("expected the spike to be flagged")
	}
}
