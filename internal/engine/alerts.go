package engine

import (
	"fmt"
	"math"
	"time"

	"finsight/internal/core"
)

// AlertConfig fixes the percentage tiers of budget alerting.
type AlertConfig struct {
	WarningPercent  float64
	DangerPercent   float64
	CriticalPercent float64
}

// DefaultAlertConfig returns the deployed 50/80/100 tiers.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		WarningPercent:  50,
		DangerPercent:   80,
		CriticalPercent: 100,
	}
}

// AlertGenerator compares per-category spend against budget limits and
// projects the spend rate to the end of each budget period. The reference
// time is an explicit argument so results are reproducible.
type AlertGenerator struct {
	cfg AlertConfig
}

func NewAlertGenerator() *AlertGenerator {
	return &AlertGenerator{cfg: DefaultAlertConfig()}
}

func NewAlertGeneratorWithConfig(cfg AlertConfig) *AlertGenerator {
	return &AlertGenerator{cfg: cfg}
}

// Generate emits at most one tier alert per budget (warning, danger or
// critical by spend percentage) plus, independently, one projection warning
// when the current daily rate extrapolates past the limit while the tier is
// still below danger. A budget can therefore yield two alerts.
func (g *AlertGenerator) Generate(budgets []core.Budget, txs []core.Transaction, now time.Time) []core.Alert {
	alerts := []core.Alert{}

	for _, budget := range budgets {
		// Limits are positive by contract; skip rather than divide by zero.
		if budget.LimitAmount <= 0 {
			continue
		}

		totalSpent := 0.0
		for _, tx := range txs {
			if tx.Category != budget.Category {
				continue
			}
			if tx.SpentAt.Before(budget.StartDate) || tx.SpentAt.After(budget.EndDate) {
				continue
			}
			totalSpent += tx.Amount
		}

		percentage := totalSpent / budget.LimitAmount * 100
		rounded := int(math.Round(percentage))

		switch {
		case percentage >= g.cfg.CriticalPercent:
			over := totalSpent - budget.LimitAmount
			alerts = append(alerts, core.Alert{
				BudgetID: budget.ID,
				Type:     core.AlertCritical,
				Message: fmt.Sprintf("Vượt ngân sách %q: %s VND (%d%%)",
					budget.Name, core.FormatVND(over), rounded),
				Severity:   core.AlertCritical,
				Percentage: rounded,
			})
		case percentage >= g.cfg.DangerPercent:
			remaining := budget.LimitAmount - totalSpent
			alerts = append(alerts, core.Alert{
				BudgetID: budget.ID,
				Type:     core.AlertDanger,
				Message: fmt.Sprintf("Sắp vượt ngân sách %q: Còn %s VND (%d%%)",
					budget.Name, core.FormatVND(remaining), int(math.Round(100-percentage))),
				Severity:   core.AlertDanger,
				Percentage: rounded,
			})
		case percentage >= g.cfg.WarningPercent:
			alerts = append(alerts, core.Alert{
				BudgetID: budget.ID,
				Type:     core.AlertWarning,
				Message: fmt.Sprintf("Đã sử dụng %d%% ngân sách %q",
					rounded, budget.Name),
				Severity:   core.AlertWarning,
				Percentage: rounded,
			})
		}

		if percentage <= 0 || percentage >= 100 {
			continue
		}

		daysElapsed := ceilDays(budget.StartDate, now)
		totalDays := ceilDays(budget.StartDate, budget.EndDate)
		if daysElapsed <= 0 || totalDays <= 0 {
			continue
		}

		dailyRate := totalSpent / float64(daysElapsed)
		projectedTotal := dailyRate * float64(totalDays)
		projectedPercentage := projectedTotal / budget.LimitAmount * 100

		if projectedPercentage > 100 && percentage < g.cfg.DangerPercent {
			alerts = append(alerts, core.Alert{
				BudgetID: budget.ID,
				Type:     core.AlertWarning,
				Message: fmt.Sprintf("Dự kiến vượt ngân sách %q: %d%% nếu tiếp tục chi tiêu",
					budget.Name, int(math.Round(projectedPercentage))),
				Severity:   core.AlertWarning,
				Percentage: rounded,
			})
		}
	}

	return alerts
}

// ceilDays is the absolute distance between two instants in days, rounded
// up to whole days.
func ceilDays(from, to time.Time) int {
	return int(math.Ceil(math.Abs(to.Sub(from).Hours()) / 24))
}
