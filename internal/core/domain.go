package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	AlertWarning  AlertType = "warning"
	AlertDanger   AlertType = "danger"
	AlertCritical AlertType = "critical"
)

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type (
	// Period selects the calendar bucket used by spending prediction.
	Period string

	// Severity grades an anomaly finding.
	Severity string

	// AlertType grades a budget alert.
	AlertType string

	// Trend is the estimated direction of spending across periods.
	Trend string

	// Transaction is a single spend record as served by the expense service.
	// Engines treat it as immutable input.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description"`
		Category    string    `json:"category,omitempty"`
		SpentAt     time.Time `json:"spentAt"`
	}

	// Budget is a spending limit for one category over a date range,
	// as served by the budget service.
	Budget struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Category    string    `json:"category"`
		LimitAmount float64   `json:"limitAmount"`
		StartDate   time.Time `json:"startDate"`
		EndDate     time.Time `json:"endDate"`
	}
)

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDateRange = errors.New("end date before start date")
	ErrEmptyDescription = errors.New("empty description")
)

func (p Period) Validate() error {
	switch p {
	case Week, Month, Year:
		return nil
	}
	return ErrInvalidPeriod
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.SpentAt.IsZero() {
		return errors.New("spent-at timestamp cannot be zero")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.LimitAmount <= 0 {
		return ErrInvalidAmount
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return errors.New("budget dates cannot be zero")
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}
