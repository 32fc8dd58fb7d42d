package service

import (
	"errors"
	"fmt"
	"time"

	"finsight/internal/core"
	"finsight/internal/records"
)

// CategorizeRequest asks for a category suggestion for one expense.
type CategorizeRequest struct {
	UserID      string  `json:"userId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (r CategorizeRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	if r.Description == "" {
		return errors.New("description should not be empty")
	}
	if r.Amount < 0 {
		return errors.New("amount must not be less than 0")
	}
	return nil
}

// PredictRequest asks for a spending forecast. Period defaults to month.
type PredictRequest struct {
	UserID   string      `json:"userId"`
	Period   core.Period `json:"period"`
	Category string      `json:"category"`
}

func (r *PredictRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	if r.Period == "" {
		r.Period = core.Month
	}
	if err := r.Period.Validate(); err != nil {
		return fmt.Errorf("period must be one of week, month, year")
	}
	return nil
}

// AnomaliesRequest asks for unusual transactions, optionally narrowed by
// date range and category. Threshold zero means the detector's default;
// otherwise it must fall in [1, 5].
type AnomaliesRequest struct {
	UserID    string  `json:"userId"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Category  string  `json:"category"`
	Threshold float64 `json:"threshold"`

	// Parsed by Validate from From/To when present.
	from time.Time
	to   time.Time
}

func (r *AnomaliesRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	if r.Threshold != 0 && (r.Threshold < 1 || r.Threshold > 5) {
		return errors.New("threshold must be between 1 and 5")
	}
	if r.From != "" {
		t, err := records.ParseTimestamp(r.From)
		if err != nil {
			return errors.New("from must be a valid date")
		}
		r.from = t
	}
	if r.To != "" {
		t, err := records.ParseTimestamp(r.To)
		if err != nil {
			return errors.New("to must be a valid date")
		}
		r.to = t
	}
	return nil
}

// AlertsRequest asks for budget alerts across all of the user's budgets.
type AlertsRequest struct {
	UserID string `json:"userId"`
}

func (r AlertsRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	return nil
}

// ChatRequest carries one assistant message. An empty ConversationID starts
// a new conversation. IncludeContext must be explicitly false to skip the
// financial-context fetch; absent means include.
type ChatRequest struct {
	UserID         string `json:"userId"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	IncludeContext *bool  `json:"includeContext"`
}

func (r ChatRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	if r.Message == "" {
		return errors.New("message should not be empty")
	}
	return nil
}

// InsightsRequest asks for a spending summary over the current period.
type InsightsRequest struct {
	UserID string      `json:"userId"`
	Period core.Period `json:"period"`
}

func (r *InsightsRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("userId should not be empty")
	}
	if r.Period == "" {
		r.Period = core.Month
	}
	if err := r.Period.Validate(); err != nil {
		return fmt.Errorf("period must be one of week, month, year")
	}
	return nil
}
