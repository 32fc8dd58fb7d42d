package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Patterns this service consumes on its own queue.
const (
	PatternCategorize   = "ai.categorize_expense"
	PatternPredict      = "ai.predict_spending"
	PatternAnomalies    = "ai.detect_anomalies"
	PatternBudgetAlerts = "ai.budget_alerts"
	PatternChat         = "ai.assistant_chat"
	PatternInsights     = "ai.get_insights"
)

// Patterns this service sends to collaborator queues.
const (
	PatternExpenseFindAll = "expense.findAll"
	PatternBudgetFindAll  = "budget.find_all"
)

var ErrMissingPattern = errors.New("request has no pattern")

// Request is the envelope every queue message carries: a routing pattern
// plus an opaque payload the handler decodes per pattern.
type Request struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

func NewRequest(pattern string, payload any) (*Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Request{Pattern: pattern, Data: data}, nil
}

func RequestFromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	if req.Pattern == "" {
		return nil, ErrMissingPattern
	}
	return &req, nil
}

func (r *Request) ToJSON() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return data, nil
}

// UserID pulls the userId field out of the payload, for logging and for
// handlers that only need the caller's identity. Empty when absent.
func (r *Request) UserID() string {
	var payload struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(r.Data, &payload); err != nil {
		return ""
	}
	return payload.UserID
}
