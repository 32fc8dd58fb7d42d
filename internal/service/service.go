// Package service implements the operations behind each queue pattern,
// wiring transaction and budget data into the analysis engines and the
// assistant.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"finsight/internal/core"
	"finsight/internal/engine"
	"finsight/internal/records"
)

// TransactionSource lists a user's transactions, optionally narrowed by
// date range and category.
type TransactionSource interface {
	ListTransactions(ctx context.Context, query records.TransactionQuery) ([]core.Transaction, error)
}

// BudgetSource lists a user's budgets.
type BudgetSource interface {
	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
}

// Assistant produces a conversational reply given prior turns and,
// optionally, the user's financial context.
type Assistant interface {
	Chat(ctx context.Context, message string, history []core.ChatTurn, fc *core.FinancialContext) (string, error)
}

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID string) (string, error)
	SaveExchange(ctx context.Context, conversationID, userMessage, reply string) error
	History(ctx context.Context, conversationID string, limit int) ([]core.ChatTurn, error)
}

// Lookback windows for data-driven operations.
const (
	predictLookbackWeeks  = 12
	predictLookbackMonths = 12
	predictLookbackYears  = 5
	contextLookbackDays   = 30
	historyLimit          = 10
)

// Service answers the six queue patterns. The now field is injected so
// period boundaries are testable.
type Service struct {
	transactions TransactionSource
	budgets      BudgetSource
	assistant    Assistant
	store        ConversationStore

	classifier *engine.Classifier
	detector   *engine.AnomalyDetector
	predictor  *engine.Predictor
	alerts     *engine.AlertGenerator

	now func() time.Time
}

func New(transactions TransactionSource, budgets BudgetSource, assistant Assistant, store ConversationStore) *Service {
	return &Service{
		transactions: transactions,
		budgets:      budgets,
		assistant:    assistant,
		store:        store,
		classifier:   engine.NewClassifier(),
		detector:     engine.NewAnomalyDetector(),
		predictor:    engine.NewPredictor(),
		alerts:       engine.NewAlertGenerator(),
		now:          time.Now,
	}
}

// Categorize suggests a category for one expense. Pure computation, no
// remote calls.
func (s *Service) Categorize(ctx context.Context, data json.RawMessage) Envelope {
	var req CategorizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode categorize request", "error", err)
		return fail(msgCategorizeFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid categorize request", "error", err)
		return fail(msgCategorizeFailed)
	}

	result := s.classifier.Classify(req.Description, req.Amount)
	return ok(result)
}

// PredictSpending forecasts the next period from historical buckets.
func (s *Service) PredictSpending(ctx context.Context, data json.RawMessage) Envelope {
	var req PredictRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode predict request", "error", err)
		return fail(msgPredictFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid predict request", "error", err)
		return fail(msgPredictFailed)
	}

	now := s.now()
	transactions, err := s.transactions.ListTransactions(ctx, records.TransactionQuery{
		UserID:   req.UserID,
		From:     lookbackStart(now, req.Period),
		To:       now,
		Category: req.Category,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions for prediction",
			"error", err,
			"user_id", req.UserID)
		return fail(msgPredictFailed)
	}

	result := s.predictor.Predict(transactions, req.Period, req.Category)
	return ok(result)
}

// AnomaliesResult is the ai.detect_anomalies payload.
type AnomaliesResult struct {
	Anomalies []core.Anomaly `json:"anomalies"`
	Total     int            `json:"total"`
}

// DetectAnomalies flags unusual transactions, honoring the request's date
// range and category filters.
func (s *Service) DetectAnomalies(ctx context.Context, data json.RawMessage) Envelope {
	var req AnomaliesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode anomalies request", "error", err)
		return fail(msgAnomaliesFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid anomalies request", "error", err)
		return fail(msgAnomaliesFailed)
	}

	transactions, err := s.transactions.ListTransactions(ctx, records.TransactionQuery{
		UserID:   req.UserID,
		From:     req.from,
		To:       req.to,
		Category: req.Category,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions for anomaly detection",
			"error", err,
			"user_id", req.UserID)
		return fail(msgAnomaliesFailed)
	}

	anomalies := s.detector.Detect(transactions, req.Threshold)
	return ok(AnomaliesResult{Anomalies: anomalies, Total: len(anomalies)})
}

// AlertsResult is the ai.budget_alerts payload.
type AlertsResult struct {
	Alerts []core.Alert `json:"alerts"`
	Total  int          `json:"total"`
}

// BudgetAlerts evaluates every budget of the user against current spend.
func (s *Service) BudgetAlerts(ctx context.Context, data json.RawMessage) Envelope {
	var req AlertsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode alerts request", "error", err)
		return fail(msgAlertsFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid alerts request", "error", err)
		return fail(msgAlertsFailed)
	}

	budgets, err := s.budgets.ListBudgets(ctx, req.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list budgets",
			"error", err,
			"user_id", req.UserID)
		return fail(msgAlertsFailed)
	}

	transactions, err := s.transactions.ListTransactions(ctx, records.TransactionQuery{UserID: req.UserID})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions for budget alerts",
			"error", err,
			"user_id", req.UserID)
		return fail(msgAlertsFailed)
	}

	alerts := s.alerts.Generate(budgets, transactions, s.now())
	return ok(AlertsResult{Alerts: alerts, Total: len(alerts)})
}

// ChatResult is the assistant reply payload.
type ChatResult struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
}

// Chat runs one assistant exchange, persisting both sides of it. Losing the
// persistence write degrades history but does not fail the reply.
func (s *Service) Chat(ctx context.Context, data json.RawMessage) Envelope {
	var req ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode chat request", "error", err)
		return fail(msgChatFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid chat request", "error", err)
		return fail(msgChatFailed)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		id, err := s.store.CreateConversation(ctx, req.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create conversation",
				"error", err,
				"user_id", req.UserID)
			return fail(msgChatFailed)
		}
		conversationID = id
	}

	history, err := s.store.History(ctx, conversationID, historyLimit)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load conversation history",
			"error", err,
			"conversation_id", conversationID)
		history = nil
	}

	// Callers opt out of the context fetch with an explicit false.
	var fc *core.FinancialContext
	if req.IncludeContext == nil || *req.IncludeContext {
		built := s.financialContext(ctx, req.UserID)
		fc = &built
	}

	reply, err := s.assistant.Chat(ctx, req.Message, history, fc)
	if err != nil {
		slog.ErrorContext(ctx, "Assistant chat failed",
			"error", err,
			"user_id", req.UserID)
		return fail(msgChatFailed)
	}

	if err := s.store.SaveExchange(ctx, conversationID, req.Message, reply); err != nil {
		slog.ErrorContext(ctx, "Failed to persist chat exchange",
			"error", err,
			"conversation_id", conversationID)
	}

	return ok(ChatResult{Response: reply, ConversationID: conversationID})
}

// lookbackStart returns how far back to fetch history for a prediction.
func lookbackStart(now time.Time, period core.Period) time.Time {
	switch period {
	case core.Week:
		return now.AddDate(0, 0, -7*predictLookbackWeeks)
	case core.Year:
		return now.AddDate(-predictLookbackYears, 0, 0)
	default:
		return now.AddDate(0, -predictLookbackMonths, 0)
	}
}
