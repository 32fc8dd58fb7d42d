package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"finsight/internal/core"
	"finsight/internal/records"
)

// Insight is one card in an insights reply, carrying the full payload of
// the operation it summarises.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Data        any    `json:"data"`
}

// InsightsResult is the ai.get_insights payload.
type InsightsResult struct {
	Insights []Insight `json:"insights"`
	Total    int       `json:"total"`
}

// Insights composes the other operations into summary cards: next month's
// prediction always, anomalies and budget alerts only when there are any.
func (s *Service) Insights(ctx context.Context, data json.RawMessage) Envelope {
	var req InsightsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.ErrorContext(ctx, "Failed to decode insights request", "error", err)
		return fail(msgInsightsFailed)
	}
	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid insights request", "error", err)
		return fail(msgInsightsFailed)
	}

	transactions, err := s.transactions.ListTransactions(ctx, records.TransactionQuery{UserID: req.UserID})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions for insights",
			"error", err,
			"user_id", req.UserID)
		return fail(msgInsightsFailed)
	}

	insights := []Insight{}

	prediction := s.predictor.Predict(transactions, core.Month, "")
	insights = append(insights, Insight{
		Type:        "prediction",
		Title:       "Dự đoán chi tiêu tháng tới",
		Description: fmt.Sprintf("Dự kiến chi tiêu: %s VND", core.FormatVND(prediction.Prediction)),
		Data:        prediction,
	})

	if anomalies := s.detector.Detect(transactions, 0); len(anomalies) > 0 {
		insights = append(insights, Insight{
			Type:        "anomalies",
			Title:       "Phát hiện bất thường",
			Description: fmt.Sprintf("Tìm thấy %d giao dịch bất thường", len(anomalies)),
			Data:        AnomaliesResult{Anomalies: anomalies, Total: len(anomalies)},
		})
	}

	// Budget data is best effort: the spending cards above still stand
	// when the budget service is down.
	budgets, err := s.budgets.ListBudgets(ctx, req.UserID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list budgets for insights",
			"error", err,
			"user_id", req.UserID)
	} else if alerts := s.alerts.Generate(budgets, transactions, s.now()); len(alerts) > 0 {
		insights = append(insights, Insight{
			Type:        "alerts",
			Title:       "Cảnh báo ngân sách",
			Description: fmt.Sprintf("Có %d cảnh báo cần chú ý", len(alerts)),
			Data:        AlertsResult{Alerts: alerts, Total: len(alerts)},
		})
	}

	return ok(InsightsResult{Insights: insights, Total: len(insights)})
}
