// Package worker routes queue requests to the service operation matching
// their pattern.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/service"
)

type operation func(ctx context.Context, data json.RawMessage) service.Envelope

// Dispatcher holds the pattern routing table.
type Dispatcher struct {
	operations map[string]operation
}

func NewDispatcher(svc *service.Service) *Dispatcher {
	return &Dispatcher{
		operations: map[string]operation{
			amqp.PatternCategorize:   svc.Categorize,
			amqp.PatternPredict:      svc.PredictSpending,
			amqp.PatternAnomalies:    svc.DetectAnomalies,
			amqp.PatternBudgetAlerts: svc.BudgetAlerts,
			amqp.PatternChat:         svc.Chat,
			amqp.PatternInsights:     svc.Insights,
		},
	}
}

// Handle runs the operation for one request and returns the reply body.
// Unknown patterns still get a reply so the caller is not left waiting.
func (d *Dispatcher) Handle(ctx context.Context, req *amqp.Request) ([]byte, error) {
	op, known := d.operations[req.Pattern]
	if !known {
		slog.WarnContext(ctx, "Unknown request pattern", "pattern", req.Pattern)
		return marshalEnvelope(service.Envelope{
			Success: false,
			Message: "Yêu cầu không được hỗ trợ.",
		})
	}

	return marshalEnvelope(op(ctx, req.Data))
}

func marshalEnvelope(env service.Envelope) ([]byte, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return body, nil
}
