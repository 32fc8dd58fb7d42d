// Package records fetches transactions and budgets from the expense and
// budget services over AMQP request/reply.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/core"
)

// TransactionQuery narrows a transaction listing. Zero-value fields are
// omitted from the request so the remote service applies no filter.
type TransactionQuery struct {
	UserID   string
	From     time.Time
	To       time.Time
	Category string
}

// Client resolves transaction and budget listings through collaborator
// queues. Replies use the shared {success, data} envelope.
type Client struct {
	amqpClient   *amqp.Client
	expenseQueue string
	budgetQueue  string
	timeout      time.Duration
}

func NewClient(amqpClient *amqp.Client, expenseQueue, budgetQueue string, timeout time.Duration) *Client {
	return &Client{
		amqpClient:   amqpClient,
		expenseQueue: expenseQueue,
		budgetQueue:  budgetQueue,
		timeout:      timeout,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type transactionPayload struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	SpentAt     string  `json:"spentAt"`
}

type budgetPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limitAmount"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
}

// ListTransactions fetches the user's transactions matching the query.
func (c *Client) ListTransactions(ctx context.Context, query TransactionQuery) ([]core.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := map[string]any{"userId": query.UserID}
	if !query.From.IsZero() {
		payload["from"] = query.From.Format(time.RFC3339)
	}
	if !query.To.IsZero() {
		payload["to"] = query.To.Format(time.RFC3339)
	}
	if query.Category != "" {
		payload["category"] = query.Category
	}

	reply, err := c.amqpClient.Call(ctx, c.expenseQueue, amqp.PatternExpenseFindAll, payload)
	if err != nil {
		return nil, fmt.Errorf("call expense service: %w", err)
	}

	data, err := unwrap(reply)
	if err != nil {
		return nil, fmt.Errorf("expense service reply: %w", err)
	}

	var raw []transactionPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}

	transactions := make([]core.Transaction, 0, len(raw))
	for _, item := range raw {
		spentAt, err := ParseTimestamp(item.SpentAt)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", item.ID, err)
		}
		transactions = append(transactions, core.Transaction{
			ID:          item.ID,
			Amount:      item.Amount,
			Description: item.Description,
			Category:    item.Category,
			SpentAt:     spentAt,
		})
	}
	return transactions, nil
}

// ListBudgets fetches the user's budgets.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.amqpClient.Call(ctx, c.budgetQueue, amqp.PatternBudgetFindAll, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("call budget service: %w", err)
	}

	data, err := unwrap(reply)
	if err != nil {
		return nil, fmt.Errorf("budget service reply: %w", err)
	}

	var raw []budgetPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal budgets: %w", err)
	}

	budgets := make([]core.Budget, 0, len(raw))
	for _, item := range raw {
		start, err := ParseTimestamp(item.StartDate)
		if err != nil {
			return nil, fmt.Errorf("budget %s: %w", item.ID, err)
		}
		end, err := ParseTimestamp(item.EndDate)
		if err != nil {
			return nil, fmt.Errorf("budget %s: %w", item.ID, err)
		}
		budgets = append(budgets, core.Budget{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.Category,
			LimitAmount: item.LimitAmount,
			StartDate:   start,
			EndDate:     end,
		})
	}
	return budgets, nil
}

func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return nil, fmt.Errorf("remote failure: %s", env.Message)
		}
		return nil, fmt.Errorf("remote failure")
	}
	return env.Data, nil
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds, plus
// bare dates, which is what the collaborating services emit.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", value)
}
