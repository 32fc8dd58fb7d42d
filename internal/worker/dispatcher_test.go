package worker

import (
	"context"
	"encoding/json"
	"testing"

	"finsight/internal/amqp"
	"finsight/internal/service"
)

func TestHandleRoutesCategorize(t *testing.T) {
	d := NewDispatcher(service.New(nil, nil, nil, nil))

	req := &amqp.Request{
		Pattern: amqp.PatternCategorize,
		Data:    json.RawMessage(`{"userId":"user-1","description":"ăn phở bò","amount":50000}`),
	}
	body, err := d.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var reply struct {
		Success bool `json:"success"`
		Data    struct {
			Category string `json:"category"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if !reply.Success {
		t.Fatal("reply.Success = false, want true")
	}
	if reply.Data.Category != "food" {
		t.Errorf("Category = %q, want %q", reply.Data.Category, "food")
	}
}

func TestHandleUnknownPattern(t *testing.T) {
	d := NewDispatcher(service.New(nil, nil, nil, nil))

	body, err := d.Handle(context.Background(), &amqp.Request{
		Pattern: "ai.unknown",
		Data:    json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.Success {
		t.Fatal("reply.Success = true for unknown pattern")
	}
	if reply.Message != "Yêu cầu không được hỗ trợ." {
		t.Errorf("Message = %q", reply.Message)
	}
}

func TestHandleInvalidPayload(t *testing.T) {
	d := NewDispatcher(service.New(nil, nil, nil, nil))

	body, err := d.Handle(context.Background(), &amqp.Request{
		Pattern: amqp.PatternCategorize,
		Data:    json.RawMessage(`"not an object"`),
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.Success {
		t.Fatal("reply.Success = true for invalid payload")
	}
	if reply.Message == "" {
		t.Error("reply.Message is empty, want a user-facing failure message")
	}
}
