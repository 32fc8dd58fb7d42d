package assistant

import (
	"context"
	"strings"
	"testing"

	"finsight/internal/core"
)

func TestBuildPrompt(t *testing.T) {
	fc := core.FinancialContext{
		UserID:        "user-1",
		TotalExpenses: 1500000,
		BudgetStatus:  "Có 2 ngân sách đang hoạt động",
		TopCategories: []string{"food: 900.000 VND", "transport: 600.000 VND"},
		RecentExpenses: []core.RecentExpense{
			{Description: "cà phê", Amount: 50000, Category: "food", Date: "2024-03-19"},
		},
	}
	history := []core.ChatTurn{
		{Role: "user", Content: "xin chào"},
		{Role: "assistant", Content: "chào bạn"},
	}

	prompt := BuildPrompt("Tháng này tôi tiêu bao nhiêu?", history, &fc)

	for _, want := range []string{
		"FEPA AI Assistant",
		"Tổng chi tiêu: 1.500.000 VND",
		"Có 2 ngân sách đang hoạt động",
		"food: 900.000 VND; transport: 600.000 VND",
		"cà phê: 50.000 VND (food, 2024-03-19)",
		"Người dùng: xin chào",
		"Trợ lý: chào bạn",
		"Người dùng: Tháng này tôi tiêu bao nhiêu?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "Trợ lý:") {
		t.Errorf("prompt should end with the assistant label, got tail %q", prompt[len(prompt)-20:])
	}
}

func TestBuildPromptEmptyContext(t *testing.T) {
	fc := core.FinancialContext{BudgetStatus: "Chưa có ngân sách"}

	prompt := BuildPrompt("xin chào", nil, &fc)

	if !strings.Contains(prompt, "Tổng chi tiêu: 0 VND") {
		t.Error("prompt should show zero spending")
	}
	if strings.Contains(prompt, "Cuộc trò chuyện trước đó") {
		t.Error("prompt should omit the history section when there is none")
	}
	if strings.Contains(prompt, "Chi tiêu gần đây") {
		t.Error("prompt should omit recent expenses when there are none")
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := BuildPrompt("xin chào", nil, nil)

	if strings.Contains(prompt, "Thông tin tài chính") {
		t.Error("prompt should omit the financial section entirely")
	}
	if !strings.Contains(prompt, "Người dùng: xin chào") {
		t.Error("prompt should still carry the message")
	}
}

func TestDisabledAssistant(t *testing.T) {
	gemini, err := New(context.Background(), "", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, err := gemini.Chat(context.Background(), "xin chào", nil, nil)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != msgNotConfigured {
		t.Errorf("Chat() = %q, want %q", reply, msgNotConfigured)
	}
}
