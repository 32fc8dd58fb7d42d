package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"finsight/internal/core"
	"finsight/internal/records"
)

const (
	topCategoryCount   = 3
	recentExpenseCount = 5
)

// financialContext summarises the user's last 30 days for the assistant
// prompt. Data fetch failures degrade to an empty context rather than
// blocking the chat.
func (s *Service) financialContext(ctx context.Context, userID string) core.FinancialContext {
	fc := core.FinancialContext{
		UserID:         userID,
		BudgetStatus:   "Không có dữ liệu",
		TopCategories:  []string{},
		RecentExpenses: []core.RecentExpense{},
	}

	now := s.now()
	transactions, err := s.transactions.ListTransactions(ctx, records.TransactionQuery{
		UserID: userID,
		From:   now.AddDate(0, 0, -contextLookbackDays),
		To:     now,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch transactions for financial context",
			"error", err,
			"user_id", userID)
		return fc
	}

	byCategory := map[string]float64{}
	for _, tx := range transactions {
		fc.TotalExpenses += tx.Amount
		if tx.Category != "" {
			byCategory[tx.Category] += tx.Amount
		}
	}
	fc.TopCategories = topCategories(byCategory, topCategoryCount)

	// Transactions arrive newest first from the expense service.
	for i, tx := range transactions {
		if i >= recentExpenseCount {
			break
		}
		fc.RecentExpenses = append(fc.RecentExpenses, core.RecentExpense{
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Date:        tx.SpentAt.Format("2006-01-02"),
		})
	}

	budgets, err := s.budgets.ListBudgets(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch budgets for financial context",
			"error", err,
			"user_id", userID)
		return fc
	}
	if len(budgets) == 0 {
		fc.BudgetStatus = "Chưa có ngân sách"
	} else {
		fc.BudgetStatus = fmt.Sprintf("Có %d ngân sách đang hoạt động", len(budgets))
	}

	return fc
}

// topCategories ranks categories by total spend, largest first, formatted
// as "category: amount VND". Ties break alphabetically so output is stable.
func topCategories(byCategory map[string]float64, limit int) []string {
	type entry struct {
		category string
		amount   float64
	}
	entries := make([]entry, 0, len(byCategory))
	for category, amount := range byCategory {
		entries = append(entries, entry{category, amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount > entries[j].amount
		}
		return entries[i].category < entries[j].category
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	formatted := make([]string, 0, len(entries))
	for _, e := range entries {
		formatted = append(formatted, fmt.Sprintf("%s: %s VND", e.category, core.FormatVND(e.amount)))
	}
	return formatted
}
