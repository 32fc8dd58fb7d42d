package assistant

import (
	"fmt"
	"strings"

	"finsight/internal/core"
)

// BuildPrompt assembles the full model prompt: persona, the user's
// financial context when provided, prior turns, and the new message.
func BuildPrompt(message string, history []core.ChatTurn, fc *core.FinancialContext) string {
	var sb strings.Builder

	sb.WriteString("Bạn là FEPA AI Assistant, trợ lý tài chính cá nhân thông minh.\n")
	sb.WriteString("Nhiệm vụ của bạn là giúp người dùng quản lý chi tiêu, ngân sách và đưa ra lời khuyên tài chính.\n")
	sb.WriteString("Luôn trả lời bằng tiếng Việt, ngắn gọn và thân thiện.\n")
	sb.WriteString("Số tiền luôn hiển thị theo định dạng Việt Nam, ví dụ 1.500.000 VND.\n\n")

	if fc != nil {
		sb.WriteString("Thông tin tài chính của người dùng (30 ngày gần nhất):\n")
		fmt.Fprintf(&sb, "- Tổng chi tiêu: %s VND\n", core.FormatVND(fc.TotalExpenses))
		fmt.Fprintf(&sb, "- Ngân sách: %s\n", fc.BudgetStatus)
		if len(fc.TopCategories) > 0 {
			fmt.Fprintf(&sb, "- Danh mục chi tiêu nhiều nhất: %s\n", strings.Join(fc.TopCategories, "; "))
		}
		if len(fc.RecentExpenses) > 0 {
			sb.WriteString("- Chi tiêu gần đây:\n")
			for _, expense := range fc.RecentExpenses {
				fmt.Fprintf(&sb, "  + %s: %s VND (%s, %s)\n",
					expense.Description,
					core.FormatVND(expense.Amount),
					expense.Category,
					expense.Date)
			}
		}
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		sb.WriteString("Cuộc trò chuyện trước đó:\n")
		for _, turn := range history {
			label := "Người dùng"
			if turn.Role == "assistant" {
				label = "Trợ lý"
			}
			fmt.Fprintf(&sb, "%s: %s\n", label, turn.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Người dùng: %s\n", message)
	sb.WriteString("Trợ lý:")

	return sb.String()
}
