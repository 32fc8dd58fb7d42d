package core

// CategorySuggestion is one ranked candidate from the classifier.
type CategorySuggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// CategoryResult is the classifier output: the winning category plus up to
// three ranked alternatives (the winner included).
type CategoryResult struct {
	Category            string               `json:"category"`
	Confidence          float64              `json:"confidence"`
	SuggestedCategories []CategorySuggestion `json:"suggestedCategories"`
}

// Anomaly flags one suspicious transaction. Score is on the scale of the
// sub-detector that produced it and is not comparable across detectors.
type Anomaly struct {
	Transaction Transaction `json:"expense"`
	Reason      string      `json:"reason"`
	Severity    Severity    `json:"severity"`
	Score       float64     `json:"score"`
}

// Alert is a budget warning. Severity mirrors Type; Percentage is the spend
// ratio rounded to the nearest integer.
type Alert struct {
	BudgetID   string    `json:"budgetId"`
	Type       AlertType `json:"type"`
	Message    string    `json:"message"`
	Severity   AlertType `json:"severity"`
	Percentage int       `json:"percentage"`
}

// PeriodAmount is one bucket of the prediction breakdown.
type PeriodAmount struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// PredictionResult is the spending forecast for the next period.
type PredictionResult struct {
	Prediction float64        `json:"prediction"`
	Trend      Trend          `json:"trend"`
	Confidence float64        `json:"confidence"`
	Breakdown  []PeriodAmount `json:"breakdown"`
}

// ChatTurn is one prior message in a conversation, oldest first when in a
// slice. Role is "user" or "assistant".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecentExpense is a compact transaction view embedded in the assistant's
// financial context.
type RecentExpense struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// FinancialContext summarises a user's finances for the assistant prompt.
type FinancialContext struct {
	UserID         string          `json:"userId"`
	TotalExpenses  float64         `json:"totalExpenses"`
	BudgetStatus   string          `json:"budgetStatus"`
	TopCategories  []string        `json:"topCategories"`
	RecentExpenses []RecentExpense `json:"recentExpenses"`
}
