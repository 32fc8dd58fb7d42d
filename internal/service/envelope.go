package service

// Envelope is the reply shape every pattern answers with. Failures carry a
// user-facing message instead of data.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// User-facing failure messages, one per pattern.
const (
	msgCategorizeFailed = "Không thể phân loại chi tiêu. Vui lòng thử lại sau."
	msgPredictFailed    = "Không thể dự đoán chi tiêu. Vui lòng thử lại sau."
	msgAnomaliesFailed  = "Không thể phát hiện bất thường. Vui lòng thử lại sau."
	msgAlertsFailed     = "Không thể tạo cảnh báo ngân sách. Vui lòng thử lại sau."
	msgChatFailed       = "Không thể kết nối với AI Assistant. Vui lòng thử lại sau."
	msgInsightsFailed   = "Không thể lấy insights. Vui lòng thử lại sau."
)
