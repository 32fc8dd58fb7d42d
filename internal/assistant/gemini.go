// Package assistant wraps the Gemini API behind a conversational interface
// that always has a Vietnamese answer, even when the model is unavailable.
package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"finsight/internal/core"
)

// Fallback replies. The chat must never fail the queue request over a
// model problem, so both outages and missing configuration degrade to
// these strings.
const (
	msgNotConfigured = "Xin lỗi, AI Assistant chưa được cấu hình. Vui lòng liên hệ quản trị viên."
	msgModelFailed   = "Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu của bạn. Vui lòng thử lại sau."
)

// Gemini is the conversational assistant. With an empty API key it runs
// disabled and answers every message with msgNotConfigured.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		slog.WarnContext(ctx, "GEMINI_API_KEY not set, assistant disabled")
		return &Gemini{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Chat answers one user message. Model errors are logged and replaced with
// a fallback reply; the returned error is reserved for future hard
// failures and is currently always nil.
func (g *Gemini) Chat(ctx context.Context, message string, history []core.ChatTurn, fc *core.FinancialContext) (string, error) {
	if g.model == nil {
		return msgNotConfigured, nil
	}

	prompt := BuildPrompt(message, history, fc)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "Gemini request failed", "error", err)
		return msgModelFailed, nil
	}

	reply := extractText(resp)
	if reply == "" {
		slog.WarnContext(ctx, "Gemini returned an empty response")
		return msgModelFailed, nil
	}
	return reply, nil
}

func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}
