package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"anonchat-telegram-bot/internal/domain/ports/adapter"
	derror "anonchat-telegram-bot/internal/error"
	"anonchat-telegram-bot/internal/infra/metrics"
)

var _ adapter.Generator = (*GeminiAdapter)(nil)

// GeminiAdapter is the optional fallback provider, using the official SDK.
type GeminiAdapter struct {
	client  *genai.Client
	model   string
	maxOut  int
	persona string
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut int, persona string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if persona == "" {
		persona = DefaultPersonaPrompt
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut, persona: persona}, nil
}

func (g *GeminiAdapter) GenerateReply(ctx context.Context, history []adapter.Message) (string, error) {
	start := time.Now()
	reply, err := g.generate(ctx, history)
	metrics.ObserveAICall("gemini", g.model, float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		metrics.IncAIError("gemini", errKind(err))
	}
	return reply, err
}

func (g *GeminiAdapter) generate(ctx context.Context, history []adapter.Message) (string, error) {
	if len(history) == 0 {
		return "", derror.ErrEmptyResponse
	}
	last := history[len(history)-1]
	if strings.ToLower(last.Role) != "user" {
		return "", fmt.Errorf("%w: last message must be from user", derror.ErrMalformedResponse)
	}

	chat, err := g.client.Chats.Create(
		ctx,
		g.model,
		&genai.GenerateContentConfig{
			MaxOutputTokens:   int32(g.maxOut),
			SystemInstruction: genai.NewContentFromText(g.persona, genai.RoleUser),
		},
		toGenAIHistory(history[:len(history)-1]),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", derror.ErrNetwork, err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", derror.ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", derror.ErrNetwork, err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		text = strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	}
	if text == "" {
		return "", derror.ErrEmptyResponse
	}
	return text, nil
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if r := strings.ToLower(m.Role); r == "assistant" || r == "model" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
