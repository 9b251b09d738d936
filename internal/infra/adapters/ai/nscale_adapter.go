package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/config"
	"anonchat-telegram-bot/internal/domain/ports/adapter"
	derror "anonchat-telegram-bot/internal/error"
	"anonchat-telegram-bot/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Generator = (*NScaleAdapter)(nil)

// NScaleAdapter implements adapter.Generator against NScale's
// OpenAI-compatible gateway. Chat completions path is the same as OpenAI:
// /chat/completions, Authorization: Bearer <key>.
type NScaleAdapter struct {
	apiKey    string
	base      string // e.g., https://inference.api.nscale.com/v1
	model     string
	maxTokens int
	persona   string
	client    *http.Client
	log       *zerolog.Logger
	enc       *tiktoken.Tiktoken // best-effort prompt counting; nil when unavailable
}

func NewNScaleAdapter(cfg config.AIConfig, logger *zerolog.Logger) (*NScaleAdapter, error) {
	if cfg.NScaleKey == "" {
		return nil, errors.New("nscale api key empty")
	}
	persona := cfg.PersonaPrompt
	if persona == "" {
		persona = DefaultPersonaPrompt
	}
	// Llama-family models have no tiktoken tables; cl100k_base is a close
	// enough approximation for metrics.
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn().Err(err).Msg("tiktoken unavailable, prompt token metric disabled")
		enc = nil
	}
	return &NScaleAdapter{
		apiKey:    cfg.NScaleKey,
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		persona:   persona,
		client:    &http.Client{Timeout: cfg.Timeout()},
		log:       logger,
		enc:       enc,
	}, nil
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []adapter.Message `json:"messages"`
	Temperature float64           `json:"temperature"`
	TopP        float64           `json:"top_p"`
	MaxTokens   int               `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      adapter.Message `json:"message"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
}

func (n *NScaleAdapter) GenerateReply(ctx context.Context, history []adapter.Message) (string, error) {
	messages := make([]adapter.Message, 0, len(history)+1)
	messages = append(messages, adapter.Message{Role: "system", Content: n.persona})
	messages = append(messages, history...)

	metrics.AddPromptTokens("nscale", n.model, n.countTokens(messages))

	start := time.Now()
	reply, err := n.complete(ctx, messages)
	metrics.ObserveAICall("nscale", n.model, float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		metrics.IncAIError("nscale", errKind(err))
	}
	return reply, err
}

func (n *NScaleAdapter) complete(ctx context.Context, messages []adapter.Message) (string, error) {
	body := chatCompletionRequest{
		Model:       n.model,
		Messages:    messages,
		Temperature: 0.9,
		TopP:        0.95,
		MaxTokens:   n.maxTokens,
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", derror.ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", derror.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", mapHTTPError(resp.StatusCode, string(raw))
	}

	var payload chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", derror.ErrMalformedResponse, err)
	}
	if len(payload.Choices) == 0 {
		return "", derror.ErrMalformedResponse
	}
	choice := payload.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		if choice.FinishReason == "length" {
			return "", derror.ErrTruncatedResponse
		}
		return "", derror.ErrEmptyResponse
	}
	return text, nil
}

func (n *NScaleAdapter) countTokens(messages []adapter.Message) int {
	if n.enc == nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(n.enc.Encode(m.Content, nil, nil))
	}
	return total
}

func mapHTTPError(status int, body string) error {
	normalized := strings.ToLower(body)
	switch {
	case status == http.StatusUnauthorized,
		strings.Contains(normalized, "invalid api key"),
		strings.Contains(normalized, "unauthorized"):
		return derror.ErrAuth
	case status == http.StatusNotFound,
		strings.Contains(normalized, "model") && strings.Contains(normalized, "not found"):
		return derror.ErrModelUnavailable
	case status == http.StatusTooManyRequests,
		strings.Contains(normalized, "rate limit"):
		return derror.ErrRateLimited
	default:
		return fmt.Errorf("%w: http %d: %s", derror.ErrNetwork, status, body)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// errKind labels a generation failure for metrics.
func errKind(err error) string {
	switch {
	case errors.Is(err, derror.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, derror.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, derror.ErrAuth):
		return "auth"
	case errors.Is(err, derror.ErrTimeout):
		return "timeout"
	case errors.Is(err, derror.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, derror.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, derror.ErrTruncatedResponse):
		return "truncated_response"
	case errors.Is(err, derror.ErrNetwork):
		return "network"
	default:
		return "other"
	}
}
