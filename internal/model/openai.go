package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quietdesk/guidechat/internal/chat"
	"github.com/quietdesk/guidechat/internal/logger"
)

// Completer sends a system prompt plus the full conversation history to a
// chat-completion model and returns the raw assistant text. Implementations
// fail with *TransportError or *HTTPError; anything else in the reply shape
// is a plain error.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []chat.Message) (string, error)
}

// Client talks to an OpenAI-shaped chat-completions endpoint.
type Client struct {
	endpoint string
	token    string
	model    string
	http     *http.Client
	log      *logger.Logger
}

func NewClient(log *logger.Logger, endpoint, token, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		model:    model,
		http:     &http.Client{Timeout: timeout},
		log:      log.With("component", "model"),
	}
}

// --- wire types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, systemPrompt string, history []chat.Message) (string, error) {
	messages := make([]wireMessage, 0, len(history)+1)
	messages = append(messages, wireMessage{Role: string(chat.RoleSystem), Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return decodeContent(parsed.Choices[0].Message.Content)
}

// decodeContent handles both content shapes the endpoint may return: a plain
// string, or a list of parts whose dict-shaped entries carry a "text" field,
// joined with newlines. Non-dict parts are ignored.
func decodeContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("completion message has no content")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unexpected content shape: %s", string(raw))
	}
	var texts []string
	for _, p := range parts {
		obj, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := obj["text"].(string); ok {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n"), nil
}
