package model

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/quietdesk/guidechat/internal/chat"
	"github.com/quietdesk/guidechat/internal/logger"
)

// GeminiClient is the alternate Completer backed by the Gemini API. The
// normalizer downstream enforces the turn contract either way.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

func NewGeminiClient(ctx context.Context, log *logger.Logger, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log.With("component", "model", "provider", "gemini"),
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt string, history []chat.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, geminiContents(history), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", &TransportError{Err: err}
	}
	return resp.Text(), nil
}

// geminiContents maps conversation history onto Gemini content turns:
// assistant entries become the model role, everything else the user role.
func geminiContents(history []chat.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

var _ Completer = (*GeminiClient)(nil)
