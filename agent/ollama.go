package agent

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// DefaultOllamaURL is the address of a local Ollama daemon.
const DefaultOllamaURL = "http://localhost:11434"

const defaultOllamaModel = "llama3"

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

type ollamaCompleter struct {
	client       *resty.Client
	model        string
	systemPrompt string
	options      map[string]any
}

// NewOllama creates a Completer backed by the Ollama /api/chat endpoint
// with streaming disabled.
func NewOllama(cfg *Config) (Completer, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	if timeout := cfg.timeout(); timeout > 0 {
		client.SetTimeout(timeout)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	options := map[string]any{"temperature": cfg.temperature()}
	if cfg.MaxTokens > 0 {
		options["num_predict"] = cfg.MaxTokens
	}

	return &ollamaCompleter{
		client:       client,
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		options:      options,
	}, nil
}

func (c *ollamaCompleter) Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
	req := ollamaChatRequest{
		Model:    c.model,
		Messages: make([]ollamaMessage, 0, len(history)+1),
		Options:  c.options,
	}
	if c.systemPrompt != "" {
		req.Messages = append(req.Messages, ollamaMessage{Role: "system", Content: c.systemPrompt})
	}
	for _, m := range history {
		req.Messages = append(req.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}

	var (
		out    ollamaChatResponse
		apiErr ollamaError
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/chat")
	if err != nil {
		return protocol.Message{}, errors.Wrap(err, "ollama chat")
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return protocol.Message{}, errors.Errorf("ollama chat: %s: %s", resp.Status(), apiErr.Error)
		}
		return protocol.Message{}, errors.Errorf("ollama chat: %s", resp.Status())
	}

	return protocol.NewMessage(protocol.RoleAssistant, out.Message.Content), nil
}
