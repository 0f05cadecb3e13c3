package agent

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// APIKeyEnv is consulted when an openai config carries no key.
const APIKeyEnv = "OPENAI_API_KEY"

const defaultOpenAIModel = openai.GPT3Dot5Turbo

type openAICompleter struct {
	client       *openai.Client
	model        string
	systemPrompt string
	temperature  float32
	maxTokens    int
}

// NewOpenAI creates a Completer backed by an OpenAI-compatible chat
// completions endpoint.
func NewOpenAI(cfg *Config) (Completer, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if timeout := cfg.timeout(); timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openAICompleter{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        model,
		systemPrompt: cfg.SystemPrompt,
		temperature:  float32(cfg.temperature()),
		maxTokens:    cfg.MaxTokens,
	}, nil
}

func (c *openAICompleter) Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if c.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt,
		})
	}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return protocol.Message{}, errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return protocol.Message{}, ErrEmptyResponse
	}

	return protocol.NewMessage(protocol.RoleAssistant, resp.Choices[0].Message.Content), nil
}
