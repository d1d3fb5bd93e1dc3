package assistant

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"fintrack/internal/finance"
)

const historyWindow = 10

const systemPrompt = `You are a personal finance assistant. Answer using the user's live data below. Be concise, encouraging, and concrete.

%s`

// Message is one prior exchange turn, role "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client wraps the chat completions API. A nil Client is valid and means
// the assistant is not configured.
type Client struct {
	api   *openai.Client
	model string
}

// New builds a Client. baseURL may be empty for the default endpoint,
// which also allows pointing at any compatible server.
func New(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Ask sends the question with the financial context and a trailing window
// of the conversation history, returning the assistant's reply text.
func (c *Client) Ask(ctx context.Context, v finance.View, history []Message, question string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("assistant not configured")
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(systemPrompt, Context(v)),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
