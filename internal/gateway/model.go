package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// Config selects the chat-model provider backing the gateway.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// System is prepended to every completion as the system instruction.
	System string
}

// ModelGateway implements Completer on top of an eino chat model.
type ModelGateway struct {
	chatModel model.BaseChatModel
	system    string
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "claude":
		return "claude-sonnet-4-20250514"
	default:
		return "gemini-2.0-flash"
	}
}

// New builds the provider-specific chat model.
func New(ctx context.Context, cfg Config) (*ModelGateway, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %s: api key is required", provider)
	}
	modelType := cfg.Model
	if modelType == "" {
		modelType = defaultModel(provider)
	}

	var chatModel model.BaseChatModel
	var err error
	switch provider {
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelType,
		})
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   modelType,
			APIKey:  cfg.APIKey,
		})
	case "claude":
		var baseURLPtr *string
		if cfg.BaseURL != "" {
			baseURLPtr = &cfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     modelType,
			BaseURL:   baseURLPtr,
			MaxTokens: 3000,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}

	return &ModelGateway{chatModel: chatModel, system: cfg.System}, nil
}

// Complete runs a single prompt through the chat model with the given
// timeout. Retry policy belongs to callers, never here.
func (g *ModelGateway) Complete(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]*schema.Message, 0, 2)
	if g.system != "" {
		messages = append(messages, schema.SystemMessage(g.system))
	}
	messages = append(messages, schema.UserMessage(prompt))

	out, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", Classify(err)
	}

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return "", &UpstreamError{Message: "empty completion"}
	}
	return text, nil
}
