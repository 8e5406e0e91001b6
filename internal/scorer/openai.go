package scorer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/fever/internal/model"
	"github.com/sashabaranov/go-openai"
)

// OpenAIScorer asks an OpenAI-compatible chat model for label probabilities
type OpenAIScorer struct {
	client *openai.Client
	config model.ScorerConfig
	labels []string
}

// NewOpenAIScorer creates a new OpenAI scorer
func NewOpenAIScorer(config model.ScorerConfig, labels []string) (*OpenAIScorer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("at least one label is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{Proxy: newProxyFunc(config.HTTPProxy, config.HTTPSProxy)},
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		labels: labels,
	}, nil
}

// Name returns the backend name
func (s *OpenAIScorer) Name() string {
	return "openai"
}

// Score sends the instance to the chat completions API and parses the reply
func (s *OpenAIScorer) Score(ctx context.Context, inst model.Instance) (model.Scores, error) {
	modelName := s.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	timeout := time.Duration(s.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a fact verification classifier. You reply with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(inst, s.labels),
			},
		},
		MaxTokens:   200,
		Temperature: 0,
	}

	resp, err := s.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return model.Scores{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Scores{}, fmt.Errorf("%w: empty response from OpenAI", ErrNoScores)
	}

	probs, err := parseScores(resp.Choices[0].Message.Content, s.labels)
	if err != nil {
		return model.Scores{}, err
	}
	return model.Scores{Probs: probs}, nil
}
