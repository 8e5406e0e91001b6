package scorer

import (
	"fmt"
	"strings"

	"github.com/ppiankov/fever/internal/model"
)

// NewScorer creates a scorer based on configuration
func NewScorer(config model.ScorerConfig, labels []string) (Scorer, error) {
	switch strings.ToLower(config.Kind) {
	case "file", "":
		if config.ScoresPath == "" {
			return nil, fmt.Errorf("file scorer needs a scores path")
		}
		return NewFileScorer(config.ScoresPath)

	case "openai":
		return NewOpenAIScorer(config, labels)

	default:
		return nil, fmt.Errorf("unknown scorer: %s (supported: file, openai)", config.Kind)
	}
}

// Endpoint returns the key used to rate limit a scorer
func Endpoint(config model.ScorerConfig) string {
	if strings.ToLower(config.Kind) == "openai" {
		if config.BaseURL != "" {
			return config.BaseURL
		}
		return "https://api.openai.com/v1"
	}
	return strings.ToLower(config.Kind)
}
