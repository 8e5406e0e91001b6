// Package scorer connects assembled instances to the model that produces
// per-class scores. The model itself lives outside this repository.
package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/fever/internal/model"
)

// ErrNoScores is returned when a backend has nothing for an instance
var ErrNoScores = errors.New("no scores for instance")

// Scorer defines the interface for model backends
type Scorer interface {
	// Name returns the backend name
	Name() string

	// Score returns raw per-class scores in label order
	Score(ctx context.Context, inst model.Instance) (model.Scores, error)
}

// Waiter throttles calls to an endpoint
type Waiter interface {
	Wait(ctx context.Context, endpoint string) error
}

// Limited wraps a scorer so that every call first waits on a limiter
type Limited struct {
	Scorer   Scorer
	Limiter  Waiter
	Endpoint string
}

// Name returns the wrapped backend name
func (l *Limited) Name() string {
	return l.Scorer.Name()
}

// Score waits for clearance then scores
func (l *Limited) Score(ctx context.Context, inst model.Instance) (model.Scores, error) {
	if err := l.Limiter.Wait(ctx, l.Endpoint); err != nil {
		return model.Scores{}, fmt.Errorf("rate limit: %w", err)
	}
	return l.Scorer.Score(ctx, inst)
}

// BuildPrompt constructs the classification prompt for an instance
func BuildPrompt(inst model.Instance, labels []string) string {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = fmt.Sprintf("%q", label)
	}

	return fmt.Sprintf(`Decide whether the evidence supports or refutes the claim, or whether there is not enough information.

RULES:
1. Use ONLY the evidence below. Do not use outside knowledge.
2. Answer with a single JSON object mapping each of these labels to a probability: %s
3. The probabilities must sum to 1. Output nothing except the JSON object.

Evidence:
%s

Claim:
%s
`, strings.Join(quoted, ", "), inst.Evidence, inst.Claim)
}

// parseScores reads a label -> probability JSON object out of a model reply and
// returns the probabilities in label order, normalized to sum to 1
func parseScores(reply string, labels []string) ([]float64, error) {
	text := strings.TrimSpace(reply)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrNoScores)
	}

	var byLabel map[string]float64
	if err := json.Unmarshal([]byte(text[start:end+1]), &byLabel); err != nil {
		return nil, fmt.Errorf("parse scores: %w", err)
	}

	probs := make([]float64, len(labels))
	total := 0.0
	for i, label := range labels {
		p := byLabel[label]
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("invalid probability %v for %s", p, label)
		}
		probs[i] = p
		total += p
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: all probabilities are zero", ErrNoScores)
	}

	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}
