package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/fever/internal/model"
)

// Preprocessor merges resolved evidence sentences into model input text
type Preprocessor interface {
	Preprocess(evidence [][]string, claim string) (string, string)
}

// Generated is one (evidence, claim) pair produced by a Generator
type Generated struct {
	EvidenceGroup int
	Evidence      string
	Claim         string
}

// Generator turns the evidence groups of a claim into model inputs
type Generator interface {
	Generate(ctx context.Context, r *Resolver, groups []model.EvidenceGroup, claim string) ([]Generated, error)
}

// NewGenerator returns the strategy registered under name
func NewGenerator(name string) (Generator, error) {
	switch strings.ToLower(name) {
	case "", "concatenate":
		return ConcatenateEvidence{}, nil
	case "separate":
		return SeparateEvidence{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: concatenate, separate)", ErrUnknownStrategy, name)
	}
}

// ConcatenateEvidence merges all groups of a claim into one instance
type ConcatenateEvidence struct{}

// Preprocess joins every sentence of every group once, in first-seen order
func (ConcatenateEvidence) Preprocess(evidence [][]string, claim string) (string, string) {
	return Concatenate(evidence), claim
}

// Generate resolves all groups and emits a single merged instance
func (c ConcatenateEvidence) Generate(ctx context.Context, r *Resolver, groups []model.EvidenceGroup, claim string) ([]Generated, error) {
	resolved, err := resolveAll(ctx, r, groups)
	if err != nil {
		return nil, err
	}

	evidence, claim := c.Preprocess(resolved, claim)
	return []Generated{{EvidenceGroup: model.MergedGroup, Evidence: evidence, Claim: claim}}, nil
}

// SeparateEvidence emits one instance per evidence group
type SeparateEvidence struct {
	Preprocessor Preprocessor // nil means ConcatenateEvidence
}

// Generate resolves each group and preprocesses it on its own
func (s SeparateEvidence) Generate(ctx context.Context, r *Resolver, groups []model.EvidenceGroup, claim string) ([]Generated, error) {
	pre := s.Preprocessor
	if pre == nil {
		pre = ConcatenateEvidence{}
	}

	resolved, err := resolveAll(ctx, r, groups)
	if err != nil {
		return nil, err
	}

	out := make([]Generated, 0, len(resolved))
	for i, group := range resolved {
		evidence, c := pre.Preprocess([][]string{group}, claim)
		out = append(out, Generated{EvidenceGroup: i, Evidence: evidence, Claim: c})
	}
	return out, nil
}

func resolveAll(ctx context.Context, r *Resolver, groups []model.EvidenceGroup) ([][]string, error) {
	resolved := make([][]string, 0, len(groups))
	for i, group := range groups {
		sentences, err := r.ResolveGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("evidence group %d: %w", i, err)
		}
		resolved = append(resolved, sentences)
	}
	return resolved, nil
}

// Concatenate flattens the groups, drops repeated sentences keeping the first
// occurrence, and joins the rest with single spaces
func Concatenate(evidence [][]string) string {
	seen := make(map[string]bool)
	var parts []string

	for _, group := range evidence {
		for _, sentence := range group {
			if seen[sentence] {
				continue
			}
			seen[sentence] = true
			parts = append(parts, sentence)
		}
	}

	return strings.Join(parts, " ")
}
