package scorer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/fever/internal/model"
)

// FileScorer serves scores precomputed by an external model run, keyed by claim id
type FileScorer struct {
	scores map[int]model.Scores
}

type scoreRecord struct {
	ClaimID *int `json:"claim_id"`
	model.Scores
}

// NewFileScorer loads scores from a JSONL file of
// {"claim_id": n, "label_logits": [...], "label_probs": [...]} lines
func NewFileScorer(path string) (*FileScorer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scores: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadFileScorer(f)
}

// LoadFileScorer reads score lines from r. A later line for the same claim wins.
func LoadFileScorer(r io.Reader) (*FileScorer, error) {
	s := &FileScorer{scores: make(map[int]model.Scores)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec scoreRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("scores line %d: %w", lineNo, err)
		}
		if rec.ClaimID == nil {
			return nil, fmt.Errorf("scores line %d: missing claim_id", lineNo)
		}
		s.scores[*rec.ClaimID] = rec.Scores
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan scores: %w", err)
	}

	return s, nil
}

// Name returns the backend name
func (s *FileScorer) Name() string {
	return "file"
}

// Score looks up the scores recorded for the instance's claim
func (s *FileScorer) Score(ctx context.Context, inst model.Instance) (model.Scores, error) {
	if inst.ClaimID == nil {
		return model.Scores{}, fmt.Errorf("%w: instance has no claim id", ErrNoScores)
	}
	scores, ok := s.scores[*inst.ClaimID]
	if !ok {
		return model.Scores{}, fmt.Errorf("%w: claim %d", ErrNoScores, *inst.ClaimID)
	}
	return scores, nil
}

// Len returns the number of claims with scores
func (s *FileScorer) Len() int {
	return len(s.scores)
}
