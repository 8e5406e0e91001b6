package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/fever/internal/model"
	"github.com/ppiankov/fever/internal/reader"
	"github.com/ppiankov/fever/internal/scorer"
	"go.uber.org/zap"
)

// Predictor turns prediction inputs into labelled predictions
type Predictor struct {
	reader *reader.Reader
	scorer scorer.Scorer
	labels []string
	nei    int // index of NOT ENOUGH INFO in labels
	oracle bool
	logger *zap.Logger
}

// NewPredictor creates a predictor. With oracle set the gold evidence groups are
// used, otherwise the predicted sentences form a single group.
func NewPredictor(r *reader.Reader, s scorer.Scorer, labels []string, oracle bool, logger *zap.Logger) (*Predictor, error) {
	nei := -1
	for i, label := range labels {
		if label == model.LabelNotEnoughInfo {
			nei = i
		}
	}
	if nei < 0 {
		return nil, fmt.Errorf("labels %v do not include %q", labels, model.LabelNotEnoughInfo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Predictor{reader: r, scorer: s, labels: labels, nei: nei, oracle: oracle, logger: logger}, nil
}

// Instance assembles the model input for one prediction request
func (p *Predictor) Instance(ctx context.Context, input model.PredictionInput) (model.Instance, error) {
	var groups []model.EvidenceGroup
	if p.oracle {
		groups = input.Evidence
	} else {
		group := make(model.EvidenceGroup, 0, len(input.PredictedSentences))
		for _, pl := range input.PredictedSentences {
			group = append(group, pl.Ref())
		}
		groups = []model.EvidenceGroup{group}
	}

	inst := model.Instance{
		ClaimID:       input.ID,
		EvidenceGroup: model.MergedGroup,
		Claim:         input.Claim,
		Label:         input.Label,
	}

	generated, err := p.reader.Generator().Generate(ctx, p.reader.Resolver(), groups, input.Claim)
	if err != nil {
		return model.Instance{}, err
	}
	if len(generated) > 0 {
		inst.EvidenceGroup = generated[0].EvidenceGroup
		inst.Evidence = generated[0].Evidence
		inst.Claim = generated[0].Claim
	}
	return inst, nil
}

// Predict scores one input. Inputs whose evidence resolves to nothing are
// labelled NOT ENOUGH INFO without calling the scorer.
func (p *Predictor) Predict(ctx context.Context, input model.PredictionInput) (model.Prediction, error) {
	inst, err := p.Instance(ctx, input)
	if err != nil {
		return model.Prediction{}, err
	}

	if strings.TrimSpace(inst.Evidence) == "" {
		p.logger.Debug("Empty evidence, skipping scorer", zap.String("claim", inst.Claim))
		return NewPrediction(input.ID, p.defaultScores(), p.labels)
	}

	scores, err := p.scorer.Score(ctx, inst)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("score with %s: %w", p.scorer.Name(), err)
	}
	return NewPrediction(input.ID, scores, p.labels)
}

// PredictLine decodes one JSON line and predicts it
func (p *Predictor) PredictLine(ctx context.Context, line string) (model.Prediction, error) {
	var input model.PredictionInput
	if err := json.Unmarshal([]byte(line), &input); err != nil {
		return model.Prediction{}, fmt.Errorf("decode input: %w", err)
	}
	return p.Predict(ctx, input)
}

func (p *Predictor) defaultScores() model.Scores {
	logits := make([]float64, len(p.labels))
	probs := make([]float64, len(p.labels))
	logits[p.nei] = 1
	probs[p.nei] = 1
	return model.Scores{Logits: logits, Probs: probs}
}

// NewPrediction picks the arg-max label, from probabilities when present and
// from logits otherwise
func NewPrediction(claimID *int, scores model.Scores, labels []string) (model.Prediction, error) {
	values := scores.Probs
	if len(values) == 0 {
		values = scores.Logits
	}
	if len(values) == 0 {
		return model.Prediction{}, fmt.Errorf("%w: neither logits nor probabilities", scorer.ErrNoScores)
	}
	if len(values) != len(labels) {
		return model.Prediction{}, fmt.Errorf("got %d scores for %d labels", len(values), len(labels))
	}

	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}

	return model.Prediction{
		ClaimID:        claimID,
		LabelLogits:    scores.Logits,
		LabelProbs:     scores.Probs,
		PredictedLabel: labels[best],
	}, nil
}
