package model

// PredictionInput is one line of a prediction request file.
// Retrieval output carries PredictedSentences, oracle input carries Evidence.
type PredictionInput struct {
	ID                 *int            `json:"id,omitempty"`
	Claim              string          `json:"claim"`
	Label              *string         `json:"label,omitempty"`
	PredictedSentences []PageLine      `json:"predicted_sentences,omitempty"`
	Evidence           []EvidenceGroup `json:"evidence,omitempty"`
}

// Scores holds the raw per-class output of a model for one instance
type Scores struct {
	Logits []float64 `json:"label_logits,omitempty"`
	Probs  []float64 `json:"label_probs,omitempty"`
}

// Prediction is one output line of the predictor
type Prediction struct {
	ClaimID        *int      `json:"claim_id,omitempty"`
	LabelLogits    []float64 `json:"label_logits,omitempty"`
	LabelProbs     []float64 `json:"label_probs,omitempty"`
	PredictedLabel string    `json:"predicted_label"`
}
