package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/fever/internal/model"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func testInstance() model.Instance {
	id := 7
	return model.Instance{
		ClaimID:       &id,
		EvidenceGroup: model.MergedGroup,
		Evidence:      "Paris is the capital of France.",
		Claim:         "Paris is in France.",
	}
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}

		resp := openai.ChatCompletionResponse{
			ID:    "test-id",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewOpenAIScorer_RequiresKey(t *testing.T) {
	_, err := NewOpenAIScorer(model.ScorerConfig{}, model.DefaultLabels())
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIScorer_Score(t *testing.T) {
	server := chatServer(t, "```json\n{\"SUPPORTS\": 0.6, \"REFUTES\": 0.2, \"NOT ENOUGH INFO\": 0.2}\n```", http.StatusOK)
	defer server.Close()

	s, err := NewOpenAIScorer(model.ScorerConfig{APIKey: "test-key", BaseURL: server.URL + "/v1", Timeout: 5}, model.DefaultLabels())
	require.NoError(t, err)
	require.Equal(t, "openai", s.Name())

	scores, err := s.Score(context.Background(), testInstance())
	require.NoError(t, err)
	require.Nil(t, scores.Logits)
	require.InDeltaSlice(t, []float64{0.6, 0.2, 0.2}, scores.Probs, 1e-9)
}

func TestOpenAIScorer_ServerError(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	s, err := NewOpenAIScorer(model.ScorerConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"}, model.DefaultLabels())
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testInstance())
	require.Error(t, err)
	require.Contains(t, err.Error(), "OpenAI API error")
}

func TestOpenAIScorer_UnparseableReply(t *testing.T) {
	server := chatServer(t, "I think it is true.", http.StatusOK)
	defer server.Close()

	s, err := NewOpenAIScorer(model.ScorerConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"}, model.DefaultLabels())
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testInstance())
	require.ErrorIs(t, err, ErrNoScores)
}

func TestOpenAIScorer_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()

	s, err := NewOpenAIScorer(model.ScorerConfig{APIKey: "test-key", BaseURL: server.URL + "/v1", Timeout: 1}, model.DefaultLabels())
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Score(context.Background(), testInstance())
	require.Error(t, err)
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestParseScores(t *testing.T) {
	labels := model.DefaultLabels()

	tests := []struct {
		name    string
		reply   string
		want    []float64
		wantErr bool
	}{
		{"plain", `{"SUPPORTS": 1, "REFUTES": 0, "NOT ENOUGH INFO": 0}`, []float64{1, 0, 0}, false},
		{"unnormalized", `{"SUPPORTS": 2, "REFUTES": 1, "NOT ENOUGH INFO": 1}`, []float64{0.5, 0.25, 0.25}, false},
		{"missing label counts as zero", `{"REFUTES": 0.5, "NOT ENOUGH INFO": 0.5}`, []float64{0, 0.5, 0.5}, false},
		{"surrounding prose", "Answer: {\"SUPPORTS\": 0.1, \"REFUTES\": 0.8, \"NOT ENOUGH INFO\": 0.1} done", []float64{0.1, 0.8, 0.1}, false},
		{"no object", "none", nil, true},
		{"all zero", `{"SUPPORTS": 0}`, nil, true},
		{"negative", `{"SUPPORTS": -1, "REFUTES": 2}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScores(tt.reply, labels)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testInstance(), model.DefaultLabels())
	for _, want := range []string{"Paris is the capital of France.", "Paris is in France.", `"NOT ENOUGH INFO"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

type countingWaiter struct {
	calls    int
	endpoint string
	err      error
}

func (w *countingWaiter) Wait(ctx context.Context, endpoint string) error {
	w.calls++
	w.endpoint = endpoint
	return w.err
}

func TestLimited(t *testing.T) {
	fs, err := LoadFileScorer(strings.NewReader(`{"claim_id": 7, "label_probs": [0.1, 0.2, 0.7]}`))
	require.NoError(t, err)

	waiter := &countingWaiter{}
	l := &Limited{Scorer: fs, Limiter: waiter, Endpoint: "file"}
	require.Equal(t, "file", l.Name())

	scores, err := l.Score(context.Background(), testInstance())
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.2, 0.7}, scores.Probs)
	require.Equal(t, 1, waiter.calls)
	require.Equal(t, "file", waiter.endpoint)

	waiter.err = context.Canceled
	_, err = l.Score(context.Background(), testInstance())
	require.True(t, errors.Is(err, context.Canceled))
}
