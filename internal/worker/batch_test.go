package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/fever/internal/model"
)

// MockPredictor implements Predictor by echoing the line as the label
type MockPredictor struct {
	ShouldError bool
}

func (m *MockPredictor) PredictLine(ctx context.Context, line string) (model.Prediction, error) {
	time.Sleep(time.Millisecond) // Simulate work
	if m.ShouldError {
		return model.Prediction{}, errors.New("predict error")
	}
	return model.Prediction{PredictedLabel: line}, nil
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.jsonl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessLines_KeepsOrder(t *testing.T) {
	processor := NewBatchProcessor(&MockPredictor{}, 4)

	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("x", i+1))
	}

	results := processor.ProcessLines(context.Background(), lines)
	if len(results) != len(lines) {
		t.Fatalf("expected %d results, got %d", len(lines), len(results))
	}

	for i, res := range results {
		if res.Index != i {
			t.Errorf("expected index %d, got %d", i, res.Index)
		}
		if res.Error != nil {
			t.Errorf("unexpected error at %d: %v", i, res.Error)
			continue
		}
		if res.Prediction.PredictedLabel != lines[i] {
			t.Errorf("result %d out of order: got %q", i, res.Prediction.PredictedLabel)
		}
	}
}

func TestBatchProcessor_ProcessLines_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockPredictor{ShouldError: true}, 2)

	results := processor.ProcessLines(context.Background(), []string{"{}"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Prediction != nil {
		t.Error("expected nil prediction on error")
	}
}

func TestBatchProcessor_ProcessLines_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockPredictor{}, 2)

	results := processor.ProcessLines(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessLines_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&MockPredictor{}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessLines(ctx, []string{"a", "b", "c"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error == nil {
			continue // a job may have been queued before the workers saw the cancel
		}
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Error)
		}
	}
}

func TestReadLinesFromFile(t *testing.T) {
	path := writeTemp(t, "{\"id\": 1}\n   \n{\"id\": 2}\n{\"id\": 1}\n")

	lines, err := ReadLinesFromFile(path)
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}

	expected := []string{`{"id": 1}`, `{"id": 2}`, `{"id": 1}`}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(lines))
	}
	for i, line := range lines {
		if line != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, line)
		}
	}
}

func TestReadLinesFromFile_NonExistent(t *testing.T) {
	_, err := ReadLinesFromFile("non_existent_file.jsonl")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestPredictResult_GetError(t *testing.T) {
	r1 := &PredictResult{Index: 0}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("predict failed")
	r2 := &PredictResult{Index: 1, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTemp(t, "a\nb\n\nc\n")
	processor := NewBatchProcessor(&MockPredictor{}, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockPredictor{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.jsonl")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
