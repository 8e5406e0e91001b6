package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/fever/internal/model"
)

// maxLineBytes bounds a single prediction input line
const maxLineBytes = 16 * 1024 * 1024

// Predictor defines the interface for predicting one JSON input line
type Predictor interface {
	PredictLine(ctx context.Context, line string) (model.Prediction, error)
}

// PredictJob represents one input line to predict
type PredictJob struct {
	Index     int
	Line      string
	Predictor Predictor
}

// Execute executes the prediction job
func (j *PredictJob) Execute(ctx context.Context) Result {
	prediction, err := j.Predictor.PredictLine(ctx, j.Line)
	if err != nil {
		return &PredictResult{Index: j.Index, Error: err}
	}
	return &PredictResult{Index: j.Index, Prediction: &prediction}
}

// PredictResult represents the result of a prediction job
type PredictResult struct {
	Index      int
	Prediction *model.Prediction
	Error      error
}

// GetError returns the error from the prediction result
func (r *PredictResult) GetError() error {
	return r.Error
}

// BatchProcessor predicts many input lines concurrently
type BatchProcessor struct {
	predictor   Predictor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(predictor Predictor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		predictor:   predictor,
		concurrency: concurrency,
	}
}

// ProcessLines predicts every line and returns the results in input order.
// Lines not started before ctx is cancelled get ctx's error.
func (b *BatchProcessor) ProcessLines(ctx context.Context, lines []string) []*PredictResult {
	if len(lines) == 0 {
		return []*PredictResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, line := range lines {
		job := &PredictJob{
			Index:     i,
			Line:      line,
			Predictor: b.predictor,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*PredictResult, 0, len(lines))
	done := make(map[int]bool, len(results))
	for _, result := range results {
		r := result.(*PredictResult)
		done[r.Index] = true
		out = append(out, r)
	}
	for i := range lines {
		if !done[i] {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("line %d was not processed", i+1)
			}
			out = append(out, &PredictResult{Index: i, Error: err})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads input lines from a file and predicts them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*PredictResult, error) {
	lines, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	return b.ProcessLines(ctx, lines), nil
}

// ReadLinesFromFile reads the non-blank lines of a JSONL file
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
