// Package reader resolves FEVER evidence references against the document
// store and assembles (evidence, claim) instances for the model layer.
package reader

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/fever/internal/model"
	"go.uber.org/zap"
)

// maxRecordBytes bounds a single claims JSONL line
const maxRecordBytes = 16 * 1024 * 1024

// Reader builds instances from claim records
type Reader struct {
	resolver  *Resolver
	generator Generator
	logger    *zap.Logger
}

// NewReader creates a reader. A nil generator means ConcatenateEvidence.
func NewReader(resolver *Resolver, generator Generator, logger *zap.Logger) *Reader {
	if generator == nil {
		generator = ConcatenateEvidence{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{resolver: resolver, generator: generator, logger: logger}
}

// Resolver returns the resolver used by the reader
func (r *Reader) Resolver() *Resolver {
	return r.resolver
}

// Generator returns the preprocessing strategy used by the reader
func (r *Reader) Generator() Generator {
	return r.generator
}

// GenerateInstances builds the instances for one claim record
func (r *Reader) GenerateInstances(ctx context.Context, record model.ClaimRecord) ([]model.Instance, error) {
	generated, err := r.generator.Generate(ctx, r.resolver, record.Evidence, record.Claim)
	if err != nil {
		return nil, fmt.Errorf("claim %d: %w", record.ID, err)
	}

	claimID := record.ID
	instances := make([]model.Instance, 0, len(generated))
	for _, g := range generated {
		instances = append(instances, model.Instance{
			ClaimID:       &claimID,
			EvidenceGroup: g.EvidenceGroup,
			Evidence:      g.Evidence,
			Claim:         g.Claim,
			Label:         record.Label,
		})
	}
	return instances, nil
}

// Read parses claims JSONL from in and calls fn for every generated instance.
// Blank lines are skipped. The first malformed line or failed reference stops the read.
func (r *Reader) Read(ctx context.Context, in io.Reader, fn func(model.Instance) error) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	lineNo, claims, instances := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record model.ClaimRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		generated, err := r.GenerateInstances(ctx, record)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		claims++

		for _, inst := range generated {
			if err := fn(inst); err != nil {
				return err
			}
			instances++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan claims: %w", err)
	}

	r.logger.Info("Read claims", zap.Int("claims", claims), zap.Int("instances", instances))
	return nil
}
