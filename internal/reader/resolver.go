package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/fever/internal/docdb"
	"github.com/ppiankov/fever/internal/model"
	"github.com/ppiankov/fever/internal/sample"
)

// Resolver turns (page, line) references into sentence text
type Resolver struct {
	source   docdb.LineSource
	selector *sample.Selector
}

// NewResolver creates a resolver reading pages from source and drawing
// sentinel lines from selector
func NewResolver(source docdb.LineSource, selector *sample.Selector) *Resolver {
	return &Resolver{source: source, selector: selector}
}

// DocLines returns the sentence text of every line of a page
func (r *Resolver) DocLines(ctx context.Context, page string) ([]string, error) {
	records, err := r.source.GetLines(ctx, page)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(records))
	for i, record := range records {
		fields := strings.Split(record, "\t")
		if len(fields) > 1 {
			lines[i] = fields[1]
		}
	}
	return lines, nil
}

// Line returns the sentence at line of page. A nil line is an error, never line 0.
// model.RandomLine picks uniformly among the page's non-empty sentences.
func (r *Resolver) Line(ctx context.Context, page string, line *int) (string, error) {
	if line == nil {
		return "", fmt.Errorf("%w: page %q: line index is null", ErrInvalidEvidence, page)
	}

	lines, err := r.DocLines(ctx, page)
	if err != nil {
		return "", err
	}

	if *line == model.RandomLine {
		sentence, err := r.RandomLine(FilterNonEmpty(lines))
		if err != nil {
			return "", fmt.Errorf("%s: %w", page, err)
		}
		return sentence, nil
	}

	if *line < 0 || *line >= len(lines) {
		return "", fmt.Errorf("%w: %s has %d lines, requested %d", ErrIndexOutOfRange, page, len(lines), *line)
	}
	return lines[*line], nil
}

// RandomLine picks one of lines using the resolver's selector
func (r *Resolver) RandomLine(lines []string) (string, error) {
	if len(lines) == 0 {
		return "", ErrEmptyDocument
	}
	return lines[r.selector.NextInt(0, len(lines)-1)], nil
}

// ResolveGroup resolves every reference of group in order
func (r *Resolver) ResolveGroup(ctx context.Context, group model.EvidenceGroup) ([]string, error) {
	sentences := make([]string, 0, len(group))
	for _, ref := range group {
		if ref.Page == nil {
			return nil, fmt.Errorf("%w: reference without page", ErrInvalidEvidence)
		}

		sentence, err := r.Line(ctx, *ref.Page, ref.Line)
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, sentence)
	}
	return sentences, nil
}

// FilterNonEmpty keeps the lines that are not blank, in order
func FilterNonEmpty(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
