package model

import (
	"encoding/json"
	"fmt"
)

// RandomLine is the line index meaning "no annotated line, sample one"
const RandomLine = -1

// EvidenceRef points at one sentence of one page.
// Any member may be nil in the source data.
type EvidenceRef struct {
	AnnotationID  *int
	EvidenceSetID *int
	Page          *string
	Line          *int
}

// EvidenceGroup is an ordered set of references that jointly support or refute a claim
type EvidenceGroup []EvidenceRef

// NewEvidenceRef builds a reference without annotation metadata
func NewEvidenceRef(page string, line int) EvidenceRef {
	return EvidenceRef{Page: &page, Line: &line}
}

// PageName returns the page or "" when none was annotated
func (r EvidenceRef) PageName() string {
	if r.Page == nil {
		return ""
	}
	return *r.Page
}

// UnmarshalJSON decodes the [annotation_id, evidence_set_id, page, line] tuple
func (r *EvidenceRef) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("evidence reference: %w", err)
	}
	if len(raw) != 4 {
		return fmt.Errorf("evidence reference: expected 4 items, got %d", len(raw))
	}

	var ref EvidenceRef
	targets := []interface{}{&ref.AnnotationID, &ref.EvidenceSetID, &ref.Page, &ref.Line}
	for i, target := range targets {
		if err := json.Unmarshal(raw[i], target); err != nil {
			return fmt.Errorf("evidence reference item %d: %w", i, err)
		}
	}

	*r = ref
	return nil
}

// MarshalJSON encodes the reference back into its tuple form
func (r EvidenceRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.AnnotationID, r.EvidenceSetID, r.Page, r.Line})
}

// PageLine is a retrieved (page, line) pair as produced by sentence retrieval
type PageLine struct {
	Page string
	Line *int
}

// UnmarshalJSON decodes the [page, line] pair
func (p *PageLine) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("predicted sentence: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("predicted sentence: expected 2 items, got %d", len(raw))
	}

	var pl PageLine
	if err := json.Unmarshal(raw[0], &pl.Page); err != nil {
		return fmt.Errorf("predicted sentence page: %w", err)
	}
	if err := json.Unmarshal(raw[1], &pl.Line); err != nil {
		return fmt.Errorf("predicted sentence line: %w", err)
	}

	*p = pl
	return nil
}

// Ref converts the pair into an evidence reference
func (p PageLine) Ref() EvidenceRef {
	page := p.Page
	return EvidenceRef{Page: &page, Line: p.Line}
}

// Document is one row of the documents table
type Document struct {
	ID    string `json:"id"`    // Page title
	Text  string `json:"text"`  // Plain text of the page
	Lines string `json:"lines"` // Newline separated "{index}\t{sentence}\t{links}" records
}
