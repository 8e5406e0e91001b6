package model

// ClaimRecord is one line of a FEVER claims file
type ClaimRecord struct {
	ID       int             `json:"id"`              // Claim id
	Claim    string          `json:"claim"`           // The claim text itself
	Label    *string         `json:"label,omitempty"` // Gold label, absent for unlabelled test data
	Evidence []EvidenceGroup `json:"evidence"`        // Alternative evidence groups, any one suffices
}

// Label names used by the FEVER task
const (
	LabelSupports      = "SUPPORTS"
	LabelRefutes       = "REFUTES"
	LabelNotEnoughInfo = "NOT ENOUGH INFO"
)

// DefaultLabels returns the label vocabulary in score index order
func DefaultLabels() []string {
	return []string{LabelSupports, LabelRefutes, LabelNotEnoughInfo}
}

// MergedGroup marks an instance built from several evidence groups
const MergedGroup = -1

// Instance is an assembled (evidence, claim) pair handed to the model layer
type Instance struct {
	ClaimID       *int    `json:"claim_id,omitempty"`
	EvidenceGroup int     `json:"evidence_group"` // Source group index or MergedGroup
	Evidence      string  `json:"evidence"`       // Resolved evidence text (premise)
	Claim         string  `json:"claim"`          // Claim text (hypothesis)
	Label         *string `json:"label,omitempty"`
}
