package reader

import "errors"

var (
	// ErrInvalidEvidence is returned for a reference with no page or no line
	ErrInvalidEvidence = errors.New("invalid evidence: missing page or line index")
	// ErrIndexOutOfRange is returned for a line index outside the document
	ErrIndexOutOfRange = errors.New("line index out of range")
	// ErrEmptyDocument is returned when a random line is requested from a page with no text lines
	ErrEmptyDocument = errors.New("document has no non-empty lines")
	// ErrUnknownStrategy is returned for an unregistered preprocessing strategy name
	ErrUnknownStrategy = errors.New("unknown preprocessing strategy")
)
