package models

// SessionStatus represents the status of an analysis session.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusRunning  SessionStatus = "running"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusError    SessionStatus = "error"
)

// AnalysisKind identifies what an analysis session produced.
type AnalysisKind string

const (
	AnalysisKindBoard     AnalysisKind = "board"
	AnalysisKindResonance AnalysisKind = "resonance"
)

// AnalysisSession represents one background analysis of an uploaded file:
// either a board conversion or a resonance shaper fit.
type AnalysisSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	Kind             AnalysisKind  `json:"kind,omitempty"`
	Status           SessionStatus `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	ParserName       string        `json:"parserName,omitempty"`
	SampleCount      int           `json:"sampleCount,omitempty"`
	PortCount        int           `json:"portCount,omitempty"`
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	Errors           []ParseError  `json:"errors,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// ParseError represents a recoverable problem found while reading a source
// file, e.g. one malformed CSV row.
type ParseError struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// NewAnalysisSession creates a new AnalysisSession in pending status.
func NewAnalysisSession(id, fileID string) *AnalysisSession {
	return &AnalysisSession{
		ID:       id,
		FileID:   fileID,
		Status:   SessionStatusPending,
		Progress: 0,
		Errors:   make([]ParseError, 0),
	}
}
