package models

// SessionStatus is the lifecycle status of an elicitation session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

var ValidSessionStatuses = map[SessionStatus]bool{
	StatusInProgress: true,
	StatusCompleted:  true,
}

func (s SessionStatus) IsValid() bool {
	return ValidSessionStatuses[s]
}

// Mode tells the front end which dialog the user is in.
type Mode string

const (
	ModeInterview Mode = "interview"
	ModeIdeation  Mode = "ideation"
)

func (m Mode) IsValid() bool {
	return m == ModeInterview || m == ModeIdeation
}

// AnalysisKind tags the variant held by an AnalysisResult.
type AnalysisKind string

const (
	AnalysisSingle   AnalysisKind = "single"
	AnalysisMultiple AnalysisKind = "multiple"
)

func (k AnalysisKind) IsValid() bool {
	return k == AnalysisSingle || k == AnalysisMultiple
}

// FallbackProjectName is written into the first answer when a deferred name
// cannot be generated.
const FallbackProjectName = "Untitled Project"
