package models

import "time"

// Spec is a generated project specification archived after an interview
// completes.
type Spec struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	ProjectName string    `json:"projectName"`
	UnitName    string    `json:"unitName,omitempty"`
	Markdown    string    `json:"markdown"`
	Answers     []Answer  `json:"answers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Feedback is a piece of user feedback kept locally and optionally forwarded.
type Feedback struct {
	ID          int64      `json:"id"`
	Message     string     `json:"message"`
	PageURL     string     `json:"pageUrl"`
	UserAgent   string     `json:"userAgent"`
	CreatedAt   time.Time  `json:"createdAt"`
	ForwardedAt *time.Time `json:"forwardedAt,omitempty"`
}

// ServiceCheck is the status of one dependency in a health report.
type ServiceCheck struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string                  `json:"status"`
	Services map[string]ServiceCheck `json:"services"`
}
