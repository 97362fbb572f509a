package entity

import (
	"time"

	"resumai/internal/llm"
)

// User is an account provisioned from the identity provider on first sign-in.
type User struct {
	ID        string
	Email     string
	Name      string
	Picture   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resume is an uploaded document. RawText is nil when extraction failed.
// Deleted resumes are flagged, never physically removed.
type Resume struct {
	ID        string
	UserID    string
	FileName  string
	FilePath  string
	RawText   *string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

// Analysis is one validated oracle evaluation of a resume. Append-only.
type Analysis struct {
	ID        string
	ResumeID  string
	UserID    string
	Result    llm.AnalysisResult
	CreatedAt time.Time
}

// JobMatch is one validated resume-to-posting evaluation. Append-only.
type JobMatch struct {
	ID             string
	ResumeID       string
	UserID         string
	JobTitle       string
	JobDescription string
	Result         llm.JobMatchResult
	CreatedAt      time.Time
}

// AnalyticsEvent records a user action. EventType is an open tag, not an enum.
type AnalyticsEvent struct {
	ID        string
	UserID    string
	EventType string
	EventData map[string]any
	CreatedAt time.Time
}

// AnalyticsSummary aggregates a user's activity. Average scores are nil when
// the user has no analyses.
type AnalyticsSummary struct {
	ResumeCount         int            `json:"resume_count"`
	AnalysisCount       int            `json:"analysis_count"`
	JobMatchCount       int            `json:"job_match_count"`
	AverageOverallScore *float64       `json:"average_overall_score"`
	AverageATSScore     *float64       `json:"average_ats_score"`
	EventCounts         map[string]int `json:"event_counts"`
}
