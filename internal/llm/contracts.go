package llm

import "context"

// Section icons and enum tags accepted by the evaluation schema.
var (
	SectionIcons    = []string{"format", "content", "keywords", "impact"}
	RelevanceLevels = []string{"high", "medium", "low"}
	PriorityLevels  = []string{"high", "medium"}
)

// Metric is a single 0-10 measurement inside a section.
type Metric struct {
	Label      string `json:"label"`
	Score      int    `json:"score"`
	Max        int    `json:"max"`
	Suggestion string `json:"suggestion"`
}

// Section is one scored area of the evaluation with its metric breakdown.
type Section struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Feedback string   `json:"feedback"`
	Icon     string   `json:"icon"`
	Metrics  []Metric `json:"metrics"`
}

// KeywordMatch is a keyword found in the resume with frequency and relevance.
type KeywordMatch struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
	Relevance string `json:"relevance"`
}

// Recommendation is an actionable improvement with a priority tag.
type Recommendation struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalysisResult is the normalized shape we want from the oracle in
// analysis mode. Every instance has passed contract validation.
type AnalysisResult struct {
	OverallScore          int              `json:"overallScore"`
	ATSCompatibilityScore int              `json:"atsCompatibilityScore"`
	PersonalizedAdvice    string           `json:"personalizedAdvice,omitempty"`
	Sections              []Section        `json:"sections"`
	Strengths             []string         `json:"strengths"`
	Improvements          []string         `json:"improvements"`
	KeywordMatches        []KeywordMatch   `json:"keywordMatches"`
	Recommendations       []Recommendation `json:"recommendations"`
}

// JobMatchResult is the normalized shape for match mode. MatchPercentage and
// HireabilityScore are independent oracle outputs; no relationship between
// them is enforced.
type JobMatchResult struct {
	MatchPercentage  int              `json:"matchPercentage"`
	HireabilityScore int              `json:"hireabilityScore"`
	MatchAnalysis    string           `json:"matchAnalysis"`
	KeywordMatches   []KeywordMatch   `json:"keywordMatches"`
	MissingKeywords  []string         `json:"missingKeywords"`
	Strengths        []string         `json:"strengths"`
	Improvements     []string         `json:"improvements"`
	Recommendations  []Recommendation `json:"recommendations"`
}

type AnalyzeRequest struct {
	ResumeText string
	TargetJob  string // optional job-title hint
}

type MatchRequest struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
}

// Analyzer is the scoring-oracle interface the pipeline depends on. Both
// methods return the raw JSON alongside the validated result for audit logs.
type Analyzer interface {
	AnalyzeResume(ctx context.Context, req AnalyzeRequest) (AnalysisResult, []byte, error)
	MatchJob(ctx context.Context, req MatchRequest) (JobMatchResult, []byte, error)
}
