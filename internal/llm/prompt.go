package llm

import (
	"strings"
)

const maxPromptChars = 24000

// BuildAnalysisPrompts returns the system and user messages for analysis
// mode. The schema itself is attached separately by the client.
func BuildAnalysisPrompts(req AnalyzeRequest) (system, user string) {
	parts := []string{
		"You are an expert professional resume analyst with 20+ years of hiring and career coaching experience.",
		"Provide detailed, ACCURATE and CRITICAL evaluations based on professional hiring standards. Do not inflate scores.",
		"Score conservatively: 70-75 is good, 80+ is excellent, 90+ is outstanding. Most resumes should score 45-65 unless exceptional.",
		"Evaluate four sections, one per icon value: 'format' (visual hierarchy, organization, ATS parseability, length), 'content' (summary quality, experience depth, education completeness, writing quality), 'keywords' (technical skills, industry terms, action verb strength, keyword density), 'impact' (quantified results, business value, achievement clarity).",
		"Each section carries six metrics rated 0-10 with a concrete suggestion; max is always 10.",
		"Weight the overall score: content 40%, impact 35%, keywords 12.5%, format 12.5%. Missing quantifiable results is a major detriment.",
		"Provide 5-7 strengths, 8-10 improvements, 10-15 keyword matches with frequency and relevance (high/medium/low), and 6-8 recommendations with priority (high/medium).",
		"Return ONLY JSON matching the provided schema. Never output null; omit optional fields instead.",
	}
	system = strings.Join(parts, " ")

	var b strings.Builder
	if hint := strings.TrimSpace(req.TargetJob); hint != "" {
		b.WriteString("Target job: ")
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	b.WriteString("Resume to analyze:\n")
	b.WriteString(clip(req.ResumeText, maxPromptChars))
	user = b.String()
	return system, user
}

// BuildMatchPrompts returns the system and user messages for match mode.
// matchPercentage and hireabilityScore are scored independently: the first
// measures resume-to-posting alignment, the second the model's own judgment
// of hiring likelihood. They are allowed to diverge.
func BuildMatchPrompts(req MatchRequest) (system, user string) {
	parts := []string{
		"You are an expert technical recruiter evaluating how well a resume fits a specific job posting.",
		"Rate 'matchPercentage' (0-100) strictly on alignment between the resume and the posting's stated requirements.",
		"Rate 'hireabilityScore' (0-100) as your independent judgment of hiring likelihood; do NOT derive it from the match percentage.",
		"List keywords from the posting found in the resume under 'keywordMatches' with frequency and relevance, and requirement terms absent from the resume under 'missingKeywords'.",
		"Write 'matchAnalysis' as a concise narrative of fit, including where alignment and hireability diverge and why.",
		"Provide strengths, improvements, and prioritized recommendations (high/medium) targeted at this posting.",
		"Return ONLY JSON matching the provided schema.",
	}
	system = strings.Join(parts, " ")

	var b strings.Builder
	if title := strings.TrimSpace(req.JobTitle); title != "" {
		b.WriteString("Job title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString("Job description:\n")
	b.WriteString(clip(req.JobDescription, maxPromptChars/2))
	b.WriteString("\n\nResume:\n")
	b.WriteString(clip(req.ResumeText, maxPromptChars/2))
	user = b.String()
	return system, user
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
