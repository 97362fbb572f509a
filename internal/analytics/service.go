package analytics

import (
	"context"
	"log/slog"

	"resumai/internal/entity"
	"resumai/internal/repository"
)

// Service aggregates a user's activity into a single summary view. All
// counts and averages are computed from live rows; nothing is cached.
type Service struct {
	resumes   repository.ResumeRepository
	analyses  repository.AnalysisRepository
	matches   repository.JobMatchRepository
	analytics repository.AnalyticsRepository
	logger    *slog.Logger
}

func NewService(
	resumes repository.ResumeRepository,
	analyses repository.AnalysisRepository,
	matches repository.JobMatchRepository,
	events repository.AnalyticsRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resumes:   resumes,
		analyses:  analyses,
		matches:   matches,
		analytics: events,
		logger:    logger,
	}
}

// Summary builds the per-user dashboard aggregate. Average scores are nil
// when the user has no analyses yet.
func (s *Service) Summary(ctx context.Context, userID string) (*entity.AnalyticsSummary, error) {
	resumeCount, err := s.resumes.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	analysisCount, err := s.analyses.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matchCount, err := s.matches.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	avgOverall, avgATS, err := s.analyses.AverageScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	eventCounts, err := s.analytics.EventCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entity.AnalyticsSummary{
		ResumeCount:         resumeCount,
		AnalysisCount:       analysisCount,
		JobMatchCount:       matchCount,
		AverageOverallScore: avgOverall,
		AverageATSScore:     avgATS,
		EventCounts:         eventCounts,
	}, nil
}

// Track records a user action. Failures are logged and swallowed so event
// logging never breaks the operation it decorates.
func (s *Service) Track(ctx context.Context, userID, eventType string, data map[string]any) {
	if _, err := s.analytics.LogEvent(ctx, userID, eventType, data); err != nil {
		s.logger.Warn("failed to record analytics event", "event_type", eventType, "error", err)
	}
}

// Events lists the caller's recent activity, optionally filtered by type.
func (s *Service) Events(ctx context.Context, userID, eventType string, limit int) ([]*entity.AnalyticsEvent, error) {
	return s.analytics.ListByUser(ctx, userID, eventType, limit)
}
