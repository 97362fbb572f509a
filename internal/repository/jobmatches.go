package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"resumai/internal/common"
	"resumai/internal/entity"
)

// JobMatchRepository handles job-match persistence. Append-only, like analyses.
type JobMatchRepository interface {
	Create(ctx context.Context, m *entity.JobMatch) (*entity.JobMatch, error)
	GetByID(ctx context.Context, id, userID string) (*entity.JobMatch, error)
	ListByResume(ctx context.Context, resumeID, userID string, limit int) ([]*entity.JobMatch, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.JobMatch, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type jobMatchRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewJobMatchRepository(db *DB, logger *slog.Logger) JobMatchRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobMatchRepository{db: db, logger: logger}
}

const jobMatchColumns = `id, resume_id, user_id, job_title, job_description, match_percentage,
	hirability_score, match_analysis, keyword_matches, missing_keywords, strengths, improvements,
	recommendations, created_at`

func (r *jobMatchRepository) Create(ctx context.Context, m *entity.JobMatch) (*entity.JobMatch, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`INSERT INTO job_matches (`+jobMatchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.ResumeID, m.UserID, m.JobTitle, m.JobDescription,
		m.Result.MatchPercentage, m.Result.HireabilityScore, m.Result.MatchAnalysis,
		mustJSONText(m.Result.KeywordMatches), mustJSONText(m.Result.MissingKeywords),
		mustJSONText(m.Result.Strengths), mustJSONText(m.Result.Improvements),
		mustJSONText(m.Result.Recommendations), formatTime(m.CreatedAt))
	if err != nil {
		r.logger.Error("failed to create job match", "resume_id", m.ResumeID, "error", err)
		return nil, common.NewAppError("DB_INSERT", "create job match", err)
	}
	r.logger.Info("job match created", "match_id", m.ID, "resume_id", m.ResumeID)
	return m, nil
}

func (r *jobMatchRepository) GetByID(ctx context.Context, id, userID string) (*entity.JobMatch, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT `+jobMatchColumns+` FROM job_matches WHERE id = ? AND user_id = ?`), id, userID)
	m, err := scanJobMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WrapError(common.ErrNotFound, "job match")
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get job match", err)
	}
	return m, nil
}

func (r *jobMatchRepository) ListByResume(ctx context.Context, resumeID, userID string, limit int) ([]*entity.JobMatch, error) {
	return r.list(ctx,
		`SELECT `+jobMatchColumns+` FROM job_matches WHERE resume_id = ? AND user_id = ?
		 ORDER BY created_at DESC, seq DESC LIMIT ?`, resumeID, userID, normalizeLimit(limit))
}

func (r *jobMatchRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.JobMatch, error) {
	return r.list(ctx,
		`SELECT `+jobMatchColumns+` FROM job_matches WHERE user_id = ?
		 ORDER BY created_at DESC, seq DESC LIMIT ?`, userID, normalizeLimit(limit))
}

func (r *jobMatchRepository) list(ctx context.Context, query string, args ...any) ([]*entity.JobMatch, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.Bind(query), args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "list job matches", err)
	}
	defer rows.Close()

	var out []*entity.JobMatch
	for rows.Next() {
		m, err := scanJobMatch(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "list job matches", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *jobMatchRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT COUNT(*) FROM job_matches WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, common.NewAppError("DB_QUERY", "count job matches", err)
	}
	return n, nil
}

func scanJobMatch(row rowScanner) (*entity.JobMatch, error) {
	var m entity.JobMatch
	var keywords, missing, strengths, improvements, recommendations, createdAt string
	err := row.Scan(&m.ID, &m.ResumeID, &m.UserID, &m.JobTitle, &m.JobDescription,
		&m.Result.MatchPercentage, &m.Result.HireabilityScore, &m.Result.MatchAnalysis,
		&keywords, &missing, &strengths, &improvements, &recommendations, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSONText(keywords, &m.Result.KeywordMatches); err != nil {
		return nil, err
	}
	if err := decodeJSONText(missing, &m.Result.MissingKeywords); err != nil {
		return nil, err
	}
	if err := decodeJSONText(strengths, &m.Result.Strengths); err != nil {
		return nil, err
	}
	if err := decodeJSONText(improvements, &m.Result.Improvements); err != nil {
		return nil, err
	}
	if err := decodeJSONText(recommendations, &m.Result.Recommendations); err != nil {
		return nil, err
	}
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}
