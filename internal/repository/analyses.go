package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"resumai/internal/common"
	"resumai/internal/entity"
)

// AnalysisRepository handles analysis persistence. Analyses are append-only:
// re-running a resume adds a row, nothing is updated or deleted.
type AnalysisRepository interface {
	Create(ctx context.Context, a *entity.Analysis) (*entity.Analysis, error)
	GetByID(ctx context.Context, id, userID string) (*entity.Analysis, error)
	ListByResume(ctx context.Context, resumeID, userID string, limit int) ([]*entity.Analysis, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Analysis, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	AverageScores(ctx context.Context, userID string) (overall, ats *float64, err error)
}

type analysisRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewAnalysisRepository(db *DB, logger *slog.Logger) AnalysisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisRepository{db: db, logger: logger}
}

const analysisColumns = `id, resume_id, user_id, overall_score, ats_compatibility_score,
	personalized_advice, sections, strengths, improvements, keyword_matches, recommendations, created_at`

func (r *analysisRepository) Create(ctx context.Context, a *entity.Analysis) (*entity.Analysis, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()

	var advice any
	if a.Result.PersonalizedAdvice != "" {
		advice = a.Result.PersonalizedAdvice
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`INSERT INTO resume_analyses (`+analysisColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.ResumeID, a.UserID, a.Result.OverallScore, a.Result.ATSCompatibilityScore,
		advice, mustJSONText(a.Result.Sections), mustJSONText(a.Result.Strengths),
		mustJSONText(a.Result.Improvements), mustJSONText(a.Result.KeywordMatches),
		mustJSONText(a.Result.Recommendations), formatTime(a.CreatedAt))
	if err != nil {
		r.logger.Error("failed to create analysis", "resume_id", a.ResumeID, "error", err)
		return nil, common.NewAppError("DB_INSERT", "create analysis", err)
	}
	r.logger.Info("analysis created", "analysis_id", a.ID, "resume_id", a.ResumeID)
	return a, nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id, userID string) (*entity.Analysis, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT `+analysisColumns+` FROM resume_analyses WHERE id = ? AND user_id = ?`), id, userID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WrapError(common.ErrNotFound, "analysis")
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get analysis", err)
	}
	return a, nil
}

func (r *analysisRepository) ListByResume(ctx context.Context, resumeID, userID string, limit int) ([]*entity.Analysis, error) {
	return r.list(ctx,
		`SELECT `+analysisColumns+` FROM resume_analyses WHERE resume_id = ? AND user_id = ?
		 ORDER BY created_at DESC, seq DESC LIMIT ?`, resumeID, userID, normalizeLimit(limit))
}

func (r *analysisRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Analysis, error) {
	return r.list(ctx,
		`SELECT `+analysisColumns+` FROM resume_analyses WHERE user_id = ?
		 ORDER BY created_at DESC, seq DESC LIMIT ?`, userID, normalizeLimit(limit))
}

func (r *analysisRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Analysis, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.Bind(query), args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "list analyses", err)
	}
	defer rows.Close()

	var out []*entity.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "list analyses", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *analysisRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT COUNT(*) FROM resume_analyses WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, common.NewAppError("DB_QUERY", "count analyses", err)
	}
	return n, nil
}

// AverageScores returns nil averages when the user has no analyses, so the
// caller can distinguish "no data" from a zero score.
func (r *analysisRepository) AverageScores(ctx context.Context, userID string) (*float64, *float64, error) {
	var overall, ats sql.NullFloat64
	err := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT AVG(overall_score), AVG(ats_compatibility_score) FROM resume_analyses WHERE user_id = ?`),
		userID).Scan(&overall, &ats)
	if err != nil {
		return nil, nil, common.NewAppError("DB_QUERY", "average scores", err)
	}
	var o, a *float64
	if overall.Valid {
		o = &overall.Float64
	}
	if ats.Valid {
		a = &ats.Float64
	}
	return o, a, nil
}

func scanAnalysis(row rowScanner) (*entity.Analysis, error) {
	var a entity.Analysis
	var advice sql.NullString
	var sections, strengths, improvements, keywords, recommendations, createdAt string
	err := row.Scan(&a.ID, &a.ResumeID, &a.UserID, &a.Result.OverallScore, &a.Result.ATSCompatibilityScore,
		&advice, &sections, &strengths, &improvements, &keywords, &recommendations, &createdAt)
	if err != nil {
		return nil, err
	}
	a.Result.PersonalizedAdvice = advice.String
	if err := decodeJSONText(sections, &a.Result.Sections); err != nil {
		return nil, err
	}
	if err := decodeJSONText(strengths, &a.Result.Strengths); err != nil {
		return nil, err
	}
	if err := decodeJSONText(improvements, &a.Result.Improvements); err != nil {
		return nil, err
	}
	if err := decodeJSONText(keywords, &a.Result.KeywordMatches); err != nil {
		return nil, err
	}
	if err := decodeJSONText(recommendations, &a.Result.Recommendations); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func mustJSONText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func decodeJSONText(s string, out any) error {
	if s == "" || s == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("decode stored json: %w", err)
	}
	return nil
}
