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

// ResumeRepository handles resume persistence. Deletion is soft: flagged rows
// are excluded from every read but never physically removed, so analyses that
// reference them stay resolvable.
type ResumeRepository interface {
	Create(ctx context.Context, resume *entity.Resume) (*entity.Resume, error)
	GetByID(ctx context.Context, id, userID string) (*entity.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Resume, error)
	Rename(ctx context.Context, id, userID, fileName string) (*entity.Resume, error)
	SoftDelete(ctx context.Context, id, userID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type resumeRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewResumeRepository(db *DB, logger *slog.Logger) ResumeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resumeRepository{db: db, logger: logger}
}

func (r *resumeRepository) Create(ctx context.Context, resume *entity.Resume) (*entity.Resume, error) {
	if resume.ID == "" {
		resume.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	resume.CreatedAt, resume.UpdatedAt = now, now

	_, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`INSERT INTO resumes (id, user_id, file_name, file_path, raw_text, created_at, updated_at, is_deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`),
		resume.ID, resume.UserID, resume.FileName, resume.FilePath, resume.RawText,
		formatTime(resume.CreatedAt), formatTime(resume.UpdatedAt))
	if err != nil {
		r.logger.Error("failed to create resume", "user_id", resume.UserID, "error", err)
		return nil, common.NewAppError("DB_INSERT", "create resume", err)
	}
	r.logger.Info("resume created", "resume_id", resume.ID, "user_id", resume.UserID)
	return resume, nil
}

func (r *resumeRepository) GetByID(ctx context.Context, id, userID string) (*entity.Resume, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT id, user_id, file_name, file_path, raw_text, created_at, updated_at, is_deleted
		 FROM resumes WHERE id = ? AND user_id = ? AND is_deleted = 0`), id, userID)
	resume, err := scanResume(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WrapError(common.ErrNotFound, "resume")
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get resume", err)
	}
	return resume, nil
}

func (r *resumeRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Resume, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.Bind(
		`SELECT id, user_id, file_name, file_path, raw_text, created_at, updated_at, is_deleted
		 FROM resumes WHERE user_id = ? AND is_deleted = 0
		 ORDER BY created_at DESC, seq DESC`), userID)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "list resumes", err)
	}
	defer rows.Close()

	var out []*entity.Resume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "list resumes", err)
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *resumeRepository) Rename(ctx context.Context, id, userID, fileName string) (*entity.Resume, error) {
	res, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`UPDATE resumes SET file_name = ?, updated_at = ? WHERE id = ? AND user_id = ? AND is_deleted = 0`),
		fileName, formatTime(time.Now().UTC()), id, userID)
	if err != nil {
		return nil, common.NewAppError("DB_UPDATE", "rename resume", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.WrapError(common.ErrNotFound, "resume")
	}
	return r.GetByID(ctx, id, userID)
}

func (r *resumeRepository) SoftDelete(ctx context.Context, id, userID string) error {
	res, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`UPDATE resumes SET is_deleted = 1, updated_at = ? WHERE id = ? AND user_id = ? AND is_deleted = 0`),
		formatTime(time.Now().UTC()), id, userID)
	if err != nil {
		return common.NewAppError("DB_UPDATE", "delete resume", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.WrapError(common.ErrNotFound, "resume")
	}
	r.logger.Info("resume soft-deleted", "resume_id", id, "user_id", userID)
	return nil
}

func (r *resumeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT COUNT(*) FROM resumes WHERE user_id = ? AND is_deleted = 0`), userID).Scan(&n)
	if err != nil {
		return 0, common.NewAppError("DB_QUERY", "count resumes", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*entity.Resume, error) {
	var resume entity.Resume
	var createdAt, updatedAt string
	var deleted int
	err := row.Scan(&resume.ID, &resume.UserID, &resume.FileName, &resume.FilePath,
		&resume.RawText, &createdAt, &updatedAt, &deleted)
	if err != nil {
		return nil, err
	}
	resume.CreatedAt, resume.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	resume.IsDeleted = deleted != 0
	return &resume, nil
}
