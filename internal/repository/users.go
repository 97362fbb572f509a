package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"resumai/internal/common"
	"resumai/internal/entity"
)

// UserRepository handles user persistence. Users are provisioned on first
// sign-in and updated in place on subsequent sign-ins.
type UserRepository interface {
	Upsert(ctx context.Context, u *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewUserRepository(db *DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Upsert(ctx context.Context, u *entity.User) (*entity.User, error) {
	now := time.Now().UTC()
	existing, err := r.GetByID(ctx, u.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		u.CreatedAt, u.UpdatedAt = now, now
		_, err = r.db.SQL.ExecContext(ctx, r.db.Bind(
			`INSERT INTO users (id, email, name, picture, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
			u.ID, u.Email, u.Name, u.Picture, formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
		if err != nil {
			r.logger.Error("failed to create user", "user_id", u.ID, "error", err)
			return nil, common.NewAppError("DB_INSERT", "create user", err)
		}
		r.logger.Info("user created", "user_id", u.ID)
		return u, nil
	}

	u.CreatedAt, u.UpdatedAt = existing.CreatedAt, now
	_, err = r.db.SQL.ExecContext(ctx, r.db.Bind(
		`UPDATE users SET email = ?, name = ?, picture = ?, updated_at = ? WHERE id = ?`),
		u.Email, u.Name, u.Picture, formatTime(u.UpdatedAt), u.ID)
	if err != nil {
		r.logger.Error("failed to update user", "user_id", u.ID, "error", err)
		return nil, common.NewAppError("DB_UPDATE", "update user", err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.Bind(
		`SELECT id, email, name, picture, created_at, updated_at FROM users WHERE id = ?`), id)

	var u entity.User
	var createdAt, updatedAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WrapError(common.ErrNotFound, "user")
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get user", err)
	}
	u.CreatedAt, u.UpdatedAt = parseTime(createdAt), parseTime(updatedAt)
	return &u, nil
}

// timeLayout keeps a fixed-width fraction so stored timestamps compare
// correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
