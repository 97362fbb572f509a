package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"resumai/internal/common"
)

// Migrate creates the schema if it does not exist. The seq column is the
// physical insertion counter used to break created_at ties on ordered reads.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	seq := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.Dialect == DialectPostgres {
		seq = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			picture TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS resumes (
			seq %s,
			id TEXT UNIQUE NOT NULL,
			user_id TEXT NOT NULL REFERENCES users(id),
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			raw_text TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			is_deleted INTEGER NOT NULL DEFAULT 0
		)`, seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS resume_analyses (
			seq %s,
			id TEXT UNIQUE NOT NULL,
			resume_id TEXT NOT NULL REFERENCES resumes(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			overall_score INTEGER NOT NULL,
			ats_compatibility_score INTEGER NOT NULL,
			personalized_advice TEXT,
			sections TEXT NOT NULL,
			strengths TEXT NOT NULL,
			improvements TEXT NOT NULL,
			keyword_matches TEXT NOT NULL,
			recommendations TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`, seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS job_matches (
			seq %s,
			id TEXT UNIQUE NOT NULL,
			resume_id TEXT NOT NULL REFERENCES resumes(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			job_title TEXT NOT NULL,
			job_description TEXT NOT NULL,
			match_percentage INTEGER NOT NULL,
			hirability_score INTEGER NOT NULL,
			match_analysis TEXT NOT NULL,
			keyword_matches TEXT NOT NULL,
			missing_keywords TEXT NOT NULL,
			strengths TEXT NOT NULL,
			improvements TEXT NOT NULL,
			recommendations TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`, seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analytics_events (
			seq %s,
			id TEXT UNIQUE NOT NULL,
			user_id TEXT NOT NULL REFERENCES users(id),
			event_type TEXT NOT NULL,
			event_data TEXT,
			created_at TEXT NOT NULL
		)`, seq),
		`CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes(user_id, is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_resume ON resume_analyses(resume_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_user ON resume_analyses(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_resume ON job_matches(resume_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user ON job_matches(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user ON analytics_events(user_id, event_type)`,
	}

	for _, stmt := range stmts {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			logger.Error("migration statement failed", "error", err)
			return common.NewAppError("DB_MIGRATE", firstLine(stmt), err)
		}
	}
	logger.Info("database schema ready")
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
