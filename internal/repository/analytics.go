package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"resumai/internal/common"
	"resumai/internal/entity"
)

// AnalyticsRepository stores user activity events and serves the aggregate
// queries behind the analytics summary.
type AnalyticsRepository interface {
	LogEvent(ctx context.Context, userID, eventType string, data map[string]any) (*entity.AnalyticsEvent, error)
	ListByUser(ctx context.Context, userID, eventType string, limit int) ([]*entity.AnalyticsEvent, error)
	EventCounts(ctx context.Context, userID string) (map[string]int, error)
}

type analyticsRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewAnalyticsRepository(db *DB, logger *slog.Logger) AnalyticsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &analyticsRepository{db: db, logger: logger}
}

func (r *analyticsRepository) LogEvent(ctx context.Context, userID, eventType string, data map[string]any) (*entity.AnalyticsEvent, error) {
	ev := &entity.AnalyticsEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now().UTC(),
	}
	var payload any
	if len(data) > 0 {
		payload = mustJSONText(data)
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.Bind(
		`INSERT INTO analytics_events (id, user_id, event_type, event_data, created_at) VALUES (?, ?, ?, ?, ?)`),
		ev.ID, ev.UserID, ev.EventType, payload, formatTime(ev.CreatedAt))
	if err != nil {
		r.logger.Error("failed to log event", "event_type", eventType, "error", err)
		return nil, common.NewAppError("DB_INSERT", "log event", err)
	}
	return ev, nil
}

func (r *analyticsRepository) ListByUser(ctx context.Context, userID, eventType string, limit int) ([]*entity.AnalyticsEvent, error) {
	query := `SELECT id, user_id, event_type, event_data, created_at FROM analytics_events
		 WHERE user_id = ?`
	args := []any{userID}
	if eventType != "" {
		query += ` AND event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY created_at DESC, seq DESC LIMIT ?`
	args = append(args, normalizeLimit(limit))

	rows, err := r.db.SQL.QueryContext(ctx, r.db.Bind(query), args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "list events", err)
	}
	defer rows.Close()

	var out []*entity.AnalyticsEvent
	for rows.Next() {
		var ev entity.AnalyticsEvent
		var payload *string
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.EventType, &payload, &createdAt); err != nil {
			return nil, common.NewAppError("DB_SCAN", "list events", err)
		}
		if payload != nil {
			if err := decodeJSONText(*payload, &ev.EventData); err != nil {
				return nil, common.NewAppError("DB_SCAN", "list events", err)
			}
		}
		ev.CreatedAt = parseTime(createdAt)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (r *analyticsRepository) EventCounts(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.Bind(
		`SELECT event_type, COUNT(*) FROM analytics_events WHERE user_id = ? GROUP BY event_type`), userID)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "event counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var n int
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, common.NewAppError("DB_SCAN", "event counts", err)
		}
		counts[eventType] = n
	}
	return counts, rows.Err()
}
