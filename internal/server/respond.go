package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"resumai/internal/common"
	"resumai/internal/entity"
)

// errorHandler maps domain errors onto HTTP statuses. Oracle failures are
// upstream faults, not client errors; missing extraction tools are reported
// as unavailability.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, common.ErrInvalidInput),
			errors.Is(err, common.ErrUnsupportedMediaKind),
			errors.Is(err, common.ErrEmptyInput):
			status = fiber.StatusBadRequest
		case errors.Is(err, common.ErrUnauthorized):
			status = fiber.StatusUnauthorized
		case errors.Is(err, common.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, common.ErrNoExtractableText):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, common.ErrOracleTransport),
			errors.Is(err, common.ErrOracleMalformed),
			errors.Is(err, common.ErrContractViolation):
			status = fiber.StatusBadGateway
		case errors.Is(err, common.ErrDependencyMissing):
			status = fiber.StatusServiceUnavailable
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		if status >= 500 {
			logger.Error("request failed",
				"req_id", common.RequestIDFromContext(c.UserContext()),
				"user_id", common.UserIDFromContext(c.UserContext()),
				"path", c.Path(),
				"error", err)
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
}

type userResponse struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture,omitempty"`
}

type resumeResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	HasText   bool      `json:"has_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type analysisResponse struct {
	ID        string    `json:"id"`
	ResumeID  string    `json:"resume_id"`
	Result    any       `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type jobMatchResponse struct {
	ID        string    `json:"id"`
	ResumeID  string    `json:"resume_id"`
	JobTitle  string    `json:"job_title"`
	Result    any       `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type eventResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	EventData map[string]any `json:"event_data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Picture}
}

func toResumeResponse(r *entity.Resume) resumeResponse {
	return resumeResponse{
		ID:        r.ID,
		FileName:  r.FileName,
		HasText:   r.RawText != nil && *r.RawText != "",
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toAnalysisResponse(a *entity.Analysis) analysisResponse {
	return analysisResponse{ID: a.ID, ResumeID: a.ResumeID, Result: a.Result, CreatedAt: a.CreatedAt}
}

func toJobMatchResponse(m *entity.JobMatch) jobMatchResponse {
	return jobMatchResponse{
		ID:        m.ID,
		ResumeID:  m.ResumeID,
		JobTitle:  m.JobTitle,
		Result:    m.Result,
		CreatedAt: m.CreatedAt,
	}
}

func toEventResponse(ev *entity.AnalyticsEvent) eventResponse {
	return eventResponse{ID: ev.ID, EventType: ev.EventType, EventData: ev.EventData, CreatedAt: ev.CreatedAt}
}
