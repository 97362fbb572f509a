package server

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"resumai/internal/common"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", common.WrapError(common.ErrInvalidInput, "bad"), fiber.StatusBadRequest},
		{"unsupported kind", common.ErrUnsupportedMediaKind, fiber.StatusBadRequest},
		{"unauthorized", common.ErrUnauthorized, fiber.StatusUnauthorized},
		{"not found", common.WrapError(common.ErrNotFound, "resume"), fiber.StatusNotFound},
		{"no text", common.ErrNoExtractableText, fiber.StatusUnprocessableEntity},
		{"oracle transport", common.ErrOracleTransport, fiber.StatusBadGateway},
		{"contract violation", &common.ContractViolationError{Field: "overallScore", Constraint: "range"}, fiber.StatusBadGateway},
		{"dependency missing", &common.DependencyMissingError{Dependency: "renderer"}, fiber.StatusServiceUnavailable},
		{"unknown", common.NewAppError("DB_QUERY", "boom", nil), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			app := fiber.New(fiber.Config{ErrorHandler: errorHandler(logger)})
			app.Get("/x", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}
