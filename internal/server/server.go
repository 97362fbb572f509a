package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"resumai/internal/analytics"
	"resumai/internal/auth"
	"resumai/internal/common"
	"resumai/internal/export"
	"resumai/internal/pipeline"
	"resumai/internal/repository"
)

// Server is the HTTP surface. It is thin glue: handlers decode the request,
// call a service, and encode the result; all semantics live below.
type Server struct {
	app       *fiber.App
	addr      string
	auth      *auth.Service
	processor *pipeline.Processor
	resumes   repository.ResumeRepository
	analyses  repository.AnalysisRepository
	matches   repository.JobMatchRepository
	analytics *analytics.Service
	export    *export.Service
	db        *repository.DB
	logger    *slog.Logger
}

type Deps struct {
	Auth      *auth.Service
	Processor *pipeline.Processor
	Resumes   repository.ResumeRepository
	Analyses  repository.AnalysisRepository
	Matches   repository.JobMatchRepository
	Analytics *analytics.Service
	Export    *export.Service
	DB        *repository.DB
}

func New(cfg common.ServerConfig, maxBody int64, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		AppName:      "ResumAI API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(maxBody),
		ErrorHandler: errorHandler(logger),
	})

	s := &Server{
		app:       app,
		addr:      cfg.Addr,
		auth:      deps.Auth,
		processor: deps.Processor,
		resumes:   deps.Resumes,
		analyses:  deps.Analyses,
		matches:   deps.Matches,
		analytics: deps.Analytics,
		export:    deps.Export,
		db:        deps.DB,
		logger:    logger,
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(s.requestLogger)

	app.Get("/health", s.handleHealth)
	app.Post("/auth/signin", s.handleSignIn)
	app.Get("/auth/me", s.requireUser, s.handleMe)
	app.Post("/auth/signout", s.requireUser, s.handleSignOut)

	app.Post("/analyze-resume-save", s.requireUser, s.handleAnalyze)
	app.Post("/match-job-save", s.requireUser, s.handleMatch)

	api := app.Group("/api", s.requireUser)
	api.Post("/resumes/save", s.handleSaveResume)
	api.Get("/resumes", s.handleListResumes)
	api.Get("/resumes/:id", s.handleGetResume)
	api.Patch("/resumes/:id", s.handleRenameResume)
	api.Delete("/resumes/:id", s.handleDeleteResume)

	api.Get("/analytics/analyses", s.handleListAnalyses)
	api.Get("/analytics/analyses/export", s.handleExportAnalyses)
	api.Get("/analytics/job-matches", s.handleListJobMatches)
	api.Get("/analytics/summary", s.handleSummary)
	api.Get("/analytics/events", s.handleListEvents)

	return s
}

func (s *Server) Listen() error {
	s.logger.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	reqID := uuid.New().String()
	c.SetUserContext(common.WithRequestID(c.UserContext(), reqID))

	err := c.Next()
	s.logger.Info("http.request",
		"req_id", reqID,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return err
}
