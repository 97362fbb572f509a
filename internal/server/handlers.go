package server

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"resumai/internal/common"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := "healthy"
	if err := s.db.SQL.PingContext(c.UserContext()); err != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{"status": status, "time": time.Now().UTC()})
}

type signInRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return common.WrapError(common.ErrInvalidInput, "token is required")
	}
	user, session, err := s.auth.SignIn(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": session, "user": toUserResponse(user)})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(toUserResponse(currentUser(c)))
}

func (s *Server) handleSignOut(c *fiber.Ctx) error {
	// Sessions are stateless; the client discards its token.
	return c.JSON(fiber.Map{"message": "signed out"})
}

func (s *Server) handleSaveResume(c *fiber.Ctx) error {
	fileName, data, err := readUpload(c)
	if err != nil {
		return err
	}
	resume, err := s.processor.SaveResume(c.UserContext(), currentUser(c).ID, fileName, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toResumeResponse(resume))
}

func (s *Server) handleListResumes(c *fiber.Ctx) error {
	resumes, err := s.resumes.ListByUser(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	out := make([]resumeResponse, 0, len(resumes))
	for _, r := range resumes {
		out = append(out, toResumeResponse(r))
	}
	return c.JSON(out)
}

func (s *Server) handleGetResume(c *fiber.Ctx) error {
	resume, err := s.resumes.GetByID(c.UserContext(), c.Params("id"), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(toResumeResponse(resume))
}

type renameRequest struct {
	FileName string `json:"file_name"`
}

func (s *Server) handleRenameResume(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return common.WrapError(common.ErrInvalidInput, "file_name is required")
	}
	resume, err := s.resumes.Rename(c.UserContext(), c.Params("id"), currentUser(c).ID, req.FileName)
	if err != nil {
		return err
	}
	return c.JSON(toResumeResponse(resume))
}

func (s *Server) handleDeleteResume(c *fiber.Ctx) error {
	if err := s.processor.DeleteResume(c.UserContext(), currentUser(c).ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "resume deleted"})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	fileName, data, err := readUpload(c)
	if err != nil {
		return err
	}
	targetJob := c.FormValue("targetJob")
	resume, analysis, err := s.processor.AnalyzeUpload(c.UserContext(), currentUser(c).ID, fileName, data, targetJob)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"resume":   toResumeResponse(resume),
		"analysis": toAnalysisResponse(analysis),
	})
}

func (s *Server) handleMatch(c *fiber.Ctx) error {
	fileName, data, err := readUpload(c)
	if err != nil {
		return err
	}
	resume, match, err := s.processor.MatchUpload(c.UserContext(), currentUser(c).ID, fileName, data,
		c.FormValue("jobTitle"), c.FormValue("jobDescription"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"resume": toResumeResponse(resume),
		"match":  toJobMatchResponse(match),
	})
}

func (s *Server) handleListAnalyses(c *fiber.Ctx) error {
	userID := currentUser(c).ID
	limit := queryLimit(c)

	var err error
	var out []analysisResponse
	if resumeID := c.Query("resume_id"); resumeID != "" {
		records, listErr := s.analyses.ListByResume(c.UserContext(), resumeID, userID, limit)
		err = listErr
		for _, a := range records {
			out = append(out, toAnalysisResponse(a))
		}
	} else {
		records, listErr := s.analyses.ListByUser(c.UserContext(), userID, limit)
		err = listErr
		for _, a := range records {
			out = append(out, toAnalysisResponse(a))
		}
	}
	if err != nil {
		return err
	}
	if out == nil {
		out = []analysisResponse{}
	}
	return c.JSON(out)
}

func (s *Server) handleExportAnalyses(c *fiber.Ctx) error {
	data, err := s.export.ExportAnalysesXLSX(c.UserContext(), currentUser(c).ID, queryLimit(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="analyses.xlsx"`)
	return c.Send(data)
}

func (s *Server) handleListJobMatches(c *fiber.Ctx) error {
	records, err := s.matches.ListByUser(c.UserContext(), currentUser(c).ID, queryLimit(c))
	if err != nil {
		return err
	}
	out := make([]jobMatchResponse, 0, len(records))
	for _, m := range records {
		out = append(out, toJobMatchResponse(m))
	}
	return c.JSON(out)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	summary, err := s.analytics.Summary(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (s *Server) handleListEvents(c *fiber.Ctx) error {
	events, err := s.analytics.Events(c.UserContext(), currentUser(c).ID, c.Query("event_type"), queryLimit(c))
	if err != nil {
		return err
	}
	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	return c.JSON(out)
}

func readUpload(c *fiber.Ctx) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, common.WrapError(common.ErrInvalidInput, "file is required")
	}
	data, err := readMultipartFile(header)
	if err != nil {
		return "", nil, common.NewAppError("UPLOAD_READ", "read uploaded file", err)
	}
	return header.Filename, data, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func queryLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil {
		return 50
	}
	return limit
}
