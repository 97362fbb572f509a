package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"resumai/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	resumes  repository.ResumeRepository
	analyses repository.AnalysisRepository
	logger   *slog.Logger
}

func NewService(resumes repository.ResumeRepository, analyses repository.AnalysisRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{resumes: resumes, analyses: analyses, logger: logger}
}

// ExportAnalysesXLSX returns an XLSX workbook (as bytes) with the user's
// analysis history, newest first.
func (s *Service) ExportAnalysesXLSX(ctx context.Context, userID string, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.analyses.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Analyses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Date",
		"Resume",
		"Overall Score",
		"ATS Score",
		"Top Strength",
		"Top Improvement",
		"Recommendations",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, a := range recs {
		fileName := ""
		if resume, err := s.resumes.GetByID(ctx, a.ResumeID, userID); err == nil {
			fileName = resume.FileName
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, a.CreatedAt.Format("2006-01-02 15:04"))
		write(2, fileName)
		write(3, a.Result.OverallScore)
		write(4, a.Result.ATSCompatibilityScore)
		if len(a.Result.Strengths) > 0 {
			write(5, truncate(a.Result.Strengths[0], 140))
		}
		if len(a.Result.Improvements) > 0 {
			write(6, truncate(a.Result.Improvements[0], 140))
		}
		titles := make([]string, 0, len(a.Result.Recommendations))
		for _, rec := range a.Result.Recommendations {
			titles = append(titles, rec.Title)
		}
		write(7, truncate(strings.Join(titles, "; "), 200))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "C", "D", 14)
	_ = f.SetColWidth(sheet, "E", "F", 48)
	_ = f.SetColWidth(sheet, "G", "G", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
