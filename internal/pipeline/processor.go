package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"resumai/internal/analytics"
	"resumai/internal/common"
	"resumai/internal/entity"
	"resumai/internal/extract"
	"resumai/internal/llm"
	"resumai/internal/repository"
)

// Extractor is the text-extraction dependency of the processor.
type Extractor interface {
	Extract(ctx context.Context, data []byte, kind extract.Kind) (extract.Result, error)
}

// Processor runs the upload-to-result workflow: store the file, extract its
// text, consult the scoring oracle, and persist the validated result. The
// resume row is written before the oracle call, so a failed or rejected
// oracle response still leaves the upload recoverable.
type Processor struct {
	extractor Extractor
	analyzer  llm.Analyzer
	resumes   repository.ResumeRepository
	analyses  repository.AnalysisRepository
	matches   repository.JobMatchRepository
	events    *analytics.Service
	uploadDir string
	maxBytes  int64
	logger    *slog.Logger
}

type Options struct {
	UploadDir   string
	MaxFileSize int64
}

func NewProcessor(
	extractor Extractor,
	analyzer llm.Analyzer,
	resumes repository.ResumeRepository,
	analyses repository.AnalysisRepository,
	matches repository.JobMatchRepository,
	events *analytics.Service,
	opts Options,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 10 << 20
	}
	return &Processor{
		extractor: extractor,
		analyzer:  analyzer,
		resumes:   resumes,
		analyses:  analyses,
		matches:   matches,
		events:    events,
		uploadDir: opts.UploadDir,
		maxBytes:  opts.MaxFileSize,
		logger:    logger,
	}
}

// SaveResume stores an uploaded file and its extracted text.
func (p *Processor) SaveResume(ctx context.Context, userID, fileName string, data []byte) (*entity.Resume, error) {
	resume, _, err := p.ingest(ctx, userID, fileName, data)
	if err != nil {
		return nil, err
	}
	p.events.Track(ctx, userID, "resume_uploaded", map[string]any{"resume_id": resume.ID, "file_name": fileName})
	return resume, nil
}

// AnalyzeUpload ingests a resume and runs the full analysis workflow.
func (p *Processor) AnalyzeUpload(ctx context.Context, userID, fileName string, data []byte, targetJob string) (*entity.Resume, *entity.Analysis, error) {
	start := time.Now()
	resume, text, err := p.ingest(ctx, userID, fileName, data)
	if err != nil {
		return nil, nil, err
	}

	result, _, err := p.analyzer.AnalyzeResume(ctx, llm.AnalyzeRequest{ResumeText: text, TargetJob: targetJob})
	if err != nil {
		p.logger.Error("analysis failed after resume saved", "resume_id", resume.ID, "error", err)
		return resume, nil, err
	}

	record, err := p.analyses.Create(ctx, &entity.Analysis{
		ResumeID: resume.ID,
		UserID:   userID,
		Result:   result,
	})
	if err != nil {
		return resume, nil, err
	}

	p.events.Track(ctx, userID, "resume_analyzed", map[string]any{
		"resume_id":     resume.ID,
		"analysis_id":   record.ID,
		"overall_score": result.OverallScore,
	})
	p.logger.Info("analysis complete",
		"req_id", common.RequestIDFromContext(ctx),
		"resume_id", resume.ID,
		"analysis_id", record.ID,
		"overall_score", result.OverallScore,
		"elapsed_ms", time.Since(start).Milliseconds())
	return resume, record, nil
}

// MatchUpload ingests a resume and scores it against a job posting.
func (p *Processor) MatchUpload(ctx context.Context, userID, fileName string, data []byte, jobTitle, jobDescription string) (*entity.Resume, *entity.JobMatch, error) {
	if jobDescription == "" {
		return nil, nil, common.WrapError(common.ErrInvalidInput, "job description is required")
	}
	start := time.Now()
	resume, text, err := p.ingest(ctx, userID, fileName, data)
	if err != nil {
		return nil, nil, err
	}

	result, _, err := p.analyzer.MatchJob(ctx, llm.MatchRequest{
		ResumeText:     text,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
	})
	if err != nil {
		p.logger.Error("job match failed after resume saved", "resume_id", resume.ID, "error", err)
		return resume, nil, err
	}

	record, err := p.matches.Create(ctx, &entity.JobMatch{
		ResumeID:       resume.ID,
		UserID:         userID,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		Result:         result,
	})
	if err != nil {
		return resume, nil, err
	}

	p.events.Track(ctx, userID, "job_matched", map[string]any{
		"resume_id":        resume.ID,
		"match_id":         record.ID,
		"match_percentage": result.MatchPercentage,
	})
	p.logger.Info("job match complete",
		"req_id", common.RequestIDFromContext(ctx),
		"resume_id", resume.ID,
		"match_id", record.ID,
		"match_percentage", result.MatchPercentage,
		"elapsed_ms", time.Since(start).Milliseconds())
	return resume, record, nil
}

// DeleteResume soft-deletes a resume and records the event.
func (p *Processor) DeleteResume(ctx context.Context, userID, resumeID string) error {
	if err := p.resumes.SoftDelete(ctx, resumeID, userID); err != nil {
		return err
	}
	p.events.Track(ctx, userID, "resume_deleted", map[string]any{"resume_id": resumeID})
	return nil
}

// ingest validates the upload, writes it to disk, extracts its text, and
// persists the resume row.
func (p *Processor) ingest(ctx context.Context, userID, fileName string, data []byte) (*entity.Resume, string, error) {
	if fileName == "" {
		return nil, "", common.WrapError(common.ErrInvalidInput, "file name is required")
	}
	if int64(len(data)) > p.maxBytes {
		return nil, "", common.WrapError(common.ErrInvalidInput,
			fmt.Sprintf("file exceeds %d byte limit", p.maxBytes))
	}
	kind, err := extract.KindForFilename(fileName)
	if err != nil {
		return nil, "", err
	}

	filePath, err := p.storeFile(fileName, data)
	if err != nil {
		return nil, "", err
	}

	result, err := p.extractor.Extract(ctx, data, kind)
	if err != nil {
		return nil, "", err
	}

	resume, err := p.resumes.Create(ctx, &entity.Resume{
		UserID:   userID,
		FileName: fileName,
		FilePath: filePath,
		RawText:  &result.Text,
	})
	if err != nil {
		return nil, "", err
	}
	return resume, result.Text, nil
}

func (p *Processor) storeFile(fileName string, data []byte) (string, error) {
	if p.uploadDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return "", common.NewAppError("STORAGE_WRITE", "create upload directory", err)
	}
	path := filepath.Join(p.uploadDir, uuid.New().String()+filepath.Ext(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", common.NewAppError("STORAGE_WRITE", "write upload", err)
	}
	return path, nil
}
