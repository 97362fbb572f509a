package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"resumai/internal/analytics"
	"resumai/internal/common"
	"resumai/internal/entity"
	"resumai/internal/extract"
	"resumai/internal/llm"
	"resumai/internal/repository"
)

var testUser = entity.User{ID: "u1", Email: "u1@example.com", Name: "Test User"}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(context.Context, []byte, extract.Kind) (extract.Result, error) {
	if s.err != nil {
		return extract.Result{}, s.err
	}
	return extract.Result{Text: s.text, Pages: 1, Method: "pdf-text"}, nil
}

type stubAnalyzer struct {
	analysis    llm.AnalysisResult
	match       llm.JobMatchResult
	analyzeErr  error
	matchErr    error
	analyzeReqs []llm.AnalyzeRequest
}

func (s *stubAnalyzer) AnalyzeResume(_ context.Context, req llm.AnalyzeRequest) (llm.AnalysisResult, []byte, error) {
	s.analyzeReqs = append(s.analyzeReqs, req)
	if s.analyzeErr != nil {
		return llm.AnalysisResult{}, []byte("rejected"), s.analyzeErr
	}
	return s.analysis, []byte("{}"), nil
}

func (s *stubAnalyzer) MatchJob(context.Context, llm.MatchRequest) (llm.JobMatchResult, []byte, error) {
	if s.matchErr != nil {
		return llm.JobMatchResult{}, nil, s.matchErr
	}
	return s.match, []byte("{}"), nil
}

type testEnv struct {
	processor *Processor
	resumes   repository.ResumeRepository
	analyses  repository.AnalysisRepository
	matches   repository.JobMatchRepository
	events    repository.AnalyticsRepository
}

func newTestEnv(t *testing.T, extractor Extractor, analyzer llm.Analyzer) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, common.DatabaseConfig{
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		DialTimeout:  3 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	if err := repository.Migrate(ctx, db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepository(db, nil)
	resumes := repository.NewResumeRepository(db, nil)
	analyses := repository.NewAnalysisRepository(db, nil)
	matches := repository.NewJobMatchRepository(db, nil)
	events := repository.NewAnalyticsRepository(db, nil)
	if _, err := users.Upsert(ctx, &testUser); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tracker := analytics.NewService(resumes, analyses, matches, events, nil)
	processor := NewProcessor(extractor, analyzer, resumes, analyses, matches, tracker,
		Options{UploadDir: t.TempDir()}, nil)
	return &testEnv{processor: processor, resumes: resumes, analyses: analyses, matches: matches, events: events}
}

func validAnalysis() llm.AnalysisResult {
	return llm.AnalysisResult{
		OverallScore:          72,
		ATSCompatibilityScore: 68,
		Sections:              []llm.Section{},
		Strengths:             []string{"clear"},
		Improvements:          []string{"quantify"},
		KeywordMatches:        []llm.KeywordMatch{},
		Recommendations:       []llm.Recommendation{},
	}
}

func TestAnalyzeUpload(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: validAnalysis()}
	env := newTestEnv(t, &stubExtractor{text: "resume body"}, analyzer)
	ctx := context.Background()

	resume, analysis, err := env.processor.AnalyzeUpload(ctx, testUser.ID, "cv.pdf", []byte("%PDF"), "Backend Engineer")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resume == nil || analysis == nil {
		t.Fatal("resume and analysis must both be returned")
	}
	if analysis.ResumeID != resume.ID {
		t.Fatalf("analysis resume_id = %q, want %q", analysis.ResumeID, resume.ID)
	}
	if len(analyzer.analyzeReqs) != 1 || analyzer.analyzeReqs[0].ResumeText != "resume body" {
		t.Fatalf("oracle request = %+v", analyzer.analyzeReqs)
	}
	if analyzer.analyzeReqs[0].TargetJob != "Backend Engineer" {
		t.Fatalf("target job = %q", analyzer.analyzeReqs[0].TargetJob)
	}

	stored, err := env.resumes.GetByID(ctx, resume.ID, testUser.ID)
	if err != nil {
		t.Fatalf("stored resume: %v", err)
	}
	if stored.RawText == nil || *stored.RawText != "resume body" {
		t.Fatalf("raw text = %v", stored.RawText)
	}

	evs, err := env.events.ListByUser(ctx, testUser.ID, "resume_analyzed", 10)
	if err != nil || len(evs) != 1 {
		t.Fatalf("resume_analyzed events = %d (%v), want 1", len(evs), err)
	}
}

func TestAnalyzeUploadOracleRejectedKeepsResume(t *testing.T) {
	violation := &common.ContractViolationError{Field: "overallScore", Constraint: "must be <= 100"}
	env := newTestEnv(t, &stubExtractor{text: "resume body"}, &stubAnalyzer{analyzeErr: violation})
	ctx := context.Background()

	resume, analysis, err := env.processor.AnalyzeUpload(ctx, testUser.ID, "cv.pdf", []byte("%PDF"), "")
	if !errors.Is(err, common.ErrContractViolation) {
		t.Fatalf("want contract violation, got %v", err)
	}
	if analysis != nil {
		t.Fatal("no analysis record may exist for rejected output")
	}
	if resume == nil {
		t.Fatal("resume must be returned even when the oracle rejects")
	}

	// The upload survives as recoverable state; the history stays empty.
	if _, getErr := env.resumes.GetByID(ctx, resume.ID, testUser.ID); getErr != nil {
		t.Fatalf("resume row must survive oracle failure: %v", getErr)
	}
	list, listErr := env.analyses.ListByUser(ctx, testUser.ID, 10)
	if listErr != nil || len(list) != 0 {
		t.Fatalf("analysis rows = %d (%v), want 0", len(list), listErr)
	}
}

func TestAnalyzeUploadUnsupportedFile(t *testing.T) {
	env := newTestEnv(t, &stubExtractor{text: "x"}, &stubAnalyzer{analysis: validAnalysis()})
	ctx := context.Background()

	_, _, err := env.processor.AnalyzeUpload(ctx, testUser.ID, "notes.docx", []byte("x"), "")
	if !errors.Is(err, common.ErrUnsupportedMediaKind) {
		t.Fatalf("want ErrUnsupportedMediaKind, got %v", err)
	}
	list, _ := env.resumes.ListByUser(ctx, testUser.ID)
	if len(list) != 0 {
		t.Fatal("rejected upload must not create a resume row")
	}
}

func TestAnalyzeUploadExtractionFailure(t *testing.T) {
	env := newTestEnv(t, &stubExtractor{err: common.ErrNoExtractableText}, &stubAnalyzer{})
	ctx := context.Background()

	_, _, err := env.processor.AnalyzeUpload(ctx, testUser.ID, "cv.pdf", []byte("%PDF"), "")
	if !errors.Is(err, common.ErrNoExtractableText) {
		t.Fatalf("want ErrNoExtractableText, got %v", err)
	}
	list, _ := env.resumes.ListByUser(ctx, testUser.ID)
	if len(list) != 0 {
		t.Fatal("failed extraction must not create a resume row")
	}
}

func TestMatchUploadRequiresDescription(t *testing.T) {
	env := newTestEnv(t, &stubExtractor{text: "x"}, &stubAnalyzer{})
	_, _, err := env.processor.MatchUpload(context.Background(), testUser.ID, "cv.pdf", []byte("%PDF"), "Title", "")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestMatchUpload(t *testing.T) {
	analyzer := &stubAnalyzer{match: llm.JobMatchResult{
		MatchPercentage:  61,
		HireabilityScore: 70,
		MatchAnalysis:    "fit",
		KeywordMatches:   []llm.KeywordMatch{},
		MissingKeywords:  []string{},
		Strengths:        []string{},
		Improvements:     []string{},
		Recommendations:  []llm.Recommendation{},
	}}
	env := newTestEnv(t, &stubExtractor{text: "resume body"}, analyzer)
	ctx := context.Background()

	resume, match, err := env.processor.MatchUpload(ctx, testUser.ID, "cv.pdf", []byte("%PDF"), "SRE", "keep things up")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if match.ResumeID != resume.ID || match.JobTitle != "SRE" {
		t.Fatalf("match = %+v", match)
	}
	evs, err := env.events.ListByUser(ctx, testUser.ID, "job_matched", 10)
	if err != nil || len(evs) != 1 {
		t.Fatalf("job_matched events = %d (%v), want 1", len(evs), err)
	}
}

func TestSaveAndDeleteResume(t *testing.T) {
	env := newTestEnv(t, &stubExtractor{text: "resume body"}, &stubAnalyzer{})
	ctx := context.Background()

	resume, err := env.processor.SaveResume(ctx, testUser.ID, "cv.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	evs, _ := env.events.ListByUser(ctx, testUser.ID, "resume_uploaded", 10)
	if len(evs) != 1 {
		t.Fatalf("resume_uploaded events = %d, want 1", len(evs))
	}

	if err := env.processor.DeleteResume(ctx, testUser.ID, resume.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	evs, _ = env.events.ListByUser(ctx, testUser.ID, "resume_deleted", 10)
	if len(evs) != 1 {
		t.Fatalf("resume_deleted events = %d, want 1", len(evs))
	}

	if err := env.processor.DeleteResume(ctx, testUser.ID, resume.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}
