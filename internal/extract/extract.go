package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumai/internal/common"
)

// Kind is the declared media kind of an upload.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// KindForFilename maps an upload filename to a media kind.
// Returns ErrUnsupportedMediaKind for anything else.
func KindForFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, nil
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff":
		return KindImage, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedMediaKind, filepath.Ext(name))
	}
}

// Result is the outcome of a successful extraction.
type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Duration time.Duration
	Warnings []string
}

// Extractor turns document bytes into plain text via a cascade of stages:
// direct text-layer extraction, rendered-page OCR, direct-image OCR. Each
// stage is attempted only when the prior one yields no usable text, and each
// missing capability surfaces as its own failure.
type Extractor struct {
	renderer  PageRenderer
	ocr       OCREngine
	textLayer func(data []byte) (string, error)
	pageCount func(data []byte) (int, error)
	logger    *slog.Logger
}

func NewExtractor(renderer PageRenderer, ocr OCREngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		renderer:  renderer,
		ocr:       ocr,
		textLayer: pdfTextLayer,
		pageCount: pdfPageCount,
		logger:    logger,
	}
}

// Extract runs the cascade for the declared kind. Empty input and unsupported
// kinds fail before any stage runs.
func (e *Extractor) Extract(ctx context.Context, data []byte, kind Kind) (Result, error) {
	start := time.Now()
	if len(data) == 0 {
		return Result{}, common.ErrEmptyInput
	}

	var (
		res Result
		err error
	)
	switch kind {
	case KindPDF:
		res, err = e.extractPDF(ctx, data)
	case KindImage:
		res, err = e.extractImage(ctx, data)
	default:
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupportedMediaKind, kind)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	e.logger.Info("extract.ok",
		"method", res.Method,
		"pages", res.Pages,
		"text_bytes", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (Result, error) {
	pages, err := e.pageCount(data)
	if err != nil {
		return Result{}, common.NewAppError("PDF_UNREADABLE", "could not read PDF structure", err)
	}

	// Stage 1: embedded text layer.
	var warnings []string
	text, err := e.textLayer(data)
	if err != nil {
		warnings = append(warnings, err.Error())
		e.logger.Warn("extract.pdf.text_layer_failed", "error", err)
	}
	if strings.TrimSpace(text) != "" {
		return Result{Text: text, Pages: pages, Method: "pdf-text", Warnings: warnings}, nil
	}

	// Stage 2: rasterize and OCR each page. Renderer and engine absence are
	// reported separately so the caller can say which tool to install.
	e.logger.Info("extract.pdf.text_layer_empty", "pages", pages)
	if e.renderer == nil {
		return Result{}, &common.DependencyMissingError{Dependency: "renderer"}
	}
	if err := e.renderer.Available(); err != nil {
		return Result{}, err
	}
	if e.ocr == nil {
		return Result{}, &common.DependencyMissingError{Dependency: "ocr-engine"}
	}
	if err := e.ocr.Available(); err != nil {
		return Result{}, err
	}

	images, cleanup, err := e.renderer.RenderPages(ctx, data)
	if err != nil {
		return Result{}, common.NewAppError("RENDER_FAILED", "rasterizing PDF pages", err)
	}
	defer cleanup()

	var b strings.Builder
	for i, img := range images {
		txt, err := e.ocr.Recognize(ctx, img)
		if err != nil {
			return Result{}, common.NewAppError("OCR_FAILED", fmt.Sprintf("page %d", i+1), err)
		}
		// Every rendered page contributes its OCR output, even when empty.
		b.WriteString(txt)
		b.WriteString("\n")
	}

	text = b.String()
	if strings.TrimSpace(text) == "" {
		return Result{}, common.ErrNoExtractableText
	}
	return Result{Text: text, Pages: len(images), Method: "pdf-ocr", Warnings: warnings}, nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte) (Result, error) {
	if e.ocr == nil {
		return Result{}, &common.DependencyMissingError{Dependency: "ocr-engine"}
	}
	if err := e.ocr.Available(); err != nil {
		return Result{}, err
	}

	tmp, err := os.CreateTemp("", "resumai-img-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		return Result{}, err
	}

	text, err := e.ocr.Recognize(ctx, tmp.Name())
	if err != nil {
		return Result{}, common.NewAppError("OCR_FAILED", "image", err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, common.ErrNoExtractableText
	}
	return Result{Text: text, Pages: 1, Method: "image-ocr"}, nil
}
