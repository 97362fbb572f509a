package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"resumai/internal/common"
)

type stubRenderer struct {
	availableErr error
	pages        []string
	renderErr    error
}

func (s *stubRenderer) Available() error { return s.availableErr }

func (s *stubRenderer) RenderPages(_ context.Context, _ []byte) ([]string, func(), error) {
	if s.renderErr != nil {
		return nil, nil, s.renderErr
	}
	return s.pages, func() {}, nil
}

type stubOCR struct {
	availableErr error
	texts        map[string]string
	text         string
	err          error
}

func (s *stubOCR) Available() error { return s.availableErr }

func (s *stubOCR) Recognize(_ context.Context, imagePath string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.texts != nil {
		return s.texts[imagePath], nil
	}
	return s.text, nil
}

func newTestExtractor(renderer PageRenderer, ocr OCREngine, text string, textErr error, pages int) *Extractor {
	e := NewExtractor(renderer, ocr, nil)
	e.textLayer = func([]byte) (string, error) { return text, textErr }
	e.pageCount = func([]byte) (int, error) { return pages, nil }
	return e
}

func TestKindForFilename(t *testing.T) {
	cases := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"resume.pdf", KindPDF, true},
		{"Resume.PDF", KindPDF, true},
		{"scan.jpg", KindImage, true},
		{"scan.jpeg", KindImage, true},
		{"scan.png", KindImage, true},
		{"scan.bmp", KindImage, true},
		{"scan.tiff", KindImage, true},
		{"notes.docx", "", false},
		{"noext", "", false},
	}
	for _, tc := range cases {
		kind, err := KindForFilename(tc.name)
		if tc.ok {
			if err != nil {
				t.Fatalf("KindForFilename(%q): unexpected error %v", tc.name, err)
			}
			if kind != tc.want {
				t.Fatalf("KindForFilename(%q) = %q, want %q", tc.name, kind, tc.want)
			}
			continue
		}
		if !errors.Is(err, common.ErrUnsupportedMediaKind) {
			t.Fatalf("KindForFilename(%q): want ErrUnsupportedMediaKind, got %v", tc.name, err)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	e := newTestExtractor(nil, nil, "", nil, 0)
	if _, err := e.Extract(context.Background(), nil, KindPDF); !errors.Is(err, common.ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput, got %v", err)
	}
}

func TestExtractUnsupportedKind(t *testing.T) {
	e := newTestExtractor(nil, nil, "", nil, 0)
	if _, err := e.Extract(context.Background(), []byte("x"), Kind("docx")); !errors.Is(err, common.ErrUnsupportedMediaKind) {
		t.Fatalf("want ErrUnsupportedMediaKind, got %v", err)
	}
}

func TestExtractPDFTextLayer(t *testing.T) {
	// With a text layer present, neither the renderer nor the OCR engine is
	// consulted; nil dependencies must not matter.
	e := newTestExtractor(nil, nil, "Jane Doe\nSoftware Engineer\n", nil, 1)
	res, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != "pdf-text" {
		t.Fatalf("method = %q, want pdf-text", res.Method)
	}
	if res.Text != "Jane Doe\nSoftware Engineer\n" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.Pages != 1 {
		t.Fatalf("pages = %d, want 1", res.Pages)
	}
}

func TestExtractPDFOCRFallback(t *testing.T) {
	renderer := &stubRenderer{pages: []string{"p-1.png", "p-2.png"}}
	ocr := &stubOCR{texts: map[string]string{"p-1.png": "Page1 text", "p-2.png": "Page2 text"}}
	e := newTestExtractor(renderer, ocr, "", nil, 2)

	res, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != "pdf-ocr" {
		t.Fatalf("method = %q, want pdf-ocr", res.Method)
	}
	if res.Text != "Page1 text\nPage2 text\n" {
		t.Fatalf("text = %q, want pages concatenated in order", res.Text)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d, want 2", res.Pages)
	}
}

func TestExtractPDFOCREmptyPageKept(t *testing.T) {
	renderer := &stubRenderer{pages: []string{"p-1.png", "p-2.png"}}
	ocr := &stubOCR{texts: map[string]string{"p-1.png": "", "p-2.png": "only page two"}}
	e := newTestExtractor(renderer, ocr, "", nil, 2)

	res, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "\nonly page two\n" {
		t.Fatalf("text = %q, empty pages must still contribute a separator", res.Text)
	}
}

func TestExtractPDFRendererMissing(t *testing.T) {
	renderer := &stubRenderer{availableErr: &common.DependencyMissingError{Dependency: "renderer"}}
	e := newTestExtractor(renderer, &stubOCR{}, "", nil, 1)

	_, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF)
	var dep *common.DependencyMissingError
	if !errors.As(err, &dep) || dep.Dependency != "renderer" {
		t.Fatalf("want renderer DependencyMissingError, got %v", err)
	}
}

func TestExtractPDFOCREngineMissing(t *testing.T) {
	renderer := &stubRenderer{pages: []string{"p-1.png"}}
	ocr := &stubOCR{availableErr: &common.DependencyMissingError{Dependency: "ocr-engine"}}
	e := newTestExtractor(renderer, ocr, "", nil, 1)

	_, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF)
	var dep *common.DependencyMissingError
	if !errors.As(err, &dep) || dep.Dependency != "ocr-engine" {
		t.Fatalf("want ocr-engine DependencyMissingError, got %v", err)
	}
}

func TestExtractPDFOCRWhitespaceOnly(t *testing.T) {
	renderer := &stubRenderer{pages: []string{"p-1.png"}}
	ocr := &stubOCR{texts: map[string]string{"p-1.png": "  \n\t"}}
	e := newTestExtractor(renderer, ocr, "", nil, 1)

	if _, err := e.Extract(context.Background(), []byte("%PDF"), KindPDF); !errors.Is(err, common.ErrNoExtractableText) {
		t.Fatalf("want ErrNoExtractableText, got %v", err)
	}
}

func TestExtractPDFUnreadable(t *testing.T) {
	e := newTestExtractor(nil, nil, "", nil, 0)
	e.pageCount = func([]byte) (int, error) { return 0, fmt.Errorf("bad xref") }

	_, err := e.Extract(context.Background(), []byte("not a pdf"), KindPDF)
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "PDF_UNREADABLE" {
		t.Fatalf("want PDF_UNREADABLE, got %v", err)
	}
}

func TestExtractImage(t *testing.T) {
	e := NewExtractor(nil, &stubOCR{text: "john smith\nproduct manager"}, nil)
	e.textLayer = func([]byte) (string, error) {
		t.Fatal("text layer must not run for image input")
		return "", nil
	}

	res, err := e.Extract(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, KindImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Method != "image-ocr" {
		t.Fatalf("method = %q, want image-ocr", res.Method)
	}
	if res.Text != "john smith\nproduct manager" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestExtractImageNoText(t *testing.T) {
	e := NewExtractor(nil, &stubOCR{text: "   "}, nil)
	if _, err := e.Extract(context.Background(), []byte{1}, KindImage); !errors.Is(err, common.ErrNoExtractableText) {
		t.Fatalf("want ErrNoExtractableText, got %v", err)
	}
}

func TestExtractImageEngineMissing(t *testing.T) {
	e := NewExtractor(nil, nil, nil)
	_, err := e.Extract(context.Background(), []byte{1}, KindImage)
	var dep *common.DependencyMissingError
	if !errors.As(err, &dep) || dep.Dependency != "ocr-engine" {
		t.Fatalf("want ocr-engine DependencyMissingError, got %v", err)
	}
}
