package extract

import (
	"context"
	"fmt"

	"resumai/internal/common"
)

// OCREngine recognizes text in a single page image. Recognized text may be
// empty; an unavailable engine is a distinct, reportable condition.
type OCREngine interface {
	Available() error
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// TesseractEngine shells out to the tesseract binary.
type TesseractEngine struct {
	Cmd    string // binary name or absolute path; if empty -> "tesseract"
	Lang   string // default "eng"
	runner Runner
}

func NewTesseractEngine(cmd, lang string) *TesseractEngine {
	if cmd == "" {
		cmd = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractEngine{Cmd: cmd, Lang: lang, runner: execRunner{}}
}

func (t *TesseractEngine) Available() error {
	if _, err := t.runner.LookPath(t.Cmd); err != nil {
		return &common.DependencyMissingError{
			Dependency: "ocr-engine",
			Hint:       fmt.Sprintf("install Tesseract and ensure %q is on PATH", t.Cmd),
		}
	}
	return nil
}

func (t *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.Cmd, imagePath, "stdout", "-l", t.Lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
