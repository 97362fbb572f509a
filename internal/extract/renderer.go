package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"resumai/internal/common"
)

// PageRenderer rasterizes PDF bytes into per-page images, in page order.
// Callers must invoke cleanup once the page files are no longer needed.
type PageRenderer interface {
	Available() error
	RenderPages(ctx context.Context, pdf []byte) (pages []string, cleanup func(), err error)
}

// PopplerRenderer shells out to pdftoppm.
type PopplerRenderer struct {
	Cmd      string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit
	runner   Runner
}

func NewPopplerRenderer(cmd string, dpi, maxPages int) *PopplerRenderer {
	if cmd == "" {
		cmd = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &PopplerRenderer{Cmd: cmd, DPI: dpi, MaxPages: maxPages, runner: execRunner{}}
}

func (r *PopplerRenderer) Available() error {
	if _, err := r.runner.LookPath(r.Cmd); err != nil {
		return &common.DependencyMissingError{
			Dependency: "renderer",
			Hint:       fmt.Sprintf("install Poppler and ensure %q is on PATH", r.Cmd),
		}
	}
	return nil
}

func (r *PopplerRenderer) RenderPages(ctx context.Context, pdf []byte) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "resumai-pp-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		cleanup()
		return nil, nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.Cmd, "-r", fmt.Sprintf("%d", r.DPI), "-png", in, prefix)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.MaxPages > 0 && len(matches) > r.MaxPages {
		matches = matches[:r.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm produced no page images")
	}
	return matches, cleanup, nil
}
